package twin64

// MEM-group opcodes (§4.6.3). Opt1 bit 0 selects indexed (`op R,A(B)`)
// addressing over offset (`op R,imm13(B)`); Opt1 bit 1 is LD's U-bit
// (unsigned zero-extension) — the spec places "bit 20" there, which is
// Opt1's middle bit.
const (
	memLd = iota
	memSt
	memLdr
	memStc
	memAdd
	memSub
	memAnd
	memOr
	memXor
	memCmpA // offset form
	memCmpB // indexed form
)

const (
	memOptIndexed = 1 << 0
	memOptU       = 1 << 1
)

// effAdr computes the effective address for a MEM-group instruction: the
// offset form scales imm13 by DW (memory offsets are element-scaled);
// the indexed form adds the raw RegA value.
func (c *Cpu) effAdr(w Instr) Word {
	b := c.R.Get(regB(w))
	if opt1(w)&memOptIndexed != 0 {
		return b + c.R.Get(regA(w))
	}
	return b + Word(imm13(w)*int64(dwField(w).Bytes()))
}

func (c *Cpu) execMem(w Instr) *Trap {
	dw := dwField(w).Bytes()
	switch opCode(w) {
	case memLd:
		ea := c.effAdr(w)
		v, tr := c.loadValue(ea, dw, opt1(w)&memOptU == 0)
		if tr != nil {
			return tr
		}
		c.R.Set(regR(w), v)
	case memSt:
		ea := c.effAdr(w)
		if tr := c.storeValue(ea, dw, c.R.Get(regR(w))); tr != nil {
			return tr
		}
	case memLdr:
		ea := c.effAdr(w)
		v, tr := c.loadValue(ea, dw, true)
		if tr != nil {
			return tr
		}
		c.resvValid = true
		c.resvAdr = ea
		c.R.Set(regR(w), v)
	case memStc:
		ea := c.effAdr(w)
		ok := c.resvValid && c.resvAdr == ea
		c.resvValid = false
		if ok {
			if tr := c.storeValue(ea, dw, c.R.Get(regR(w))); tr != nil {
				return tr
			}
			c.R.Set(regR(w), 1)
		} else {
			c.R.Set(regR(w), 0)
		}
	case memAdd, memSub, memAnd, memOr, memXor:
		if tr := c.memAccum(w, dw); tr != nil {
			return tr
		}
	case memCmpA, memCmpB:
		ea := c.effAdr(w)
		v, tr := c.loadValue(ea, dw, true)
		if tr != nil {
			return tr
		}
		var res Word
		if v == c.R.Get(regR(w)) {
			res = 1
		}
		c.R.Set(regR(w), res)
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
	c.advance()
	return nil
}

// memAccum implements the MEM-group read-modify accumulate forms: load the
// memory operand, combine with RegR under the named operator, and write
// the result back to RegR (the architectural register, not memory).
func (c *Cpu) memAccum(w Instr, dw int) *Trap {
	ea := c.effAdr(w)
	mem, tr := c.loadValue(ea, dw, true)
	if tr != nil {
		return tr
	}
	r := c.R.Get(regR(w))
	var res Word
	switch opCode(w) {
	case memAdd:
		if willAddOverflow(int64(r), int64(mem)) {
			return newTrap(Overflow, 0, 0)
		}
		res = r + mem
	case memSub:
		if willSubOverflow(int64(r), int64(mem)) {
			return newTrap(Overflow, 0, 0)
		}
		res = r - mem
	case memAnd:
		res = r & mem
	case memOr:
		res = r | mem
	case memXor:
		res = r ^ mem
	}
	c.R.Set(regR(w), res)
	return nil
}
