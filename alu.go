package twin64

// ALU-group opcodes (§4.6.3). DW is unused by real ALU-group arithmetic —
// values are always 64 bit — so ADD/SUB/AND/OR/XOR/CMP repurpose DW bit 0
// (bit 13 of the word) as the register-vs-immediate selector the assembler
// needs to distinguish `op R,R,n` from `op R,R,R` (§4.2); this was an Open
// Question the architecture document left unresolved, decided here for
// internal consistency across assembler/CPU/disassembler (see DESIGN.md).
const (
	aluAdd = iota
	aluSub
	aluAnd
	aluOr
	aluXor
	aluCmp
	aluBitop
	aluShaop
	aluImmop
	aluLdo
	aluNop
)

// Opt1 bit assignments for AND/OR/XOR.
const (
	optN = 1 << 0 // negate result
	optC = 1 << 1 // complement left operand (illegal on XOR)
)

func useImm(w Instr) bool { return dwField(w)&1 != 0 }

// aluSrc returns the right-hand operand: RegA's value, or imm15 when the
// immediate-select bit is set.
func (c *Cpu) aluSrc(w Instr) Word {
	if useImm(w) {
		return Word(imm15(w))
	}
	return c.R.Get(regA(w))
}

func (c *Cpu) execAlu(w Instr) *Trap {
	switch opCode(w) {
	case aluAdd:
		return c.doAdd(w)
	case aluSub:
		return c.doSub(w)
	case aluAnd:
		return c.doAndOr(w, false)
	case aluOr:
		return c.doAndOr(w, true)
	case aluXor:
		return c.doXor(w)
	case aluCmp:
		return c.doCmp(w)
	case aluBitop:
		return c.doBitop(w)
	case aluShaop:
		return c.doShaop(w)
	case aluImmop:
		return c.doImmop(w)
	case aluLdo:
		return c.doLdo(w)
	case aluNop:
		c.advance()
		return nil
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
}

func (c *Cpu) doAdd(w Instr) *Trap {
	b := c.R.Get(regB(w))
	src := c.aluSrc(w)
	if willAddOverflow(int64(b), int64(src)) {
		return newTrap(Overflow, 0, 0)
	}
	c.R.Set(regR(w), b+src)
	c.advance()
	return nil
}

func (c *Cpu) doSub(w Instr) *Trap {
	b := c.R.Get(regB(w))
	src := c.aluSrc(w)
	if willSubOverflow(int64(b), int64(src)) {
		return newTrap(Overflow, 0, 0)
	}
	c.R.Set(regR(w), b-src)
	c.advance()
	return nil
}

func (c *Cpu) doAndOr(w Instr, isOr bool) *Trap {
	b := c.R.Get(regB(w))
	if opt1(w)&optC != 0 {
		b = ^b
	}
	src := c.aluSrc(w)
	var res Word
	if isOr {
		res = b | src
	} else {
		res = b & src
	}
	if opt1(w)&optN != 0 {
		res = ^res
	}
	c.R.Set(regR(w), res)
	c.advance()
	return nil
}

func (c *Cpu) doXor(w Instr) *Trap {
	if opt1(w)&optC != 0 {
		return newTrap(IllegalInstr, 0, 0)
	}
	res := c.R.Get(regB(w)) ^ c.aluSrc(w)
	if opt1(w)&optN != 0 {
		res = ^res
	}
	c.R.Set(regR(w), res)
	c.advance()
	return nil
}

// Compare condition codes, shared by CMP/CBR/ABR/MBR (§4.6.3).
const (
	condEQ = 0
	condLT = 1
	condGT = 2
	condEV = 3
	condNE = 4
	condGE = 5
	condLE = 6
	condOD = 7
)

func evalCond(cond uint32, a, b Word) bool {
	switch cond {
	case condEQ:
		return a == b
	case condLT:
		return a < b
	case condGT:
		return a > b
	case condEV:
		return a&1 == 0
	case condNE:
		return a != b
	case condGE:
		return a >= b
	case condLE:
		return a <= b
	case condOD:
		return a&1 == 1
	default:
		return false
	}
}

func (c *Cpu) doCmp(w Instr) *Trap {
	b := c.R.Get(regB(w))
	src := c.aluSrc(w)
	var res Word
	if evalCond(opt1(w), b, src) {
		res = 1
	}
	c.R.Set(regR(w), res)
	c.advance()
	return nil
}

// BITOP sub-opcodes (§4.6.3, Open Question resolved: DSR dispatches on
// Opt1==2, matching the assembler/disassembler tables rather than the
// CPU-handler value of 3 the source also shows).
const (
	bitExtr = 0
	bitDep  = 1
	bitDsr  = 2
)

func posLenFields(w Instr) (pos, length uint) {
	v := uImm13(w)
	return uint((v >> 6) & 0x3F), uint(v & 0x3F)
}

func (c *Cpu) doBitop(w Instr) *Trap {
	switch opt1(w) {
	case bitExtr:
		return c.doExtr(w)
	case bitDep:
		return c.doDep(w)
	case bitDsr:
		return c.doDsr(w)
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
}

func (c *Cpu) doExtr(w Instr) *Trap {
	useSar := dwField(w)&1 != 0
	signed := regA(w)&0x8 != 0
	pos, length := posLenFields(w)
	if useSar {
		pos = c.C.Shamt()
	}
	if length == 0 {
		length = 64
	}
	if int(pos)+int(length) > 64 {
		return newTrap(IllegalInstr, 0, 0) // BitRangeExceeds, caught earlier by the assembler
	}
	b := uint64(c.R.Get(regB(w)))
	var v Word
	if signed {
		v = Word(extractSignedField64(b, int(pos), int(length)))
	} else {
		v = Word(extractField64(b, int(pos), int(length)))
	}
	c.R.Set(regR(w), v)
	c.advance()
	return nil
}

func (c *Cpu) doDep(w Instr) *Trap {
	useImm4 := dwField(w) == 2 || dwField(w) == 3 // bit 14
	useSar := dwField(w)&1 != 0                   // bit 13
	zeroBase := regA(w)&0x8 != 0                  // bit 12
	pos, length := posLenFields(w)
	if useSar {
		pos = c.C.Shamt()
	}
	if length == 0 {
		length = 64
	}
	if int(pos)+int(length) > 64 {
		return newTrap(IllegalInstr, 0, 0)
	}
	var base uint64
	if !zeroBase {
		base = uint64(c.R.Get(regR(w)))
	}
	var val uint64
	if useImm4 {
		val = uImm13(w) & 0xF
	} else {
		val = uint64(c.R.Get(regB(w)))
	}
	c.R.Set(regR(w), Word(depositField(base, int(pos), int(length), val)))
	c.advance()
	return nil
}

func (c *Cpu) doDsr(w Instr) *Trap {
	useSar := dwField(w)&1 != 0
	shamt := uImm13(w) & 0x3F
	if useSar {
		shamt = uint64(c.C.Shamt())
	}
	hi := uint64(c.R.Get(regB(w)))
	lo := uint64(c.R.Get(regA(w)))
	c.R.Set(regR(w), Word(shiftRight128(hi, lo, uint(shamt))))
	c.advance()
	return nil
}

// SHAOP: shift-and-add. x is carried directly in the DW field (values 1-3
// are meaningful, 0 is reserved); Opt1 bit 0 selects left vs right shift.
func (c *Cpu) doShaop(w Instr) *Trap {
	x := uint(dwField(w))
	if x == 0 {
		return newTrap(IllegalInstr, 0, 0)
	}
	b := c.R.Get(regB(w))
	src := Word(imm13(w))
	if regA(w) != 0 && !useImm(w) {
		src = c.R.Get(regA(w))
	}

	shiftRight := opt1(w)&1 != 0
	var shifted Word
	if shiftRight {
		shifted = Word(uint64(b) >> x)
	} else {
		if willShiftLeftOverflow(int64(b), x) {
			return newTrap(Overflow, 0, 0)
		}
		shifted = b << x
	}
	if willAddOverflow(int64(shifted), int64(src)) {
		return newTrap(Overflow, 0, 0)
	}
	c.R.Set(regR(w), shifted+src)
	c.advance()
	return nil
}

// IMMOP: 20 bit wide-constant building blocks (§4.6.3). Sub-mode occupies
// the top two bits of Opt1.
const (
	immAddil  = 0
	immLdilL  = 1
	immLdilM  = 2
	immLdilU  = 3
)

func (c *Cpu) doImmop(w Instr) *Trap {
	sub := opt1(w) >> 1
	imm := imm20(w)
	r := c.R.Get(regR(w))
	switch sub {
	case immAddil:
		c.R.Set(regR(w), addAdrOfs32(r, imm))
	case immLdilL:
		c.R.Set(regR(w), Word(imm)<<12)
	case immLdilM:
		c.R.Set(regR(w), Word(depositField(uint64(r), 32, 20, uint64(imm))))
	case immLdilU:
		c.R.Set(regR(w), Word(depositField(uint64(r), 52, 12, uint64(imm))))
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
	c.advance()
	return nil
}

// LDO computes an effective address without touching memory.
func (c *Cpu) doLdo(w Instr) *Trap {
	b := c.R.Get(regB(w))
	src := c.aluSrc(w)
	c.R.Set(regR(w), b+src)
	c.advance()
	return nil
}
