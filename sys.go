package twin64

import "fmt"

// SYS-group opcodes (§4.6.3). All are privileged unless noted.
const (
	sysMr = iota
	sysLpa
	sysPrb
	sysTlb
	sysCa
	sysMst
	sysRfi
	sysDiag
	sysTrap
)

func (c *Cpu) requirePriv() *Trap {
	if !c.Psr.Mode() {
		return newTrap(PrivOperation, 0, 0)
	}
	return nil
}

func (c *Cpu) execSys(w Instr) *Trap {
	switch opCode(w) {
	case sysMr:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doMr(w)
	case sysLpa:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doLpa(w)
	case sysPrb:
		return c.doPrb(w)
	case sysTlb:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doTlbOp(w)
	case sysCa:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doCaOp(w)
	case sysMst:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doMst(w)
	case sysRfi:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doRfi(w)
	case sysDiag:
		if tr := c.requirePriv(); tr != nil {
			return tr
		}
		return c.doDiag(w)
	case sysTrap:
		return c.doTrap(w)
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
}

// MR sub-opcodes, carried in Opt1.
const (
	mrMfcr = 0
	mrMtcr = 1
	mrMfiaWhole  = 4
	mrMfiaField  = 5
)

func (c *Cpu) doMr(w Instr) *Trap {
	switch opt1(w) {
	case mrMfcr:
		c.R.Set(regR(w), c.C.Get(regA(w)))
	case mrMtcr:
		c.C.Set(regA(w), c.R.Get(regR(w)))
	case mrMfiaWhole:
		c.R.Set(regR(w), Word(c.Psr.Raw()))
	case mrMfiaField:
		pos, length := posLenFields(w)
		c.R.Set(regR(w), Word(extractField64(c.Psr.Raw(), int(pos), int(length))))
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
	c.advance()
	return nil
}

func (c *Cpu) doLpa(w Instr) *Trap {
	vAdr := c.R.Get(regB(w)) + c.R.Get(regA(w))
	if ppa, ok := c.translate(vAdr); ok {
		c.R.Set(regR(w), ppa)
	} else {
		c.R.Set(regR(w), 0)
	}
	c.advance()
	return nil
}

// PRB access-mode field (the "imm2" of §4.6.3): 0=read,1=write,2=execute,
// 3=register-provided mode (RegA holds the mode instead of being an
// operand).
func (c *Cpu) doPrb(w Instr) *Trap {
	vAdr := c.R.Get(regB(w))
	mode := uImm13(w) & 0x3
	if mode == 3 {
		mode = uint64(c.R.Get(regA(w))) & 0x3
	}
	var allowed bool
	e := c.DTlb.Lookup(vAdr)
	if c.PhysRange.contains(vAdr) {
		allowed = true
	} else if e != nil && c.checkRegion(e.Region) {
		switch mode {
		case 0:
			allowed = e.Type != PageExecute
		case 1:
			allowed = e.Type == PageReadWrite
		case 2:
			allowed = e.Type == PageExecute
		}
	}
	if allowed {
		c.R.Set(regR(w), 1)
	} else {
		c.R.Set(regR(w), 0)
	}
	c.advance()
	return nil
}

// TLB sub-opcodes, carried in Opt1.
const (
	tlbInsertI = 0
	tlbPurgeI  = 1
	tlbInsertD = 2
	tlbPurgeD  = 3
)

func (c *Cpu) doTlbOp(w Instr) *Trap {
	vAdr := c.R.Get(regB(w))
	switch opt1(w) {
	case tlbInsertI:
		info := uint64(c.R.Get(regA(w)))
		c.ITlb.Insert(vAdr, c.R.Get(regR(w)), regionID(vAdr), 4096, PageExecute, 0, info)
	case tlbPurgeI:
		c.ITlb.Purge(vAdr)
	case tlbInsertD:
		info := uint64(c.R.Get(regA(w)))
		c.DTlb.Insert(vAdr, c.R.Get(regR(w)), regionID(vAdr), 4096, PageReadWrite, 0, info)
	case tlbPurgeD:
		c.DTlb.Purge(vAdr)
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
	c.advance()
	return nil
}

// CA sub-opcodes, carried in Opt1.
const (
	caFlushI = 0
	caPurgeI = 1
	caFlushD = 2
	caPurgeD = 3
)

func (c *Cpu) doCaOp(w Instr) *Trap {
	vAdr := c.R.Get(regB(w))
	pAdr, _ := c.translate(vAdr)
	switch opt1(w) {
	case caFlushI:
		c.ICache.Flush(pAdr)
	case caPurgeI:
		c.ICache.Purge(pAdr)
	case caFlushD:
		c.DCache.Flush(pAdr)
	case caPurgeD:
		c.DCache.Purge(pAdr)
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
	c.advance()
	return nil
}

func (c *Cpu) doMst(w Instr) *Trap {
	mask := uint64(uImm13(w)) & 0xFF
	if opt1(w)&1 != 0 {
		c.Psr.SetRaw(c.Psr.Raw() | mask)
	} else {
		c.Psr.SetRaw(c.Psr.Raw() &^ mask)
	}
	c.advance()
	return nil
}

func (c *Cpu) doRfi(w Instr) *Trap {
	c.R.Set(regR(w), c.Psr.IA()+4)
	c.Psr.SetRaw(uint64(c.C.Get(cIPSR)))
	return nil
}

// doDiag hands off to a diagnostic handler keyed by a 5 bit opcode
// subfield (§4.6.3). The core ships only defaultDiag, which prints its
// arguments and does nothing else; hosts that need real diagnostics
// register their own via Cpu.Diag.
func (c *Cpu) doDiag(w Instr) *Trap {
	diagOpt := uImm13(w) & 0x1F
	if c.Diag != nil {
		c.Diag(diagOpt, c.R.Get(regB(w)), c.R.Get(regA(w)))
	}
	c.advance()
	return nil
}

func (c *Cpu) doTrap(w Instr) *Trap {
	info := Word(uImm13(w))
	return newTrap(ProgrammedTrap, info, c.R.Get(regB(w)))
}

func defaultDiag(opt uint64, b, a Word) {
	fmt.Printf("diag: opt=%#x b=%#x a=%#x (unimplemented)\n", opt, uint64(b), uint64(a))
}
