package twin64

import (
	"fmt"
	"os"
)

// Cpu is the execution engine of §4.6: fetch, decode, execute, deliver
// traps, advance IA.
type Cpu struct {
	R   RegFile
	C   CtlRegs
	Psr Psr

	ITlb *Tlb
	DTlb *Tlb

	ICache *Cache
	DCache *Cache

	// PhysRange is the range of virtual addresses that bypass translation
	// entirely (§4.6.1 step 2) — the "physical memory range" of the spec.
	PhysRange AdrRange

	resvValid bool
	resvAdr   Word

	InstructionCount uint64
	CycleCount       uint64

	// Trace, if non-nil, receives one line per executed instruction in
	// the teacher's printstate idiom.
	Trace *os.File

	// Diag, if non-nil, handles the DIAG instruction's implementation-
	// defined opcode (§9 Open Question: no behavior specified).
	Diag func(opt uint64, b, a Word)

	sys *System
}

// NewCpu returns a Cpu wired to the given TLBs, caches, and system.
func NewCpu(iTlb, dTlb *Tlb, iCache, dCache *Cache, sys *System) *Cpu {
	return &Cpu{ITlb: iTlb, DTlb: dTlb, ICache: iCache, DCache: dCache, sys: sys}
}

// Reset clears architectural state to its power-on values.
func (c *Cpu) Reset() {
	c.R = RegFile{}
	c.C = CtlRegs{}
	c.Psr = Psr{}
	c.resvValid = false
	c.InstructionCount = 0
	c.CycleCount = 0
}

// Run steps the CPU in an unbounded loop and returns only if Step returns
// an error. Step delivers traps into the architectural state instead of
// returning them, so a trap does not end Run; callers wanting bounded
// execution should use Step in a loop instead.
func (c *Cpu) Run() error {
	for {
		if err := c.Step(); err != nil {
			return err
		}
	}
}

// Step fetches, decodes, executes one instruction, delivering any trap it
// raises, then returns. It never panics for control flow.
func (c *Cpu) Step() error {
	faultIA := c.Psr.IA()
	w, err := c.fetch()
	if err != nil {
		c.deliverTrap(err, faultIA, 0)
		return nil
	}

	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "%s\n", c.traceLine(faultIA, w))
	}

	if execErr := c.execute(w); execErr != nil {
		c.deliverTrap(execErr, faultIA, w)
		c.InstructionCount++
		c.CycleCount++
		return nil
	}

	c.InstructionCount++
	c.CycleCount++
	return nil
}

// fetch implements §4.6.1.
func (c *Cpu) fetch() (Instr, *Trap) {
	ia := c.Psr.IA()
	if !isAlignedDataAdr(ia, 4) {
		return 0, newTrap(InstrAlignment, ia, 0)
	}

	var buf [4]byte
	if c.PhysRange.contains(ia) {
		if !c.Psr.X() {
			return 0, newTrap(PrivOperation, ia, 0)
		}
		c.ICache.Read(ia, buf[:], 4, false)
		return Instr(beLoad32(buf[:])), nil
	}

	e := c.ITlb.Lookup(ia)
	if e == nil {
		return 0, newTrap(InstrTlbMiss, ia, 0)
	}
	if !c.checkRegion(e.Region) {
		return 0, newTrap(InstrProtection, ia, 0)
	}
	if e.Type != PageExecute && e.Type != PageProbeOnly {
		return 0, newTrap(InstrProtection, ia, 0)
	}
	pAdr := e.Translate(ia)
	c.ICache.Read(pAdr, buf[:], 4, e.Uncached)
	return Instr(beLoad32(buf[:])), nil
}

// checkRegion validates a region ID against the four protection-ID control
// registers (§4.6.1 step 4).
func (c *Cpu) checkRegion(region uint32) bool {
	for i := uint32(cPID0); i <= cPID3; i++ {
		if uint32(uint64(c.C.Get(i))) == region {
			return true
		}
	}
	return false
}

// execute dispatches on the opcode group; each group handler then switches
// on the opcode to reach the per-family handler (§4.6.2).
func (c *Cpu) execute(w Instr) *Trap {
	switch opGroup(w) {
	case GrpALU:
		return c.execAlu(w)
	case GrpMEM:
		return c.execMem(w)
	case GrpBR:
		return c.execBr(w)
	case GrpSYS:
		return c.execSys(w)
	default:
		return newTrap(IllegalInstr, 0, 0)
	}
}

// deliverTrap implements §4.6.4: all architectural side effects are
// deferred until checks pass, so a mid-instruction trap simply leaves the
// register file untouched beyond what the handler already committed.
func (c *Cpu) deliverTrap(t *Trap, faultIA Word, instr Instr) {
	t.PSR = c.Psr.IA()
	if t.PSR == 0 {
		t.PSR = faultIA
	}
	savedPsr := c.Psr.Raw()
	c.C.Set(cIPSR, Word(savedPsr))
	c.C.Set(cIINSTR, Word(instr))
	c.C.Set(cIARG0, t.Arg0)
	c.C.Set(cIARG1, t.Arg1)

	c.Psr.SetRaw(uint64(c.C.Get(cIVA)))
	c.Psr.SetMode(true)
	c.Psr.SetX(true)
}

// advance moves IA to the next sequential instruction; called by handlers
// that do not themselves redirect control flow.
func (c *Cpu) advance() {
	c.Psr.SetIA(c.Psr.IA() + 4)
}

func (c *Cpu) traceLine(ia Word, w Instr) string {
	return fmt.Sprintf("ia=%#016x instr=%#08x  %s", uint64(ia), uint32(w), formatInstr(w))
}
