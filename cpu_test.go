package twin64

import (
	"testing"

	"github.com/matryer/is"
)

// newTestMachine wires a bare Cpu against a Ram-backed System, with the
// entire Ram region in Cpu.PhysRange so instructions execute untranslated —
// the bring-up mode every one of §8.3's scenarios assumes.
func newTestMachine(t *testing.T, size int) (*Cpu, *Ram) {
	t.Helper()
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, size)
	is.NoErr(sys.AddModule(ram))

	cpu := NewCpu(NewTlb(8), NewTlb(8), NewCache(8, 1, sys), NewCache(8, 1, sys), sys)
	cpu.PhysRange = AdrRange{Lo: 0, Hi: Word(size)}
	cpu.Reset()
	cpu.Psr.SetX(true)
	cpu.Psr.SetMode(true)
	return cpu, ram
}

func loadProgram(ram *Ram, words ...Instr) {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		beStore32(buf[i*4:i*4+4], uint32(w))
	}
	ram.LoadImage(buf)
}

// TestAddImmediate covers §8.3's ADD-immediate scenario: R1 = R2 + imm15.
func TestAddImmediate(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	w, err := AssembleInstr("ADD R1, R2, 41")
	is.NoErr(err)
	loadProgram(ram, w)

	cpu.R.Set(2, 1)
	is.NoErr(cpu.Step())
	is.Equal(cpu.R.Get(1), Word(42))
	is.Equal(cpu.Psr.IA(), Word(4))
}

// TestAddSignedOverflow covers the signed-overflow scenario: adding two
// values that overflow int64 must raise Overflow and leave the register
// file untouched (§4.6.4 — no partial commit).
func TestAddSignedOverflow(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	w, err := AssembleInstr("ADD R1, R2, R3")
	is.NoErr(err)
	loadProgram(ram, w)

	cpu.R.Set(2, Word(minInt64))
	cpu.R.Set(3, Word(-1))
	cpu.R.Set(1, 999)
	is.NoErr(cpu.Step()) // Step never returns the trap itself, it delivers it
	is.Equal(cpu.R.Get(1), Word(999))
	is.Equal(cpu.C.Get(cIINSTR), Word(w))
	is.True(cpu.Psr.Mode())
}

// TestLoadStoreRoundTrip covers the load/store round-trip scenario: a
// stored value read back through the same address matches exactly.
func TestLoadStoreRoundTrip(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	st, err := AssembleInstr("ST.D R1, 0(R2)")
	is.NoErr(err)
	ld, err := AssembleInstr("LD.D R3, 0(R2)")
	is.NoErr(err)
	loadProgram(ram, st, ld)

	cpu.R.Set(1, Word(0x1122334455667788))
	cpu.R.Set(2, 64)
	is.NoErr(cpu.Step())
	is.NoErr(cpu.Step())
	is.Equal(cpu.R.Get(3), Word(0x1122334455667788))
}

// TestBranchTaken covers the taken-branch scenario: CBR redirects IA by the
// encoded offset when its condition holds.
func TestBranchTaken(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	w, err := AssembleInstr("CBR.EQ R1, R2, 64")
	is.NoErr(err)
	loadProgram(ram, w)

	cpu.R.Set(1, 7)
	cpu.R.Set(2, 7)
	is.NoErr(cpu.Step())
	is.Equal(cpu.Psr.IA(), Word(64))
}

// TestBitopExtr covers the EXTR scenario: extracting an unsigned field from
// a known register value.
func TestBitopExtr(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	w, err := AssembleInstr("EXTR R1, R2, 0, 8")
	is.NoErr(err)
	loadProgram(ram, w)

	cpu.R.Set(2, Word(0xFF))
	is.NoErr(cpu.Step())
	is.Equal(cpu.R.Get(1), Word(0xFF)) // unsigned extract (RegA bit 3 clear)
}

// TestDataTlbMiss covers the TLB-miss scenario: a data access to an address
// outside PhysRange with no matching TLB entry must trap DataTlbMiss and
// leave architectural register state untouched.
func TestDataTlbMiss(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	w, err := AssembleInstr("LD.D R1, 0(R2)")
	is.NoErr(err)
	loadProgram(ram, w)

	// The program still executes from PhysRange; only the data address
	// lies outside it and must go through the (empty) D-TLB.
	cpu.R.Set(2, Word(1)<<40) // far outside PhysRange and any mapped region
	cpu.R.Set(1, 555)
	is.NoErr(cpu.Step())
	is.Equal(cpu.R.Get(1), Word(555)) // unmodified: the trap preempted the load
	is.Equal(cpu.C.Get(cIARG0), Word(1)<<40)
}

func TestPrivilegedInstructionTraps(t *testing.T) {
	is := is.New(t)
	cpu, ram := newTestMachine(t, 4096)
	w, err := AssembleInstr("MST 1")
	is.NoErr(err)
	loadProgram(ram, w)

	cpu.Psr.SetMode(false)
	is.NoErr(cpu.Step())
	is.True(cpu.Psr.Mode()) // trap delivery always escalates to kernel mode
}
