package twin64

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestAssembleAluTriadicRegister(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("ADD R1, R2, R3")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpALU)
	is.Equal(opCode(w), uint32(aluAdd))
	is.Equal(regR(w), uint32(1))
	is.Equal(regB(w), uint32(2))
	is.True(!useImm(w))
	is.Equal(regA(w), uint32(3))
}

func TestAssembleAluTriadicImmediate(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("ADD R1, R2, 100")
	is.NoErr(err)
	is.True(useImm(w))
	is.Equal(imm15(w), int64(100))
}

func TestAssembleAluImmediateOutOfRange(t *testing.T) {
	is := is.New(t)
	_, err := AssembleInstr("ADD R1, R2, 1000000")
	is.True(err != nil)
	is.Equal(err.(*AsmError).Kind, ImmValRange)
}

func TestAssembleMemTriadicOffsetForm(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("ADD R1, 8(R2)")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpMEM)
	is.Equal(opCode(w), uint32(memAdd))
	is.Equal(regB(w), uint32(2))
	is.Equal(imm13(w), int64(8))
}

func TestAssembleMemTriadicIndexedForm(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("ADD R1, R3(R2)")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpMEM)
	is.Equal(opt1(w)&memOptIndexed, uint32(memOptIndexed))
	is.Equal(regA(w), uint32(3))
	is.Equal(regB(w), uint32(2))
}

func TestAssembleCmpCondition(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("CMP.EQ R1, R2, R3")
	is.NoErr(err)
	is.Equal(opCode(w), uint32(aluCmp))
	is.Equal(opt1(w), uint32(condEQ))
}

func TestAssembleCmpMissingCondition(t *testing.T) {
	is := is.New(t)
	_, err := AssembleInstr("CMP R1, R2, R3")
	is.True(err != nil)
}

func TestAssembleCmpMemOffsetForm(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("CMP R1, 8(R2)")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpMEM)
	is.Equal(opCode(w), uint32(memCmpA))
	is.True(opt1(w)&memOptIndexed == 0)
	is.Equal(imm13(w), int64(8))
}

func TestAssembleCmpMemIndexedForm(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("CMP R1, R3(R2)")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpMEM)
	is.Equal(opCode(w), uint32(memCmpB))
	is.Equal(opt1(w)&memOptIndexed, uint32(memOptIndexed))
	is.Equal(regA(w), uint32(3))
}

func TestAssembleMemAccess(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("LD.W R1, 4(R2)")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpMEM)
	is.Equal(opCode(w), uint32(memLd))
	is.Equal(dwField(w), DwWord)
	is.Equal(regR(w), uint32(1))
	is.Equal(regB(w), uint32(2))
	is.Equal(imm13(w), int64(4))
}

func TestAssembleBranchImm(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("B 100, R1")
	is.NoErr(err)
	is.Equal(opGroup(w), GrpBR)
	is.Equal(opCode(w), uint32(brB))
	is.Equal(imm19(w), int64(100))
	is.Equal(regR(w), uint32(1))
}

func TestAssembleBitopExtr(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("EXTR R1, R2, 4, 8")
	is.NoErr(err)
	is.Equal(opCode(w), uint32(aluBitop))
	is.Equal(opt1(w), uint32(bitExtr))
	pos, length := posLenFields(w)
	is.Equal(pos, uint(4))
	is.Equal(length, uint(8))
}

func TestAssembleImmediateOption(t *testing.T) {
	is := is.New(t)
	w, err := AssembleInstr("LDIL.M R1, 12345")
	is.NoErr(err)
	is.Equal(opCode(w), uint32(aluImmop))
	is.Equal(imm20(w), int64(12345))
}

func TestAssembleDuplicateOption(t *testing.T) {
	is := is.New(t)
	_, err := AssembleInstr("LD.W.W R1, 4(R2)")
	is.True(err != nil)
	is.Equal(err.(*AsmError).Kind, DuplicateInstrOption)
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	is := is.New(t)
	_, err := AssembleInstr("FROB R1, R2, R3")
	is.True(err != nil)
	is.Equal(err.(*AsmError).Kind, InvalidOpCode)
}

// TestRoundTrip exercises §8.1's round-trip law: disassembling an assembled
// instruction and reassembling the result yields the same word.
func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	cases := []string{
		"ADD R1, R2, R3",
		"CMP.LT R4, R5, R6",
		"LD.D R1, 16(R2)",
		"ST.B R1, R3(R2)",
		"CMP R1, 8(R2)",
		"CMP R1, R3(R2)",
		"B 200, R1",
		"EXTR R1, R2, 4, 8",
		"TRAP 7, R2, R3",
	}
	for _, src := range cases {
		w1, err := AssembleInstr(src)
		is.NoErr(err)
		text := strings.TrimSpace(formatInstr(w1))
		fields := strings.SplitN(text, " ", 2)
		rebuilt := fields[0]
		if len(fields) > 1 {
			rebuilt += " " + strings.TrimSpace(fields[1])
		}
		w2, err := AssembleInstr(rebuilt)
		is.NoErr(err)
		is.Equal(w1, w2)
	}
}
