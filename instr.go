package twin64

// Instruction field layout, bit 0 = LSB, bit 31 = MSB:
//
//	OpGroup  [31:30]   RegR  [25:22]   DW    [14:13]
//	OpCode   [29:26]   Opt1  [21:19]   RegA  [12:9]
//	RegB     [18:15]

type OpGroup uint32

const (
	GrpALU OpGroup = 0
	GrpMEM OpGroup = 1
	GrpBR  OpGroup = 2
	GrpSYS OpGroup = 3
)

// DW is the data-width encoding carried in bits [14:13] of most
// instructions; its numeric value is also the log2 of the operand size.
type DW uint32

const (
	DwByte DW = 0 // 1 byte
	DwHalf DW = 1 // 2 bytes
	DwWord DW = 2 // 4 bytes
	DwDbl  DW = 3 // 8 bytes
)

// Bytes returns the operand size in bytes for a DW encoding.
func (d DW) Bytes() int { return 1 << uint(d) }

func (d DW) String() string {
	switch d {
	case DwByte:
		return "B"
	case DwHalf:
		return "H"
	case DwWord:
		return "W"
	case DwDbl:
		return "D"
	default:
		return "?"
	}
}

func opGroup(w Instr) OpGroup { return OpGroup(extractField64(uint64(w), 30, 2)) }
func opCode(w Instr) uint32   { return uint32(extractField64(uint64(w), 26, 4)) }
func regR(w Instr) uint32     { return uint32(extractField64(uint64(w), 22, 4)) }
func opt1(w Instr) uint32     { return uint32(extractField64(uint64(w), 19, 3)) }
func regB(w Instr) uint32     { return uint32(extractField64(uint64(w), 15, 4)) }
func dwField(w Instr) DW      { return DW(extractField64(uint64(w), 13, 2)) }
func regA(w Instr) uint32     { return uint32(extractField64(uint64(w), 9, 4)) }

// opKey collapses (group, opcode) to a single dispatch index in [0,64), per
// the Design Notes' preferred single-switch-over-opKey dispatch shape.
func opKey(w Instr) uint32 { return uint32(opGroup(w))*16 + opCode(w) }

// DecodeInstruction reads one big-endian 32 bit instruction word from b
// (§6.1), for callers outside the package that only hold raw image bytes.
func DecodeInstruction(b []byte) Instr {
	return Instr(beLoad32(b))
}

// EncodeInstruction assembles the fixed leading fields shared by nearly
// every instruction form; callers deposit their own low-order immediate or
// register fields on top of the returned word.
func EncodeInstruction(grp OpGroup, op uint32, r uint32) Instr {
	w := uint64(0)
	w = depositField(w, 30, 2, uint64(grp))
	w = depositField(w, 26, 4, uint64(op))
	w = depositField(w, 22, 4, uint64(r))
	return Instr(w)
}

// imm13 etc. extract the low-order immediate fields used by most operand
// forms; each occupies bits [n-1:0] of the word.
func imm13(w Instr) int64 { return extractSignedField64(uint64(w), 0, 13) }
func imm15(w Instr) int64 { return extractSignedField64(uint64(w), 0, 15) }
func imm19(w Instr) int64 { return extractSignedField64(uint64(w), 0, 19) }
func imm20(w Instr) int64 { return extractSignedField64(uint64(w), 0, 20) }

func uImm13(w Instr) uint64 { return extractField64(uint64(w), 0, 13) }
func uImm15(w Instr) uint64 { return extractField64(uint64(w), 0, 15) }
func uImm20(w Instr) uint64 { return extractField64(uint64(w), 0, 20) }

// Virtual address layout (§3.3): bits [63:52] reserved, [51:32] region ID,
// [31:0] region offset; within the offset, [31:12] page number, [11:0] page
// offset.

func regionID(va Word) uint32   { return uint32(extractField64(uint64(va), 32, 20)) }
func regionOfs(va Word) uint32  { return uint32(extractField64(uint64(va), 0, 32)) }
func pageNumber(va Word) uint64 { return extractField64(uint64(va), 12, 40) }
func pageOffset(va Word) uint32 { return uint32(extractField64(uint64(va), 0, 12)) }
