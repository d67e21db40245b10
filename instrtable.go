package twin64

// operandShape names the operand grammar an opcode accepts; the assembler
// dispatches on it to pick a parser. The disassembler formats operands
// with its own per-group code, written to emit the same grammar (§8.1).
type operandShape int

const (
	shapeAluTriadic operandShape = iota // R, B, (A|imm15) — ADD/SUB/AND/OR/XOR/CMP
	shapeBitop                          // BITOP family: EXTR/DEP/DSR
	shapeShaop                          // SHLxA/SHRxA
	shapeImmop                          // ADDIL/LDIL.{L,M,U} R, imm20
	shapeLdo                            // LDO R, imm13(B) | A(B)
	shapeNop                            // no operands
	shapeMemAccess                      // LD/ST/LDR/STC R, imm13(B) | A(B)
	shapeMemTriadic                     // MEM-group ADD/SUB/AND/OR/XOR/CMP
	shapeBranchImm                      // B imm19 [, R]
	shapeBe                             // BE ofs(B) [, R]
	shapeBr                             // BR B [, R]
	shapeBv                             // BV [X,] (B) [, R]
	shapeBb                             // BB.T/F R, pos|SAR, imm13
	shapeCondBranch                     // CBR/ABR/MBR.cond R, B, imm15
	shapeMr                             // MFCR/MTCR/MFIA
	shapeLpa                            // LPA R, (X)(B)
	shapePrb                            // PRB R, B, (A|imm2)
	shapeTlb                            // TLB.{II,PI,ID,PD} R, B [, A]
	shapeCa                             // CA.{FI,PI,FD,PD} R, B
	shapeMst                            // MST imm8
	shapeRfi                            // RFI R
	shapeDiag                           // DIAG opcode, B, A
	shapeTrap                           // TRAP info, B, A
)

type opDef struct {
	grp      OpGroup
	op       uint32
	mnemonic string
	shape    operandShape
}

// opTable is the single source of truth for (group,opcode) <-> mnemonic,
// keeping the assembler and disassembler from drifting apart. Condition
// and data-width suffixes are handled generically, not as separate table
// rows.
var opTable = []opDef{
	{GrpALU, aluAdd, "ADD", shapeAluTriadic},
	{GrpALU, aluSub, "SUB", shapeAluTriadic},
	{GrpALU, aluAnd, "AND", shapeAluTriadic},
	{GrpALU, aluOr, "OR", shapeAluTriadic},
	{GrpALU, aluXor, "XOR", shapeAluTriadic},
	{GrpALU, aluCmp, "CMP", shapeAluTriadic},
	{GrpALU, aluBitop, "EXTR", shapeBitop},
	{GrpALU, aluBitop, "DEP", shapeBitop},
	{GrpALU, aluBitop, "DSR", shapeBitop},
	{GrpALU, aluShaop, "SHL1A", shapeShaop},
	{GrpALU, aluShaop, "SHL2A", shapeShaop},
	{GrpALU, aluShaop, "SHL3A", shapeShaop},
	{GrpALU, aluShaop, "SHR1A", shapeShaop},
	{GrpALU, aluShaop, "SHR2A", shapeShaop},
	{GrpALU, aluShaop, "SHR3A", shapeShaop},
	{GrpALU, aluImmop, "ADDIL", shapeImmop},
	{GrpALU, aluImmop, "LDIL.L", shapeImmop},
	{GrpALU, aluImmop, "LDIL.M", shapeImmop},
	{GrpALU, aluImmop, "LDIL.U", shapeImmop},
	{GrpALU, aluLdo, "LDO", shapeLdo},
	{GrpALU, aluNop, "NOP", shapeNop},

	{GrpMEM, memLd, "LD", shapeMemAccess},
	{GrpMEM, memSt, "ST", shapeMemAccess},
	{GrpMEM, memLdr, "LDR", shapeMemAccess},
	{GrpMEM, memStc, "STC", shapeMemAccess},
	{GrpMEM, memAdd, "ADD", shapeMemTriadic},
	{GrpMEM, memSub, "SUB", shapeMemTriadic},
	{GrpMEM, memAnd, "AND", shapeMemTriadic},
	{GrpMEM, memOr, "OR", shapeMemTriadic},
	{GrpMEM, memXor, "XOR", shapeMemTriadic},
	{GrpMEM, memCmpA, "CMP", shapeMemTriadic},

	{GrpBR, brB, "B", shapeBranchImm},
	{GrpBR, brBe, "BE", shapeBe},
	{GrpBR, brBr, "BR", shapeBr},
	{GrpBR, brBv, "BV", shapeBv},
	{GrpBR, brBbT, "BB.T", shapeBb},
	{GrpBR, brBbF, "BB.F", shapeBb},
	{GrpBR, brCbr, "CBR", shapeCondBranch},
	{GrpBR, brAbr, "ABR", shapeCondBranch},
	{GrpBR, brMbr, "MBR", shapeCondBranch},

	{GrpSYS, sysMr, "MFCR", shapeMr},
	{GrpSYS, sysMr, "MTCR", shapeMr},
	{GrpSYS, sysMr, "MFIA", shapeMr},
	{GrpSYS, sysLpa, "LPA", shapeLpa},
	{GrpSYS, sysPrb, "PRB", shapePrb},
	{GrpSYS, sysTlb, "TLB", shapeTlb},
	{GrpSYS, sysCa, "CA", shapeCa},
	{GrpSYS, sysMst, "MST", shapeMst},
	{GrpSYS, sysRfi, "RFI", shapeRfi},
	{GrpSYS, sysDiag, "DIAG", shapeDiag},
	{GrpSYS, sysTrap, "TRAP", shapeTrap},
}

// condNames maps the fixed condition-code table of §4.2 to Opt1 values.
var condNames = []string{"EQ", "LT", "GT", "EV", "NE", "GE", "LE", "OD"}

func condCode(name string) (uint32, bool) {
	for i, n := range condNames {
		if n == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// gregSynonyms implements the "T0 = R1" style ABI names the round-trip law
// in §8.1 explicitly allows: T0..T3 alias R1..R4, SP aliases R15, RP
// (return-link) aliases R14.
var gregSynonyms = map[string]uint32{
	"T0": 1, "T1": 2, "T2": 3, "T3": 4,
	"SP": 15, "RP": 14,
}

func findOp(mnemonicBase string, grp OpGroup, requireOp ...uint32) *opDef {
	for i := range opTable {
		d := &opTable[i]
		if d.grp != grp || d.mnemonic != mnemonicBase {
			continue
		}
		if len(requireOp) == 1 && d.op != requireOp[0] {
			continue
		}
		return d
	}
	return nil
}

func findByMnemonic(name string) []*opDef {
	var out []*opDef
	for i := range opTable {
		if opTable[i].mnemonic == name {
			out = append(out, &opTable[i])
		}
	}
	return out
}

func findByOpKey(grp OpGroup, op uint32) []*opDef {
	var out []*opDef
	for i := range opTable {
		if opTable[i].grp == grp && opTable[i].op == op {
			out = append(out, &opTable[i])
		}
	}
	return out
}
