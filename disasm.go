package twin64

import "fmt"

// formatInstr renders one instruction word as "<mnemonic.opts>  <operands>",
// in a 16 character mnemonic field and a 32 character operand field, using
// operand syntax the assembler accepts back (§8.1 round-trip law).
func formatInstr(w Instr) string {
	mnemonic, operands := disasm(w)
	return fmt.Sprintf("%-16s%-32s", mnemonic, operands)
}

// FormatInstr is the exported form of formatInstr, for front ends outside
// the package (cmd/twin64sim's disas subcommand).
func FormatInstr(w Instr) string { return formatInstr(w) }

func gregName(n uint32) string { return fmt.Sprintf("R%d", n) }
func cregName(n uint32) string { return fmt.Sprintf("C%d", n) }

func disasm(w Instr) (string, string) {
	switch opGroup(w) {
	case GrpALU:
		return disasmAlu(w)
	case GrpMEM:
		return disasmMem(w)
	case GrpBR:
		return disasmBr(w)
	case GrpSYS:
		return disasmSys(w)
	default:
		return "**...**", ""
	}
}

func disasmAlu(w Instr) (string, string) {
	switch opCode(w) {
	case aluAdd, aluSub, aluAnd, aluOr, aluXor, aluCmp:
		return disasmAluTriadic(w)
	case aluBitop:
		return disasmBitop(w)
	case aluShaop:
		return disasmShaop(w)
	case aluImmop:
		return disasmImmop(w)
	case aluLdo:
		return disasmLdo(w)
	case aluNop:
		return "NOP", ""
	default:
		return "**...**", ""
	}
}

func disasmAluTriadic(w Instr) (string, string) {
	d := findOp(aluTriadicName(opCode(w)), GrpALU)
	name := d.mnemonic
	var opts string
	if opCode(w) == aluCmp {
		opts = "." + condNames[opt1(w)&0x7]
	} else {
		if opt1(w)&optN != 0 {
			opts += ".N"
		}
		if opt1(w)&optC != 0 {
			opts += ".C"
		}
	}
	var src string
	if useImm(w) {
		src = fmt.Sprintf("%d", imm15(w))
	} else {
		src = gregName(regA(w))
	}
	operands := fmt.Sprintf("%s, %s, %s", gregName(regR(w)), gregName(regB(w)), src)
	return name + opts, operands
}

func aluTriadicName(op uint32) string {
	switch op {
	case aluAdd:
		return "ADD"
	case aluSub:
		return "SUB"
	case aluAnd:
		return "AND"
	case aluOr:
		return "OR"
	case aluXor:
		return "XOR"
	default:
		return "CMP"
	}
}

func disasmBitop(w Instr) (string, string) {
	pos, length := posLenFields(w)
	useSar := dwField(w)&1 != 0
	posText := fmt.Sprintf("%d", pos)
	if useSar {
		posText = "SAR"
	}
	switch opt1(w) {
	case bitExtr:
		operands := fmt.Sprintf("%s, %s, %s, %d", gregName(regR(w)), gregName(regB(w)), posText, length)
		return "EXTR", operands
	case bitDep:
		useImm4 := dwField(w) == 2 || dwField(w) == 3
		var src string
		if useImm4 {
			src = fmt.Sprintf("%d", uImm13(w)&0xF)
		} else {
			src = gregName(regB(w))
		}
		operands := fmt.Sprintf("%s, %s, %s, %d", gregName(regR(w)), src, posText, length)
		return "DEP", operands
	case bitDsr:
		operands := fmt.Sprintf("%s, %s, %s, %s", gregName(regR(w)), gregName(regB(w)), gregName(regA(w)), posText)
		return "DSR", operands
	default:
		return "**...**", ""
	}
}

func disasmShaop(w Instr) (string, string) {
	x := dwField(w)
	dir := "L"
	if opt1(w)&1 != 0 {
		dir = "R"
	}
	name := fmt.Sprintf("SH%s%dA", dir, x)
	var src string
	if regA(w) != 0 && !useImm(w) {
		src = gregName(regA(w))
	} else {
		src = fmt.Sprintf("%d", imm13(w))
	}
	operands := fmt.Sprintf("%s, %s, %s", gregName(regR(w)), gregName(regB(w)), src)
	return name, operands
}

func disasmImmop(w Instr) (string, string) {
	sub := opt1(w) >> 1
	names := map[uint32]string{immAddil: "ADDIL", immLdilL: "LDIL.L", immLdilM: "LDIL.M", immLdilU: "LDIL.U"}
	name, ok := names[sub]
	if !ok {
		name = "**...**"
	}
	operands := fmt.Sprintf("%s, %d", gregName(regR(w)), imm20(w))
	return name, operands
}

func disasmLdo(w Instr) (string, string) {
	var off string
	if useImm(w) {
		off = fmt.Sprintf("%d", imm15(w))
	} else {
		off = gregName(regA(w))
	}
	operands := fmt.Sprintf("%s, %s(%s)", gregName(regR(w)), off, gregName(regB(w)))
	return "LDO", operands
}

func disasmMem(w Instr) (string, string) {
	switch opCode(w) {
	case memLd, memSt, memLdr, memStc:
		return disasmMemAccess(w)
	case memAdd, memSub, memAnd, memOr, memXor, memCmpA, memCmpB:
		return disasmMemTriadic(w)
	default:
		return "**...**", ""
	}
}

func memAccessName(op uint32) string {
	switch op {
	case memLd:
		return "LD"
	case memSt:
		return "ST"
	case memLdr:
		return "LDR"
	default:
		return "STC"
	}
}

func disasmMemAccess(w Instr) (string, string) {
	name := memAccessName(opCode(w))
	opts := "." + dwField(w).String()
	if opCode(w) == memLd && opt1(w)&memOptU != 0 {
		opts += ".U"
	}
	operands := memOperandText(w)
	return name + opts, fmt.Sprintf("%s, %s", gregName(regR(w)), operands)
}

func memOperandText(w Instr) string {
	if opt1(w)&memOptIndexed != 0 {
		return fmt.Sprintf("%s(%s)", gregName(regA(w)), gregName(regB(w)))
	}
	return fmt.Sprintf("%d(%s)", imm13(w), gregName(regB(w)))
}

func memTriadicName(op uint32) string {
	switch op {
	case memAdd:
		return "ADD"
	case memSub:
		return "SUB"
	case memAnd:
		return "AND"
	case memOr:
		return "OR"
	case memXor:
		return "XOR"
	default: // memCmpA, memCmpB
		return "CMP"
	}
}

func disasmMemTriadic(w Instr) (string, string) {
	name := memTriadicName(opCode(w)) + "." + dwField(w).String()
	operands := fmt.Sprintf("%s, %s", gregName(regR(w)), memOperandText(w))
	return name, operands
}

func disasmBr(w Instr) (string, string) {
	switch opCode(w) {
	case brB:
		name := "B"
		if opt1(w)&brOpt1Gateway != 0 {
			name += ".GATE"
		}
		return name, fmt.Sprintf("%d, %s", imm19(w), gregName(regR(w)))
	case brBe:
		return "BE", fmt.Sprintf("%d(%s), %s", imm15(w), gregName(regB(w)), gregName(regR(w)))
	case brBr:
		return "BR", fmt.Sprintf("%s, %s", gregName(regB(w)), gregName(regR(w)))
	case brBv:
		return "BV", fmt.Sprintf("%s, (%s), %s", gregName(regA(w)), gregName(regB(w)), gregName(regR(w)))
	case brBbT, brBbF:
		name := "BB.T"
		if opCode(w) == brBbF {
			name = "BB.F"
		}
		pos := fmt.Sprintf("%d", opt1(w))
		if dwField(w)&1 != 0 {
			pos = "SAR"
		}
		return name, fmt.Sprintf("%s, %s, %d", gregName(regR(w)), pos, imm13(w))
	case brCbr, brAbr, brMbr:
		names := map[uint32]string{brCbr: "CBR", brAbr: "ABR", brMbr: "MBR"}
		name := names[opCode(w)] + "." + condNames[opt1(w)&0x7]
		return name, fmt.Sprintf("%s, %s, %d", gregName(regR(w)), gregName(regB(w)), imm15(w))
	default:
		return "**...**", ""
	}
}

func disasmSys(w Instr) (string, string) {
	switch opCode(w) {
	case sysMr:
		switch opt1(w) {
		case mrMfcr:
			return "MFCR", fmt.Sprintf("%s, %s", gregName(regR(w)), cregName(regA(w)))
		case mrMtcr:
			return "MTCR", fmt.Sprintf("%s, %s", cregName(regA(w)), gregName(regR(w)))
		default:
			return "MFIA", gregName(regR(w))
		}
	case sysLpa:
		return "LPA", fmt.Sprintf("%s, (%s)(%s)", gregName(regR(w)), gregName(regA(w)), gregName(regB(w)))
	case sysPrb:
		mode := fmt.Sprintf("%d", uImm13(w)&0x3)
		if uImm13(w)&0x3 == 3 {
			mode = gregName(regA(w)) // mode 3: RegA supplies the access mode
		}
		return "PRB", fmt.Sprintf("%s, %s, %s", gregName(regR(w)), gregName(regB(w)), mode)
	case sysTlb:
		names := map[uint32]string{tlbInsertI: ".II", tlbPurgeI: ".PI", tlbInsertD: ".ID", tlbPurgeD: ".PD"}
		return "TLB" + names[opt1(w)], fmt.Sprintf("%s, %s, %s", gregName(regR(w)), gregName(regB(w)), gregName(regA(w)))
	case sysCa:
		names := map[uint32]string{caFlushI: ".FI", caPurgeI: ".PI", caFlushD: ".FD", caPurgeD: ".PD"}
		return "CA" + names[opt1(w)], fmt.Sprintf("%s, %s", gregName(regR(w)), gregName(regB(w)))
	case sysMst:
		name := "MST"
		if opt1(w)&1 != 0 {
			name += ".SET"
		}
		return name, fmt.Sprintf("%d", uImm13(w)&0xFF)
	case sysRfi:
		return "RFI", gregName(regR(w))
	case sysDiag:
		return "DIAG", fmt.Sprintf("%d, %s, %s", uImm13(w)&0x1F, gregName(regB(w)), gregName(regA(w)))
	case sysTrap:
		return "TRAP", fmt.Sprintf("%d, %s, %s", imm13(w), gregName(regB(w)), gregName(regA(w)))
	default:
		return "**...**", ""
	}
}
