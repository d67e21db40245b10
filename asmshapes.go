package twin64

import "strings"

const (
	min13, max13 = -(1 << 12), (1 << 12) - 1
	min15, max15 = -(1 << 14), (1 << 14) - 1
	min19, max19 = -(1 << 18), (1 << 18) - 1
	min20, max20 = -(1 << 19), (1 << 19) - 1
)

func inRange(v int64, lo, hi int64) bool { return v >= lo && v <= hi }

// asmAluTriadic handles the six families that are shared between the
// ALU group (`op R,B,(A|imm15)`) and the MEM group (`op R,n(B)` /
// `op R,A(B)`), per §4.2's addressing-mode disambiguation.
func (p *parser) asmAluTriadic(defs []*opDef, opts []string) (Instr, error) {
	aluDef := pickDef(defs, GrpALU)
	memDef := pickDef(defs, GrpMEM)

	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	first, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	if p.cur.kind == tokLParen {
		if memDef == nil {
			return 0, asmErr(InvalidInstrMode, p.cur.col)
		}
		return p.finishMemTriadic(memDef, r, first, opts)
	}

	if aluDef == nil {
		return 0, asmErr(InvalidInstrMode, p.cur.col)
	}
	if !first.isReg {
		return 0, asmErr(ExpectedGeneralReg, p.cur.col)
	}
	b := first.regNum
	if err := p.comma(); err != nil {
		return 0, err
	}
	src, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	w := uint64(EncodeInstruction(GrpALU, aluDef.op, r))
	w = depositField(w, 15, 4, uint64(b))

	opt1, oerr := aluOptBits(aluDef.mnemonic, opts)
	if oerr != nil {
		return 0, oerr
	}
	w = depositField(w, 19, 3, uint64(opt1))

	if src.isReg {
		w = depositField(w, 9, 4, uint64(src.regNum))
	} else {
		if !inRange(src.num, min15, max15) {
			return 0, asmErr(ImmValRange, p.cur.col)
		}
		w = depositField(w, 13, 1, 1) // DW bit0: immediate-select
		w = depositField(w, 0, 15, uint64(src.num)&0x7FFF)
	}
	return Instr(w), nil
}

func (p *parser) finishMemTriadic(memDef *opDef, r uint32, first exprVal, opts []string) (Instr, error) {
	// CMP's MEM-group form rewrites to one of two dedicated opcodes
	// (offset vs indexed), whereas ADD/SUB/AND/OR/XOR keep one opcode
	// (§4.2). All six, CMP included, also carry the Opt1 indexed bit
	// set below.
	op := memDef.op
	if memDef.mnemonic == "CMP" {
		if first.isReg {
			op = memCmpB
		} else {
			op = memCmpA
		}
	}
	w := uint64(EncodeInstruction(GrpMEM, op, r))
	w = depositField(w, 13, 2, uint64(dwFromOpts(opts)))

	if err := p.lparen(); err != nil {
		return 0, err
	}
	base, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.rparen(); err != nil {
		return 0, err
	}
	w = depositField(w, 15, 4, uint64(base))

	if first.isReg {
		w = depositField(w, 19, 3, 1) // indexed
		w = depositField(w, 9, 4, uint64(first.regNum))
	} else {
		if !inRange(first.num, min13, max13) {
			return 0, asmErr(ImmValRange, 0)
		}
		w = depositField(w, 0, 13, uint64(first.num)&0x1FFF)
	}
	return Instr(w), nil
}

func aluOptBits(mnemonic string, opts []string) (uint32, *AsmError) {
	if mnemonic == "CMP" {
		for _, o := range opts {
			if code, ok := condCode(o); ok {
				return code, nil
			}
		}
		return 0, asmErr(InvalidInstrOption, 0)
	}
	var bits uint32
	for _, o := range opts {
		switch o {
		case "N":
			bits |= optN
		case "C":
			if mnemonic == "XOR" {
				return 0, asmErr(InvalidInstrOption, 0)
			}
			bits |= optC
		case "B", "H", "W", "D":
			// data-width suffixes are meaningless for pure-register ALU
			// forms but harmless; MEM forms consume them separately.
		default:
			return 0, asmErr(InvalidInstrOption, 0)
		}
	}
	return bits, nil
}

func pickDef(defs []*opDef, grp OpGroup) *opDef {
	for _, d := range defs {
		if d.grp == grp {
			return d
		}
	}
	return nil
}

func pickDefOp(defs []*opDef, grp OpGroup, op uint32) *opDef {
	for _, d := range defs {
		if d.grp == grp && d.op == op {
			return d
		}
	}
	return nil
}

// asmMemTriadic parses a MEM-group triadic form whose table entry is
// reached directly rather than through asmAluTriadic's lookahead.
func (p *parser) asmMemTriadic(defs []*opDef, opts []string) (Instr, error) {
	d := defs[0]
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	first, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	return p.finishMemTriadic(d, r, first, opts)
}

func (p *parser) asmBitop(defs []*opDef, opts []string) (Instr, error) {
	// EXTR/DEP/DSR share the R,B,pos|SAR,len shape closely enough to
	// dispatch on the mnemonic text captured by the caller.
	if len(defs) == 0 {
		return 0, asmErr(InvalidOpCode, p.cur.col)
	}
	mnemonic := defs[0].mnemonic
	switch mnemonic {
	case "EXTR":
		return p.asmExtr(defs)
	case "DEP":
		return p.asmDep(defs)
	case "DSR":
		return p.asmDsrOp(defs)
	}
	return 0, asmErr(InvalidOpCode, p.cur.col)
}

func (p *parser) asmExtr(defs []*opDef) (Instr, error) {
	d := pickDefOp(defs, GrpALU, aluBitop)
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	pos, useSar, err := p.parsePosOrSar()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	length, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if length.isReg || length.isCreg || length.num < 1 || length.num > 64 {
		return 0, asmErr(ExpectedLenArg, p.cur.col)
	}
	if pos+uint64(length.num) > 64 {
		return 0, asmErr(BitRangeExceeds, p.cur.col)
	}
	w := uint64(EncodeInstruction(GrpALU, d.op, r))
	w = depositField(w, 19, 3, bitExtr)
	w = depositField(w, 15, 4, uint64(b))
	if useSar {
		w = depositField(w, 13, 1, 1)
	}
	w = depositField(w, 6, 6, pos)
	w = depositField(w, 0, 6, uint64(length.num)&0x3F)
	return Instr(w), nil
}

func (p *parser) asmDep(defs []*opDef) (Instr, error) {
	d := pickDefOp(defs, GrpALU, aluBitop)
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	src, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	pos, useSar, err := p.parsePosOrSar()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	length, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if length.isReg || length.isCreg || length.num < 1 || length.num > 64 {
		return 0, asmErr(ExpectedLenArg, p.cur.col)
	}
	if pos+uint64(length.num) > 64 {
		return 0, asmErr(BitRangeExceeds, p.cur.col)
	}
	w := uint64(EncodeInstruction(GrpALU, d.op, r))
	w = depositField(w, 19, 3, bitDep)
	if useSar {
		w = depositField(w, 13, 1, 1)
	}
	if src.isReg {
		w = depositField(w, 15, 4, uint64(src.regNum))
	} else {
		w = depositField(w, 14, 1, 1)
		w = depositField(w, 0, 4, uint64(src.num)&0xF)
	}
	w = depositField(w, 6, 6, pos)
	w = depositField(w, 0, 6, uint64(length.num)&0x3F)
	return Instr(w), nil
}

func (p *parser) asmDsrOp(defs []*opDef) (Instr, error) {
	d := pickDefOp(defs, GrpALU, aluBitop)
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	a, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	shamt, useSar, err := p.parsePosOrSar()
	if err != nil {
		return 0, err
	}
	w := uint64(EncodeInstruction(GrpALU, d.op, r))
	w = depositField(w, 19, 3, bitDsr)
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 9, 4, uint64(a))
	if useSar {
		w = depositField(w, 13, 1, 1)
	}
	w = depositField(w, 0, 6, shamt)
	return Instr(w), nil
}

// parsePosOrSar parses either a numeric position/shamt or the literal
// identifier SAR selecting the dynamic shift-amount register.
func (p *parser) parsePosOrSar() (uint64, bool, *AsmError) {
	if p.cur.kind == tokIdent && strings.ToUpper(p.cur.text) == "SAR" {
		return 0, true, p.advance()
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, false, err
	}
	if v.isReg || v.isCreg || v.num < 0 || v.num > 63 {
		return 0, false, asmErr(ExpectedPosArg, p.cur.col)
	}
	return uint64(v.num), false, nil
}

func (p *parser) asmShaop(defs []*opDef, opts []string) (Instr, error) {
	// mnemonic already encodes x and direction (SHLxA/SHRxA).
	var d *opDef
	for _, c := range defs {
		d = c
		break
	}
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	src, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	w := uint64(EncodeInstruction(GrpALU, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	x, dir := shaopXDir(d.mnemonic)
	w = depositField(w, 13, 2, uint64(x))
	if dir {
		w = depositField(w, 19, 3, 1)
	}
	if src.isReg {
		w = depositField(w, 9, 4, uint64(src.regNum))
	} else {
		if !inRange(src.num, min13, max13) {
			return 0, asmErr(ImmValRange, p.cur.col)
		}
		w = depositField(w, 0, 13, uint64(src.num)&0x1FFF)
	}
	return Instr(w), nil
}

func shaopXDir(mnemonic string) (x uint32, shiftRight bool) {
	shiftRight = strings.HasPrefix(mnemonic, "SHR")
	switch mnemonic[3] {
	case '1':
		x = 1
	case '2':
		x = 2
	case '3':
		x = 3
	}
	return
}

func (p *parser) asmImmop(d *opDef, opts []string) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if v.isReg || v.isCreg || !inRange(v.num, min20, max20) {
		return 0, asmErr(ImmValRange, p.cur.col)
	}
	w := uint64(EncodeInstruction(GrpALU, d.op, r))
	sub := immSubMode(d.mnemonic)
	w = depositField(w, 20, 2, uint64(sub))
	w = depositField(w, 0, 20, uint64(v.num)&0xFFFFF)
	return Instr(w), nil
}

func immSubMode(mnemonic string) uint32 {
	switch mnemonic {
	case "ADDIL":
		return immAddil
	case "LDIL.L":
		return immLdilL
	case "LDIL.M":
		return immLdilM
	case "LDIL.U":
		return immLdilU
	}
	return 0
}

func (p *parser) asmLdo(d *opDef, opts []string) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	off, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if err := p.lparen(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.rparen(); err != nil {
		return 0, err
	}
	w := uint64(EncodeInstruction(GrpALU, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 13, 2, uint64(dwFromOpts(opts)))
	if off.isReg {
		w = depositField(w, 9, 4, uint64(off.regNum))
	} else {
		if !inRange(off.num, min15, max15) {
			return 0, asmErr(ImmValRange, p.cur.col)
		}
		w = depositField(w, 13, 1, 1)
		w = depositField(w, 0, 15, uint64(off.num)&0x7FFF)
	}
	return Instr(w), nil
}

func (p *parser) asmMemAccess(d *opDef, opts []string) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	first, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	w = depositField(w, 13, 2, uint64(dwFromOpts(opts)))
	if err := p.lparen(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.rparen(); err != nil {
		return 0, err
	}
	w = depositField(w, 15, 4, uint64(b))
	if first.isReg {
		w = depositField(w, 19, 3, memOptIndexed|(uint64FromBool(hasOpt(opts, "U"))<<1))
		w = depositField(w, 9, 4, uint64(first.regNum))
	} else {
		if !inRange(first.num, min13, max13) {
			return 0, asmErr(ImmValRange, p.cur.col)
		}
		if hasOpt(opts, "U") {
			w = depositField(w, 19, 3, memOptU)
		}
		w = depositField(w, 0, 13, uint64(first.num)&0x1FFF)
	}
	return Instr(w), nil
}

func uint64FromBool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (p *parser) asmBranchImm(d *opDef, opts []string) (Instr, error) {
	off, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if off.isReg || off.isCreg || !inRange(off.num, min19, max19) {
		return 0, asmErr(ExpectedBrOfs, p.cur.col)
	}
	var link uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		link, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	w := uint64(EncodeInstruction(d.grp, d.op, link))
	if hasOpt(opts, "GATE") {
		w = depositField(w, 19, 3, brOpt1Gateway)
	}
	w = depositField(w, 0, 19, uint64(off.num)&0x7FFFF)
	return Instr(w), nil
}

func (p *parser) asmBe(d *opDef, opts []string) (Instr, error) {
	off, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if off.isReg || off.isCreg {
		return 0, asmErr(ExpectedBrOfs, p.cur.col)
	}
	if err := p.lparen(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.rparen(); err != nil {
		return 0, err
	}
	var link uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		link, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	w := uint64(EncodeInstruction(d.grp, d.op, link))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 0, 15, uint64(off.num)&0x7FFF)
	return Instr(w), nil
}

func (p *parser) asmBr(d *opDef, opts []string) (Instr, error) {
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	var link uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		link, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	w := uint64(EncodeInstruction(d.grp, d.op, link))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 13, 2, uint64(dwFromOpts(opts)))
	return Instr(w), nil
}

func (p *parser) asmBv(d *opDef, opts []string) (Instr, error) {
	var x exprVal
	haveX := false
	save := *p.tz
	saveCur := p.cur
	if v, err := p.parseExpr(); err == nil && p.cur.kind == tokComma {
		x = v
		haveX = true
		if err := p.advance(); err != nil {
			return 0, err
		}
	} else {
		*p.tz = save
		p.cur = saveCur
	}
	if err := p.lparen(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.rparen(); err != nil {
		return 0, err
	}
	var link uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		link, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	if haveX && !x.isReg {
		return 0, asmErr(ExpectedGeneralReg, p.cur.col)
	}
	w := uint64(EncodeInstruction(d.grp, d.op, link))
	w = depositField(w, 15, 4, uint64(b))
	if haveX {
		w = depositField(w, 9, 4, uint64(x.regNum))
	}
	return Instr(w), nil
}

func (p *parser) asmBb(defs []*opDef, opts []string) (Instr, error) {
	d := defs[0]
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	pos, useSar, err := p.parsePosOrSar()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	off, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if off.isReg || off.isCreg || !inRange(off.num, min13, max13) {
		return 0, asmErr(ExpectedBrOfs, p.cur.col)
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	if useSar {
		w = depositField(w, 13, 1, 1)
	} else {
		w = depositField(w, 19, 3, pos&0x7)
	}
	w = depositField(w, 0, 13, uint64(off.num)&0x1FFF)
	return Instr(w), nil
}

func (p *parser) asmCondBranch(d *opDef, opts []string) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	off, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if off.isReg || off.isCreg || !inRange(off.num, min15, max15) {
		return 0, asmErr(ExpectedBrOfs, p.cur.col)
	}
	var cond uint32
	found := false
	for _, o := range opts {
		if c, ok := condCode(o); ok {
			cond = c
			found = true
		}
	}
	if !found {
		return 0, asmErr(InvalidInstrOption, p.cur.col)
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 19, 3, uint64(cond))
	w = depositField(w, 0, 15, uint64(off.num)&0x7FFF)
	return Instr(w), nil
}

func (p *parser) asmMr(defs []*opDef, opts []string) (Instr, error) {
	// mnemonic already disambiguates MFCR/MTCR/MFIA.
	var d *opDef
	for _, c := range defs {
		d = c
	}
	switch d.mnemonic {
	case "MFCR":
		r, err := p.expectGReg()
		if err != nil {
			return 0, err
		}
		if err := p.comma(); err != nil {
			return 0, err
		}
		creg, err := p.expectCReg()
		if err != nil {
			return 0, err
		}
		w := uint64(EncodeInstruction(d.grp, d.op, r))
		w = depositField(w, 19, 3, mrMfcr)
		w = depositField(w, 9, 4, uint64(creg))
		return Instr(w), nil
	case "MTCR":
		creg, err := p.expectCReg()
		if err != nil {
			return 0, err
		}
		if err := p.comma(); err != nil {
			return 0, err
		}
		r, err := p.expectGReg()
		if err != nil {
			return 0, err
		}
		w := uint64(EncodeInstruction(d.grp, d.op, r))
		w = depositField(w, 19, 3, mrMtcr)
		w = depositField(w, 9, 4, uint64(creg))
		return Instr(w), nil
	default: // MFIA
		r, err := p.expectGReg()
		if err != nil {
			return 0, err
		}
		w := uint64(EncodeInstruction(d.grp, d.op, r))
		w = depositField(w, 19, 3, mrMfiaWhole)
		return Instr(w), nil
	}
}

func (p *parser) asmLpa(d *opDef, opts []string) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	var x uint32
	if p.cur.kind == tokLParen {
		if err := p.advance(); err != nil {
			return 0, err
		}
		x, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
		if err := p.rparen(); err != nil {
			return 0, err
		}
		if err := p.lparen(); err != nil {
			return 0, err
		}
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if p.cur.kind == tokRParen {
		if err := p.advance(); err != nil {
			return 0, err
		}
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 9, 4, uint64(x))
	return Instr(w), nil
}

func (p *parser) asmPrb(d *opDef, opts []string) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	mode, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	if mode.isReg {
		w = depositField(w, 9, 4, uint64(mode.regNum))
		w = depositField(w, 0, 2, 3)
	} else {
		w = depositField(w, 0, 2, uint64(mode.num)&0x3)
	}
	return Instr(w), nil
}

func (p *parser) asmTlb(d *opDef, opts []string) (Instr, error) {
	return p.asmThreeRegWithOpt1(d, tlbSubMode(opts))
}

func tlbSubMode(opts []string) uint32 {
	switch {
	case hasOpt(opts, "II"):
		return tlbInsertI
	case hasOpt(opts, "PI"):
		return tlbPurgeI
	case hasOpt(opts, "ID"):
		return tlbInsertD
	default:
		return tlbPurgeD
	}
}

func (p *parser) asmCa(d *opDef, opts []string) (Instr, error) {
	sub := uint32(caFlushI)
	switch {
	case hasOpt(opts, "PI"):
		sub = caPurgeI
	case hasOpt(opts, "FD"):
		sub = caFlushD
	case hasOpt(opts, "PD"):
		sub = caPurgeD
	}
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 19, 3, uint64(sub))
	return Instr(w), nil
}

// asmThreeRegWithOpt1 parses "R, B, A" and sets Opt1 to sub.
func (p *parser) asmThreeRegWithOpt1(d *opDef, sub uint32) (Instr, error) {
	r, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	var a uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		a, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	w := uint64(EncodeInstruction(d.grp, d.op, r))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 9, 4, uint64(a))
	w = depositField(w, 19, 3, uint64(sub))
	return Instr(w), nil
}

func (p *parser) asmMst(d *opDef, opts []string) (Instr, error) {
	sub := uint32(0)
	if hasOpt(opts, "SET") {
		sub = 1
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if v.isReg || v.isCreg || !inRange(v.num, 0, 0xFF) {
		return 0, asmErr(ImmValRange, p.cur.col)
	}
	w := uint64(EncodeInstruction(d.grp, d.op, 0))
	w = depositField(w, 19, 3, uint64(sub))
	w = depositField(w, 0, 13, uint64(v.num)&0xFF)
	return Instr(w), nil
}

func (p *parser) asmRfi(d *opDef, opts []string) (Instr, error) {
	var r uint32
	if p.cur.kind == tokIdent {
		var err *AsmError
		r, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	return EncodeInstruction(d.grp, d.op, r), nil
}

func (p *parser) asmDiag(d *opDef, opts []string) (Instr, error) {
	op, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	var a uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		a, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	if op.isReg || op.isCreg || !inRange(op.num, 0, 0x1F) {
		return 0, asmErr(ImmValRange, p.cur.col)
	}
	w := uint64(EncodeInstruction(d.grp, d.op, 0))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 9, 4, uint64(a))
	w = depositField(w, 0, 5, uint64(op.num))
	return Instr(w), nil
}

func (p *parser) asmTrap(d *opDef, opts []string) (Instr, error) {
	info, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if err := p.comma(); err != nil {
		return 0, err
	}
	b, err := p.expectGReg()
	if err != nil {
		return 0, err
	}
	var a uint32
	if p.cur.kind == tokComma {
		if err := p.advance(); err != nil {
			return 0, err
		}
		a, err = p.expectGReg()
		if err != nil {
			return 0, err
		}
	}
	if info.isReg || info.isCreg || !inRange(info.num, min13, max13) {
		return 0, asmErr(ImmValRange, p.cur.col)
	}
	w := uint64(EncodeInstruction(d.grp, d.op, 0))
	w = depositField(w, 15, 4, uint64(b))
	w = depositField(w, 9, 4, uint64(a))
	w = depositField(w, 0, 13, uint64(info.num)&0x1FFF)
	return Instr(w), nil
}
