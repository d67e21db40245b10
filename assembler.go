package twin64

import "strings"

// exprVal is the tagged result of evaluating one grammar expr: either a
// plain numeric value, a general register reference, or a control
// register reference. Arithmetic combinators reject anything but two
// numeric operands (ExprTypeMismatch); a bare single-factor expr is
// allowed to be a register, which is how operand parsing tells "R, R, R"
// apart from "R, R, n" (§4.2).
type exprVal struct {
	isReg   bool
	isCreg  bool
	regNum  uint32
	num     int64
}

// parser is the explicit, reentrant parsing context handed through every
// call — see Design Note "Global currentToken/tokenLine state".
type parser struct {
	tz  *Tokenizer
	cur token
}

func newParser(line string) (*parser, *AsmError) {
	p := &parser{tz: newTokenizer(line)}
	return p, p.advance()
}

func (p *parser) advance() *AsmError {
	t, err := p.tz.Next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) expect(k tokKind, onErr AsmErrorKind) *AsmError {
	if p.cur.kind != k {
		return asmErr(onErr, p.cur.col)
	}
	return p.advance()
}

// AssembleInstr parses one mnemonic-form line and emits a 32 bit
// instruction word (§4.2).
func AssembleInstr(line string) (Instr, error) {
	p, err := newParser(line)
	if err != nil {
		return 0, err
	}
	if p.cur.kind != tokIdent {
		return 0, asmErr(ExpectedOpCode, p.cur.col)
	}
	mnemonicCol := p.cur.col
	base := p.cur.text
	if aerr := p.advance(); aerr != nil {
		return 0, aerr
	}

	var opts []string
	for p.cur.kind == tokDot {
		if aerr := p.advance(); aerr != nil {
			return 0, aerr
		}
		if p.cur.kind != tokIdent {
			return 0, asmErr(InvalidInstrOption, p.cur.col)
		}
		opt := strings.ToUpper(p.cur.text)
		for _, o := range opts {
			if o == opt {
				return 0, asmErr(DuplicateInstrOption, p.cur.col)
			}
		}
		opts = append(opts, opt)
		if aerr := p.advance(); aerr != nil {
			return 0, aerr
		}
	}

	defs := findByMnemonic(base)
	if len(defs) == 0 && len(opts) > 0 {
		// Table rows such as LDIL.M and BB.T carry their first option as
		// part of the mnemonic.
		defs = findByMnemonic(base + "." + opts[0])
		opts = opts[1:]
	}
	if len(defs) == 0 {
		return 0, asmErr(InvalidOpCode, mnemonicCol)
	}
	return p.assembleBody(defs, opts, mnemonicCol)
}

func (p *parser) assembleBody(defs []*opDef, opts []string, col int) (Instr, error) {
	d := defs[0]
	switch d.shape {
	case shapeAluTriadic:
		return p.asmAluTriadic(defs, opts)
	case shapeBitop:
		return p.asmBitop(defs, opts)
	case shapeShaop:
		return p.asmShaop(defs, opts)
	case shapeImmop:
		return p.asmImmop(d, opts)
	case shapeLdo:
		return p.asmLdo(d, opts)
	case shapeNop:
		return EncodeInstruction(d.grp, d.op, 0), nil
	case shapeMemAccess:
		return p.asmMemAccess(d, opts)
	case shapeMemTriadic:
		return p.asmMemTriadic(defs, opts)
	case shapeBranchImm:
		return p.asmBranchImm(d, opts)
	case shapeBe:
		return p.asmBe(d, opts)
	case shapeBr:
		return p.asmBr(d, opts)
	case shapeBv:
		return p.asmBv(d, opts)
	case shapeBb:
		return p.asmBb(defs, opts)
	case shapeCondBranch:
		return p.asmCondBranch(d, opts)
	case shapeMr:
		return p.asmMr(defs, opts)
	case shapeLpa:
		return p.asmLpa(d, opts)
	case shapePrb:
		return p.asmPrb(d, opts)
	case shapeTlb:
		return p.asmTlb(d, opts)
	case shapeCa:
		return p.asmCa(d, opts)
	case shapeMst:
		return p.asmMst(d, opts)
	case shapeRfi:
		return p.asmRfi(d, opts)
	case shapeDiag:
		return p.asmDiag(d, opts)
	case shapeTrap:
		return p.asmTrap(d, opts)
	default:
		return 0, asmErr(InvalidInstrMode, col)
	}
}

// --- expression grammar (§4.2) ---

func (p *parser) parseExpr() (exprVal, *AsmError) {
	neg := false
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		neg = p.cur.kind == tokMinus
		if err := p.advance(); err != nil {
			return exprVal{}, err
		}
	}
	left, err := p.parseTerm()
	if err != nil {
		return exprVal{}, err
	}
	if neg {
		if left.isReg || left.isCreg {
			return exprVal{}, asmErr(ExprTypeMismatch, p.cur.col)
		}
		left.num = -left.num
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus || p.cur.kind == tokPipe || p.cur.kind == tokCaret {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return exprVal{}, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return exprVal{}, err
		}
		if left.isReg || left.isCreg || right.isReg || right.isCreg {
			return exprVal{}, asmErr(ExprTypeMismatch, p.cur.col)
		}
		switch op {
		case tokPlus:
			left.num += right.num
		case tokMinus:
			left.num -= right.num
		case tokPipe:
			left.num |= right.num
		case tokCaret:
			left.num ^= right.num
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (exprVal, *AsmError) {
	left, err := p.parseFactor()
	if err != nil {
		return exprVal{}, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokPercent || p.cur.kind == tokAmp {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return exprVal{}, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return exprVal{}, err
		}
		if left.isReg || left.isCreg || right.isReg || right.isCreg {
			return exprVal{}, asmErr(ExprTypeMismatch, p.cur.col)
		}
		switch op {
		case tokStar:
			left.num *= right.num
		case tokSlash:
			if right.num == 0 {
				return exprVal{}, asmErr(InvalidExpr, p.cur.col)
			}
			left.num /= right.num
		case tokPercent:
			if right.num == 0 {
				return exprVal{}, asmErr(InvalidExpr, p.cur.col)
			}
			left.num %= right.num
		case tokAmp:
			left.num &= right.num
		}
	}
	return left, nil
}

func (p *parser) parseFactor() (exprVal, *AsmError) {
	switch p.cur.kind {
	case tokNumber:
		v := exprVal{num: p.cur.ival}
		return v, p.advance()
	case tokTilde:
		if err := p.advance(); err != nil {
			return exprVal{}, err
		}
		inner, err := p.parseFactor()
		if err != nil {
			return exprVal{}, err
		}
		if inner.isReg || inner.isCreg {
			return exprVal{}, asmErr(ExprTypeMismatch, p.cur.col)
		}
		return exprVal{num: ^inner.num}, nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return exprVal{}, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return exprVal{}, err
		}
		return v, p.expect(tokRParen, ExpectedRParen)
	case tokIdent:
		return p.parseIdentFactor()
	default:
		return exprVal{}, asmErr(InvalidExpr, p.cur.col)
	}
}

// qualPrefixes maps the §4.2 wide-constant qualifiers to a bit-selection
// function over a 32/64 bit value.
var qualPrefixes = map[string]func(int64) int64{
	"L": func(v int64) int64 { return int64(extractField64(uint64(v), 0, 20)) },
	"R": func(v int64) int64 { return int64(extractField64(uint64(v), 0, 12)) },
	"M": func(v int64) int64 { return int64(extractField64(uint64(v), 12, 20)) },
	"U": func(v int64) int64 { return int64(extractField64(uint64(v), 52, 12)) },
}

func (p *parser) parseIdentFactor() (exprVal, *AsmError) {
	text := p.cur.text
	col := p.cur.col
	upper := strings.ToUpper(text)

	if i := strings.IndexByte(text, '%'); i > 0 {
		q, ok := qualPrefixes[strings.ToUpper(text[:i])]
		if !ok {
			return exprVal{}, asmErr(InvalidNum, col)
		}
		v, err := parseUintBase(text[i+1:], 10)
		if err != nil {
			return exprVal{}, asmErr(NumericOverflow, col)
		}
		if aerr := p.advance(); aerr != nil {
			return exprVal{}, aerr
		}
		return exprVal{num: q(int64(v))}, nil
	}

	if reg, ok := gregSynonyms[upper]; ok {
		return exprVal{isReg: true, regNum: reg}, p.advance()
	}
	if n, ok := regNumber(upper, 'R'); ok {
		return exprVal{isReg: true, regNum: n}, p.advance()
	}
	if n, ok := regNumber(upper, 'C'); ok {
		return exprVal{isCreg: true, regNum: n}, p.advance()
	}
	return exprVal{}, asmErr(InvalidExpr, col)
}

func regNumber(text string, prefix byte) (uint32, bool) {
	if len(text) < 2 || text[0] != prefix {
		return 0, false
	}
	v, err := parseUintBase(text[1:], 10)
	if err != nil || v > 15 {
		return 0, false
	}
	return uint32(v), true
}

func (p *parser) expectGReg() (uint32, *AsmError) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	if !v.isReg {
		return 0, asmErr(ExpectedGeneralReg, p.cur.col)
	}
	return v.regNum, nil
}

func (p *parser) expectCReg() (uint32, *AsmError) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	if !v.isCreg {
		return 0, asmErr(ExpectedControlReg, p.cur.col)
	}
	return v.regNum, nil
}

func (p *parser) comma() *AsmError { return p.expect(tokComma, ExpectedComma) }
func (p *parser) lparen() *AsmError { return p.expect(tokLParen, ExpectedLParen) }
func (p *parser) rparen() *AsmError { return p.expect(tokRParen, ExpectedRParen) }

func hasOpt(opts []string, name string) bool {
	for _, o := range opts {
		if o == name {
			return true
		}
	}
	return false
}

func dwFromOpts(opts []string) DW {
	switch {
	case hasOpt(opts, "B"):
		return DwByte
	case hasOpt(opts, "H"):
		return DwHalf
	case hasOpt(opts, "W"):
		return DwWord
	default:
		return DwDbl
	}
}
