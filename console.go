package twin64

import (
	"fmt"
	"os"
)

// Console registers, HPA-offset from the module's base (grounded on the
// teacher's KL11: a status/data pair, one byte at a time, no scrollback).
const (
	consStatusReg = 0
	consDataReg   = 8

	consReady = 1 << 0 // status bit: data register accepts a write
)

// Console is the minimal MMIO I/O module of SPEC_FULL §4.10: two HPA
// registers reachable only via uncached bus ops, writing bytes straight to
// stdout. No window manager, no scrollable pane — that UI is out of scope
// (§1).
type Console struct {
	mnum   int
	hpaLo  Word
	status uint64
	data   byte
}

// NewConsole returns a Console module numbered mnum with an 16-byte HPA
// window starting at base.
func NewConsole(mnum int, base Word) *Console {
	return &Console{mnum: mnum, hpaLo: base, status: consReady}
}

func (c *Console) ModuleNumber() int { return c.mnum }
func (c *Console) Kind() ModuleKind  { return KindIO }
func (c *Console) HPA() AdrRange     { return AdrRange{Lo: c.hpaLo, Hi: c.hpaLo + 16} }
func (c *Console) SPA() AdrRange     { return AdrRange{} }

func (c *Console) reg(pAdr Word) Word { return pAdr - c.hpaLo }

func (c *Console) ServeReadUncached(pAdr Word, dst []byte, length int) {
	var v uint64
	switch c.reg(pAdr) {
	case consStatusReg:
		v = c.status
	case consDataReg:
		v = uint64(c.data)
	default:
		fmt.Fprintf(os.Stderr, "console: read from invalid register %#x\n", uint64(pAdr))
	}
	var buf [8]byte
	beStore64(buf[:], v)
	copy(dst[:length], buf[8-length:])
}

func (c *Console) ServeWriteUncached(pAdr Word, src []byte, length int) {
	var buf [8]byte
	copy(buf[8-length:], src[:length])
	v := beLoad64(buf[:])
	switch c.reg(pAdr) {
	case consDataReg:
		if c.status&consReady != 0 {
			c.data = byte(v)
			os.Stdout.Write([]byte{c.data})
		}
	case consStatusReg:
		c.status = v
	default:
		fmt.Fprintf(os.Stderr, "console: write to invalid register %#x\n", uint64(pAdr))
	}
}

// Console has no cacheable state (all traffic is uncached MMIO) so the
// remaining BusTarget methods are no-ops.
func (c *Console) ServeReadShared(Word, []byte, int)  {}
func (c *Console) ServeReadPrivate(Word, []byte, int) {}
func (c *Console) ServeWriteBlock(Word, []byte, int)  {}
func (c *Console) ObserveReadShared(Word, int)        {}
func (c *Console) ObserveReadPrivate(Word, int)       {}
func (c *Console) ObserveReadUncached(Word, int)      {}
func (c *Console) ObserveWriteUncached(Word, int)     {}
