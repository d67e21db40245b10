package twin64

// Ram is the concrete Memory-kind module of SPEC_FULL §4.9: it backs an SPA
// range with a flat byte store and is the backing store of last resort —
// memory always has a copy, so it serves every bus-op unconditionally and
// has nothing of its own to do as an observer.
type Ram struct {
	mnum int
	base Word
	buf  []byte
}

// NewRam returns a Ram module numbered mnum, serving [base, base+len(buf)).
func NewRam(mnum int, base Word, size int) *Ram {
	return &Ram{mnum: mnum, base: base, buf: make([]byte, size)}
}

func (r *Ram) ModuleNumber() int { return r.mnum }
func (r *Ram) Kind() ModuleKind  { return KindMemory }
func (r *Ram) HPA() AdrRange     { return AdrRange{} }
func (r *Ram) SPA() AdrRange     { return AdrRange{Lo: r.base, Hi: r.base + Word(len(r.buf))} }

func (r *Ram) off(pAdr Word) int { return int(pAdr - r.base) }

func (r *Ram) ServeReadShared(pAdr Word, dst []byte, length int) {
	o := r.off(pAdr)
	copy(dst[:length], r.buf[o:o+length])
}

func (r *Ram) ServeReadPrivate(pAdr Word, dst []byte, length int) { r.ServeReadShared(pAdr, dst, length) }

func (r *Ram) ServeWriteBlock(pAdr Word, src []byte, length int) {
	o := r.off(pAdr)
	copy(r.buf[o:o+length], src[:length])
}

func (r *Ram) ServeReadUncached(pAdr Word, dst []byte, length int) { r.ServeReadShared(pAdr, dst, length) }
func (r *Ram) ServeWriteUncached(pAdr Word, src []byte, length int) {
	r.ServeWriteBlock(pAdr, src, length)
}

func (r *Ram) ObserveReadShared(pAdr Word, length int)    {}
func (r *Ram) ObserveReadPrivate(pAdr Word, length int)   {}
func (r *Ram) ObserveReadUncached(pAdr Word, length int)  {}
func (r *Ram) ObserveWriteUncached(pAdr Word, length int) {}

// LoadImage copies a flat raw memory image into RAM starting at offset 0,
// standing in for the ELF loader collaborator of §6.2.
func (r *Ram) LoadImage(img []byte) {
	copy(r.buf, img)
}
