package twin64

// Processor bundles one CPU with an I-TLB, D-TLB, I-cache, and D-cache
// (§4.7) and is the BusTarget a System broadcasts snoops to.
type Processor struct {
	mnum int
	hpa  AdrRange

	cpu    *Cpu
	iTlb   *Tlb
	dTlb   *Tlb
	iCache *Cache
	dCache *Cache
}

// NewProcessor wires up a complete processor module numbered mnum, with
// iTlbSize/dTlbSize entries and iCacheLines/dCacheLines cache lines,
// against sys.
func NewProcessor(mnum int, hpa AdrRange, sys *System, iTlbSize, dTlbSize, iCacheLines, dCacheLines int) *Processor {
	p := &Processor{mnum: mnum, hpa: hpa}
	p.iTlb = NewTlb(iTlbSize)
	p.dTlb = NewTlb(dTlbSize)
	p.iCache = NewCache(iCacheLines, mnum, sys)
	p.dCache = NewCache(dCacheLines, mnum, sys)
	p.cpu = NewCpu(p.iTlb, p.dTlb, p.iCache, p.dCache, sys)
	p.cpu.Diag = defaultDiag
	return p
}

func (p *Processor) ModuleNumber() int { return p.mnum }
func (p *Processor) Kind() ModuleKind  { return KindProcessor }
func (p *Processor) HPA() AdrRange     { return p.hpa }
func (p *Processor) SPA() AdrRange     { return AdrRange{} }

func (p *Processor) GetCpu() *Cpu      { return p.cpu }
func (p *Processor) GetITlb() *Tlb     { return p.iTlb }
func (p *Processor) GetDTlb() *Tlb     { return p.dTlb }
func (p *Processor) GetICache() *Cache { return p.iCache }
func (p *Processor) GetDCache() *Cache { return p.dCache }

func (p *Processor) Reset() {
	p.cpu.Reset()
	p.iTlb.Reset()
	p.dTlb.Reset()
}

func (p *Processor) Step() error { return p.cpu.Step() }

func (p *Processor) Run() error { return p.cpu.Run() }

// A processor module has no HPA-served control/status registers of its own
// in this core (unlike a real machine's per-CPU IPI/ID registers); serving
// its HPA range is left to a future extension, not a bus error, since
// nothing currently routes traffic there.
func (p *Processor) ServeReadShared(Word, []byte, int)    {}
func (p *Processor) ServeReadPrivate(Word, []byte, int)   {}
func (p *Processor) ServeWriteBlock(Word, []byte, int)    {}
func (p *Processor) ServeReadUncached(Word, []byte, int)  {}
func (p *Processor) ServeWriteUncached(Word, []byte, int) {}

// The Observe* methods route a bus snoop to both of this processor's caches
// (§4.8). ObserveReadPrivate/ObserveReadUncached/ObserveWriteUncached, which
// invalidate the line, also clear the load-reserved flag if it covered the
// affected line (§5); ObserveReadShared only downgrades and leaves it set.
func (p *Processor) ObserveReadShared(pAdr Word, length int) {
	p.iCache.observeReadShared(pAdr)
	p.dCache.observeReadShared(pAdr)
}

func (p *Processor) ObserveReadPrivate(pAdr Word, length int) {
	p.iCache.observeReadPrivate(pAdr)
	p.dCache.observeReadPrivate(pAdr)
	p.invalidateReservation(pAdr)
}

func (p *Processor) ObserveReadUncached(pAdr Word, length int) {
	p.iCache.observeReadUncached(pAdr)
	p.dCache.observeReadUncached(pAdr)
	p.invalidateReservation(pAdr)
}

func (p *Processor) ObserveWriteUncached(pAdr Word, length int) {
	p.iCache.observeWriteUncached(pAdr)
	p.dCache.observeWriteUncached(pAdr)
	p.invalidateReservation(pAdr)
}

func (p *Processor) invalidateReservation(pAdr Word) {
	if p.cpu.resvValid && lineTag(p.cpu.resvAdr) == lineTag(pAdr) {
		p.cpu.resvValid = false
	}
}
