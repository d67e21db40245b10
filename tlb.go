package twin64

// PageType enumerates the TLB entry access classes of §3.5.
type PageType int

const (
	PageExecute PageType = iota
	PageReadOnly
	PageReadWrite
	PageProbeOnly
)

// TlbEntry is one translation: virtual page number and region ID map to a
// physical page address plus the access-rights/flag bits packed by
// Insert's info argument (L locked at bits [57:56], U uncached at [59:58],
// per §4.4).
type TlbEntry struct {
	VPN      uint64
	Region   uint32
	PPA      Word
	PageSize Word
	Type     PageType
	Rights   uint32
	Uncached bool
	Locked   bool
	Valid    bool
}

// Tlb is a small direct-mapped translation cache. Replacement policy is
// explicitly out of scope (§1); this is a stand-in sized for the interface
// contract of §4.4, not a performance model.
type Tlb struct {
	entries []TlbEntry
}

// NewTlb returns a Tlb with the given number of entries.
func NewTlb(size int) *Tlb {
	return &Tlb{entries: make([]TlbEntry, size)}
}

func (t *Tlb) index(vpn uint64, region uint32) int {
	return int((vpn ^ uint64(region)) % uint64(len(t.entries)))
}

// Lookup returns the entry covering vAdr, or nil on a miss.
func (t *Tlb) Lookup(vAdr Word) *TlbEntry {
	vpn := pageNumber(vAdr)
	region := regionID(vAdr)
	i := t.index(vpn, region)
	e := &t.entries[i]
	if e.Valid && e.VPN == vpn && e.Region == region {
		return e
	}
	return nil
}

// Insert packs access rights, flags, and physical page into a new entry.
// The info argument carries the flag bits of §4.4: [57:56] = L (locked),
// [59:58] = U (uncached); only the low bit of each pair (56, 58) is read.
func (t *Tlb) Insert(vAdr Word, ppa Word, region uint32, pageSize Word, typ PageType, rights uint32, info uint64) bool {
	vpn := pageNumber(vAdr)
	i := t.index(vpn, region)
	t.entries[i] = TlbEntry{
		VPN:      vpn,
		Region:   region,
		PPA:      ppa,
		PageSize: pageSize,
		Type:     typ,
		Rights:   rights,
		Uncached: info&(1<<58) != 0,
		Locked:   info&(1<<56) != 0,
		Valid:    true,
	}
	return true
}

// Purge invalidates the entry matching vAdr, if any.
func (t *Tlb) Purge(vAdr Word) {
	e := t.Lookup(vAdr)
	if e != nil {
		e.Valid = false
	}
}

// Reset invalidates every entry.
func (t *Tlb) Reset() {
	for i := range t.entries {
		t.entries[i].Valid = false
	}
}

// Translate maps a virtual page to its physical page address, applying the
// physical page offset so the result is a full physical address.
func (e *TlbEntry) Translate(vAdr Word) Word {
	off := Word(pageOffset(vAdr))
	return Word(uint64(e.PPA) + uint64(off))
}
