package twin64

// LineState is a cache line's coherence state (§3.6).
type LineState int

const (
	Invalid LineState = iota
	Shared
	ExclusiveModified
)

const cacheLineSize = 64

// cacheLine is one physical-address-indexed storage line.
type cacheLine struct {
	tag   Word
	state LineState
	data  [cacheLineSize]byte
	valid bool
}

// Cache is a direct-mapped, physical-address-indexed line store (§4.5,
// §3.6). Replacement policy beyond direct-mapped eviction is out of scope
// (§1); this satisfies the read/write/flush/purge contract the rest of the
// core relies on.
type Cache struct {
	lines []cacheLine
	owner int    // module number issuing bus-ops on this cache's behalf
	sys   *System
}

// NewCache returns a Cache of nLines lines, wired to issue bus-ops on
// behalf of owner through sys.
func NewCache(nLines int, owner int, sys *System) *Cache {
	return &Cache{lines: make([]cacheLine, nLines), owner: owner, sys: sys}
}

func (c *Cache) index(pAdr Word) int {
	lineAdr := uint64(pAdr) / cacheLineSize
	return int(lineAdr % uint64(len(c.lines)))
}

func lineTag(pAdr Word) Word { return Word(uint64(pAdr) / cacheLineSize * cacheLineSize) }

// Read fills dst[0:len] from pAdr. uncached bypasses cache state entirely
// and issues an uncached bus read (§4.5).
func (c *Cache) Read(pAdr Word, dst []byte, length int, uncached bool) {
	if uncached {
		c.sys.ReadUncached(c.owner, pAdr, dst, length)
		return
	}
	l := &c.lines[c.index(pAdr)]
	tag := lineTag(pAdr)
	if !l.valid || l.tag != tag || l.state == Invalid {
		c.sys.ReadSharedBlock(c.owner, tag, l.data[:], cacheLineSize)
		l.tag = tag
		l.state = Shared
		l.valid = true
	}
	off := int(uint64(pAdr) - uint64(tag))
	copy(dst[:length], l.data[off:off+length])
}

// Write stores src[0:len] to pAdr, acquiring exclusive ownership of the
// line first unless uncached.
func (c *Cache) Write(pAdr Word, src []byte, length int, uncached bool) {
	if uncached {
		c.sys.WriteUncached(c.owner, pAdr, src, length)
		return
	}
	l := &c.lines[c.index(pAdr)]
	tag := lineTag(pAdr)
	if !l.valid || l.tag != tag || l.state != ExclusiveModified {
		c.sys.ReadPrivateBlock(c.owner, tag, l.data[:], cacheLineSize)
		l.tag = tag
		l.valid = true
	}
	off := int(uint64(pAdr) - uint64(tag))
	copy(l.data[off:off+length], src[:length])
	l.state = ExclusiveModified
}

// Flush writes back a modified line and downgrades it to Shared; a clean
// line is a no-op (§8.2).
func (c *Cache) Flush(pAdr Word) {
	l := &c.lines[c.index(pAdr)]
	tag := lineTag(pAdr)
	if !l.valid || l.tag != tag {
		return
	}
	if l.state == ExclusiveModified {
		c.sys.WriteBlock(c.owner, tag, l.data[:], cacheLineSize)
		l.state = Shared
	}
}

// Purge drops the line without writeback (§8.2: never emits data);
// subsequent reads miss.
func (c *Cache) Purge(pAdr Word) {
	l := &c.lines[c.index(pAdr)]
	tag := lineTag(pAdr)
	if l.valid && l.tag == tag {
		l.valid = false
		l.state = Invalid
	}
}

// observeReadShared implements a cache's reaction to another module's
// readSharedBlock: if holding Exclusive-Modified, write back and downgrade.
func (c *Cache) observeReadShared(pAdr Word) {
	l := &c.lines[c.index(pAdr)]
	tag := lineTag(pAdr)
	if l.valid && l.tag == tag && l.state == ExclusiveModified {
		c.sys.WriteBlock(c.owner, tag, l.data[:], cacheLineSize)
		l.state = Shared
	}
}

// observeReadPrivate implements reaction to another module's
// readPrivateBlock: writeback+purge if Exclusive-Modified, else purge if
// Shared.
func (c *Cache) observeReadPrivate(pAdr Word) {
	l := &c.lines[c.index(pAdr)]
	tag := lineTag(pAdr)
	if !l.valid || l.tag != tag {
		return
	}
	if l.state == ExclusiveModified {
		c.sys.WriteBlock(c.owner, tag, l.data[:], cacheLineSize)
	}
	l.valid = false
	l.state = Invalid
}

// observeReadUncached and observeWriteUncached both flush+purge any cached
// copy of pAdr, per §4.8's bus-op table and §8.2: uncached traffic of
// either direction must never leave a stale cached copy behind elsewhere.
func (c *Cache) observeReadUncached(pAdr Word) {
	c.Flush(pAdr)
	c.Purge(pAdr)
}

func (c *Cache) observeWriteUncached(pAdr Word) {
	c.Flush(pAdr)
	c.Purge(pAdr)
}
