package twin64

import (
	"testing"

	"github.com/matryer/is"
)

// TestCacheReadFillsLineFromRam covers §8.2: a clean miss fetches the whole
// cache line from the owning module via readSharedBlock.
func TestCacheReadFillsLineFromRam(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, 4096)
	is.NoErr(sys.AddModule(ram))
	buf := make([]byte, 8)
	beStore64(buf, 0xCAFEBABEDEADBEEF)
	ram.ServeWriteBlock(128, buf, 8)

	c := NewCache(4, 1, sys)
	var dst [8]byte
	c.Read(128, dst[:], 8, false)
	is.Equal(beLoad64(dst[:]), uint64(0xCAFEBABEDEADBEEF))
}

// TestCacheWriteThenFlushWritesBack covers §8.2: a dirty line is written
// back to the owning module exactly on Flush, never before.
func TestCacheWriteThenFlushWritesBack(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, 4096)
	is.NoErr(sys.AddModule(ram))
	c := NewCache(4, 1, sys)

	var v [8]byte
	beStore64(v[:], 0x1)
	c.Write(256, v[:], 8, false)

	var before [8]byte
	ram.ServeReadShared(256, before[:], 8)
	is.Equal(beLoad64(before[:]), uint64(0)) // not written back yet

	c.Flush(256)
	var after [8]byte
	ram.ServeReadShared(256, after[:], 8)
	is.Equal(beLoad64(after[:]), uint64(0x1))
}

// TestCachePurgeNeverWritesBack covers §8.2: purging a dirty line drops it
// silently, it must never reach the backing module.
func TestCachePurgeNeverWritesBack(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, 4096)
	is.NoErr(sys.AddModule(ram))
	c := NewCache(4, 1, sys)

	var v [8]byte
	beStore64(v[:], 0xFF)
	c.Write(384, v[:], 8, false)
	c.Purge(384)

	var after [8]byte
	ram.ServeReadShared(384, after[:], 8)
	is.Equal(beLoad64(after[:]), uint64(0))
}

// TestObserveReadPrivateEvictsDirtyLineWithWriteback covers the two-cache
// coherence protocol of §3.6/§4.8: when a second owner issues
// readPrivateBlock over a line another cache holds Exclusive-Modified, the
// holder must write back before losing the line.
func TestObserveReadPrivateEvictsDirtyLineWithWriteback(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, 4096)
	is.NoErr(sys.AddModule(ram))

	ownerA := NewCache(4, 1, sys)
	ownerB := NewCache(4, 2, sys)

	var v [8]byte
	beStore64(v[:], 0x42)
	ownerA.Write(512, v[:], 8, false)

	// ownerB's Write issues ReadPrivateBlock on sys. Neither cache is a
	// registered module, so sys does not reach ownerA; the test delivers
	// the snoop to ownerA by hand.
	var dummy [8]byte
	ownerB.Write(512, dummy[:], 8, false)
	ownerA.observeReadPrivate(512)

	var after [8]byte
	ram.ServeReadShared(512, after[:], 8)
	is.Equal(beLoad64(after[:]), uint64(0x42))
}

// TestUncachedAccessBypassesLineState covers §8.2: uncached reads/writes
// never populate or consult cache line state.
func TestUncachedAccessBypassesLineState(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, 4096)
	is.NoErr(sys.AddModule(ram))
	c := NewCache(4, 1, sys)

	var v [8]byte
	beStore64(v[:], 0x99)
	c.Write(640, v[:], 8, true) // uncached write bypasses the line entirely

	l := &c.lines[c.index(640)]
	is.True(!l.valid)
}

// TestSystemLookupByAdrFindsOwningModule covers §4.8's address routing
// contract across HPA and SPA ranges.
func TestSystemLookupByAdrFindsOwningModule(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	ram := NewRam(0, 0, 4096)
	con := NewConsole(1, 1<<20)
	is.NoErr(sys.AddModule(ram))
	is.NoErr(sys.AddModule(con))

	is.Equal(sys.LookupByAdr(100).ModuleNumber(), 0)
	is.Equal(sys.LookupByAdr(1<<20).ModuleNumber(), 1)
	is.True(sys.LookupByAdr(1<<30) == nil)
}

func TestSystemRejectsDuplicateModuleNumber(t *testing.T) {
	is := is.New(t)
	sys := NewSystem()
	is.NoErr(sys.AddModule(NewRam(0, 0, 1024)))
	err := sys.AddModule(NewRam(0, 2048, 1024))
	is.True(err != nil)
}
