package twin64

import (
	"fmt"
	"sort"
)

// ModuleKind distinguishes the three module flavors of §3.7.
type ModuleKind int

const (
	KindProcessor ModuleKind = iota
	KindMemory
	KindIO
)

// AdrRange is a half-open physical address range [Lo, Hi).
type AdrRange struct {
	Lo, Hi Word
}

func (r AdrRange) contains(a Word) bool { return a >= r.Lo && a < r.Hi }
func (r AdrRange) empty() bool          { return r.Lo >= r.Hi }

// BusTarget is the bus-op vtable of §3.7/§4.8 that every module implements
// so it can act as the target or an observer of a broadcast snoop.
type BusTarget interface {
	ModuleNumber() int
	Kind() ModuleKind
	HPA() AdrRange
	SPA() AdrRange

	// Target-side handlers: this module owns pAdr.
	ServeReadShared(pAdr Word, dst []byte, length int)
	ServeReadPrivate(pAdr Word, dst []byte, length int)
	ServeWriteBlock(pAdr Word, src []byte, length int)
	ServeReadUncached(pAdr Word, dst []byte, length int)
	ServeWriteUncached(pAdr Word, src []byte, length int)

	// Observer-side handlers: another module issued the op; pAdr may or
	// may not be cached locally.
	ObserveReadShared(pAdr Word, length int)
	ObserveReadPrivate(pAdr Word, length int)
	ObserveReadUncached(pAdr Word, length int)
	ObserveWriteUncached(pAdr Word, length int)
}

// System owns the module map and the address-range index (§3.8) and
// implements the bus broadcaster of §4.11.
type System struct {
	modules map[int]BusTarget
	order   []int // module numbers in ascending order, rebuilt on AddModule
	ranges  []rangeEntry
}

type rangeEntry struct {
	r    AdrRange
	mnum int
}

const MaxModules = 64

// NewSystem returns an empty system.
func NewSystem() *System {
	return &System{modules: make(map[int]BusTarget)}
}

// AddModule registers m on the bus. Module numbers must be unique and
// bounded by MaxModules (§3.8).
func (s *System) AddModule(m BusTarget) error {
	n := m.ModuleNumber()
	if n < 0 || n >= MaxModules {
		return fmt.Errorf("twin64: module number %d out of range [0,%d)", n, MaxModules)
	}
	if _, dup := s.modules[n]; dup {
		return fmt.Errorf("twin64: duplicate module number %d", n)
	}
	s.modules[n] = m
	if !m.HPA().empty() {
		s.ranges = append(s.ranges, rangeEntry{m.HPA(), n})
	}
	if !m.SPA().empty() {
		s.ranges = append(s.ranges, rangeEntry{m.SPA(), n})
	}
	sort.Slice(s.ranges, func(i, j int) bool { return s.ranges[i].r.Lo < s.ranges[j].r.Lo })

	s.order = s.order[:0]
	for k := range s.modules {
		s.order = append(s.order, k)
	}
	sort.Ints(s.order)
	return nil
}

// LookupByAdr returns the module owning pAdr (by HPA or SPA range), or nil.
// The range table is kept sorted by low bound so this is an O(log n)
// binary search, per §4.8's address routing contract.
func (s *System) LookupByAdr(pAdr Word) BusTarget {
	lo, hi := 0, len(s.ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.ranges[mid].r.Hi <= pAdr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.ranges) && s.ranges[lo].r.contains(pAdr) {
		return s.modules[s.ranges[lo].mnum]
	}
	return nil
}

// Module returns the module with the given number, or nil.
func (s *System) Module(n int) BusTarget { return s.modules[n] }

// Reset invalidates no bus state by itself; module.go carries no per-step
// mutable bus state (§5: the module map and range index only change in
// AddModule, never during step()).
func (s *System) Reset() {}

// broadcastExcept walks every module but issuer, in module-number order
// (§5's defined delivery order), calling fn on each.
func (s *System) broadcastExcept(issuer int, fn func(BusTarget)) {
	for _, n := range s.order {
		if n == issuer {
			continue
		}
		fn(s.modules[n])
	}
}

// ReadSharedBlock implements the readSharedBlock bus-op of §4.8: observers
// holding Exclusive-Modified write back and downgrade to Shared, then the
// owning module serves the data.
func (s *System) ReadSharedBlock(issuer int, pAdr Word, dst []byte, length int) {
	s.broadcastExcept(issuer, func(m BusTarget) { m.ObserveReadShared(pAdr, length) })
	if owner := s.LookupByAdr(pAdr); owner != nil {
		owner.ServeReadShared(pAdr, dst, length)
	}
}

// ReadPrivateBlock implements readPrivateBlock: observers purge (after
// writeback if Exclusive-Modified).
func (s *System) ReadPrivateBlock(issuer int, pAdr Word, dst []byte, length int) {
	s.broadcastExcept(issuer, func(m BusTarget) { m.ObserveReadPrivate(pAdr, length) })
	if owner := s.LookupByAdr(pAdr); owner != nil {
		owner.ServeReadPrivate(pAdr, dst, length)
	}
}

// WriteBlock implements writeBlock: by invariant no other module holds the
// line, so there is nothing for observers to do.
func (s *System) WriteBlock(issuer int, pAdr Word, src []byte, length int) {
	if owner := s.LookupByAdr(pAdr); owner != nil {
		owner.ServeWriteBlock(pAdr, src, length)
	}
}

// ReadUncached implements readUncached: observers flush+purge any cached
// copy before the owner serves the bypass read.
func (s *System) ReadUncached(issuer int, pAdr Word, dst []byte, length int) {
	s.broadcastExcept(issuer, func(m BusTarget) { m.ObserveReadUncached(pAdr, length) })
	if owner := s.LookupByAdr(pAdr); owner != nil {
		owner.ServeReadUncached(pAdr, dst, length)
	}
}

// WriteUncached implements writeUncached: observers flush+purge any cached
// copy of pAdr before the owner accepts the bypass write.
func (s *System) WriteUncached(issuer int, pAdr Word, src []byte, length int) {
	s.broadcastExcept(issuer, func(m BusTarget) { m.ObserveWriteUncached(pAdr, length) })
	if owner := s.LookupByAdr(pAdr); owner != nil {
		owner.ServeWriteUncached(pAdr, src, length)
	}
}
