package twin64

// dataRead implements the D-TLB + D-cache path shared by every MEM-group
// and memory-operand ALU-group instruction (§4.6.1's fetch sequence,
// mirrored for data per §4.6.3's MEM-group notes).
func (c *Cpu) dataRead(vAdr Word, length int, write bool) ([]byte, *Trap) {
	if !isAlignedDataAdr(vAdr, length) {
		return nil, newTrap(DataAlignment, vAdr, 0)
	}

	buf := make([]byte, length)
	if c.PhysRange.contains(vAdr) {
		if !c.Psr.X() {
			return nil, newTrap(PrivOperation, vAdr, 0)
		}
		c.DCache.Read(vAdr, buf, length, false)
		return buf, nil
	}

	e := c.DTlb.Lookup(vAdr)
	if e == nil {
		return nil, newTrap(DataTlbMiss, vAdr, 0)
	}
	if !c.checkRegion(e.Region) {
		return nil, newTrap(DataProtection, vAdr, 0)
	}
	if write && e.Type != PageReadWrite {
		return nil, newTrap(DataProtection, vAdr, 0)
	}
	if !write && e.Type == PageExecute {
		return nil, newTrap(DataProtection, vAdr, 0)
	}
	pAdr := e.Translate(vAdr)
	c.DCache.Read(pAdr, buf, length, e.Uncached)
	return buf, nil
}

func (c *Cpu) dataWrite(vAdr Word, length int, data []byte) *Trap {
	if !isAlignedDataAdr(vAdr, length) {
		return newTrap(DataAlignment, vAdr, 0)
	}

	if c.PhysRange.contains(vAdr) {
		if !c.Psr.X() {
			return newTrap(PrivOperation, vAdr, 0)
		}
		c.DCache.Write(vAdr, data, length, false)
		return nil
	}

	e := c.DTlb.Lookup(vAdr)
	if e == nil {
		return newTrap(DataTlbMiss, vAdr, 0)
	}
	if !c.checkRegion(e.Region) {
		return newTrap(DataProtection, vAdr, 0)
	}
	if e.Type != PageReadWrite {
		return newTrap(DataProtection, vAdr, 0)
	}
	pAdr := e.Translate(vAdr)
	c.DCache.Write(pAdr, data, length, e.Uncached)
	return nil
}

// loadValue reads length bytes at vAdr and returns them as a Word, signed-
// or zero-extended per the signed flag.
func (c *Cpu) loadValue(vAdr Word, length int, signed bool) (Word, *Trap) {
	buf, tr := c.dataRead(vAdr, length, false)
	if tr != nil {
		return 0, tr
	}
	var u uint64
	switch length {
	case 1:
		u = uint64(buf[0])
	case 2:
		u = uint64(beLoad16(buf))
	case 4:
		u = uint64(beLoad32(buf))
	case 8:
		u = beLoad64(buf)
	}
	if signed && length < 8 {
		shift := uint(64 - 8*length)
		return Word(int64(u<<shift) >> shift), nil
	}
	return Word(u), nil
}

// storeValue writes the low length bytes of v to vAdr, big-endian.
func (c *Cpu) storeValue(vAdr Word, length int, v Word) *Trap {
	buf := make([]byte, length)
	switch length {
	case 1:
		buf[0] = byte(v)
	case 2:
		beStore16(buf, uint16(v))
	case 4:
		beStore32(buf, uint32(v))
	case 8:
		beStore64(buf, uint64(v))
	}
	return c.dataWrite(vAdr, length, buf)
}

// translate resolves a virtual address to a physical page address without
// performing any access, for LPA/PRB (§4.6.3 SYS-group).
func (c *Cpu) translate(vAdr Word) (Word, bool) {
	if c.PhysRange.contains(vAdr) {
		return vAdr, true
	}
	e := c.DTlb.Lookup(vAdr)
	if e == nil {
		return 0, false
	}
	return e.Translate(vAdr), true
}
