package twin64

import (
	"testing"

	"github.com/matryer/is"
)

func TestExtractField64(t *testing.T) {
	is := is.New(t)
	is.Equal(extractField64(0xFF00, 8, 8), uint64(0xFF))
	is.Equal(extractField64(0x1, 0, 1), uint64(1))
	is.Equal(extractField64(0xDEADBEEF, 32, 1), uint64(0)) // bit 32 of a 32 bit value is clear
}

func TestExtractSignedField64(t *testing.T) {
	is := is.New(t)
	is.Equal(extractSignedField64(0x1F, 0, 5), int64(-1))
	is.Equal(extractSignedField64(0x0F, 0, 5), int64(15))
}

func TestDepositField(t *testing.T) {
	is := is.New(t)
	is.Equal(depositField(0, 4, 4, 0xF), uint64(0xF0))
	is.Equal(depositField(0xFFFF, 4, 4, 0), uint64(0xFF0F))
}

func TestShiftRight128(t *testing.T) {
	is := is.New(t)
	is.Equal(shiftRight128(0, 0xFF, 4), uint64(0xF))
	is.Equal(shiftRight128(1, 0, 64), uint64(0))
}

func TestWillAddOverflow(t *testing.T) {
	is := is.New(t)
	is.True(willAddOverflow(minInt64, -1))
	is.True(!willAddOverflow(1, 1))
}

func TestWillSubOverflow(t *testing.T) {
	is := is.New(t)
	is.True(willSubOverflow(minInt64, 1))
	is.True(!willSubOverflow(10, 3))
}

func TestWillMultOverflow(t *testing.T) {
	is := is.New(t)
	is.True(willMultOverflow(minInt64, -1))
	is.True(willMultOverflow(1<<40, 1<<40))
	is.True(!willMultOverflow(3, 7))
	is.True(!willMultOverflow(0, minInt64))
}

func TestWillDivOverflow(t *testing.T) {
	is := is.New(t)
	is.True(willDivOverflow(10, 0))
	is.True(willDivOverflow(minInt64, -1))
	is.True(!willDivOverflow(10, 3))
}

func TestWillShiftLeftOverflow(t *testing.T) {
	is := is.New(t)
	is.True(willShiftLeftOverflow(1, 63))
	is.True(!willShiftLeftOverflow(1, 2))
}

func TestBigEndianRoundTrip(t *testing.T) {
	is := is.New(t)
	var buf [8]byte
	beStore64(buf[:], 0x0102030405060708)
	is.Equal(beLoad64(buf[:]), uint64(0x0102030405060708))

	var b4 [4]byte
	beStore32(b4[:], 0xAABBCCDD)
	is.Equal(beLoad32(b4[:]), uint32(0xAABBCCDD))
}
