package x86

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegPacking(t *testing.T) {
	require.Equal(t, uint8(0), RAX.Num())
	require.Equal(t, uint8(8), RAX.Width())
	require.Equal(t, uint8(4), EAX.Width())
	require.Equal(t, uint8(2), AX.Width())
	require.Equal(t, uint8(1), AL.Width())

	require.Equal(t, uint8(13), R13.Num())
	require.True(t, R13.IsExtended())
	require.False(t, RDI.IsExtended())

	require.Equal(t, uint8(REG_LEGACY), RSP.Family())
	require.Equal(t, uint8(REG_RIP), RIP.Family())
	require.Equal(t, uint8(REG_HIGHBYTE), AH.Family())

	// high-byte registers share encoding numbers 4-7 with SPB-DIB but are a
	// distinct family, so the pair never compares equal
	require.Equal(t, AH.Num(), SPB.Num())
	require.NotEqual(t, AH, SPB)
}

func TestRegFrom(t *testing.T) {
	for num := uint8(0); num < 16; num++ {
		r := regFrom(num, 8)
		require.Equal(t, num, r.Num())
		require.Equal(t, uint8(8), r.Width())
		require.Equal(t, uint8(REG_LEGACY), r.Family())
	}
	require.Equal(t, RAX, regFrom(0, 8))
	require.Equal(t, R13, regFrom(13, 8))
	require.Equal(t, ESP, regFrom(4, 4))
}

func TestRegValidate32(t *testing.T) {
	require.NoError(t, EAX.validate(Mode32))
	require.NoError(t, AL.validate(Mode32))
	require.ErrorIs(t, RAX.validate(Mode32), ErrUnsupportedArch)
	require.ErrorIs(t, R8D.validate(Mode32), ErrUnsupportedArch)
	require.ErrorIs(t, RIP.validate(Mode32), ErrUnsupportedArch)
	require.ErrorIs(t, SPB.validate(Mode32), ErrUnsupportedArch)

	// 64-bit mode admits everything
	require.NoError(t, RAX.validate(Mode64))
	require.NoError(t, SPB.validate(Mode64))
}

func TestMode(t *testing.T) {
	require.Equal(t, 32, Mode32.Bits())
	require.Equal(t, 64, Mode64.Bits())
	require.Equal(t, "x86", Mode32.String())
	require.Equal(t, "x86-64", Mode64.String())
}
