package x86

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSequence(t *testing.T) {
	code := []byte{
		0x50, // push rax
		0x48, 0xB8, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // mov rax, 1
		0x48, 0x01, 0xD8, // add rax, rbx
		0xC3, // ret
	}
	insts, err := Decode(code, Mode64)
	require.NoError(t, err)
	require.Equal(t, []Instruction{
		Push{Src: RAX},
		Mov{Dst: RAX, Src: Imm{Value: 1, Width: 8}},
		Add{Dst: RAX, Src: RBX},
		Ret{},
	}, insts)
}

func TestDecoderNext(t *testing.T) {
	d := NewDecoder(Mode64, []byte{0x90, 0x41, 0x50, 0xC3})
	require.Equal(t, 0, d.Pos())

	inst, err := d.Next()
	require.NoError(t, err)
	require.Equal(t, Nop{}, inst)
	require.Equal(t, 1, d.Pos())

	inst, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, Push{Src: R8}, inst)
	require.Equal(t, 3, d.Pos())

	inst, err = d.Next()
	require.NoError(t, err)
	require.Equal(t, Ret{}, inst)
	require.Equal(t, 4, d.Pos())

	_, err = d.Next()
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

// A call displacement only holds the placeholder, so the label name does not
// survive the trip through bytes.
func TestDecodeCallPlaceholder(t *testing.T) {
	insts, err := Decode([]byte{0xE8, 0x00, 0x00, 0x00, 0x00}, Mode64)
	require.NoError(t, err)
	require.Equal(t, []Instruction{Call{Target: Label("")}}, insts)
}

func TestDecode32(t *testing.T) {
	code := []byte{
		0x8B, 0x05, 0x40, 0x00, 0x00, 0x00, // mov eax, [0x40]
		0x01, 0xD1, // add ecx, edx
		0xC3, // ret
	}
	insts, err := Decode(code, Mode32)
	require.NoError(t, err)
	require.Equal(t, []Instruction{
		Mov{Dst: EAX, Src: Mem{Disp: 0x40}},
		Add{Dst: ECX, Src: EDX},
		Ret{},
	}, insts)
}

// In 32-bit mode 0x40-0x4F are the short INC/DEC forms, not REX prefixes;
// they are outside the implemented set and must not be eaten as prefixes.
func TestDecode32NoREX(t *testing.T) {
	_, err := Decode([]byte{0x48, 0xC3}, Mode32)
	require.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"empty", nil},
		{"bare rex", []byte{0x48}},
		{"mid imm32", []byte{0xB8, 0x01, 0x00}},
		{"mid imm64", []byte{0x48, 0xB8, 0x01, 0x02, 0x03, 0x04}},
		{"missing modrm", []byte{0x89}},
		{"missing sib", []byte{0x48, 0x8B, 0x44}},
		{"mid displacement", []byte{0x48, 0x8B, 0x80, 0x00, 0x01}},
		{"mid call target", []byte{0xE8, 0x00}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder(Mode64, tc.code)
			_, err := d.Next()
			require.ErrorIs(t, err, ErrUnexpectedEOF)
		})
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"two-byte escape", []byte{0x0F, 0x05}},
		{"int3", []byte{0xCC}},
		{"non-canonical register mov", []byte{0x48, 0x8B, 0xD8}},
		{"memory-destination add", []byte{0x48, 0x01, 0x18}},
		{"cmp extension", []byte{0x48, 0x81, 0xF8, 0x01, 0x00, 0x00, 0x00}},
		{"jmp extension", []byte{0xFF, 0xE0}},
		{"register lea", []byte{0x48, 0x8D, 0xC0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.code, Mode64)
			require.ErrorIs(t, err, ErrUnknownOpcode)
		})
	}
}

// The reported offset names the instruction that failed, not the start of
// the buffer.
func TestDecodeErrorOffset(t *testing.T) {
	d := NewDecoder(Mode64, []byte{0x90, 0x0F})
	_, err := d.Next()
	require.NoError(t, err)
	_, err = d.Next()
	require.ErrorIs(t, err, ErrUnknownOpcode)
	require.Contains(t, err.Error(), "offset 1")
}
