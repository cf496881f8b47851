package x86

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramCompile(t *testing.T) {
	p := NewProgram(Mode64).
		MarkLabel("start").
		MovImm(RAX, 60).
		CallLabel("exit").
		Ret().
		MarkLabel("end")

	code, relocs, labels, err := p.Compile()
	require.NoError(t, err)

	// mov rax, 60 is 10 bytes, the call is 5, ret is 1
	require.Len(t, code, 16)
	require.Equal(t, []byte{0x48, 0xB8, 0x3C, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, code[:10])
	require.Equal(t, byte(0xE8), code[10])
	require.Equal(t, byte(0xC3), code[15])

	require.Equal(t, []Reloc{{Offset: 11, Label: "exit"}}, relocs)
	require.Equal(t, map[string]uint32{"start": 0, "end": 16}, labels)
}

func TestProgramPrologue(t *testing.T) {
	code, relocs, _, err := NewProgram(Mode64).
		PushReg(RBP).
		Mov(RBP, RSP).
		SubImm(RSP, 32).
		AddImm(RSP, 32).
		PopReg(RBP).
		Ret().
		Compile()
	require.NoError(t, err)
	require.Empty(t, relocs)
	require.Equal(t, []byte{
		0x55,             // push rbp
		0x48, 0x89, 0xE5, // mov rbp, rsp
		0x48, 0x81, 0xEC, 0x20, 0x00, 0x00, 0x00, // sub rsp, 32
		0x48, 0x81, 0xC4, 0x20, 0x00, 0x00, 0x00, // add rsp, 32
		0x5D, // pop rbp
		0xC3, // ret
	}, code)
}

func TestProgramLabelBetweenCalls(t *testing.T) {
	p := NewProgram(Mode64)
	p.CallLabel("a")
	p.MarkLabel("mid")
	p.CallLabel("a") // the same label may be targeted any number of times
	p.Ret()

	code, relocs, labels, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, code, 11)
	require.Equal(t, []Reloc{{Offset: 1, Label: "a"}, {Offset: 6, Label: "a"}}, relocs)
	require.Equal(t, map[string]uint32{"mid": 5}, labels)
}

func TestProgramData(t *testing.T) {
	p := NewProgram(Mode64).
		Data("rodata", []byte("hello")).
		DataAligned("bss", make([]byte, 8), 16).
		Ret()

	require.Equal(t, []DataSection{
		{Name: "rodata", Data: []byte("hello")},
		{Name: "bss", Data: make([]byte, 8), Align: 16},
	}, p.Sections())

	// sections never leak into the code stream
	code, _, _, err := p.Compile()
	require.NoError(t, err)
	require.Equal(t, []byte{0xC3}, code)
}

func TestProgramCompileError(t *testing.T) {
	_, _, _, err := NewProgram(Mode32).
		Nop().
		PushReg(R8).
		Compile()
	require.ErrorIs(t, err, ErrUnsupportedArch)
}
