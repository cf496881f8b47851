package disasm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"

	"github.com/asmkit/x86"
)

func assemble(t *testing.T, mode x86.Mode, insts ...x86.Instruction) []byte {
	t.Helper()
	asm := x86.NewAssembler(mode, make([]byte, 64))
	for _, inst := range insts {
		require.NoError(t, asm.Encode(inst))
	}
	return asm.Code()
}

func TestText(t *testing.T) {
	code := assemble(t, x86.Mode64,
		x86.Mov{Dst: x86.RAX, Src: x86.R13},
		x86.Add{Dst: x86.RAX, Src: x86.RBX},
		x86.Mov{Dst: x86.RAX, Src: x86.Mem{Base: x86.RSP, Disp: 8}},
		x86.Mov{Dst: x86.RAX, Src: x86.Imm{Value: 0x7FFFFFFFFFFFFFFF, Width: 8}},
		x86.Lea{Dst: x86.RDX, Disp: 0x10, RIPRel: true},
		x86.Push{Src: x86.RCX},
		x86.Nop{},
		x86.Ret{},
	)

	text, err := Text(code, x86.Mode64)
	require.NoError(t, err)
	require.Equal(t, []string{
		"mov rax, r13",
		"add rax, rbx",
		"mov rax, qword ptr [rsp+0x8]",
		"mov rax, 0x7fffffffffffffff",
		"lea rdx, [rip+0x10]",
		"push rcx",
		"nop",
		"ret",
	}, text)
}

func TestTextStopsAtBadBytes(t *testing.T) {
	text, err := Text([]byte{0xC3, 0x0F}, x86.Mode64)
	require.Error(t, err)
	require.Equal(t, []string{"ret"}, text)
}

func TestWalk(t *testing.T) {
	code := assemble(t, x86.Mode64,
		x86.Push{Src: x86.RAX},
		x86.Pop{Dst: x86.RAX},
		x86.Ret{},
	)

	var ops []x86asm.Op
	err := Walk(code, x86.Mode64, func(inst x86asm.Inst) bool {
		ops = append(ops, inst.Op)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []x86asm.Op{x86asm.PUSH, x86asm.POP, x86asm.RET}, ops)

	// early stop
	n := 0
	err = Walk(code, x86.Mode64, func(x86asm.Inst) bool {
		n++
		return false
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
