//go:build gc

package x86

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// makeFunc maps code into executable memory and returns it as a callable
// two-argument function. With the register-based calling convention the
// integer arguments arrive in RAX and RBX and the result is returned in RAX.
func makeFunc(t *testing.T, code []byte) func(a, b int) int {
	t.Helper()
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Munmap(mem) })

	copy(mem, code)
	require.NoError(t, unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC))

	// a func value points at a funcval whose first word is the entry address
	entry := unsafe.Pointer(&mem[0])
	fv := &entry
	return *(*func(a, b int) int)(unsafe.Pointer(&fv))
}

func TestExecuteSum(t *testing.T) {
	code, _, _, err := NewProgram(Mode64).
		Add(Add{Dst: RAX, Src: RBX}).
		Ret().
		Compile()
	require.NoError(t, err)

	sum := makeFunc(t, code)
	require.Equal(t, 7, sum(3, 4))
	require.Equal(t, 0, sum(-5, 5))
	require.Equal(t, -3, sum(-1, -2))
}

func TestExecuteStackFrame(t *testing.T) {
	// spill the first argument, double it in place via the second, reload
	code, _, _, err := NewProgram(Mode64).
		SubImm(RSP, 16).
		Add(Mov{Dst: Mem{Base: RSP, Disp: 8}, Src: RAX}).
		Add(Add{Dst: RAX, Src: RBX}).
		Add(Mov{Dst: RCX, Src: Mem{Base: RSP, Disp: 8}}).
		Add(Add{Dst: RAX, Src: RCX}).
		AddImm(RSP, 16).
		Ret().
		Compile()
	require.NoError(t, err)

	f := makeFunc(t, code)
	// f(a, b) = 2a + b
	require.Equal(t, 25, f(10, 5))
	require.Equal(t, 1, f(0, 1))
}
