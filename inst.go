package x86

// Instruction is one machine instruction in typed form.
//
// The set of shapes is closed: Mov, Add, Sub, Push, Pop, Call, Lea, Ret, and
// Nop implement Instruction, and the encoder and decoder switch exhaustively
// over them. Adding an instruction means adding one shape here plus one
// branch in each switch; there is no table or virtual dispatch to update.
type Instruction interface {
	isInst()
}

// Mov copies Src to Dst. Supported forms: register/register,
// register/immediate, register/memory, and memory/register.
type Mov struct {
	Dst Arg
	Src Arg
}

// Add adds Src to Dst. Supported forms: register/register and
// register/immediate (32-bit immediate, sign-extended).
type Add struct {
	Dst Arg
	Src Arg
}

// Sub subtracts Src from Dst. Forms as for Add.
type Sub struct {
	Dst Arg
	Src Arg
}

// Push pushes Src onto the stack. Src is a native-width register or an
// 8- or 32-bit immediate.
type Push struct {
	Src Arg
}

// Pop pops the top of the stack into Dst, a native-width register.
type Pop struct {
	Dst Arg
}

// Call transfers control to Target: a native-width register, a memory
// reference, or a Label (which encodes as a placeholder displacement plus a
// Reloc).
type Call struct {
	Target Arg
}

// Lea loads an address into Dst without dereferencing it. The address is
// Disp relative to the instruction pointer when RIPRel is set (64-bit mode
// only), or the absolute address Disp otherwise.
type Lea struct {
	Dst    Reg
	Disp   int32
	RIPRel bool
}

// Ret returns from the current procedure.
type Ret struct{}

// Nop does nothing for one byte.
type Nop struct{}

func (Mov) isInst()  {}
func (Add) isInst()  {}
func (Sub) isInst()  {}
func (Push) isInst() {}
func (Pop) isInst()  {}
func (Call) isInst() {}
func (Lea) isInst()  {}
func (Ret) isInst()  {}
func (Nop) isInst()  {}
