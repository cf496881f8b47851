package x86

// Arg represents an instruction operand.
//
// Reg, Imm, Mem, and Label implement Arg. The set is closed: the encoder and
// decoder switch exhaustively over these four kinds.
type Arg interface {
	isArg()
	width() uint8
}

// Imm is an immediate operand: a signed value with a declared width of
// 1, 2, 4, or 8 bytes. The value must fit the declared width in
// two's-complement, which is checked before any byte is emitted.
//
// Imm implements Arg.
type Imm struct {
	Value int64
	Width uint8
}

func (i Imm) isArg()       {}
func (i Imm) width() uint8 { return i.Width }

// Check if the value fits the declared width in two's-complement.
func (i Imm) fits() bool {
	bits := uint(i.Width) * 8
	if bits >= 64 {
		return true
	}
	min := int64(-1) << (bits - 1)
	max := int64(1)<<(bits-1) - 1
	return i.Value >= min && i.Value <= max
}

// Mem is a memory-reference operand. Base and Index are optional (the zero
// Reg means absent); Base may be RIP for RIP-relative addressing in 64-bit
// mode. Scale applies to Index and must be 1, 2, 4, or 8; zero means 1.
// Width optionally declares the operand size in bytes and, when set, must
// agree with the register operand of the instruction.
//
// Mem implements Arg.
type Mem struct {
	Disp  int32
	Base  Reg
	Index Reg
	Scale uint8
	Width uint8
}

func (m Mem) isArg()       {}
func (m Mem) width() uint8 { return m.Width }

// Label is a symbolic operand naming an address that is not yet known. It is
// only legal as a call target; encoding one emits a 4-byte placeholder and
// records a Reloc for the external linking stage.
//
// Label implements Arg.
type Label string

func (l Label) isArg()       {}
func (l Label) width() uint8 { return 0 }
