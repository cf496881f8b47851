package x86

import (
	"github.com/pkg/errors"
)

// Errors reported while validating and encoding instructions. Callers match
// them with errors.Is; the wrapped message carries the specific operands or
// offset involved.
var (
	// ErrInvalidOperandSize is returned when two operands of one instruction
	// declare different sizes.
	ErrInvalidOperandSize = errors.New("x86: operand size mismatch")

	// ErrUnsupportedArch is returned when an instruction references a
	// register or addressing form that does not exist under the active mode.
	ErrUnsupportedArch = errors.New("x86: not encodable in this mode")

	// ErrImmediateOutOfRange is returned when an immediate value does not
	// fit its declared width in two's-complement.
	ErrImmediateOutOfRange = errors.New("x86: immediate exceeds declared width")

	// ErrUnsupportedOperands is returned when the operand kinds are legal
	// for the instruction shape but the ISA form is not implemented, such as
	// a 16-bit MOV or a PUSH of a memory operand.
	ErrUnsupportedOperands = errors.New("x86: unsupported operand combination")

	// ErrInvalidInstruction is returned when an operand kind is not allowed
	// by the instruction shape at all, such as an immediate POP destination.
	ErrInvalidInstruction = errors.New("x86: operand kind not allowed for instruction")
)

// Errors reported while decoding machine code.
var (
	// ErrUnknownOpcode is returned when no instruction shape matches the
	// opcode byte.
	ErrUnknownOpcode = errors.New("x86: unknown opcode")

	// ErrUnexpectedEOF is returned when the code buffer ends before the
	// current instruction is complete.
	ErrUnexpectedEOF = errors.New("x86: unexpected end of code")
)
