package x86

import (
	"github.com/pkg/errors"
)

// validate checks an instruction against its shape, the declared operand
// sizes, and the active mode. Encoding is all-or-nothing: emit is only
// reached for instructions that validate cleanly, so a failure never leaves
// partial bytes behind.
func validate(inst Instruction, mode Mode) error {
	switch t := inst.(type) {
	case Mov:
		return validatePair("MOV", t.Dst, t.Src, mode, true)
	case Add:
		return validatePair("ADD", t.Dst, t.Src, mode, false)
	case Sub:
		return validatePair("SUB", t.Dst, t.Src, mode, false)
	case Push:
		return validateStack("PUSH", t.Src, mode, true)
	case Pop:
		return validateStack("POP", t.Dst, mode, false)
	case Call:
		return validateCall(t.Target, mode)
	case Lea:
		return validateLea(t, mode)
	case Ret, Nop:
		return nil
	case nil:
		return errors.Wrap(ErrInvalidInstruction, "nil instruction")
	default:
		return errors.Wrapf(ErrInvalidInstruction, "unknown instruction shape %T", inst)
	}
}

// validatePair covers the two-operand data/arithmetic shapes. MOV permits
// memory forms; ADD and SUB do not.
func validatePair(name string, dst, src Arg, mode Mode, allowMem bool) error {
	switch d := dst.(type) {
	case Reg:
		if err := validateGPR(name, d, mode); err != nil {
			return err
		}
		switch s := src.(type) {
		case Reg:
			if err := validateGPR(name, s, mode); err != nil {
				return err
			}
			if d.Width() != s.Width() {
				return errors.Wrapf(ErrInvalidOperandSize, "%s %v-byte register, %v-byte register", name, d.Width(), s.Width())
			}
			return nil
		case Imm:
			if !s.fits() {
				return errors.Wrapf(ErrImmediateOutOfRange, "%s %d does not fit %d bytes", name, s.Value, s.Width)
			}
			if allowMem { // MOV: immediate width must match the register
				if s.Width != d.Width() {
					return errors.Wrapf(ErrInvalidOperandSize, "%s %v-byte register, %v-byte immediate", name, d.Width(), s.Width)
				}
			} else if s.Width != 4 { // ADD/SUB: imm32, sign-extended to the register width
				return errors.Wrapf(ErrUnsupportedOperands, "%s supports 32-bit immediates only", name)
			}
			return nil
		case Mem:
			if !allowMem {
				return errors.Wrapf(ErrUnsupportedOperands, "%s with a memory source", name)
			}
			return validateMemPair(name, d, s, mode)
		case Label:
			return errors.Wrapf(ErrInvalidInstruction, "%s with a label source", name)
		}
	case Mem:
		s, ok := src.(Reg)
		if !ok || !allowMem {
			return errors.Wrapf(ErrInvalidInstruction, "%s destination must pair a memory operand with a register source", name)
		}
		return validateMemPair(name, s, d, mode)
	case Imm, Label:
		return errors.Wrapf(ErrInvalidInstruction, "%s destination must be a register or memory operand", name)
	}
	return errors.Wrapf(ErrInvalidInstruction, "%s with missing operands", name)
}

// validateMemPair checks a register/memory form: the register side and the
// address expression, plus size agreement with the memory operand's declared
// width when it carries one.
func validateMemPair(name string, r Reg, m Mem, mode Mode) error {
	if err := validateGPR(name, r, mode); err != nil {
		return err
	}
	if m.Width != 0 && m.Width != r.Width() {
		return errors.Wrapf(ErrInvalidOperandSize, "%s %v-byte register, %v-byte memory operand", name, r.Width(), m.Width)
	}
	return validateMem(name, m, mode)
}

// validateGPR admits the 32- and 64-bit general-purpose registers, the only
// widths the implemented opcode forms cover.
func validateGPR(name string, r Reg, mode Mode) error {
	if r == 0 {
		return errors.Wrapf(ErrInvalidInstruction, "%s with a missing register", name)
	}
	if err := r.validate(mode); err != nil {
		return err
	}
	if r.Family() != REG_LEGACY {
		return errors.Wrapf(ErrUnsupportedOperands, "%s cannot address %v directly", name, r)
	}
	if w := r.Width(); w != 4 && w != 8 {
		return errors.Wrapf(ErrUnsupportedOperands, "%s is implemented for 32- and 64-bit registers, not %d-bit", name, int(w)*8)
	}
	return nil
}

// validateMem checks an address expression: register legality under the
// mode, native address width, index/scale constraints.
func validateMem(name string, m Mem, mode Mode) error {
	if m.Base != 0 {
		if err := m.Base.validate(mode); err != nil {
			return err
		}
		if m.Base == RIP {
			if m.Index != 0 {
				return errors.Wrapf(ErrUnsupportedOperands, "%s RIP-relative address cannot carry an index", name)
			}
		} else if m.Base.Family() != REG_LEGACY || m.Base.Width() != mode.width() {
			return errors.Wrapf(ErrUnsupportedOperands, "%s base register must be the native address width", name)
		}
	}
	if m.Index != 0 {
		if err := m.Index.validate(mode); err != nil {
			return err
		}
		if m.Index.Family() != REG_LEGACY || m.Index.Width() != mode.width() {
			return errors.Wrapf(ErrUnsupportedOperands, "%s index register must be the native address width", name)
		}
		if m.Index.Num() == 4 && !m.Index.IsExtended() {
			// the SIB index slot for 4 means "no index"
			return errors.Wrapf(ErrUnsupportedOperands, "%s cannot use the stack pointer as an index", name)
		}
		switch m.Scale {
		case 0, 1, 2, 4, 8:
		default:
			return errors.Wrapf(ErrUnsupportedOperands, "%s scale must be 1, 2, 4, or 8", name)
		}
	}
	return nil
}

// validateStack covers PUSH and POP. Register operands are the mode's
// native width; PUSH additionally takes 8- or 32-bit immediates.
func validateStack(name string, op Arg, mode Mode, allowImm bool) error {
	switch t := op.(type) {
	case Reg:
		if err := validateGPR(name, t, mode); err != nil {
			return err
		}
		if t.Width() != mode.width() {
			return errors.Wrapf(ErrUnsupportedOperands, "%s register must be the native width for %v", name, mode)
		}
		return nil
	case Imm:
		if !allowImm {
			return errors.Wrapf(ErrInvalidInstruction, "%s destination must be a register", name)
		}
		if !t.fits() {
			return errors.Wrapf(ErrImmediateOutOfRange, "%s %d does not fit %d bytes", name, t.Value, t.Width)
		}
		if t.Width != 1 && t.Width != 4 {
			return errors.Wrapf(ErrUnsupportedOperands, "%s supports 8- and 32-bit immediates only", name)
		}
		return nil
	case Mem:
		return errors.Wrapf(ErrUnsupportedOperands, "%s with a memory operand", name)
	case Label:
		return errors.Wrapf(ErrInvalidInstruction, "labels are only legal as call targets")
	}
	return errors.Wrapf(ErrInvalidInstruction, "%s with a missing operand", name)
}

func validateCall(target Arg, mode Mode) error {
	switch t := target.(type) {
	case Reg:
		if err := validateGPR("CALL", t, mode); err != nil {
			return err
		}
		if t.Width() != mode.width() {
			return errors.Wrap(ErrUnsupportedOperands, "CALL register must be the native width")
		}
		return nil
	case Mem:
		return validateMem("CALL", t, mode)
	case Label:
		return nil
	case Imm:
		return errors.Wrap(ErrInvalidInstruction, "CALL target must be a register, memory operand, or label")
	}
	return errors.Wrap(ErrInvalidInstruction, "CALL with a missing target")
}

func validateLea(l Lea, mode Mode) error {
	if err := validateGPR("LEA", l.Dst, mode); err != nil {
		return err
	}
	if l.Dst.Width() != mode.width() {
		return errors.Wrap(ErrUnsupportedOperands, "LEA destination must be the native width")
	}
	if l.RIPRel && mode != Mode64 {
		return errors.Wrap(ErrUnsupportedArch, "RIP-relative addressing requires 64-bit mode")
	}
	return nil
}
