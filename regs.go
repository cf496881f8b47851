package x86

import (
	"github.com/pkg/errors"
)

// Reg is a register with a specific width, family and number. The number
// distinguishes the register within its family; the low 3 bits go into
// ModRM/SIB/opcode fields and the 4th bit feeds the matching REX extension bit.
//
// Reg implements Arg. The zero Reg means "no register" in a Mem.
type Reg uint32

func (r Reg) isArg() {}

// Get the family for the register: REG_LEGACY, REG_RIP, or REG_HIGHBYTE.
func (r Reg) Family() uint8 { return uint8(r >> 8) }

// Get the number which distinguishes the register within its family.
// RIP has no meaningful number, so it returns 0.
func (r Reg) Num() uint8 { return uint8(r) & 0xf }

// Get the width of the register in bytes.
func (r Reg) Width() uint8 { return uint8(r>>16) & 0x1f }
func (r Reg) width() uint8 { return r.Width() }

// Check if the register is numbered 8 or higher, in which case any
// instruction referencing it carries a REX prefix in 64-bit mode.
func (r Reg) IsExtended() bool { return r.Num() > 7 }

// Check if the register can only be referenced through a REX prefix. This is
// true for the extended registers and for the low-byte forms of SP/BP/SI/DI,
// which would otherwise alias the legacy high-byte registers.
func (r Reg) needsREX() bool {
	if r.IsExtended() {
		return true
	}
	return r.Width() == 1 && r.Family() == REG_LEGACY && r.Num() >= 4
}

// Check that the register may be referenced at all under mode.
func (r Reg) validate(mode Mode) error {
	if mode == Mode64 {
		return nil
	}
	switch {
	case r.IsExtended():
		return errors.Wrapf(ErrUnsupportedArch, "register %d is 64-bit mode only", r.Num())
	case r.Width() == 8 || r == RIP:
		return errors.Wrap(ErrUnsupportedArch, "64-bit register in 32-bit mode")
	case r.needsREX():
		return errors.Wrap(ErrUnsupportedArch, "register requires a REX prefix")
	}
	return nil
}

// Register families
const (
	REG_LEGACY   = iota
	REG_RIP      // RIP
	REG_HIGHBYTE // AH, CH, DH, BH
)

// Registers
const (
	// 8-bit
	AL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 0)
	CL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 1)
	DL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 2)
	BL   Reg = Reg(1<<16 | REG_LEGACY<<8 | 3)
	SPB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 4)
	BPB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 5)
	SIB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 6)
	DIB  Reg = Reg(1<<16 | REG_LEGACY<<8 | 7)
	R8B  Reg = Reg(1<<16 | REG_LEGACY<<8 | 8)
	R9B  Reg = Reg(1<<16 | REG_LEGACY<<8 | 9)
	R10B Reg = Reg(1<<16 | REG_LEGACY<<8 | 10)
	R11B Reg = Reg(1<<16 | REG_LEGACY<<8 | 11)
	R12B Reg = Reg(1<<16 | REG_LEGACY<<8 | 12)
	R13B Reg = Reg(1<<16 | REG_LEGACY<<8 | 13)
	R14B Reg = Reg(1<<16 | REG_LEGACY<<8 | 14)
	R15B Reg = Reg(1<<16 | REG_LEGACY<<8 | 15)

	AH Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 4)
	CH Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 5)
	DH Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 6)
	BH Reg = Reg(1<<16 | REG_HIGHBYTE<<8 | 7)

	// 16-bit
	AX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 0)
	CX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 1)
	DX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 2)
	BX   Reg = Reg(2<<16 | REG_LEGACY<<8 | 3)
	SP   Reg = Reg(2<<16 | REG_LEGACY<<8 | 4)
	BP   Reg = Reg(2<<16 | REG_LEGACY<<8 | 5)
	SI   Reg = Reg(2<<16 | REG_LEGACY<<8 | 6)
	DI   Reg = Reg(2<<16 | REG_LEGACY<<8 | 7)
	R8W  Reg = Reg(2<<16 | REG_LEGACY<<8 | 8)
	R9W  Reg = Reg(2<<16 | REG_LEGACY<<8 | 9)
	R10W Reg = Reg(2<<16 | REG_LEGACY<<8 | 10)
	R11W Reg = Reg(2<<16 | REG_LEGACY<<8 | 11)
	R12W Reg = Reg(2<<16 | REG_LEGACY<<8 | 12)
	R13W Reg = Reg(2<<16 | REG_LEGACY<<8 | 13)
	R14W Reg = Reg(2<<16 | REG_LEGACY<<8 | 14)
	R15W Reg = Reg(2<<16 | REG_LEGACY<<8 | 15)

	// 32-bit
	EAX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 0)
	ECX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 1)
	EDX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 2)
	EBX  Reg = Reg(4<<16 | REG_LEGACY<<8 | 3)
	ESP  Reg = Reg(4<<16 | REG_LEGACY<<8 | 4)
	EBP  Reg = Reg(4<<16 | REG_LEGACY<<8 | 5)
	ESI  Reg = Reg(4<<16 | REG_LEGACY<<8 | 6)
	EDI  Reg = Reg(4<<16 | REG_LEGACY<<8 | 7)
	R8D  Reg = Reg(4<<16 | REG_LEGACY<<8 | 8)
	R9D  Reg = Reg(4<<16 | REG_LEGACY<<8 | 9)
	R10D Reg = Reg(4<<16 | REG_LEGACY<<8 | 10)
	R11D Reg = Reg(4<<16 | REG_LEGACY<<8 | 11)
	R12D Reg = Reg(4<<16 | REG_LEGACY<<8 | 12)
	R13D Reg = Reg(4<<16 | REG_LEGACY<<8 | 13)
	R14D Reg = Reg(4<<16 | REG_LEGACY<<8 | 14)
	R15D Reg = Reg(4<<16 | REG_LEGACY<<8 | 15)

	// 64-bit
	RAX Reg = Reg(8<<16 | REG_LEGACY<<8 | 0)
	RCX Reg = Reg(8<<16 | REG_LEGACY<<8 | 1)
	RDX Reg = Reg(8<<16 | REG_LEGACY<<8 | 2)
	RBX Reg = Reg(8<<16 | REG_LEGACY<<8 | 3)
	RSP Reg = Reg(8<<16 | REG_LEGACY<<8 | 4)
	RBP Reg = Reg(8<<16 | REG_LEGACY<<8 | 5)
	RSI Reg = Reg(8<<16 | REG_LEGACY<<8 | 6)
	RDI Reg = Reg(8<<16 | REG_LEGACY<<8 | 7)
	R8  Reg = Reg(8<<16 | REG_LEGACY<<8 | 8)
	R9  Reg = Reg(8<<16 | REG_LEGACY<<8 | 9)
	R10 Reg = Reg(8<<16 | REG_LEGACY<<8 | 10)
	R11 Reg = Reg(8<<16 | REG_LEGACY<<8 | 11)
	R12 Reg = Reg(8<<16 | REG_LEGACY<<8 | 12)
	R13 Reg = Reg(8<<16 | REG_LEGACY<<8 | 13)
	R14 Reg = Reg(8<<16 | REG_LEGACY<<8 | 14)
	R15 Reg = Reg(8<<16 | REG_LEGACY<<8 | 15)

	// Instruction pointer.
	RIP Reg = Reg(8<<16 | REG_RIP<<8 | 0)
)

// Rebuild a legacy register from a decoded number and width.
func regFrom(num, width uint8) Reg {
	return Reg(uint32(width)<<16 | REG_LEGACY<<8 | uint32(num))
}
