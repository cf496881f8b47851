package x86

// Mode selects the architecture an instruction is encoded or decoded for.
type Mode uint8

const (
	// Mode32 is 32-bit protected mode.
	Mode32 Mode = 4
	// Mode64 is 64-bit long mode.
	Mode64 Mode = 8
)

// Get the native address/operand width for the mode, in bytes.
func (m Mode) width() uint8 { return uint8(m) }

// Get the mode's width in bits (32 or 64).
func (m Mode) Bits() int { return int(m) * 8 }

func (m Mode) String() string {
	if m == Mode64 {
		return "x86-64"
	}
	return "x86"
}
