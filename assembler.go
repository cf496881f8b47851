package x86

// Reloc records a placeholder displacement that an external linking stage
// must patch once the named label's address is known. Offset is the position
// of the 4-byte little-endian displacement within the encoded output.
type Reloc struct {
	Offset uint32
	Label  string
}

// An Assembler encodes instructions into a byte slice for a fixed mode.
// Instructions are validated before any byte is written, so a failed
// instruction contributes no output. The first error sticks: later calls
// return it unchanged until Reset.
//
// An Assembler is not safe for concurrent use; the mode flag and buffer are
// its only mutable state.
type Assembler struct {
	b      buffer
	mode   Mode
	relocs []Reloc
	err    error
}

// Create a new Assembler encoding for mode. Output is encoded to buf; if
// the output outgrows buf, a larger slice is allocated.
func NewAssembler(mode Mode, buf []byte) *Assembler {
	return &Assembler{b: buffer{b: buf, i: 0, sz: len(buf)}, mode: mode}
}

// Get the mode the assembler encodes for.
func (a *Assembler) Mode() Mode { return a.mode }

// Switch the mode for subsequently encoded instructions. Already-encoded
// bytes are unaffected.
func (a *Assembler) SetMode(mode Mode) { a.mode = mode }

// Get the first error which occurred while encoding instructions, since the
// assembler was last reset.
func (a *Assembler) Err() error { return a.err }

// Get the current encoded instructions. This method may be called multiple
// times and does not affect the underlying code buffer.
func (a *Assembler) Code() []byte { return a.b.Get() }

// Get the current program counter (i.e. number of bytes written to the
// encoding buffer).
func (a *Assembler) PC() uint32 { return uint32(a.b.i) }

// Get the relocations recorded for label call targets so far. The slice is
// owned by the assembler and is only valid until Reset.
func (a *Assembler) Relocs() []Reloc { return a.relocs }

// Reset an assembler before encoding a new set of instructions. The error
// and relocation list are cleared and the PC returns to 0. If buf is not
// nil it replaces the assembler's buffer.
func (a *Assembler) Reset(buf []byte) {
	if buf != nil {
		a.b = buffer{b: buf, i: 0, sz: len(buf)}
	} else {
		a.b.Reset()
	}
	a.relocs = a.relocs[:0]
	a.err = nil
}

// Write raw data to the encoding buffer.
func (a *Assembler) Raw(data []byte) { a.b.Bytes(data) }

// Encode one instruction to the encoding buffer.
func (a *Assembler) Encode(inst Instruction) error {
	if a.err != nil {
		return a.err
	}
	if a.err = validate(inst, a.mode); a.err != nil {
		return a.err
	}
	a.emit(inst)
	return nil
}

// Encode a single instruction for mode. The returned relocation list is
// non-empty only for a label-target call, which encodes a 4-byte placeholder
// displacement. On error no bytes are returned.
func Encode(inst Instruction, mode Mode) ([]byte, []Reloc, error) {
	a := NewAssembler(mode, make([]byte, 16))
	if err := a.Encode(inst); err != nil {
		return nil, nil, err
	}
	code := append([]byte(nil), a.Code()...)
	return code, a.relocs, nil
}
