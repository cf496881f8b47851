package x86

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// A Decoder reconstructs typed instructions from machine code, mirroring
// the encoder in reverse. It holds a cursor over the buffer and stops at the
// first byte sequence it cannot explain, reporting the offset at which
// decoding failed.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	code []byte
	pos  int
	mode Mode

	rex    byte
	hasREX bool
}

// Create a new Decoder reading code under mode.
func NewDecoder(mode Mode, code []byte) *Decoder {
	return &Decoder{code: code, mode: mode}
}

// Get the cursor position: the offset of the next undecoded byte.
func (d *Decoder) Pos() int { return d.pos }

// Decode all instructions in code under mode. Decoding is the left inverse
// of encoding: for any instruction the encoder accepts, decoding its bytes
// yields the instruction back (a label call target comes back with an empty
// name, since the wire format only holds its placeholder).
func Decode(code []byte, mode Mode) ([]Instruction, error) {
	d := NewDecoder(mode, code)
	var insts []Instruction
	for d.pos < len(d.code) {
		inst, err := d.Next()
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	return insts, nil
}

// Decode the next instruction at the cursor.
func (d *Decoder) Next() (Instruction, error) {
	start := d.pos
	d.rex, d.hasREX = 0, false

	op, err := d.byte()
	if err != nil {
		return nil, err
	}
	if d.mode == Mode64 && op&0xF0 == 0x40 {
		d.rex, d.hasREX = op, true
		if op, err = d.byte(); err != nil {
			return nil, err
		}
	}

	switch {
	case op == 0x89:
		return d.decodeMovStore()
	case op == 0x8B:
		return d.decodeMovLoad(start)
	case op == 0x01:
		return d.decodeArithRR(start, true)
	case op == 0x29:
		return d.decodeArithRR(start, false)
	case op == 0x81:
		return d.decodeArithRI(start)
	case op >= 0x50 && op <= 0x57:
		return Push{Src: d.stackReg(op - 0x50)}, nil
	case op >= 0x58 && op <= 0x5F:
		return Pop{Dst: d.stackReg(op - 0x58)}, nil
	case op == 0x6A:
		v, err := d.int8()
		if err != nil {
			return nil, err
		}
		return Push{Src: Imm{Value: int64(v), Width: 1}}, nil
	case op == 0x68:
		v, err := d.int32()
		if err != nil {
			return nil, err
		}
		return Push{Src: Imm{Value: int64(v), Width: 4}}, nil
	case op >= 0xB8 && op <= 0xBF:
		return d.decodeMovImm(op - 0xB8)
	case op == 0x8D:
		return d.decodeLea(start)
	case op == 0xE8:
		if _, err := d.int32(); err != nil {
			return nil, err
		}
		// the placeholder displacement says nothing about the label name
		return Call{Target: Label("")}, nil
	case op == 0xFF:
		return d.decodeCallRM(start)
	case op == 0xC3:
		return Ret{}, nil
	case op == 0x90:
		return Nop{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownOpcode, "0x%02x at offset %d", op, start)
}

func (d *Decoder) byte() (byte, error) {
	if d.pos >= len(d.code) {
		return 0, errors.Wrapf(ErrUnexpectedEOF, "at offset %d", d.pos)
	}
	v := d.code[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) int8() (int8, error) {
	v, err := d.byte()
	return int8(v), err
}

func (d *Decoder) int32() (int32, error) {
	if d.pos+4 > len(d.code) {
		return 0, errors.Wrapf(ErrUnexpectedEOF, "at offset %d", d.pos)
	}
	v := binary.LittleEndian.Uint32(d.code[d.pos:])
	d.pos += 4
	return int32(v), nil
}

func (d *Decoder) int64() (int64, error) {
	if d.pos+8 > len(d.code) {
		return 0, errors.Wrapf(ErrUnexpectedEOF, "at offset %d", d.pos)
	}
	v := binary.LittleEndian.Uint64(d.code[d.pos:])
	d.pos += 8
	return int64(v), nil
}

func (d *Decoder) rexW() bool { return d.hasREX && d.rex&0x08 != 0 }
func (d *Decoder) rexR() bool { return d.hasREX && d.rex&0x04 != 0 }
func (d *Decoder) rexX() bool { return d.hasREX && d.rex&0x02 != 0 }
func (d *Decoder) rexB() bool { return d.hasREX && d.rex&0x01 != 0 }

// opWidth is the operand width in bytes implied by the REX.W bit.
func (d *Decoder) opWidth() uint8 {
	if d.rexW() {
		return 8
	}
	return 4
}

func extend(num uint8, bit bool) uint8 {
	if bit {
		return num + 8
	}
	return num
}

// stackReg rebuilds a PUSH/POP/CALL register operand, which is always the
// mode's native width.
func (d *Decoder) stackReg(num uint8) Reg {
	return regFrom(extend(num, d.rexB()), d.mode.width())
}

func (d *Decoder) decodeMovStore() (Instruction, error) {
	m, err := d.byte()
	if err != nil {
		return nil, err
	}
	src := regFrom(extend(m>>3&7, d.rexR()), d.opWidth())
	if m>>6 == modDirect {
		return Mov{Dst: regFrom(extend(m&7, d.rexB()), d.opWidth()), Src: src}, nil
	}
	mem, err := d.memOperand(m)
	if err != nil {
		return nil, err
	}
	return Mov{Dst: mem, Src: src}, nil
}

func (d *Decoder) decodeMovLoad(start int) (Instruction, error) {
	m, err := d.byte()
	if err != nil {
		return nil, err
	}
	if m>>6 == modDirect {
		// the encoder always uses 89 for register-to-register
		return nil, errors.Wrapf(ErrUnknownOpcode, "non-canonical register MOV at offset %d", start)
	}
	dst := regFrom(extend(m>>3&7, d.rexR()), d.opWidth())
	mem, err := d.memOperand(m)
	if err != nil {
		return nil, err
	}
	return Mov{Dst: dst, Src: mem}, nil
}

func (d *Decoder) decodeArithRR(start int, add bool) (Instruction, error) {
	m, err := d.byte()
	if err != nil {
		return nil, err
	}
	if m>>6 != modDirect {
		return nil, errors.Wrapf(ErrUnknownOpcode, "memory-destination arithmetic at offset %d", start)
	}
	dst := regFrom(extend(m&7, d.rexB()), d.opWidth())
	src := regFrom(extend(m>>3&7, d.rexR()), d.opWidth())
	if add {
		return Add{Dst: dst, Src: src}, nil
	}
	return Sub{Dst: dst, Src: src}, nil
}

func (d *Decoder) decodeArithRI(start int) (Instruction, error) {
	m, err := d.byte()
	if err != nil {
		return nil, err
	}
	if m>>6 != modDirect {
		return nil, errors.Wrapf(ErrUnknownOpcode, "memory-destination arithmetic at offset %d", start)
	}
	dst := regFrom(extend(m&7, d.rexB()), d.opWidth())
	v, err := d.int32()
	if err != nil {
		return nil, err
	}
	imm := Imm{Value: int64(v), Width: 4}
	switch m >> 3 & 7 {
	case 0:
		return Add{Dst: dst, Src: imm}, nil
	case 5:
		return Sub{Dst: dst, Src: imm}, nil
	}
	return nil, errors.Wrapf(ErrUnknownOpcode, "opcode extension /%d for 0x81 at offset %d", m>>3&7, start)
}

func (d *Decoder) decodeMovImm(num uint8) (Instruction, error) {
	dst := regFrom(extend(num, d.rexB()), d.opWidth())
	if d.rexW() {
		v, err := d.int64()
		if err != nil {
			return nil, err
		}
		return Mov{Dst: dst, Src: Imm{Value: v, Width: 8}}, nil
	}
	v, err := d.int32()
	if err != nil {
		return nil, err
	}
	return Mov{Dst: dst, Src: Imm{Value: int64(v), Width: 4}}, nil
}

func (d *Decoder) decodeLea(start int) (Instruction, error) {
	m, err := d.byte()
	if err != nil {
		return nil, err
	}
	if m>>6 != modIndirect {
		return nil, errors.Wrapf(ErrUnknownOpcode, "unsupported LEA form at offset %d", start)
	}
	dst := regFrom(extend(m>>3&7, d.rexR()), d.mode.width())
	switch m & 7 {
	case 5:
		disp, err := d.int32()
		if err != nil {
			return nil, err
		}
		return Lea{Dst: dst, Disp: disp, RIPRel: d.mode == Mode64}, nil
	case 4:
		s, err := d.byte()
		if err != nil {
			return nil, err
		}
		if s != sib(0, 4, 5) {
			return nil, errors.Wrapf(ErrUnknownOpcode, "unsupported LEA form at offset %d", start)
		}
		disp, err := d.int32()
		if err != nil {
			return nil, err
		}
		return Lea{Dst: dst, Disp: disp}, nil
	}
	return nil, errors.Wrapf(ErrUnknownOpcode, "unsupported LEA form at offset %d", start)
}

func (d *Decoder) decodeCallRM(start int) (Instruction, error) {
	m, err := d.byte()
	if err != nil {
		return nil, err
	}
	if m>>3&7 != 2 {
		return nil, errors.Wrapf(ErrUnknownOpcode, "opcode extension /%d for 0xFF at offset %d", m>>3&7, start)
	}
	if m>>6 == modDirect {
		return Call{Target: d.stackReg(m & 7)}, nil
	}
	mem, err := d.memOperand(m)
	if err != nil {
		return nil, err
	}
	return Call{Target: mem}, nil
}

// memOperand rebuilds a Mem from the ModRM byte at hand, consuming the SIB
// byte and displacement the addressing mode calls for. Address registers are
// always the mode's native width.
func (d *Decoder) memOperand(m byte) (Mem, error) {
	mod, rm := m>>6, m&7
	native := d.mode.width()

	if rm == 5 && mod == modIndirect {
		disp, err := d.int32()
		if err != nil {
			return Mem{}, err
		}
		if d.mode == Mode64 {
			return Mem{Base: RIP, Disp: disp}, nil
		}
		return Mem{Disp: disp}, nil
	}

	var mem Mem
	if rm == 4 {
		s, err := d.byte()
		if err != nil {
			return Mem{}, err
		}
		ss, idx, base := s>>6, s>>3&7, s&7
		if idx != 4 || d.rexX() {
			mem.Index = regFrom(extend(idx, d.rexX()), native)
			mem.Scale = 1 << ss
		}
		if base == 5 && mod == modIndirect {
			// no base: disp32 follows regardless of mod
			disp, err := d.int32()
			if err != nil {
				return Mem{}, err
			}
			mem.Disp = disp
			return mem, nil
		}
		mem.Base = regFrom(extend(base, d.rexB()), native)
	} else {
		mem.Base = regFrom(extend(rm, d.rexB()), native)
	}

	switch mod {
	case modDisp8:
		v, err := d.int8()
		if err != nil {
			return Mem{}, err
		}
		mem.Disp = int32(v)
	case modDisp32:
		v, err := d.int32()
		if err != nil {
			return Mem{}, err
		}
		mem.Disp = v
	}
	return mem, nil
}
