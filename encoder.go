package x86

const (
	modIndirect uint8 = 0
	modDisp8    uint8 = 1
	modDisp32   uint8 = 2
	modDirect   uint8 = 3
)

func modrm(mod, reg, rm uint8) byte {
	return byte(mod<<6 | (reg&7)<<3 | rm&7)
}

func sib(scale, index, base uint8) byte {
	return byte(scale<<6 | (index&7)<<3 | base&7)
}

// emit writes the bytes for a validated instruction. Every failure is
// caught by validate, so emission is total: once emit is entered the
// instruction always produces complete output.
func (a *Assembler) emit(inst Instruction) {
	switch t := inst.(type) {
	case Mov:
		a.emitMov(t)
	case Add:
		a.emitArith(0x01, 0, t.Dst, t.Src)
	case Sub:
		a.emitArith(0x29, 5, t.Dst, t.Src)
	case Push:
		a.emitPush(t.Src)
	case Pop:
		r := t.Dst.(Reg)
		a.emitREX(false, 0, 0, r)
		a.b.Byte(0x58 + r.Num()&7)
	case Call:
		a.emitCall(t.Target)
	case Lea:
		a.emitLea(t)
	case Ret:
		a.b.Byte(0xC3)
	case Nop:
		a.b.Byte(0x90)
	}
}

// emitREX derives the four REX control bits: W from the operand width, and
// R/X/B from the high code bit of the ModRM reg, SIB index, and base
// registers. The prefix is emitted only when at least one bit is set.
func (a *Assembler) emitREX(w bool, reg, index, base Reg) {
	rex := byte(0x40)
	if w {
		rex |= 0x08
	}
	rex |= (reg.Num() & 8) >> 1
	rex |= (index.Num() & 8) >> 2
	rex |= (base.Num() & 8) >> 3
	if rex != 0x40 {
		a.b.Byte(rex)
	}
}

func (a *Assembler) emitMov(m Mov) {
	switch dst := m.Dst.(type) {
	case Reg:
		switch src := m.Src.(type) {
		case Reg:
			a.emitREX(dst.Width() == 8, src, 0, dst)
			a.b.Byte(0x89)
			a.b.Byte(modrm(modDirect, src.Num(), dst.Num()))
		case Imm:
			if dst.Width() == 8 {
				a.emitREX(true, 0, 0, dst)
				a.b.Byte(0xB8 + dst.Num()&7)
				a.b.Int64(src.Value)
			} else {
				a.emitREX(false, 0, 0, dst)
				a.b.Byte(0xB8 + dst.Num()&7)
				a.b.Int32(int32(src.Value))
			}
		case Mem:
			a.emitMemOp(0x8B, dst, src)
		}
	case Mem:
		a.emitMemOp(0x89, m.Src.(Reg), dst)
	}
}

// emitArith covers ADD and SUB: opcode is the reg,reg form, ext the /digit
// for the 81 immediate form.
func (a *Assembler) emitArith(opcode byte, ext uint8, dst, src Arg) {
	d := dst.(Reg)
	switch s := src.(type) {
	case Reg:
		a.emitREX(d.Width() == 8, s, 0, d)
		a.b.Byte(opcode)
		a.b.Byte(modrm(modDirect, s.Num(), d.Num()))
	case Imm:
		a.emitREX(d.Width() == 8, 0, 0, d)
		a.b.Byte(0x81)
		a.b.Byte(modrm(modDirect, ext, d.Num()))
		a.b.Int32(int32(s.Value))
	}
}

// emitMemOp writes opcode plus the ModRM/SIB/displacement bytes for a
// register/memory form. reg fills the ModRM reg field.
func (a *Assembler) emitMemOp(opcode byte, reg Reg, m Mem) {
	a.emitREX(reg.Width() == 8, reg, m.Index, m.Base)
	a.b.Byte(opcode)
	a.emitMem(reg.Num(), m)
}

// emitMem derives the addressing mode from whichever sub-fields of m are
// present and writes the ModRM byte, the SIB byte when one is needed, and
// the displacement:
//
//	no base, no index  ->  disp32; through a SIB byte in 64-bit mode, where
//	                       the bare ModRM slot means RIP-relative
//	base RIP           ->  mod=00 rm=101, disp32 relative to the next instruction
//	base only          ->  mod from the displacement width; SIB when the base
//	                       is SP/R12-coded, disp8 forced for BP/R13-coded bases
//	index present      ->  SIB always, scale encoded as log2
func (a *Assembler) emitMem(regN uint8, m Mem) {
	if m.Base == 0 && m.Index == 0 {
		if a.mode == Mode64 {
			a.b.Byte(modrm(modIndirect, regN, 4))
			a.b.Byte(sib(0, 4, 5))
		} else {
			a.b.Byte(modrm(modIndirect, regN, 5))
		}
		a.b.Int32(m.Disp)
		return
	}
	if m.Base == RIP {
		a.b.Byte(modrm(modIndirect, regN, 5))
		a.b.Int32(m.Disp)
		return
	}
	if m.Base == 0 {
		// index without base: mod=00 with SIB base 101 carries a disp32
		a.b.Byte(modrm(modIndirect, regN, 4))
		a.b.Byte(sib(scaleBits(m.Scale), m.Index.Num(), 5))
		a.b.Int32(m.Disp)
		return
	}

	baseN := m.Base.Num()
	useSIB := m.Index != 0 || baseN&7 == 4

	mod := modDisp32
	switch {
	case m.Disp == 0 && baseN&7 != 5:
		// [BP]/[R13] has no mod=00 slot; that encoding means disp32/RIP
		mod = modIndirect
	case m.Disp >= -128 && m.Disp <= 127:
		mod = modDisp8
	}

	if useSIB {
		a.b.Byte(modrm(mod, regN, 4))
		index := uint8(4) // none
		if m.Index != 0 {
			index = m.Index.Num()
		}
		a.b.Byte(sib(scaleBits(m.Scale), index, baseN))
	} else {
		a.b.Byte(modrm(mod, regN, baseN))
	}

	switch mod {
	case modDisp8:
		a.b.Int8(int8(m.Disp))
	case modDisp32:
		a.b.Int32(m.Disp)
	}
}

func scaleBits(scale uint8) uint8 {
	switch scale {
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	}
	return 0
}

func (a *Assembler) emitPush(op Arg) {
	switch t := op.(type) {
	case Reg:
		a.emitREX(false, 0, 0, t)
		a.b.Byte(0x50 + t.Num()&7)
	case Imm:
		if t.Width == 1 {
			a.b.Byte(0x6A)
			a.b.Int8(int8(t.Value))
		} else {
			a.b.Byte(0x68)
			a.b.Int32(int32(t.Value))
		}
	}
}

func (a *Assembler) emitCall(target Arg) {
	switch t := target.(type) {
	case Label:
		a.b.Byte(0xE8)
		a.relocs = append(a.relocs, Reloc{Offset: a.PC(), Label: string(t)})
		a.b.Int32(0)
	case Reg:
		a.emitREX(false, 0, 0, t)
		a.b.Byte(0xFF)
		a.b.Byte(modrm(modDirect, 2, t.Num()))
	case Mem:
		a.emitREX(false, 0, t.Index, t.Base)
		a.b.Byte(0xFF)
		a.emitMem(2, t)
	}
}

func (a *Assembler) emitLea(l Lea) {
	a.emitREX(a.mode == Mode64, l.Dst, 0, 0)
	a.b.Byte(0x8D)
	switch {
	case l.RIPRel:
		a.b.Byte(modrm(modIndirect, l.Dst.Num(), 5))
	case a.mode == Mode64:
		// absolute [disp32] needs the SIB form; bare rm=101 is RIP-relative
		a.b.Byte(modrm(modIndirect, l.Dst.Num(), 4))
		a.b.Byte(sib(0, 4, 5))
	default:
		a.b.Byte(modrm(modIndirect, l.Dst.Num(), 5))
	}
	a.b.Int32(l.Disp)
}
