package x86

// DataSection is a named blob of initialized data emitted alongside the
// code, with an optional alignment requirement. How sections are placed in
// an object or image is the packaging layer's concern.
type DataSection struct {
	Name  string
	Data  []byte
	Align uint32
}

type labelMark struct {
	name  string
	index int // instruction index the mark precedes
}

// A Program collects instructions and data sections for one unit of code
// and compiles them in order. Positions of label marks come back as a
// symbol table for the external linking stage, together with the
// relocations of any label call targets; the program itself never resolves
// either.
type Program struct {
	mode     Mode
	insts    []Instruction
	sections []DataSection
	marks    []labelMark
}

// Create a new Program targeting mode.
func NewProgram(mode Mode) *Program {
	return &Program{mode: mode}
}

// Get the mode the program targets.
func (p *Program) Mode() Mode { return p.mode }

// Get the instructions added so far.
func (p *Program) Instructions() []Instruction { return p.insts }

// Get the data sections added so far.
func (p *Program) Sections() []DataSection { return p.sections }

// Append instructions to the program.
func (p *Program) Add(insts ...Instruction) *Program {
	p.insts = append(p.insts, insts...)
	return p
}

// Append a named data section.
func (p *Program) Data(name string, data []byte) *Program {
	p.sections = append(p.sections, DataSection{Name: name, Data: data})
	return p
}

// Append a named data section with an alignment requirement.
func (p *Program) DataAligned(name string, data []byte, align uint32) *Program {
	p.sections = append(p.sections, DataSection{Name: name, Data: data, Align: align})
	return p
}

// Mark the current position with a label name. When the program is
// compiled, the label's code offset is reported in the symbol table.
func (p *Program) MarkLabel(name string) *Program {
	p.marks = append(p.marks, labelMark{name: name, index: len(p.insts)})
	return p
}

// Convenience constructors for common instruction forms.

// Mov appends a register-to-register move.
func (p *Program) Mov(dst, src Reg) *Program {
	return p.Add(Mov{Dst: dst, Src: src})
}

// MovImm appends a move of value into dst, with the immediate width taken
// from the register.
func (p *Program) MovImm(dst Reg, value int64) *Program {
	return p.Add(Mov{Dst: dst, Src: Imm{Value: value, Width: dst.Width()}})
}

// PushReg appends a register push.
func (p *Program) PushReg(r Reg) *Program { return p.Add(Push{Src: r}) }

// PushImm appends a 32-bit immediate push.
func (p *Program) PushImm(value int64) *Program {
	return p.Add(Push{Src: Imm{Value: value, Width: 4}})
}

// PopReg appends a register pop.
func (p *Program) PopReg(r Reg) *Program { return p.Add(Pop{Dst: r}) }

// AddImm appends a 32-bit immediate addition to dst.
func (p *Program) AddImm(dst Reg, value int64) *Program {
	return p.Add(Add{Dst: dst, Src: Imm{Value: value, Width: 4}})
}

// SubImm appends a 32-bit immediate subtraction from dst.
func (p *Program) SubImm(dst Reg, value int64) *Program {
	return p.Add(Sub{Dst: dst, Src: Imm{Value: value, Width: 4}})
}

// CallLabel appends a call to a named label. The call encodes as a
// placeholder and surfaces in the compiled relocations.
func (p *Program) CallLabel(name string) *Program {
	return p.Add(Call{Target: Label(name)})
}

// Ret appends a return.
func (p *Program) Ret() *Program { return p.Add(Ret{}) }

// Nop appends a no-op.
func (p *Program) Nop() *Program { return p.Add(Nop{}) }

// Compile encodes all instructions in order. It returns the code bytes, the
// relocations for label call targets, and the code offsets of label marks.
// Compilation is all-or-nothing: the first invalid instruction aborts it.
func (p *Program) Compile() ([]byte, []Reloc, map[string]uint32, error) {
	a := NewAssembler(p.mode, make([]byte, 64))
	labels := make(map[string]uint32, len(p.marks))
	mi := 0
	for i, inst := range p.insts {
		for mi < len(p.marks) && p.marks[mi].index == i {
			labels[p.marks[mi].name] = a.PC()
			mi++
		}
		if err := a.Encode(inst); err != nil {
			return nil, nil, nil, err
		}
	}
	for mi < len(p.marks) {
		labels[p.marks[mi].name] = a.PC()
		mi++
	}
	code := append([]byte(nil), a.Code()...)
	return code, a.Relocs(), labels, nil
}
