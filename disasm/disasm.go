package disasm

import (
	"golang.org/x/arch/x86/x86asm"

	"github.com/asmkit/x86"
)

// Disassemble code into Intel-syntax text, one string per instruction.
//
// The x86asm decoder covers the full ISA, so Text also renders buffers that
// contain instructions outside the shapes the x86 package models. Decoding
// stops at the first byte sequence x86asm cannot explain.
func Text(code []byte, mode x86.Mode) ([]string, error) {
	var out []string
	for n := 0; n < len(code); {
		inst, err := x86asm.Decode(code[n:], mode.Bits())
		if err != nil {
			return out, err
		}
		out = append(out, x86asm.IntelSyntax(inst, 0, nil))
		n += inst.Len
	}
	return out, nil
}

// Walk code, invoking while for each decoded instruction until it returns
// false or the buffer is exhausted.
func Walk(code []byte, mode x86.Mode, while func(x86asm.Inst) bool) error {
	for n := 0; n < len(code); {
		inst, err := x86asm.Decode(code[n:], mode.Bits())
		if err != nil {
			return err
		}
		if !while(inst) {
			return nil
		}
		n += inst.Len
	}
	return nil
}
