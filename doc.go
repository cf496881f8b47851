// package x86 provides a typed x86 / x86-64 instruction encoder and decoder
//
// Instructions are built from typed registers and operands, validated
// against the selected mode, and encoded to raw machine code; the decoder
// reconstructs typed instructions from a code buffer for inspection and
// round-trip testing. Label call targets encode as placeholder
// displacements and come back as (offset, label) relocation records for an
// external linking stage.
//
// usage example:
//
//	package example
//
//	import (
//		"fmt"
//
//		. "github.com/asmkit/x86"
//	)
//
//	func EmitSum() ([]byte, error) {
//		asm := NewAssembler(Mode64, make([]byte, 64))
//
//		asm.Encode(Mov{Dst: RAX, Src: Mem{Base: RSP, Disp: 8}})
//		asm.Encode(Mov{Dst: RBX, Src: Mem{Base: RSP, Disp: 16}})
//		asm.Encode(Add{Dst: RAX, Src: RBX})
//		asm.Encode(Mov{Dst: Mem{Base: RSP, Disp: 24}, Src: RAX})
//		asm.Encode(Ret{})
//		if asm.Err() != nil {
//			return nil, asm.Err()
//		}
//
//		fmt.Printf("% x\n", asm.Code())
//		return asm.Code(), nil
//	}
package x86
