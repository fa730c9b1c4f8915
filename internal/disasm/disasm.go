// Package disasm defines the contract between the instruction model and an
// architecture-specific decode backend, plus the streaming loop that drives
// a backend over a buffer of machine code.
package disasm

import (
	"fmt"

	"opdump/internal/model"
)

// Backend decodes one instruction at a time into a model.Instruction. The
// instruction is cleared before every call; the backend fills it through
// the model's mutation API and sets the status bits for the phases it
// completed. Decode returns the number of bytes consumed.
type Backend interface {
	Decode(insn *model.Instruction, data []byte, offset, vma uint64) (int, error)
}

// Visitor receives each decoded instruction during a Walk. The instruction
// is a reused scratch buffer, valid only for the duration of the call; a
// visitor that needs to keep it must take a Dup. Returning false stops the
// walk.
type Visitor func(insn *model.Instruction) bool

// badInsnText marks a byte the backend could not decode.
const badInsnText = "(bad)"

// Walk decodes data from start to end, invoking visit for every
// instruction. A single fixed-size instruction is acquired from pool for
// the whole walk and reused across iterations. Undecodable bytes are
// reported as a one-byte instruction rendered as "(bad)" with only the
// basic phase marked, and the walk continues at the next byte.
func Walk(b Backend, pool *model.Pool, data []byte, vma uint64, visit Visitor) error {
	if b == nil || pool == nil {
		return fmt.Errorf("disasm: nil backend or pool")
	}
	return pool.With(func(insn *model.Instruction) error {
		for off := 0; off < len(data); {
			insn.Clear()
			n, err := b.Decode(insn, data[off:], uint64(off), vma+uint64(off))
			if err != nil || n <= 0 {
				insn.Clear()
				insn.SetLocation(uint64(off), vma+uint64(off))
				insn.SetBytes(data[off : off+1])
				insn.SetAscii(badInsnText)
				insn.Status = model.DecodeBasic
				n = 1
			}
			if !visit(insn) {
				return nil
			}
			off += n
		}
		return nil
	})
}
