package model

import "sync"

// FixedConfig sizes the scratch instructions a Pool hands out.
type FixedConfig struct {
	AsciiCap        int // ascii and comment buffer capacity
	MnemonicCap     int // mnemonic capacity; prefixes get 4x this
	NumOperands     int // pre-allocated operand slots
	OperandAsciiCap int // per-operand display capacity
}

// DefaultFixedConfig is generous enough for any x86 instruction rendering.
var DefaultFixedConfig = FixedConfig{
	AsciiCap:        128,
	MnemonicCap:     32,
	NumOperands:     8,
	OperandAsciiCap: 64,
}

// Pool hands out fixed-size scratch instructions, one per decode call, and
// guarantees each is cleared before reuse. It replaces the bare "clear,
// refill, read, clear" discipline a long-lived buffer would otherwise
// require of every caller.
type Pool struct {
	cfg  FixedConfig
	pool sync.Pool
}

// NewPool returns a pool producing instructions sized by cfg. Capacity
// validation happens here, once, so Acquire cannot fail.
func NewPool(cfg FixedConfig) (*Pool, error) {
	probe, err := NewFixedInstruction(cfg.AsciiCap, cfg.MnemonicCap,
		cfg.NumOperands, cfg.OperandAsciiCap)
	if err != nil {
		return nil, err
	}
	p := &Pool{cfg: cfg}
	p.pool.New = func() interface{} {
		insn, _ := NewFixedInstruction(cfg.AsciiCap, cfg.MnemonicCap,
			cfg.NumOperands, cfg.OperandAsciiCap)
		return insn
	}
	p.pool.Put(probe)
	return p, nil
}

// Acquire returns a cleared fixed-size instruction. Pass it back to Release
// when the decode call is done with it.
func (p *Pool) Acquire() *Instruction {
	insn := p.pool.Get().(*Instruction)
	insn.Clear()
	return insn
}

// Release clears insn and returns it to the pool. Instructions that did not
// come from a pool are ignored, as is nil.
func (p *Pool) Release(insn *Instruction) {
	if insn == nil || !insn.fixed {
		return
	}
	insn.Clear()
	p.pool.Put(insn)
}

// With runs fn with a scratch instruction scoped to the call: the buffer is
// acquired on entry and cleared and released on return, even on error.
func (p *Pool) With(fn func(*Instruction) error) error {
	insn := p.Acquire()
	defer p.Release(insn)
	return fn(insn)
}
