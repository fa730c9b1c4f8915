package disasm_test

import (
	"testing"

	"opdump/internal/disasm"
	"opdump/internal/disasm/x86"
	"opdump/internal/model"
)

func newWalkFixtures(t *testing.T) (*x86.Backend, *model.Pool) {
	t.Helper()
	b, err := x86.New(64)
	if err != nil {
		t.Fatalf("x86.New failed: %v", err)
	}
	pool, err := model.NewPool(model.DefaultFixedConfig)
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	return b, pool
}

func TestWalk(t *testing.T) {
	b, pool := newWalkFixtures(t)

	// push rbp; nop; ret
	code := []byte{0x55, 0x90, 0xc3}

	var kept []*model.Instruction
	err := disasm.Walk(b, pool, code, 0x1000, func(insn *model.Instruction) bool {
		// The visited instruction is a reused scratch buffer; keep a copy.
		kept = append(kept, insn.Dup())
		return true
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(kept) != 3 {
		t.Fatalf("visited %d instructions, want 3", len(kept))
	}
	wantMnemonics := []string{"push", "nop", "ret"}
	for k, insn := range kept {
		if insn.Mnemonic() != wantMnemonics[k] {
			t.Errorf("instruction %d mnemonic = %q, want %q", k, insn.Mnemonic(), wantMnemonics[k])
		}
		if insn.VMA != 0x1000+uint64(k) {
			t.Errorf("instruction %d vma = %#x", k, insn.VMA)
		}
		if insn.Offset != uint64(k) {
			t.Errorf("instruction %d offset = %d", k, insn.Offset)
		}
		if insn.Fixed() {
			t.Errorf("instruction %d: Dup returned a fixed object", k)
		}
	}
}

func TestWalkStops(t *testing.T) {
	b, pool := newWalkFixtures(t)

	visits := 0
	err := disasm.Walk(b, pool, []byte{0x90, 0x90, 0x90}, 0, func(*model.Instruction) bool {
		visits++
		return false
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if visits != 1 {
		t.Errorf("visited %d instructions after stop, want 1", visits)
	}
}

func TestWalkBadBytes(t *testing.T) {
	b, pool := newWalkFixtures(t)

	// 06 is invalid in 64-bit mode; the walk must resynchronize after it.
	code := []byte{0x06, 0x90}

	var texts []string
	var sizes []int
	err := disasm.Walk(b, pool, code, 0x2000, func(insn *model.Instruction) bool {
		texts = append(texts, insn.Ascii())
		sizes = append(sizes, insn.Size())
		return true
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(texts) != 2 {
		t.Fatalf("visited %d instructions, want 2", len(texts))
	}
	if texts[0] != "(bad)" || sizes[0] != 1 {
		t.Errorf("bad byte rendered as %q size %d", texts[0], sizes[0])
	}
	if texts[1] != "nop" || sizes[1] != 1 {
		t.Errorf("second instruction = %q size %d", texts[1], sizes[1])
	}
}

func TestWalkNilArguments(t *testing.T) {
	_, pool := newWalkFixtures(t)
	if err := disasm.Walk(nil, pool, []byte{0x90}, 0, func(*model.Instruction) bool { return true }); err == nil {
		t.Error("Walk with nil backend succeeded")
	}
}
