package cmd

import (
	"strings"
	"testing"

	"opdump/internal/model"
)

func TestFormatLine(t *testing.T) {
	insn := model.NewInstruction(0)
	insn.SetLocation(0, 0x401000)
	insn.SetBytes([]byte{0xeb, 0xfe})
	insn.SetAscii("jmp 0x401000")

	got := formatLine(insn)
	if !strings.Contains(got, "401000:") {
		t.Errorf("formatLine() = %q, want address column", got)
	}
	if !strings.Contains(got, "eb fe") {
		t.Errorf("formatLine() = %q, want raw bytes", got)
	}
	if !strings.Contains(got, "jmp 0x401000") {
		t.Errorf("formatLine() = %q, want instruction text", got)
	}
	if strings.Contains(got, ";") {
		t.Errorf("formatLine() = %q, no comment expected", got)
	}
}

func TestFormatLineComment(t *testing.T) {
	insn := model.NewInstruction(0)
	insn.SetLocation(0, 0x401000)
	insn.SetBytes([]byte{0xc3})
	insn.SetAscii("ret")
	insn.AddComment("no fall-through")

	got := formatLine(insn)
	if !strings.HasSuffix(got, "; no fall-through") {
		t.Errorf("formatLine() = %q, want trailing comment", got)
	}
}

func TestFormatLineReconstructed(t *testing.T) {
	insn := model.NewInstruction(2)
	insn.SetLocation(0, 0x8048000)
	insn.SetBytes([]byte{0xf3, 0xa4})
	insn.AddPrefix("rep")
	insn.SetMnemonic("movsb")

	op := model.NewOperand()
	op.SetAscii("byte ptr [edi]")
	insn.AddOperand(op)
	op = model.NewOperand()
	op.SetAscii("byte ptr [esi]")
	insn.AddOperand(op)

	got := formatLine(insn)
	if !strings.Contains(got, "rep movsb byte ptr [edi], byte ptr [esi]") {
		t.Errorf("formatLine() = %q, want reconstructed text", got)
	}
}

func TestHexBytes(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{0x90}, "90"},
		{[]byte{0x48, 0x89, 0xe5}, "48 89 e5"},
	}
	for _, tt := range tests {
		if got := hexBytes(tt.in); got != tt.want {
			t.Errorf("hexBytes(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
