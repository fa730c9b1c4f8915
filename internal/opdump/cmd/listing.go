package cmd

import (
	"fmt"
	"strings"

	"opdump/internal/model"
)

// commentColumn is where the ';' annotation starts on listing lines.
const commentColumn = 60

// formatLine renders one instruction as a listing line:
//
//	vma:  raw bytes             text                ; comment
func formatLine(insn *model.Instruction) string {
	text := insn.Ascii()
	if text == "" {
		// No full rendering; reconstruct from the decoded parts.
		if p := insn.Prefixes(); p != "" {
			text = p + " " + insn.Mnemonic()
		} else {
			text = insn.Mnemonic()
		}
		if asciis := operandAsciis(insn); asciis != "" {
			text += " " + asciis
		}
	}

	line := fmt.Sprintf("%8x:  %-21s  %s", insn.VMA, hexBytes(insn.Bytes), text)
	if c := insn.Comment(); c != "" {
		line = fmt.Sprintf("%-*s ; %s", commentColumn, line, c)
	}
	return line
}

func operandAsciis(insn *model.Instruction) string {
	ops := insn.Operands()
	if len(ops) == 0 {
		return ""
	}
	parts := make([]string, len(ops))
	for k, op := range ops {
		parts[k] = op.Ascii()
	}
	return strings.Join(parts, ", ")
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for k, x := range b {
		parts[k] = fmt.Sprintf("%02x", x)
	}
	return strings.Join(parts, " ")
}
