package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"opdump/internal/disasm"
	"opdump/internal/disasm/x86"
	"opdump/internal/elfx"
	"opdump/internal/model"
	"opdump/internal/ui/colorize"
)

var summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Disassemble a binary's executable section",
	Long: `Disassemble the .text section of an ELF binary, or a raw buffer of
machine code with --raw, and print one line per instruction. Branch
instructions are annotated with their resolved target.`,
	Example: `
# Disassemble an ELF binary
opdump disasm /bin/true

# Disassemble raw 32-bit code loaded at 0x8048000
opdump disasm --raw --mode 32 --vma 0x8048000 code.bin

# Show only the branches
opdump disasm --branches /bin/true
  `,
	Args: cobra.ExactArgs(1),
	RunE: runDisasm,
}

func init() {
	disasmCmd.Flags().Bool("raw", false, "treat the file as raw machine code")
	disasmCmd.Flags().Uint64("vma", 0, "load address of the code")
	disasmCmd.Flags().Int("mode", 0, "processor mode: 16, 32 or 64 (default: from the ELF header)")
	disasmCmd.Flags().Bool("branches", false, "print only branch instructions")
	disasmCmd.Flags().Bool("no-color", false, "disable listing colors")
}

func runDisasm(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, _ := cmd.Flags().GetBool("raw")
	vma, _ := cmd.Flags().GetUint64("vma")
	mode, _ := cmd.Flags().GetInt("mode")
	branchesOnly, _ := cmd.Flags().GetBool("branches")
	noColor, _ := cmd.Flags().GetBool("no-color")

	var code []byte
	if raw {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		code = b
	} else {
		text, err := elfx.LoadText(path)
		if err != nil {
			return err
		}
		code = text.Bytes
		if vma == 0 {
			vma = text.VMA
		}
		if mode == 0 {
			if m, err := elfx.Mode(path); err == nil {
				mode = m
			}
		}
		logger.Debug("loaded section", "name", text.Name, "bytes", len(code), "vma", fmt.Sprintf("%#x", vma))
	}
	if mode == 0 {
		mode = 64
	}

	backend, err := x86.New(mode)
	if err != nil {
		return err
	}
	pool, err := model.NewPool(model.DefaultFixedConfig)
	if err != nil {
		return err
	}

	var lines []string
	total, branches := 0, 0
	err = disasm.Walk(backend, pool, code, vma, func(insn *model.Instruction) bool {
		total++
		if insn.IsBranch() {
			branches++
			if tgt := insn.Target(); tgt != nil {
				insn.AddComment("-> " + tgt.Ascii())
			}
			if !insn.FallsThrough() {
				insn.AddComment("no fall-through")
			}
		} else if branchesOnly {
			return true
		}
		lines = append(lines, formatLine(insn))
		return true
	})
	if err != nil {
		return err
	}

	listing := strings.Join(lines, "\n")
	if !noColor {
		listing = colorize.Listing(listing)
	}
	fmt.Fprintln(cmd.OutOrStdout(), listing)
	fmt.Fprintln(cmd.OutOrStdout(),
		summaryStyle.Render(fmt.Sprintf("%d instructions, %d branches", total, branches)))

	logger.Info("disassembly complete", "file", path, "instructions", total, "branches", branches)
	return nil
}
