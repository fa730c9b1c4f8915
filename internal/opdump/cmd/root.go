package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"opdump/internal/logging"
)

var logger = logging.New()

var rootCmd = &cobra.Command{
	Use:   "opdump",
	Short: "Dump disassembled instructions from binaries",
	Long: `opdump disassembles the executable section of a binary (or a raw
code buffer) and prints an annotated instruction listing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
