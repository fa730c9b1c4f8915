// Package colorize applies terminal syntax highlighting to disassembly
// listings.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getAssemblyLexer returns an x86 assembly lexer with fallbacks.
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"nasm", "gas", "GAS", "Gas"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getListingStyle returns the listing style with fallbacks.
func getListingStyle() *chroma.Style {
	candidates := []string{"dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter.
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Listing highlights a whole disassembly listing. Colors are skipped when
// OPDUMP_NO_COLOR is set; on any tokenizer or formatter failure the plain
// text comes back unchanged.
func Listing(code string) string {
	if os.Getenv("OPDUMP_NO_COLOR") != "" {
		return code
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getListingStyle(), iterator); err != nil {
		return code
	}
	return buf.String()
}
