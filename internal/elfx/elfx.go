// Package elfx provides helpers for pulling executable code out of ELF
// binaries.
package elfx

import (
	"debug/elf"
	"fmt"
)

// Text is a loaded executable section: its raw bytes and the virtual
// address they are mapped at.
type Text struct {
	Name  string
	Bytes []byte
	VMA   uint64
}

// LoadText opens an ELF binary and returns the contents of .text, falling
// back to the first executable PROGBITS section when no section is named
// .text.
func LoadText(path string) (*Text, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: open %s: %w", path, err)
	}
	defer f.Close()

	sec := f.Section(".text")
	if sec == nil {
		for _, s := range f.Sections {
			if s.Type == elf.SHT_PROGBITS && s.Flags&elf.SHF_EXECINSTR != 0 {
				sec = s
				break
			}
		}
	}
	if sec == nil {
		return nil, fmt.Errorf("elfx: %s has no executable section", path)
	}

	data, err := sec.Data()
	if err != nil {
		return nil, fmt.Errorf("elfx: read %s of %s: %w", sec.Name, path, err)
	}
	return &Text{Name: sec.Name, Bytes: data, VMA: sec.Addr}, nil
}

// Mode returns the x86 processor mode for the binary's ELF class, or an
// error for non-x86 machine types.
func Mode(path string) (int, error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("elfx: open %s: %w", path, err)
	}
	defer f.Close()

	switch f.Machine {
	case elf.EM_X86_64:
		return 64, nil
	case elf.EM_386:
		return 32, nil
	}
	return 0, fmt.Errorf("elfx: unsupported machine %v", f.Machine)
}
