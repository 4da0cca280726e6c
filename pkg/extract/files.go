package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/sq80extract/pkg/converter"
)

// DefaultPrefix returns the file prefix used when none is given
func DefaultPrefix(mode Mode) string {
	switch mode {
	case ModeProgram:
		return "PROG"
	case ModeBank:
		return "BANK"
	default:
		return "VIRTBANK"
	}
}

// nameSeparators keeps record names from reaching into other directories
var nameSeparators = strings.NewReplacer("/", "_", "\\", "_")

// FileName builds the output file name for item number n (1-based):
// PROG001_NAME.syx, BANK01_NAME.syx or VIRTBANK01.syx. A prefix replaces
// the PROG/BANK/VIRTBANK stem as given, so a directory needs its stem too
// ("out/PROG").
func FileName(mode Mode, prefix string, n int, name string, format converter.Format) string {
	if prefix == "" {
		prefix = DefaultPrefix(mode)
	}
	name = nameSeparators.Replace(name)

	var base string
	switch mode {
	case ModeProgram:
		base = fmt.Sprintf("%s%03d_%s", prefix, n, strings.TrimRight(name, " "))
	case ModeBank:
		base = fmt.Sprintf("%s%02d_%s", prefix, n, strings.TrimRight(name, ". "))
	default:
		base = fmt.Sprintf("%s%02d", prefix, n)
	}
	return base + format.Ext()
}

// WriteFile writes data to path, creating parent directories. An existing
// file is only replaced when force is set.
func WriteFile(path string, data []byte, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return f.Close()
}
