package extract

import (
	"fmt"

	"github.com/james-see/sq80extract/pkg/converter"
	"github.com/james-see/sq80extract/pkg/disk"
)

// Record is a single extracted item
type Record struct {
	Mode   Mode
	Number int // 1-based
	Name   string
	Kind   converter.DumpKind
	Data   []byte
}

// FileName returns the default output file name for the record
func (r *Record) FileName(format converter.Format) string {
	return FileName(r.Mode, "", r.Number, r.Name, format)
}

// ReadRecord fetches item number n (1-based) of the given mode
func ReadRecord(img *disk.Image, mode Mode, n int, withDeleted bool) (*Record, error) {
	if n == 0 {
		return nil, ErrNumberRequired
	}
	if n < 0 {
		return nil, ErrNumberZero
	}

	switch mode {
	case ModeProgram:
		if n > disk.MaxPrograms {
			return nil, fmt.Errorf("%w: program %d", ErrOutOfRange, n)
		}
		p := img.Directory().Programs[n-1]
		if p.Empty() && !(withDeleted && p.Deleted()) {
			return nil, fmt.Errorf("%w: program %d", ErrBlank, n)
		}
		data, err := img.ReadProgram(n - 1)
		if err != nil {
			return nil, err
		}
		return &Record{Mode: mode, Number: n, Name: p.Name(), Kind: converter.KindProgram, Data: data}, nil

	case ModeBank:
		if n > disk.MaxBanks {
			return nil, fmt.Errorf("%w: bank %d", ErrOutOfRange, n)
		}
		b := img.Directory().Banks[n-1]
		if b.Empty() {
			return nil, fmt.Errorf("%w: bank %d doesn't exist", ErrBlank, n)
		}
		data, err := img.ReadBank(n - 1)
		if err != nil {
			return nil, err
		}
		return &Record{Mode: mode, Number: n, Name: b.Name(), Kind: converter.KindBank, Data: data}, nil

	case ModeVirtualBank:
		banks, err := VirtualBanks(img, withDeleted)
		if err != nil {
			return nil, err
		}
		if n > len(banks) {
			return nil, fmt.Errorf("%w: %d (disk has %d)", ErrNoVirtualBank, n, len(banks))
		}
		vb := banks[n-1]
		return &Record{Mode: mode, Number: n, Name: vb.Name, Kind: converter.KindBank, Data: vb.Data}, nil

	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}
