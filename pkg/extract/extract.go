// Package extract lists and dumps the programs and banks of an SQ80 disk image
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/james-see/sq80extract/pkg/converter"
	"github.com/james-see/sq80extract/pkg/disk"
)

// Mode selects what is extracted
type Mode string

const (
	ModeProgram     Mode = "prog"     // individually saved programs
	ModeBank        Mode = "bank"     // program banks
	ModeVirtualBank Mode = "virtbank" // single programs consolidated into banks
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeProgram, ModeBank, ModeVirtualBank:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want prog, bank or virtbank)", s)
	}
}

// Limit returns the highest item number of the mode
func (m Mode) Limit() int {
	switch m {
	case ModeProgram:
		return disk.MaxPrograms
	case ModeBank:
		return disk.MaxBanks
	default:
		return (disk.MaxPrograms + disk.ProgramsPerBank - 1) / disk.ProgramsPerBank
	}
}

var (
	ErrNumberZero     = errors.New("banks/programs count from 1 upwards")
	ErrListAndDump    = errors.New("cannot select --list and --dump at the same time")
	ErrOutOfRange     = errors.New("number out of range")
	ErrBlank          = errors.New("selected item is blank")
	ErrNoVirtualBank  = errors.New("no such virtual bank")
	ErrOutputExists   = errors.New("output file already exists")
	ErrNumberRequired = errors.New("a number is required")
)

// Options controls listing and dumping
type Options struct {
	Number  int              // 1-based item number, 0 for all
	Format  converter.Format // output format, empty to only list
	Prefix  string           // output file prefix, may contain directories
	List    bool             // concise five-per-line listing
	Channel uint8            // SysEx channel, 0-15
	Deleted bool             // include deleted single programs
	Force   bool             // overwrite existing files
}

// Dumping reports whether files will be written
func (o Options) Dumping() bool {
	return o.Format != "" && o.Format != converter.FormatUnknown
}

// Validate checks the option combination for a mode
func (o Options) Validate(mode Mode) error {
	if o.Number < 0 {
		return ErrNumberZero
	}
	if o.List && o.Dumping() {
		return ErrListAndDump
	}
	if o.Number > mode.Limit() && mode != ModeVirtualBank {
		return fmt.Errorf("%w: %s %d (1-%d)", ErrOutOfRange, mode, o.Number, mode.Limit())
	}
	if o.Channel > 15 {
		return fmt.Errorf("invalid MIDI channel %d", o.Channel+1)
	}
	return nil
}

// Extractor runs one mode over an image, reporting progress to out
type Extractor struct {
	img  *disk.Image
	conv *converter.Converter
	out  io.Writer
	opts Options

	written []string
}

// New creates an Extractor. A nil out discards the report.
func New(img *disk.Image, conv *converter.Converter, out io.Writer, opts Options) *Extractor {
	if out == nil {
		out = io.Discard
	}
	return &Extractor{img: img, conv: conv, out: out, opts: opts}
}

// Written returns the files written so far
func (e *Extractor) Written() []string {
	return e.written
}

// Run lists or dumps according to mode
func (e *Extractor) Run(mode Mode) error {
	if err := e.opts.Validate(mode); err != nil {
		return err
	}

	fmt.Fprintln(e.out, "SQ80 Disk Image File:", e.img.Name())

	switch mode {
	case ModeProgram:
		return e.runPrograms()
	case ModeBank:
		return e.runBanks()
	case ModeVirtualBank:
		return e.runVirtualBanks()
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func (e *Extractor) selected(index int) bool {
	return e.opts.Number == 0 || e.opts.Number-1 == index
}

func (e *Extractor) visible(p disk.ProgramEntry) bool {
	return !p.Empty() || (e.opts.Deleted && p.Deleted())
}

func (e *Extractor) runPrograms() error {
	if e.opts.Dumping() {
		fmt.Fprintln(e.out, "Dumping individual program/s...")
	} else {
		fmt.Fprintln(e.out, "Listing individual program/s...")
	}

	concise := e.opts.List && e.opts.Number == 0 && !e.opts.Dumping()
	printed := false

	for i, p := range e.img.Directory().Programs {
		if concise && i%5 == 0 && printed {
			printed = false
			fmt.Fprintln(e.out)
		}

		if !e.selected(i) {
			continue
		}

		if !e.visible(p) {
			if e.opts.Number != 0 {
				return fmt.Errorf("%w: program %d", ErrBlank, i+1)
			}
			continue
		}

		name := p.Name()

		switch {
		case e.opts.Dumping():
			file := FileName(ModeProgram, e.opts.Prefix, i+1, name, e.opts.Format)
			fmt.Fprintf(e.out, "  PROG %2d - %s -> %s\n", i+1, name, file)

			data, err := e.img.ReadProgram(i)
			if err != nil {
				return err
			}
			if err := e.dump(converter.KindProgram, data, file); err != nil {
				return err
			}
		case e.opts.Number != 0 || !e.opts.List:
			fmt.Fprintf(e.out, "  PROG %2d - %s\n", i+1, name)
		default:
			printed = true
			fmt.Fprintf(e.out, " %03d:%-8s", i+1, name)
		}
	}

	if concise && printed {
		fmt.Fprintln(e.out)
	}
	return nil
}

func (e *Extractor) runBanks() error {
	if e.opts.Dumping() {
		fmt.Fprintln(e.out, "Dumping bank/s...")
	} else {
		fmt.Fprintln(e.out, "Listing bank/s...")
	}

	for i, b := range e.img.Directory().Banks {
		if !e.selected(i) {
			continue
		}

		if b.Empty() {
			if e.opts.Number != 0 {
				return fmt.Errorf("%w: bank %d doesn't exist", ErrBlank, i+1)
			}
			continue
		}

		name := b.Name()

		switch {
		case e.opts.Dumping():
			file := FileName(ModeBank, e.opts.Prefix, i+1, name, e.opts.Format)
			fmt.Fprintf(e.out, "  BANK %2d - %s   -> %s\n", i+1, name, file)

			data, err := e.img.ReadBank(i)
			if err != nil {
				return err
			}
			if err := e.dump(converter.KindBank, data, file); err != nil {
				return err
			}
		case e.opts.List:
			fmt.Fprintf(e.out, "BANK %2d - %s\n", i+1, name)

			data, err := e.img.ReadBank(i)
			if err != nil {
				return err
			}
			for j, progName := range disk.BankProgramNames(data) {
				if j > 0 && j%5 == 0 {
					fmt.Fprintln(e.out)
				}
				fmt.Fprintf(e.out, " %03d:%-8s", j+1, progName)
			}
			fmt.Fprintln(e.out)
		default:
			fmt.Fprintf(e.out, "  BANK %2d - %s\n", i+1, name)
		}
	}

	return nil
}

func (e *Extractor) runVirtualBanks() error {
	fmt.Fprintln(e.out, "Listing virtual bank contents...")

	banks, err := VirtualBanks(e.img, e.opts.Deleted)
	if err != nil {
		return err
	}
	if e.opts.Number > len(banks) {
		return fmt.Errorf("%w: %d (disk has %d)", ErrNoVirtualBank, e.opts.Number, len(banks))
	}

	for _, vb := range banks {
		if !e.selected(vb.Index) {
			continue
		}
		fmt.Fprintln(e.out, vb.Name)
		for j, p := range vb.Programs {
			fmt.Fprintf(e.out, " %03d:%-8s", p.Index+1, p.Name())
			if (j+1)%5 == 0 {
				fmt.Fprintln(e.out)
			}
		}
	}
	fmt.Fprintln(e.out)

	if !e.opts.Dumping() {
		return nil
	}

	fmt.Fprintln(e.out, "Dumping virtual bank/s...")
	for _, vb := range banks {
		if !e.selected(vb.Index) {
			continue
		}
		file := FileName(ModeVirtualBank, e.opts.Prefix, vb.Index+1, "", e.opts.Format)
		fmt.Fprintf(e.out, "  %s   -> %s\n", vb.Name, file)
		if err := e.dump(converter.KindBank, vb.Data, file); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) dump(kind converter.DumpKind, data []byte, file string) error {
	out, err := e.conv.Encode(&converter.Dump{Kind: kind, Channel: e.opts.Channel, Data: data}, e.opts.Format)
	if err != nil {
		return err
	}
	if err := WriteFile(file, out, e.opts.Force); err != nil {
		return err
	}
	e.written = append(e.written, file)
	return nil
}
