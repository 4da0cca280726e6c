package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/sq80extract/pkg/converter"
	"github.com/james-see/sq80extract/pkg/converter/devices"
	"github.com/james-see/sq80extract/pkg/disk"
	"github.com/james-see/sq80extract/pkg/disk/disktest"
)

func newConverter() *converter.Converter {
	return converter.New(devices.NewSQ80())
}

func sampleImage() *disk.Image {
	return disktest.NewBuilder().
		AddProgram(0, disktest.Program("BRASS1", 0x10)).
		AddProgram(2, disktest.Program("STRING", 0x20)).
		AddProgram(6, disktest.Program("ORGAN ", 0x30)).
		AddProgram(9, disktest.Program("GHOST ", 0x40)).
		DeleteProgram(9).
		AddBank(0, "FACTORY...", [][]byte{
			disktest.Program("PIANO ", 1),
			disktest.Program("CLAV  ", 2),
		}).
		AddBank(21, "USER 2", nil).
		Image()
}

func run(t *testing.T, img *disk.Image, mode Mode, opts Options) (string, *Extractor, error) {
	t.Helper()
	var out bytes.Buffer
	e := New(img, newConverter(), &out, opts)
	err := e.Run(mode)
	return out.String(), e, err
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"prog", "bank", "virtbank", "PROG"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) error = %v", s, err)
		}
	}
	if _, err := ParseMode("song"); err == nil {
		t.Error("ParseMode(song) expected error")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		opts Options
		want error
	}{
		{"negative", ModeProgram, Options{Number: -1}, ErrNumberZero},
		{"list and dump", ModeProgram, Options{List: true, Format: converter.FormatSyx}, ErrListAndDump},
		{"program range", ModeProgram, Options{Number: 129}, ErrOutOfRange},
		{"bank range", ModeBank, Options{Number: 41}, ErrOutOfRange},
		{"ok", ModeBank, Options{Number: 40, List: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate(tt.mode)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunProgramsListing(t *testing.T) {
	out, _, err := run(t, sampleImage(), ModeProgram, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "SQ80 Disk Image File: test.img\n" +
		"Listing individual program/s...\n" +
		"  PROG  1 - BRASS1\n" +
		"  PROG  3 - STRING\n" +
		"  PROG  7 - ORGAN \n"
	if out != want {
		t.Errorf("Run() output =\n%s\nwant\n%s", out, want)
	}
}

func TestRunProgramsConcise(t *testing.T) {
	out, _, err := run(t, sampleImage(), ModeProgram, Options{List: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "SQ80 Disk Image File: test.img\n" +
		"Listing individual program/s...\n" +
		" 001:BRASS1   003:STRING  \n" +
		" 007:ORGAN   \n"
	if out != want {
		t.Errorf("Run() output =\n%q\nwant\n%q", out, want)
	}
}

func TestRunProgramsDeleted(t *testing.T) {
	out, _, err := run(t, sampleImage(), ModeProgram, Options{Deleted: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "  PROG 10 - -HOST \n") {
		t.Errorf("deleted program missing from output:\n%s", out)
	}
}

func TestRunProgramsDump(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "out", "PROG")

	out, e, err := run(t, sampleImage(), ModeProgram, Options{Number: 3, Format: converter.FormatSyx, Prefix: prefix})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	file := prefix + "003_STRING.syx"
	if !strings.Contains(out, "Dumping individual program/s...\n  PROG  3 - STRING -> "+file+"\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if len(e.Written()) != 1 || e.Written()[0] != file {
		t.Fatalf("Written() = %v, want [%s]", e.Written(), file)
	}

	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	want, err := devices.NewSQ80().GenerateSyx(&converter.Dump{
		Kind: converter.KindProgram,
		Data: disktest.Program("STRING", 0x20),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("dumped SysEx differs from the encoded program")
	}

	// refuses to overwrite unless forced
	if _, _, err := run(t, sampleImage(), ModeProgram, Options{Number: 3, Format: converter.FormatSyx, Prefix: prefix}); !errors.Is(err, ErrOutputExists) {
		t.Errorf("second Run() error = %v, want ErrOutputExists", err)
	}
	if _, _, err := run(t, sampleImage(), ModeProgram, Options{Number: 3, Format: converter.FormatSyx, Prefix: prefix, Force: true}); err != nil {
		t.Errorf("forced Run() error = %v", err)
	}
}

func TestRunProgramsDumpAll(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "SQ")
	_, e, err := run(t, sampleImage(), ModeProgram, Options{Format: converter.FormatBin, Prefix: prefix, Channel: 4})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{prefix + "001_BRASS1.bin", prefix + "003_STRING.bin", prefix + "007_ORGAN.bin"}
	if fmt.Sprint(e.Written()) != fmt.Sprint(want) {
		t.Errorf("Written() = %v, want %v", e.Written(), want)
	}

	got, err := os.ReadFile(want[2])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, disktest.Program("ORGAN ", 0x30)) {
		t.Error("binary dump differs from the program on disk")
	}
}

func TestRunProgramsErrors(t *testing.T) {
	if _, _, err := run(t, sampleImage(), ModeProgram, Options{Number: 2}); !errors.Is(err, ErrBlank) {
		t.Errorf("blank program error = %v, want ErrBlank", err)
	}
	if _, _, err := run(t, sampleImage(), ModeProgram, Options{Number: 10}); !errors.Is(err, ErrBlank) {
		t.Errorf("deleted program error = %v, want ErrBlank", err)
	}

	img := disktest.NewBuilder().
		AddProgram(0, disktest.Program("ORGAN ", 1)).
		SetProgramName(0, "PIPES ").
		Image()
	prefix := t.TempDir() + string(filepath.Separator)
	if _, _, err := run(t, img, ModeProgram, Options{Format: converter.FormatSyx, Prefix: prefix}); !errors.Is(err, disk.ErrNameMismatch) {
		t.Errorf("mismatch error = %v, want ErrNameMismatch", err)
	}
}

func TestRunBanksListing(t *testing.T) {
	out, _, err := run(t, sampleImage(), ModeBank, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "SQ80 Disk Image File: test.img\n" +
		"Listing bank/s...\n" +
		"  BANK  1 - FACTORY...\n" +
		"  BANK 22 - USER 2    \n"
	if out != want {
		t.Errorf("Run() output =\n%q\nwant\n%q", out, want)
	}
}

func TestRunBanksList(t *testing.T) {
	out, _, err := run(t, sampleImage(), ModeBank, Options{Number: 1, List: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// header, mode line, bank line, 8 lines of 5 programs
	if len(lines) != 11 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[2] != "BANK  1 - FACTORY..." {
		t.Errorf("bank line = %q", lines[2])
	}
	if lines[3] != " 001:PIANO    002:CLAV     003:         004:         005:        " {
		t.Errorf("first program line = %q", lines[3])
	}
	if !strings.HasPrefix(lines[10], " 036:") {
		t.Errorf("last program line = %q", lines[10])
	}
}

func TestRunBanksDump(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "BANK")
	out, e, err := run(t, sampleImage(), ModeBank, Options{Number: 1, Format: converter.FormatBin, Prefix: prefix})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	file := prefix + "01_FACTORY.bin"
	if !strings.Contains(out, "  BANK  1 - FACTORY...   -> "+file+"\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if len(e.Written()) != 1 || e.Written()[0] != file {
		t.Fatalf("Written() = %v", e.Written())
	}

	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != disk.BankSize || disk.ProgramName(got[disk.ProgramSize:]) != "CLAV  " {
		t.Error("bank dump has unexpected contents")
	}
}

func TestRunBanksBlank(t *testing.T) {
	if _, _, err := run(t, sampleImage(), ModeBank, Options{Number: 2}); !errors.Is(err, ErrBlank) {
		t.Errorf("Run() error = %v, want ErrBlank", err)
	}
}

func manyPrograms(n int) *disk.Image {
	b := disktest.NewBuilder()
	for i := 0; i < n; i++ {
		b.AddProgram(i, disktest.Program(fmt.Sprintf("P%05d", i+1), byte(i)))
	}
	return b.Image()
}

func TestVirtualBanks(t *testing.T) {
	banks, err := VirtualBanks(manyPrograms(45), false)
	if err != nil {
		t.Fatalf("VirtualBanks() error = %v", err)
	}
	if len(banks) != 2 {
		t.Fatalf("VirtualBanks() = %d banks, want 2", len(banks))
	}

	if banks[0].Name != "VIRTBANK01" || len(banks[0].Programs) != 40 {
		t.Errorf("bank 1 = %s with %d programs", banks[0].Name, len(banks[0].Programs))
	}
	if banks[1].Name != "VIRTBANK02" || len(banks[1].Programs) != 5 {
		t.Errorf("bank 2 = %s with %d programs", banks[1].Name, len(banks[1].Programs))
	}

	for _, vb := range banks {
		if len(vb.Data) != disk.BankSize {
			t.Errorf("%s has %d bytes, want %d", vb.Name, len(vb.Data), disk.BankSize)
		}
	}

	names := disk.BankProgramNames(banks[1].Data)
	if names[0] != "P00041" || names[4] != "P00045" {
		t.Errorf("bank 2 names = %v", names[:5])
	}
	if !bytes.Equal(banks[1].Data[5*disk.ProgramSize:6*disk.ProgramSize], disk.InitProgram()) {
		t.Error("bank 2 should be padded with the init program")
	}
}

func TestRunVirtualBanks(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "VIRTBANK")
	out, e, err := run(t, manyPrograms(45), ModeVirtualBank, Options{Number: 2, Format: converter.FormatSyx, Prefix: prefix})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "SQ80 Disk Image File: test.img\n" +
		"Listing virtual bank contents...\n" +
		"VIRTBANK02\n" +
		" 041:P00041   042:P00042   043:P00043   044:P00044   045:P00045  \n" +
		"\n" +
		"Dumping virtual bank/s...\n" +
		"  VIRTBANK02   -> " + prefix + "02.syx\n"
	if out != want {
		t.Errorf("Run() output =\n%q\nwant\n%q", out, want)
	}
	if len(e.Written()) != 1 {
		t.Fatalf("Written() = %v", e.Written())
	}

	got, err := os.ReadFile(e.Written()[0])
	if err != nil {
		t.Fatal(err)
	}
	dump, err := devices.NewSQ80().ParseSyx(got)
	if err != nil {
		t.Fatalf("ParseSyx() error = %v", err)
	}
	if dump.Kind != converter.KindBank || len(dump.Data) != disk.BankSize {
		t.Errorf("dump = %s with %d bytes", dump.Kind, len(dump.Data))
	}

	if _, _, err := run(t, manyPrograms(45), ModeVirtualBank, Options{Number: 3}); !errors.Is(err, ErrNoVirtualBank) {
		t.Errorf("Run() error = %v, want ErrNoVirtualBank", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		mode   Mode
		prefix string
		n      int
		name   string
		format converter.Format
		want   string
	}{
		{ModeProgram, "", 5, "LEAD  ", converter.FormatSyx, "PROG005_LEAD.syx"},
		{ModeProgram, "out/", 120, "BASS 1", converter.FormatBin, "out/120_BASS 1.bin"},
		{ModeProgram, "out/PROG", 120, "BASS 1", converter.FormatBin, "out/PROG120_BASS 1.bin"},
		{ModeProgram, "", 9, "AC/DC ", converter.FormatSyx, "PROG009_AC_DC.syx"},
		{ModeProgram, "", 10, `A\B   `, converter.FormatSyx, "PROG010_A_B.syx"},
		{ModeBank, "", 3, "FACTORY...", converter.FormatSyx, "BANK03_FACTORY.syx"},
		{ModeBank, "X", 40, "USER      ", converter.FormatMIDI, "X40_USER.mid"},
		{ModeBank, "", 2, "DRUMS. .  ", converter.FormatBin, "BANK02_DRUMS.bin"},
		{ModeBank, "", 4, "LIVE 1 .. ", converter.FormatSyx, "BANK04_LIVE 1.syx"},
		{ModeBank, "", 5, "IN/OUT", converter.FormatSyx, "BANK05_IN_OUT.syx"},
		{ModeVirtualBank, "", 1, "", converter.FormatSyx, "VIRTBANK01.syx"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FileName(tt.mode, tt.prefix, tt.n, tt.name, tt.format); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadRecord(t *testing.T) {
	img := sampleImage()

	rec, err := ReadRecord(img, ModeProgram, 7, false)
	if err != nil {
		t.Fatalf("ReadRecord(prog) error = %v", err)
	}
	if rec.Name != "ORGAN " || rec.Kind != converter.KindProgram || rec.FileName(converter.FormatSyx) != "PROG007_ORGAN.syx" {
		t.Errorf("ReadRecord(prog) = %+v", rec)
	}

	rec, err = ReadRecord(img, ModeBank, 22, false)
	if err != nil {
		t.Fatalf("ReadRecord(bank) error = %v", err)
	}
	if rec.Kind != converter.KindBank || len(rec.Data) != disk.BankSize {
		t.Errorf("ReadRecord(bank) kind %s, %d bytes", rec.Kind, len(rec.Data))
	}

	rec, err = ReadRecord(img, ModeVirtualBank, 1, true)
	if err != nil {
		t.Fatalf("ReadRecord(virtbank) error = %v", err)
	}
	if rec.Name != "VIRTBANK01" {
		t.Errorf("ReadRecord(virtbank) name = %q", rec.Name)
	}

	errTests := []struct {
		mode Mode
		n    int
		want error
	}{
		{ModeProgram, 0, ErrNumberRequired},
		{ModeProgram, 200, ErrOutOfRange},
		{ModeProgram, 2, ErrBlank},
		{ModeBank, 2, ErrBlank},
		{ModeBank, 41, ErrOutOfRange},
		{ModeVirtualBank, 2, ErrNoVirtualBank},
	}
	for _, tt := range errTests {
		if _, err := ReadRecord(img, tt.mode, tt.n, false); !errors.Is(err, tt.want) {
			t.Errorf("ReadRecord(%s, %d) error = %v, want %v", tt.mode, tt.n, err, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	l, err := List(sampleImage(), true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(l.Banks) != 2 || l.Banks[1].Number != 22 {
		t.Errorf("Banks = %+v", l.Banks)
	}
	if len(l.Programs) != 4 || !l.Programs[3].Deleted || l.Programs[3].Number != 10 {
		t.Errorf("Programs = %+v", l.Programs)
	}
	if len(l.VirtualBanks) != 1 || len(l.VirtualBanks[0].Programs) != 4 {
		t.Errorf("VirtualBanks = %+v", l.VirtualBanks)
	}
}

func TestRunProgramsDumpSlashInName(t *testing.T) {
	img := disktest.NewBuilder().
		AddProgram(0, disktest.Program("AC/DC ", 0x11)).
		Image()
	dir := t.TempDir()

	_, e, err := run(t, img, ModeProgram, Options{Format: converter.FormatBin, Prefix: filepath.Join(dir, "PROG")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(dir, "PROG001_AC_DC.bin")
	if len(e.Written()) != 1 || e.Written()[0] != want {
		t.Fatalf("Written() = %v, want [%s]", e.Written(), want)
	}
	if _, err := os.Stat(filepath.Join(dir, "PROG001_AC")); !os.IsNotExist(err) {
		t.Errorf("record name created a directory: %v", err)
	}
}
