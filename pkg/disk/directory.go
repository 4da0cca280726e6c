package disk

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Directory layout
const (
	DirectorySize = 4 * ShortSectorSize
	MaxBanks      = 40
	MaxPrograms   = 128

	BankNameSize    = 10
	ProgramNameSize = 6

	bankEntrySize      = 13
	bankEntryOffset    = 10 * bankEntrySize
	programNamesOffset = 650
)

// FileType is the type byte of a directory entry
type FileType uint8

const (
	FileEmpty FileType = iota
	FileSystem
	FileBank
	FileSong
	FileSequence
	FileSysEx
	FileProgram
)

var fileTypeNames = [...]string{"---", "SYS", "BNK", "SNG", "SEQ", "SYX", "PRG"}

func (t FileType) String() string {
	if int(t) < len(fileTypeNames) {
		return fileTypeNames[t]
	}
	return "???"
}

// BankEntry is one of the 40 bank slots in the directory
type BankEntry struct {
	Index   int // 0-39
	Type    FileType
	RawName [BankNameSize]byte
	Size    uint16 // as recorded, unused by the SQ80
}

// Empty reports whether the slot is unused
func (e BankEntry) Empty() bool {
	return e.Type == FileEmpty
}

// Name returns the bank name in ASCII
func (e BankEntry) Name() string {
	return ToASCII(e.RawName[:])
}

// ProgramEntry is one of the 128 single program slots in the directory
type ProgramEntry struct {
	Index   int // 0-127
	RawName [ProgramNameSize]byte
}

// Empty reports whether the slot is unused. Deleting a program only clears
// the first character of its name, so a deleted program is also empty.
func (e ProgramEntry) Empty() bool {
	return e.RawName[0] == 0
}

// Deleted reports whether the slot held a program that has since been deleted
func (e ProgramEntry) Deleted() bool {
	if !e.Empty() {
		return false
	}
	for _, b := range e.RawName[1:] {
		if b != 0 {
			return true
		}
	}
	return false
}

// Name returns the program name in ASCII
func (e ProgramEntry) Name() string {
	return ToASCII(e.RawName[:])
}

// matches compares the name stored in front of a program record with the
// directory entry, skipping the cleared first character of deleted entries.
func (e ProgramEntry) matches(name []byte) bool {
	start := 0
	if e.Empty() {
		start = 1
	}
	for i := start; i < ProgramNameSize; i++ {
		if e.RawName[i] != name[i] {
			return false
		}
	}
	return true
}

// Directory is the parsed disk directory
type Directory struct {
	Banks    [MaxBanks]BankEntry
	Programs [MaxPrograms]ProgramEntry
}

// ParseDirectory decodes the 2048 directory bytes
func ParseDirectory(buf []byte) (*Directory, error) {
	if len(buf) != DirectorySize {
		return nil, errors.Wrapf(ErrBadDirectory, "got %d bytes, want %d", len(buf), DirectorySize)
	}

	dir := &Directory{}

	for i := range dir.Banks {
		raw := buf[bankEntryOffset+i*bankEntrySize : bankEntryOffset+(i+1)*bankEntrySize]
		entry := BankEntry{
			Index: i,
			Type:  FileType(raw[0]),
			Size:  binary.BigEndian.Uint16(raw[11:13]),
		}
		copy(entry.RawName[:], raw[1:11])

		if entry.Type != FileEmpty && entry.Type != FileBank {
			return nil, errors.Wrapf(ErrBadDirectory, "bank slot %d has file type %s (0x%02X)", i+1, entry.Type, raw[0])
		}
		dir.Banks[i] = entry
	}

	for i := range dir.Programs {
		entry := ProgramEntry{Index: i}
		copy(entry.RawName[:], buf[programNamesOffset+i*ProgramNameSize:])
		dir.Programs[i] = entry
	}

	return dir, nil
}

// UsedPrograms returns the program slots holding a program, in slot order.
// Deleted programs are included when withDeleted is set.
func (d *Directory) UsedPrograms(withDeleted bool) []ProgramEntry {
	var used []ProgramEntry
	for _, p := range d.Programs {
		if !p.Empty() || (withDeleted && p.Deleted()) {
			used = append(used, p)
		}
	}
	return used
}

// UsedBanks returns the bank slots holding a bank, in slot order
func (d *Directory) UsedBanks() []BankEntry {
	var used []BankEntry
	for _, b := range d.Banks {
		if !b.Empty() {
			used = append(used, b)
		}
	}
	return used
}
