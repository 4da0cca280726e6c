package disk

import (
	"fmt"

	"github.com/pkg/errors"
)

// Disk geometry. Every track holds five 1024 byte sectors followed by a
// single 512 byte sector.
const (
	Cylinders       = 80
	Heads           = 2
	SectorsPerTrack = 6
	SectorSize      = 1024
	ShortSector     = 5
	ShortSectorSize = 512
	TrackSize       = ShortSector*SectorSize + ShortSectorSize
)

// Address is a cylinder/head/sector location on the disk
type Address struct {
	Cylinder int
	Head     int
	Sector   int
}

func (a Address) String() string {
	return fmt.Sprintf("c%d/h%d/s%d", a.Cylinder, a.Head, a.Sector)
}

// Valid reports whether the address lies on the disk
func (a Address) Valid() bool {
	return a.Cylinder >= 0 && a.Cylinder < Cylinders &&
		a.Head >= 0 && a.Head < Heads &&
		a.Sector >= 0 && a.Sector < SectorsPerTrack
}

// SectorLen returns the number of bytes held by the addressed sector
func (a Address) SectorLen() int {
	if a.Sector == ShortSector {
		return ShortSectorSize
	}
	return SectorSize
}

// Offset converts the address to a byte offset into a dump file, which
// starts with the 10 byte header.
func (a Address) Offset() (int64, error) {
	if !a.Valid() {
		return 0, errors.Wrapf(ErrBadAddress, "%s", a)
	}
	offset := int64(HeaderSize)
	offset += int64(a.Cylinder*Heads+a.Head) * TrackSize
	offset += int64(a.Sector) * SectorSize
	return offset, nil
}

// nextDataSector steps through the five full sectors of a track, moving on
// to the next cylinder after sector 4. Bank data never touches sector 5.
func (a Address) nextDataSector() Address {
	if a.Sector == ShortSector-1 {
		return Address{Cylinder: a.Cylinder + 1, Head: a.Head, Sector: 0}
	}
	return Address{Cylinder: a.Cylinder, Head: a.Head, Sector: a.Sector + 1}
}

// directorySectors are the short sectors that make up the directory, in order
var directorySectors = [...]Address{
	{Cylinder: 0, Head: 0, Sector: ShortSector},
	{Cylinder: 0, Head: 1, Sector: ShortSector},
	{Cylinder: 1, Head: 1, Sector: ShortSector},
	{Cylinder: 1, Head: 0, Sector: ShortSector},
}

// programOverrides relocates the single programs whose natural cylinder is
// already taken by bank data. Keys are the computed switch value.
// 0x26 and 0x4c are missing from the sq80toolkit table and 0x1f sits on
// head 0, not head 1; all three were confirmed against real disks.
var programOverrides = map[int]Address{
	0x06: {Cylinder: 0x42, Head: 0},
	0x19: {Cylinder: 0x42, Head: 1},
	0x1f: {Cylinder: 0x43, Head: 0},
	0x26: {Cylinder: 0x43, Head: 1},
	0x39: {Cylinder: 0x44, Head: 0},
	0x3f: {Cylinder: 0x44, Head: 1},
	0x4c: {Cylinder: 0x45, Head: 0},
	0x53: {Cylinder: 0x45, Head: 1},
	0x6c: {Cylinder: 0x46, Head: 0},
	0x73: {Cylinder: 0x46, Head: 1},
}

// ProgramAddress returns where single program n (counting from 0) is stored.
// Programs always live in the short sector of their track.
func ProgramAddress(n int) (Address, error) {
	if n < 0 || n >= MaxPrograms {
		return Address{}, errors.Wrapf(ErrBadAddress, "program %d", n)
	}

	sw := (n & 64) | ((n & 63) + 2)
	if addr, ok := programOverrides[sw]; ok {
		addr.Sector = ShortSector
		return addr, nil
	}
	return Address{
		Cylinder: (n & 63) + 2,
		Head:     (n & 64) >> 6,
		Sector:   ShortSector,
	}, nil
}

// BankAddress returns the first sector of bank n (counting from 0).
// Banks 0-19 are on head 0 and 20-39 on head 1, four sectors each, packed
// from cylinder 64 onwards.
func BankAddress(n int) (Address, error) {
	if n < 0 || n >= MaxBanks {
		return Address{}, errors.Wrapf(ErrBadAddress, "bank %d", n)
	}

	sectorOffset := (n % 20) * 4
	return Address{
		Cylinder: 64 + sectorOffset/5,
		Head:     n / 20,
		Sector:   sectorOffset % 5,
	}, nil
}
