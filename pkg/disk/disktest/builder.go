// Package disktest builds synthetic SQ80 disk dumps for tests
package disktest

import (
	"github.com/james-see/sq80extract/pkg/disk"
)

// ImageSize is the size of a complete dump file
const ImageSize = disk.HeaderSize + disk.Cylinders*disk.Heads*disk.TrackSize

// Builder lays out directory entries and records in a blank dump
type Builder struct {
	data []byte
	dir  []byte
}

// NewBuilder returns a builder for an empty, formatted disk
func NewBuilder() *Builder {
	b := &Builder{
		data: make([]byte, ImageSize),
		dir:  make([]byte, disk.DirectorySize),
	}
	copy(b.data, disk.HeaderMagic)
	return b
}

// Program returns a recognisable 102 byte program named name
func Program(name string, fill byte) []byte {
	p := make([]byte, disk.ProgramSize)
	for i := range p {
		p[i] = fill + byte(i)
	}
	copy(p, padName(name, disk.ProgramNameSize, ' '))
	return p
}

// AddProgram stores program at slot n (counting from 0) and names it in the
// directory after the first bytes of the program.
func (b *Builder) AddProgram(n int, program []byte) *Builder {
	addr, err := disk.ProgramAddress(n)
	if err != nil {
		panic(err)
	}
	b.write(addr, program)
	copy(b.dir[650+n*disk.ProgramNameSize:], program[:disk.ProgramNameSize])
	return b
}

// DeleteProgram clears the first character of the directory name, the way
// the SQ80 deletes a program.
func (b *Builder) DeleteProgram(n int) *Builder {
	b.dir[650+n*disk.ProgramNameSize] = 0
	return b
}

// SetProgramName overwrites only the directory name of slot n
func (b *Builder) SetProgramName(n int, name string) *Builder {
	copy(b.dir[650+n*disk.ProgramNameSize:], padName(name, disk.ProgramNameSize, ' '))
	return b
}

// AddBank stores 40 programs as bank n (counting from 0)
func (b *Builder) AddBank(n int, name string, programs [][]byte) *Builder {
	data := make([]byte, 0, disk.BankSize)
	for i := 0; i < disk.ProgramsPerBank; i++ {
		if i < len(programs) {
			data = append(data, programs[i]...)
		} else {
			data = append(data, disk.InitProgram()...)
		}
	}

	addr, err := disk.BankAddress(n)
	if err != nil {
		panic(err)
	}
	for off := 0; off < len(data); off += disk.SectorSize {
		end := off + disk.SectorSize
		if end > len(data) {
			end = len(data)
		}
		b.write(addr, data[off:end])
		if addr.Sector == 4 {
			addr = disk.Address{Cylinder: addr.Cylinder + 1, Head: addr.Head}
		} else {
			addr.Sector++
		}
	}

	return b.SetBankEntry(n, disk.FileBank, name)
}

// SetBankEntry writes a raw directory bank slot
func (b *Builder) SetBankEntry(n int, t disk.FileType, name string) *Builder {
	entry := b.dir[(n+10)*13 : (n+11)*13]
	entry[0] = byte(t)
	copy(entry[1:11], padName(name, disk.BankNameSize, ' '))
	entry[11] = 0x0f
	entry[12] = 0xf0
	return b
}

// Bytes returns the finished dump
func (b *Builder) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	sectors := []disk.Address{
		{Cylinder: 0, Head: 0, Sector: 5},
		{Cylinder: 0, Head: 1, Sector: 5},
		{Cylinder: 1, Head: 1, Sector: 5},
		{Cylinder: 1, Head: 0, Sector: 5},
	}
	for i, addr := range sectors {
		off, _ := addr.Offset()
		copy(out[off:], b.dir[i*disk.ShortSectorSize:(i+1)*disk.ShortSectorSize])
	}
	return out
}

// Image returns the finished dump opened as an image
func (b *Builder) Image() *disk.Image {
	img, err := disk.FromBytes("test.img", b.Bytes())
	if err != nil {
		panic(err)
	}
	return img
}

func (b *Builder) write(addr disk.Address, data []byte) {
	off, err := addr.Offset()
	if err != nil {
		panic(err)
	}
	copy(b.data[off:], data)
}

func padName(name string, size int, pad byte) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = pad
	}
	copy(out, disk.FromASCII(name))
	return out
}
