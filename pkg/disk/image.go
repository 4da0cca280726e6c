// Package disk reads Ensoniq SQ80 floppy disk dumps as written by the
// sq80toolkit: a 10 byte header followed by the raw tracks of the disk.
package disk

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// HeaderMagic starts every dump file
const (
	HeaderMagic = "!SQ80DISK!"
	HeaderSize  = len(HeaderMagic)
)

var (
	ErrNotSQ80Image = errors.New("doesn't appear to be a valid SQ80 dump file")
	ErrBadAddress   = errors.New("invalid disk address")
	ErrTruncated    = errors.New("disk image truncated")
	ErrBadDirectory = errors.New("malformed disk directory")
	ErrNameMismatch = errors.New("program name on disk doesn't match directory entry")
)

// Image is an opened SQ80 disk dump
type Image struct {
	name   string
	r      io.ReaderAt
	closer io.Closer
	dir    *Directory
}

// Open opens the dump file at path and reads its directory
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open disk image")
	}

	img, err := New(path, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	img.closer = f
	return img, nil
}

// FromBytes wraps an in-memory dump, e.g. an uploaded file
func FromBytes(name string, data []byte) (*Image, error) {
	return New(name, bytes.NewReader(data))
}

// New checks the header of r and reads the directory
func New(name string, r io.ReaderAt) (*Image, error) {
	header := make([]byte, HeaderSize)
	if n, err := r.ReadAt(header, 0); n != HeaderSize {
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrNotSQ80Image
		}
		return nil, errors.Wrap(err, "failed to read header")
	}
	if !bytes.Equal(header, []byte(HeaderMagic)) {
		return nil, ErrNotSQ80Image
	}

	img := &Image{name: name, r: r}

	buf := make([]byte, 0, DirectorySize)
	for _, addr := range directorySectors {
		sector, err := img.read(addr, ShortSectorSize)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read directory")
		}
		buf = append(buf, sector...)
	}

	dir, err := ParseDirectory(buf)
	if err != nil {
		return nil, err
	}
	img.dir = dir
	return img, nil
}

// Name returns the name the image was opened with
func (img *Image) Name() string {
	return img.name
}

// Directory returns the parsed disk directory
func (img *Image) Directory() *Directory {
	return img.dir
}

// Close releases the underlying file, if any
func (img *Image) Close() error {
	if img.closer == nil {
		return nil
	}
	return img.closer.Close()
}

// read returns n bytes from the start of the sector at addr
func (img *Image) read(addr Address, n int) ([]byte, error) {
	offset, err := addr.Offset()
	if err != nil {
		return nil, err
	}
	if n > addr.SectorLen() {
		return nil, errors.Wrapf(ErrBadAddress, "%d bytes do not fit in sector %s", n, addr)
	}

	buf := make([]byte, n)
	got, err := img.r.ReadAt(buf, offset)
	if got == n {
		return buf, nil
	}
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, errors.Wrapf(ErrTruncated, "read %d of %d bytes at %s", got, n, addr)
	}
	return nil, errors.Wrapf(err, "read %s", addr)
}
