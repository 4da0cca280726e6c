package disk

import (
	"github.com/pkg/errors"
)

// Record sizes
const (
	ProgramSize     = 102
	ProgramsPerBank = 40
	BankSize        = ProgramSize * ProgramsPerBank
	bankSectors     = 4
)

// initProgram is the blank patch the SQ80 creates on init, with a name of
// six spaces.
var initProgram = [ProgramSize]byte{
	0x20, 0x20, 0x20, 0x20, 0x20, 0x20, 0x7e, 0x7e, 0x7e, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x7e, 0x7e, 0x7e, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x7e, 0x7e, 0x7e, 0x00, 0x00, 0x00,
	0x00, 0x02, 0x00, 0x00, 0x7e, 0x7e, 0x7e, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x16, 0xff,
	0xff, 0x80, 0x16, 0xff, 0xff, 0x80, 0x16, 0xff, 0xff, 0x80, 0x24, 0x00, 0xff, 0x00, 0x00, 0x00,
	0x68, 0xff, 0x7e, 0x00, 0x24, 0x00, 0xff, 0x00, 0x00, 0x00, 0x68, 0xff, 0x7e, 0x00, 0x24, 0x00,
	0xff, 0x00, 0x00, 0x00, 0x68, 0xff, 0x7e, 0x00, 0x7e, 0x7f, 0x00, 0xff, 0x00, 0x00, 0x00, 0x00,
	0x3c, 0x71, 0x27, 0x27, 0x8f, 0x00,
}

// InitProgram returns a copy of the init patch
func InitProgram() []byte {
	p := make([]byte, ProgramSize)
	copy(p, initProgram[:])
	return p
}

// ProgramName returns the ASCII name stored in the first bytes of a program
func ProgramName(program []byte) string {
	if len(program) < ProgramNameSize {
		return ToASCII(program)
	}
	return ToASCII(program[:ProgramNameSize])
}

// ReadProgram reads single program n (counting from 0) and checks its name
// against the directory.
func (img *Image) ReadProgram(n int) ([]byte, error) {
	addr, err := ProgramAddress(n)
	if err != nil {
		return nil, err
	}

	data, err := img.read(addr, ProgramSize)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read program %d", n+1)
	}

	entry := img.dir.Programs[n]
	if !entry.matches(data[:ProgramNameSize]) {
		return nil, errors.Wrapf(ErrNameMismatch, "program %d: disk %q, directory %q",
			n+1, ToASCII(data[:ProgramNameSize]), entry.Name())
	}
	return data, nil
}

// ReadBank reads the 40 programs of bank n (counting from 0). The bank spans
// four consecutive data sectors; the last one is only partly used.
func (img *Image) ReadBank(n int) ([]byte, error) {
	addr, err := BankAddress(n)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, BankSize)
	for i := 0; i < bankSectors; i++ {
		size := SectorSize
		if i == bankSectors-1 {
			size = BankSize - (bankSectors-1)*SectorSize
		}

		chunk, err := img.read(addr, size)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read bank %d", n+1)
		}
		data = append(data, chunk...)
		addr = addr.nextDataSector()
	}
	return data, nil
}

// BankProgramNames returns the names of the programs inside bank data
func BankProgramNames(bank []byte) []string {
	names := make([]string, 0, ProgramsPerBank)
	for i := 0; i+ProgramSize <= len(bank); i += ProgramSize {
		names = append(names, ProgramName(bank[i:i+ProgramSize]))
	}
	return names
}
