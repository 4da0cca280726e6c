package extract

import (
	"fmt"

	"github.com/james-see/sq80extract/pkg/disk"
)

// VirtualBank groups up to 40 single programs into a loadable bank
type VirtualBank struct {
	Index    int // 0-based
	Name     string
	Programs []disk.ProgramEntry
	Data     []byte // always a full bank, padded with init programs
}

// VirtualBanks reads every used single program in slot order and packs them
// into banks of 40. The last bank is padded with the init program.
func VirtualBanks(img *disk.Image, withDeleted bool) ([]VirtualBank, error) {
	var banks []VirtualBank
	var cur *VirtualBank

	for _, p := range img.Directory().UsedPrograms(withDeleted) {
		if cur == nil {
			banks = append(banks, VirtualBank{
				Index: len(banks),
				Name:  fmt.Sprintf("VIRTBANK%02d", len(banks)+1),
				Data:  make([]byte, 0, disk.BankSize),
			})
			cur = &banks[len(banks)-1]
		}

		data, err := img.ReadProgram(p.Index)
		if err != nil {
			return nil, err
		}
		cur.Programs = append(cur.Programs, p)
		cur.Data = append(cur.Data, data...)

		if len(cur.Programs) == disk.ProgramsPerBank {
			cur = nil
		}
	}

	if cur != nil {
		for len(cur.Data) < disk.BankSize {
			cur.Data = append(cur.Data, disk.InitProgram()...)
		}
	}

	return banks, nil
}
