package extract

import (
	"github.com/james-see/sq80extract/pkg/disk"
)

// Item is one used directory slot
type Item struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted,omitempty"`
}

// VirtualBankItem lists the programs packed into a virtual bank
type VirtualBankItem struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Programs []Item `json:"programs"`
}

// Listing is a machine readable summary of a disk
type Listing struct {
	Image        string            `json:"image"`
	Banks        []Item            `json:"banks"`
	Programs     []Item            `json:"programs"`
	VirtualBanks []VirtualBankItem `json:"virtual_banks"`
}

// List summarises the used slots of img. Building the virtual banks reads
// every program, so name mismatches surface here too.
func List(img *disk.Image, withDeleted bool) (*Listing, error) {
	dir := img.Directory()
	l := &Listing{
		Image:        img.Name(),
		Banks:        []Item{},
		Programs:     []Item{},
		VirtualBanks: []VirtualBankItem{},
	}

	for _, b := range dir.UsedBanks() {
		l.Banks = append(l.Banks, Item{Number: b.Index + 1, Name: b.Name()})
	}
	for _, p := range dir.UsedPrograms(withDeleted) {
		l.Programs = append(l.Programs, Item{Number: p.Index + 1, Name: p.Name(), Deleted: p.Deleted()})
	}

	banks, err := VirtualBanks(img, withDeleted)
	if err != nil {
		return nil, err
	}
	for _, vb := range banks {
		item := VirtualBankItem{Number: vb.Index + 1, Name: vb.Name}
		for _, p := range vb.Programs {
			item.Programs = append(item.Programs, Item{Number: p.Index + 1, Name: p.Name(), Deleted: p.Deleted()})
		}
		l.VirtualBanks = append(l.VirtualBanks, item)
	}

	return l, nil
}
