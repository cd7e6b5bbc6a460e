package emu

import "github.com/sarchlab/rvgold/insts"

// BranchUnit computes control transfer targets.
type BranchUnit struct{}

// NewBranchUnit creates a new BranchUnit.
func NewBranchUnit() *BranchUnit {
	return &BranchUnit{}
}

// BEQ returns pc + offset if x == y, otherwise pc + 4.
func (b *BranchUnit) BEQ(pc, x, y, offset insts.Word) (next insts.Word, taken bool) {
	if x == y {
		return pc + offset, true
	}
	return pc + 4, false
}

// JAL returns the link value pc + 4 and the target pc + offset.
func (b *BranchUnit) JAL(pc, offset insts.Word) (link, target insts.Word) {
	return pc + 4, pc + offset
}
