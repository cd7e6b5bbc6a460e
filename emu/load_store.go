package emu

import (
	"fmt"

	"github.com/sarchlab/rvgold/insts"
)

// AccessKind identifies a data memory access.
type AccessKind uint8

// Data memory access kinds.
const (
	AccessNone AccessKind = iota
	AccessLoad
	AccessStore
)

// MemAccess records the data memory access made by an instruction.
type MemAccess struct {
	Kind  AccessKind
	Addr  insts.Word // Effective byte address
	Index int        // Word index (Addr >> 2)
}

// LoadStoreUnit implements LW and SW against the word-addressed data memory.
type LoadStoreUnit struct {
	memory          *DataMemory
	strictAlignment bool
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given memory.
func NewLoadStoreUnit(memory *DataMemory, strictAlignment bool) *LoadStoreUnit {
	return &LoadStoreUnit{
		memory:          memory,
		strictAlignment: strictAlignment,
	}
}

// WordIndex converts a byte address into a data memory word index. The low
// two bits are dropped unless strict alignment is enabled, in which case a
// misaligned address is an error.
func (lsu *LoadStoreUnit) WordIndex(addr insts.Word) (int, error) {
	if lsu.strictAlignment && addr&0x3 != 0 {
		return 0, fmt.Errorf("%w: address 0x%x", ErrMisaligned, insts.UWord(addr))
	}
	if addr < 0 || uint64(addr>>2) >= uint64(lsu.memory.Capacity()) {
		return 0, fmt.Errorf("%w: address 0x%x (capacity %d words)",
			ErrAddressOutOfRange, insts.UWord(addr), lsu.memory.Capacity())
	}
	return int(addr >> 2), nil
}

// LW reads mem[(base + offset) >> 2].
func (lsu *LoadStoreUnit) LW(base, offset insts.Word) (insts.Word, MemAccess, error) {
	addr := base + offset
	index, err := lsu.WordIndex(addr)
	if err != nil {
		return 0, MemAccess{}, err
	}
	value, err := lsu.memory.Read(index)
	if err != nil {
		return 0, MemAccess{}, err
	}
	return value, MemAccess{Kind: AccessLoad, Addr: addr, Index: index}, nil
}

// SW resolves the target of a store to mem[(base + offset) >> 2]. The write
// itself happens at commit.
func (lsu *LoadStoreUnit) SW(base, offset insts.Word) (MemAccess, error) {
	addr := base + offset
	index, err := lsu.WordIndex(addr)
	if err != nil {
		return MemAccess{}, err
	}
	return MemAccess{Kind: AccessStore, Addr: addr, Index: index}, nil
}
