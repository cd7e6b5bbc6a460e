package emu

import (
	"fmt"

	"github.com/sarchlab/rvgold/insts"
)

// DefaultMemoryWords is the default capacity of each memory in words.
const DefaultMemoryWords = 1024

// InstMemory is the word-addressed instruction memory. It is written only by
// Load and read by the fetch stage.
type InstMemory struct {
	words []uint32
}

// NewInstMemory creates a zeroed instruction memory of the given capacity.
func NewInstMemory(capacity int) *InstMemory {
	return &InstMemory{words: make([]uint32, capacity)}
}

// Capacity returns the number of words the memory holds.
func (m *InstMemory) Capacity() int {
	return len(m.words)
}

// Fetch returns the instruction word at index.
func (m *InstMemory) Fetch(index int) (uint32, error) {
	if index < 0 || index >= len(m.words) {
		return 0, fmt.Errorf("%w: fetch index %d (capacity %d)",
			ErrAddressOutOfRange, index, len(m.words))
	}
	return m.words[index], nil
}

// Load copies words starting at index 0 and zero-fills the rest of the
// memory. Words beyond capacity are dropped. It returns the number of words
// stored.
func (m *InstMemory) Load(words []uint32) int {
	n := copy(m.words, words)
	clear(m.words[n:])
	return n
}

// DataMemory is the word-addressed data memory.
type DataMemory struct {
	words []insts.Word
}

// NewDataMemory creates a zeroed data memory of the given capacity.
func NewDataMemory(capacity int) *DataMemory {
	return &DataMemory{words: make([]insts.Word, capacity)}
}

// Capacity returns the number of words the memory holds.
func (m *DataMemory) Capacity() int {
	return len(m.words)
}

// Read returns the word at index.
func (m *DataMemory) Read(index int) (insts.Word, error) {
	if err := m.check(index); err != nil {
		return 0, err
	}
	return m.words[index], nil
}

// Write stores value at index.
func (m *DataMemory) Write(index int, value insts.Word) error {
	if err := m.check(index); err != nil {
		return err
	}
	m.words[index] = value
	return nil
}

// Load copies words starting at index 0. The rest of the memory is left
// untouched. It returns the number of words stored.
func (m *DataMemory) Load(words []insts.Word) int {
	return copy(m.words, words)
}

// Words returns a copy of the memory contents.
func (m *DataMemory) Words() []insts.Word {
	out := make([]insts.Word, len(m.words))
	copy(out, m.words)
	return out
}

func (m *DataMemory) check(index int) error {
	if index < 0 || index >= len(m.words) {
		return fmt.Errorf("%w: data index %d (capacity %d)",
			ErrAddressOutOfRange, index, len(m.words))
	}
	return nil
}
