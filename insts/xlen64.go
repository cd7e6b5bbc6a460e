//go:build rv64

package insts

// XLEN is the architectural word width in bits.
const XLEN = 64

// Word is a signed architectural word.
type Word = int64

// UWord is the unsigned view of a Word.
type UWord = uint64
