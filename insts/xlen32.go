//go:build !rv64

package insts

// XLEN is the architectural word width in bits.
const XLEN = 32

// Word is a signed architectural word.
type Word = int32

// UWord is the unsigned view of a Word.
type UWord = uint32
