// Package loader reads instruction images for the golden model.
//
// Two formats are supported: plain text hex images with one 32-bit word per
// line, as produced by objcopy -O verilog style flows, and little-endian
// RISC-V ELF executables linked at address 0.
package loader

import (
	"errors"

	"github.com/sarchlab/rvgold/insts"
)

// Loader errors.
var (
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrMalformedImage      = errors.New("malformed image")
	ErrNotRISCV            = errors.New("not a RISC-V executable")
	ErrCapacity            = errors.New("image exceeds memory capacity")
)

// Image is an instruction image ready to be copied into the golden model.
type Image struct {
	// Source is the path the image was read from, if any.
	Source string

	// Words holds instruction words starting at index 0.
	Words []uint32

	// Data holds initial data memory words starting at index 0. It is empty
	// for hex images.
	Data []insts.Word

	// Dropped counts words that did not fit in the given capacity.
	Dropped int
}
