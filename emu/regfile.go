// Package emu provides the functional RV32I golden model.
package emu

import "github.com/sarchlab/rvgold/insts"

// NumRegs is the number of integer registers.
const NumRegs = 32

// RegFile represents the integer register file and the program counter.
type RegFile struct {
	// X holds registers x0-x31. X[0] is forced to zero after every commit.
	X [NumRegs]insts.Word

	// PC is the program counter.
	PC insts.Word
}

// ReadReg reads a register value. Only the low 5 bits of reg are used.
func (r *RegFile) ReadReg(reg uint8) insts.Word {
	return r.X[reg&0x1F]
}

// WriteReg writes a value to a register. A write to x0 lands in the array
// and is cleared by HardwireZero at the end of the cycle.
func (r *RegFile) WriteReg(reg uint8, value insts.Word) {
	r.X[reg&0x1F] = value
}

// HardwireZero forces x0 back to zero.
func (r *RegFile) HardwireZero() {
	r.X[0] = 0
}

// Reset clears every register and the PC.
func (r *RegFile) Reset() {
	*r = RegFile{}
}

// Snapshot returns a copy of the 32 registers.
func (r *RegFile) Snapshot() [NumRegs]insts.Word {
	return r.X
}
