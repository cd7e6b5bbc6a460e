package emu

import "errors"

// Diagnostics. These do not stop the machine: the instruction has no effect
// and the PC advances by 4.
var (
	ErrIllegalOpcode = errors.New("illegal opcode")
	ErrIllegalFunct3 = errors.New("illegal funct3")
)

// Faults. A cycle that hits one of these commits nothing.
var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrMisaligned        = errors.New("misaligned word access")
	ErrStepLimit         = errors.New("max steps reached")
)
