package emu

import "github.com/sarchlab/rvgold/insts"

// ALU implements the integer arithmetic and logic operations. Operands are
// passed in so that every read observes the start-of-cycle register values.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// ADD performs wrapping addition.
func (a *ALU) ADD(x, y insts.Word) insts.Word {
	return x + y
}

// SUB performs wrapping subtraction.
func (a *ALU) SUB(x, y insts.Word) insts.Word {
	return x - y
}

// SLT returns 1 if x < y as signed values, otherwise 0.
func (a *ALU) SLT(x, y insts.Word) insts.Word {
	if x < y {
		return 1
	}
	return 0
}

// XOR performs bitwise exclusive or.
func (a *ALU) XOR(x, y insts.Word) insts.Word {
	return x ^ y
}

// OR performs bitwise or.
func (a *ALU) OR(x, y insts.Word) insts.Word {
	return x | y
}

// AND performs bitwise and.
func (a *ALU) AND(x, y insts.Word) insts.Word {
	return x & y
}

// Compute applies the ALU operation selected by op. The second operand is
// the I-immediate for OP-IMM operations and rs2 for OP operations.
func (a *ALU) Compute(op insts.Op, x, y insts.Word) (insts.Word, bool) {
	switch op {
	case insts.OpADDI, insts.OpADD:
		return a.ADD(x, y), true
	case insts.OpSUB:
		return a.SUB(x, y), true
	case insts.OpSLTI, insts.OpSLT:
		return a.SLT(x, y), true
	case insts.OpXORI, insts.OpXOR:
		return a.XOR(x, y), true
	case insts.OpORI, insts.OpOR:
		return a.OR(x, y), true
	case insts.OpANDI, insts.OpAND:
		return a.AND(x, y), true
	default:
		return 0, false
	}
}
