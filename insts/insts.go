// Package insts provides RV32I subset instruction definitions and decoding.
//
// This package implements decoding of RISC-V machine code into structured
// instruction representations. It supports:
//   - Loads and stores: LW, SW
//   - ALU immediate: ADDI, SLTI, XORI, ORI, ANDI
//   - ALU register: ADD, SUB, SLT, XOR, OR, AND
//   - Upper immediate: LUI
//   - Control transfer: BEQ, JAL
//
// Any other encoding decodes to OpIllegalOpcode or OpIllegalFunct3.
//
// The architectural word width is selected at build time. The default build
// uses 32-bit words; building with the rv64 tag switches Word to int64.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500093) // addi x1, x0, 5
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts
