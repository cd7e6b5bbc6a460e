package insts

// Instruction encoding helpers. Immediates are truncated to their field
// width; the caller is responsible for passing in-range values.

// EncodeR encodes a register-register instruction.
func EncodeR(opcode, funct3, funct7, rd, rs1, rs2 uint8) uint32 {
	return uint32(funct7&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeI encodes an I-type instruction with a 12-bit immediate.
func EncodeI(opcode, funct3, rd, rs1 uint8, imm int32) uint32 {
	return uint32(imm)&0xFFF<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeS encodes an S-type instruction with a 12-bit immediate.
func EncodeS(opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5)&0x7F<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		u&0x1F<<7 |
		uint32(opcode&0x7F)
}

// EncodeB encodes a B-type instruction with a 13-bit even displacement.
func EncodeB(opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return (u>>12)&0x1<<31 |
		(u>>5)&0x3F<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		(u>>1)&0xF<<8 |
		(u>>11)&0x1<<7 |
		uint32(opcode&0x7F)
}

// EncodeJ encodes a J-type instruction with a 21-bit even displacement.
func EncodeJ(opcode, rd uint8, imm int32) uint32 {
	u := uint32(imm)
	return (u>>20)&0x1<<31 |
		(u>>1)&0x3FF<<21 |
		(u>>11)&0x1<<20 |
		(u>>12)&0xFF<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeU encodes a U-type instruction. imm20 is placed in bits [31:12].
func EncodeU(opcode, rd uint8, imm20 uint32) uint32 {
	return imm20&0xFFFFF<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode&0x7F)
}

// EncodeLW encodes lw rd, imm(rs1).
func EncodeLW(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, 0b010, rd, rs1, imm)
}

// EncodeSW encodes sw rs2, imm(rs1).
func EncodeSW(rs2, rs1 uint8, imm int32) uint32 {
	return EncodeS(OpcodeStore, 0b010, rs1, rs2, imm)
}

// EncodeADDI encodes addi rd, rs1, imm.
func EncodeADDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3AddSub, rd, rs1, imm)
}

// EncodeSLTI encodes slti rd, rs1, imm.
func EncodeSLTI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3SLT, rd, rs1, imm)
}

// EncodeXORI encodes xori rd, rs1, imm.
func EncodeXORI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3XOR, rd, rs1, imm)
}

// EncodeORI encodes ori rd, rs1, imm.
func EncodeORI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3OR, rd, rs1, imm)
}

// EncodeANDI encodes andi rd, rs1, imm.
func EncodeANDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, Funct3AND, rd, rs1, imm)
}

// EncodeADD encodes add rd, rs1, rs2.
func EncodeADD(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct3AddSub, 0, rd, rs1, rs2)
}

// EncodeSUB encodes sub rd, rs1, rs2.
func EncodeSUB(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct3AddSub, 0b0100000, rd, rs1, rs2)
}

// EncodeSLT encodes slt rd, rs1, rs2.
func EncodeSLT(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct3SLT, 0, rd, rs1, rs2)
}

// EncodeXOR encodes xor rd, rs1, rs2.
func EncodeXOR(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct3XOR, 0, rd, rs1, rs2)
}

// EncodeOR encodes or rd, rs1, rs2.
func EncodeOR(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct3OR, 0, rd, rs1, rs2)
}

// EncodeAND encodes and rd, rs1, rs2.
func EncodeAND(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, Funct3AND, 0, rd, rs1, rs2)
}

// EncodeLUI encodes lui rd, imm20.
func EncodeLUI(rd uint8, imm20 uint32) uint32 {
	return EncodeU(OpcodeLUI, rd, imm20)
}

// EncodeBEQ encodes beq rs1, rs2, offset.
func EncodeBEQ(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(OpcodeBranch, 0b000, rs1, rs2, offset)
}

// EncodeJAL encodes jal rd, offset.
func EncodeJAL(rd uint8, offset int32) uint32 {
	return EncodeJ(OpcodeJAL, rd, offset)
}
