package insts

// Base opcodes of the supported instruction groups.
const (
	OpcodeLoad   uint8 = 0b0000011 // 3
	OpcodeOpImm  uint8 = 0b0010011 // 19
	OpcodeStore  uint8 = 0b0100011 // 35
	OpcodeOp     uint8 = 0b0110011 // 51
	OpcodeLUI    uint8 = 0b0110111 // 55
	OpcodeBranch uint8 = 0b1100011 // 99
	OpcodeJAL    uint8 = 0b1101111 // 111
)

// funct3 values shared by OP and OP-IMM.
const (
	Funct3AddSub uint8 = 0b000
	Funct3SLT    uint8 = 0b010
	Funct3XOR    uint8 = 0b100
	Funct3OR     uint8 = 0b110
	Funct3AND    uint8 = 0b111
)

// Fields holds the raw bit-fields of an instruction word.
type Fields struct {
	Opcode uint8 // bits [6:0]
	Funct3 uint8 // bits [14:12]
	Funct7 uint8 // bits [31:25]
	Rs1    uint8 // bits [19:15]
	Rs2    uint8 // bits [24:20]
	Rd     uint8 // bits [11:7]
}

// DecodeFields extracts the fixed-position fields of a 32-bit instruction.
// No validation is performed.
func DecodeFields(word uint32) Fields {
	return Fields{
		Opcode: uint8(word & 0x7F),
		Funct3: uint8((word >> 12) & 0x7),
		Funct7: uint8((word >> 25) & 0x7F),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Rd:     uint8((word >> 7) & 0x1F),
	}
}
