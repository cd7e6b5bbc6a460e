package insts

import "fmt"

// Op represents a decoded operation.
type Op uint8

// Supported operations. The two illegal kinds mark encodings the model does
// not implement.
const (
	OpIllegalOpcode Op = iota
	OpIllegalFunct3
	OpLW
	OpADDI
	OpSLTI
	OpXORI
	OpORI
	OpANDI
	OpSW
	OpADD
	OpSUB
	OpSLT
	OpXOR
	OpOR
	OpAND
	OpLUI
	OpBEQ
	OpJAL
)

var opNames = [...]string{
	OpIllegalOpcode: "illegal-opcode",
	OpIllegalFunct3: "illegal-funct3",
	OpLW:            "lw",
	OpADDI:          "addi",
	OpSLTI:          "slti",
	OpXORI:          "xori",
	OpORI:           "ori",
	OpANDI:          "andi",
	OpSW:            "sw",
	OpADD:           "add",
	OpSUB:           "sub",
	OpSLT:           "slt",
	OpXOR:           "xor",
	OpOR:            "or",
	OpAND:           "and",
	OpLUI:           "lui",
	OpBEQ:           "beq",
	OpJAL:           "jal",
}

// String returns the assembler mnemonic of the operation.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// IsIllegal reports whether the operation marks an unsupported encoding.
func (op Op) IsIllegal() bool {
	return op == OpIllegalOpcode || op == OpIllegalFunct3
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // register-register
	FormatI              // register-immediate and loads
	FormatS              // stores
	FormatB              // conditional branches
	FormatU              // upper immediate
	FormatJ              // jumps
)

// Instruction represents a decoded instruction. It has no identity beyond the
// cycle in which it was fetched.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Op     Op     // Operation
	Format Format // Encoding format

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	// Imm is the immediate selected by Format (zero for FormatR).
	Imm Word

	Fields     Fields
	Immediates Immediates
}

// Decoder decodes RISC-V machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(word, inst)
	return inst
}

// DecodeInto decodes a 32-bit instruction word into an existing Instruction,
// avoiding an allocation per cycle.
func (d *Decoder) DecodeInto(word uint32, inst *Instruction) {
	f := DecodeFields(word)
	imms := GenerateImmediates(word)

	*inst = Instruction{
		Word:       word,
		Op:         OpIllegalOpcode,
		Format:     FormatUnknown,
		Rd:         f.Rd,
		Rs1:        f.Rs1,
		Rs2:        f.Rs2,
		Fields:     f,
		Immediates: imms,
	}

	switch f.Opcode {
	case OpcodeLoad:
		inst.Op = OpLW
		d.setFormat(inst, FormatI)
	case OpcodeOpImm:
		inst.Op = d.decodeOpImm(f.Funct3)
		d.setFormat(inst, FormatI)
	case OpcodeStore:
		inst.Op = OpSW
		d.setFormat(inst, FormatS)
	case OpcodeOp:
		inst.Op = d.decodeOp(f.Funct3, f.Funct7)
		d.setFormat(inst, FormatR)
	case OpcodeLUI:
		inst.Op = OpLUI
		d.setFormat(inst, FormatU)
	case OpcodeBranch:
		inst.Op = OpBEQ
		d.setFormat(inst, FormatB)
	case OpcodeJAL:
		inst.Op = OpJAL
		d.setFormat(inst, FormatJ)
	}
}

func (d *Decoder) decodeOpImm(funct3 uint8) Op {
	switch funct3 {
	case Funct3AddSub:
		return OpADDI
	case Funct3SLT:
		return OpSLTI
	case Funct3XOR:
		return OpXORI
	case Funct3OR:
		return OpORI
	case Funct3AND:
		return OpANDI
	default:
		return OpIllegalFunct3
	}
}

// decodeOp selects the register-register operation. Any nonzero funct7 under
// funct3 0 selects SUB.
func (d *Decoder) decodeOp(funct3, funct7 uint8) Op {
	switch funct3 {
	case Funct3AddSub:
		if funct7 != 0 {
			return OpSUB
		}
		return OpADD
	case Funct3SLT:
		return OpSLT
	case Funct3XOR:
		return OpXOR
	case Funct3OR:
		return OpOR
	case Funct3AND:
		return OpAND
	default:
		return OpIllegalFunct3
	}
}

func (d *Decoder) setFormat(inst *Instruction, format Format) {
	inst.Format = format
	switch format {
	case FormatI:
		inst.Imm = inst.Immediates.I
	case FormatS:
		inst.Imm = inst.Immediates.S
	case FormatB:
		inst.Imm = inst.Immediates.B
	case FormatU:
		inst.Imm = inst.Immediates.U
	case FormatJ:
		inst.Imm = inst.Immediates.J
	}
}

// String returns the disassembly of the instruction.
func (inst *Instruction) String() string {
	switch inst.Op {
	case OpLW:
		return fmt.Sprintf("lw x%d, %d(x%d)", inst.Rd, inst.Imm, inst.Rs1)
	case OpSW:
		return fmt.Sprintf("sw x%d, %d(x%d)", inst.Rs2, inst.Imm, inst.Rs1)
	case OpADDI, OpSLTI, OpXORI, OpORI, OpANDI:
		return fmt.Sprintf("%s x%d, x%d, %d", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
	case OpADD, OpSUB, OpSLT, OpXOR, OpOR, OpAND:
		return fmt.Sprintf("%s x%d, x%d, x%d", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	case OpLUI:
		return fmt.Sprintf("lui x%d, 0x%05x", inst.Rd, UWord(inst.Imm)>>12&0xFFFFF)
	case OpBEQ:
		return fmt.Sprintf("beq x%d, x%d, %+d", inst.Rs1, inst.Rs2, inst.Imm)
	case OpJAL:
		return fmt.Sprintf("jal x%d, %+d", inst.Rd, inst.Imm)
	case OpIllegalFunct3:
		return fmt.Sprintf("illegal funct3 (%02x) opcode %d [0x%08x]",
			inst.Fields.Funct3, inst.Fields.Opcode, inst.Word)
	default:
		return fmt.Sprintf("illegal opcode (%02x) [0x%08x]", inst.Fields.Opcode, inst.Word)
	}
}
