package emu

import (
	"fmt"

	"github.com/sarchlab/rvgold/insts"
)

// EffectKind identifies the architectural write an instruction makes.
type EffectKind uint8

// Effect kinds.
const (
	EffectNone EffectKind = iota
	EffectRegWrite
	EffectMemWrite
)

// Effect is the pending outcome of one instruction, computed from
// start-of-cycle state and applied at commit.
type Effect struct {
	Kind   EffectKind
	Reg    uint8      // Target register for EffectRegWrite
	Value  insts.Word // Value written by the effect
	NextPC insts.Word
	Taken  bool // BEQ taken or JAL

	// Access is the data memory access made by LW or SW.
	Access MemAccess

	// Diagnostic is ErrIllegalOpcode or ErrIllegalFunct3 (wrapped) for
	// unsupported encodings, nil otherwise.
	Diagnostic error
}

// String describes the effect in register-transfer notation.
func (eff Effect) String() string {
	var s string
	switch eff.Kind {
	case EffectRegWrite:
		s = fmt.Sprintf("x%d <- 0x%x", eff.Reg, insts.UWord(eff.Value))
	case EffectMemWrite:
		s = fmt.Sprintf("dmem[%d] <- 0x%x", eff.Access.Index, insts.UWord(eff.Value))
	default:
		s = "none"
	}
	if eff.Taken {
		s += fmt.Sprintf(", pc <- 0x%x", insts.UWord(eff.NextPC))
	}
	return s
}

// execute computes the effect of inst at the current PC without modifying
// any state. A non-nil error is a fault and the cycle must not commit.
func (e *Emulator) execute(inst *insts.Instruction) (Effect, error) {
	pc := e.regFile.PC
	rs1 := e.regFile.ReadReg(inst.Rs1)
	rs2 := e.regFile.ReadReg(inst.Rs2)

	eff := Effect{NextPC: pc + 4}

	switch inst.Op {
	case insts.OpLW:
		value, access, err := e.lsu.LW(rs1, inst.Imm)
		if err != nil {
			return eff, fmt.Errorf("lw at pc 0x%x: %w", insts.UWord(pc), err)
		}
		eff.Kind, eff.Reg, eff.Value, eff.Access = EffectRegWrite, inst.Rd, value, access

	case insts.OpSW:
		access, err := e.lsu.SW(rs1, inst.Imm)
		if err != nil {
			return eff, fmt.Errorf("sw at pc 0x%x: %w", insts.UWord(pc), err)
		}
		eff.Kind, eff.Value, eff.Access = EffectMemWrite, rs2, access

	case insts.OpADDI, insts.OpSLTI, insts.OpXORI, insts.OpORI, insts.OpANDI:
		value, _ := e.alu.Compute(inst.Op, rs1, inst.Imm)
		eff.Kind, eff.Reg, eff.Value = EffectRegWrite, inst.Rd, value

	case insts.OpADD, insts.OpSUB, insts.OpSLT, insts.OpXOR, insts.OpOR, insts.OpAND:
		value, _ := e.alu.Compute(inst.Op, rs1, rs2)
		eff.Kind, eff.Reg, eff.Value = EffectRegWrite, inst.Rd, value

	case insts.OpLUI:
		eff.Kind, eff.Reg, eff.Value = EffectRegWrite, inst.Rd, inst.Imm

	case insts.OpBEQ:
		eff.NextPC, eff.Taken = e.branchUnit.BEQ(pc, rs1, rs2, inst.Imm)

	case insts.OpJAL:
		link, target := e.branchUnit.JAL(pc, inst.Imm)
		eff.Kind, eff.Reg, eff.Value = EffectRegWrite, inst.Rd, link
		eff.NextPC, eff.Taken = target, true

	case insts.OpIllegalFunct3:
		eff.Diagnostic = fmt.Errorf("%w (%02x) for opcode %d",
			ErrIllegalFunct3, inst.Fields.Funct3, inst.Fields.Opcode)

	case insts.OpIllegalOpcode:
		eff.Diagnostic = fmt.Errorf("%w (%02x)", ErrIllegalOpcode, inst.Fields.Opcode)

	default:
		panic(fmt.Sprintf("emu: unhandled op %v", inst.Op))
	}

	return eff, nil
}

// commit applies a computed effect, restores x0 and advances the PC.
func (e *Emulator) commit(eff Effect) {
	switch eff.Kind {
	case EffectRegWrite:
		e.regFile.WriteReg(eff.Reg, eff.Value)
	case EffectMemWrite:
		// The index was bounds-checked in execute.
		_ = e.dataMemory.Write(eff.Access.Index, eff.Value)
	}

	e.regFile.HardwireZero()
	e.regFile.PC = eff.NextPC
}
