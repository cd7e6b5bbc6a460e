// Package programs provides canned RV32 programs with known final state for
// regression runs of the golden model.
package programs

import (
	"github.com/sarchlab/rvgold/emu"
	"github.com/sarchlab/rvgold/insts"
)

// Program defines a single canned program.
type Program struct {
	// Name identifies the program
	Name string

	// Description explains what the program exercises
	Description string

	// Words is the instruction image, loaded at index 0
	Words []uint32

	// Data is the initial data memory image, loaded at index 0
	Data []insts.Word

	// Steps is the number of cycles to run
	Steps uint64

	// Expect is the architectural state after Steps cycles
	Expect Expectation
}

// Expectation is the final state a program must reach. Registers and data
// words not listed are not checked.
type Expectation struct {
	PC          insts.Word
	Regs        map[uint8]insts.Word
	Data        map[int]insts.Word
	Diagnostics int
}

// Load resets the emulator and loads the program image and data.
func (p Program) Load(e *emu.Emulator) {
	e.LoadImage(p.Words)
	e.LoadData(p.Data)
	e.Reset()
}

// All returns the standard set of canned programs.
func All() []Program {
	return []Program{
		sumLoop(),
		memCopy(),
		jumpAndLink(),
		signedCompare(),
		illegalRecovery(),
	}
}

// Lookup returns the canned program with the given name.
func Lookup(name string) (Program, bool) {
	for _, p := range All() {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

// Names lists the canned program names in order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

// halt is a self-loop; the machine has no stop instruction.
var halt = insts.EncodeJAL(0, 0)

// 1. Sum loop - BEQ exit test, backward JAL, SW of the result
func sumLoop() Program {
	return Program{
		Name:        "sum_loop",
		Description: "sum 5..1 with a counted loop and store the total",
		Words: []uint32{
			insts.EncodeADDI(1, 0, 5),  // 0x00: x1 = 5
			insts.EncodeADDI(2, 0, 0),  // 0x04: x2 = 0
			insts.EncodeADD(2, 2, 1),   // 0x08: x2 += x1
			insts.EncodeADDI(1, 1, -1), // 0x0c: x1--
			insts.EncodeBEQ(1, 0, 8),   // 0x10: done -> 0x18
			insts.EncodeJAL(0, -12),    // 0x14: -> 0x08
			insts.EncodeSW(2, 0, 0),    // 0x18: dmem[0] = x2
			halt,                       // 0x1c
		},
		Steps: 23,
		Expect: Expectation{
			PC:   0x1c,
			Regs: map[uint8]insts.Word{0: 0, 1: 0, 2: 15},
			Data: map[int]insts.Word{0: 15},
		},
	}
}

// 2. Memory copy - LW/SW with base+offset addressing
func memCopy() Program {
	return Program{
		Name:        "mem_copy",
		Description: "copy four data words from dmem[0..3] to dmem[4..7]",
		Words: []uint32{
			insts.EncodeADDI(1, 0, 0),  // 0x00: x1 = src
			insts.EncodeADDI(3, 0, 4),  // 0x04: x3 = count
			insts.EncodeLW(2, 1, 0),    // 0x08: x2 = dmem[x1]
			insts.EncodeSW(2, 1, 16),   // 0x0c: dmem[x1+16] = x2
			insts.EncodeADDI(1, 1, 4),  // 0x10
			insts.EncodeADDI(3, 3, -1), // 0x14
			insts.EncodeBEQ(3, 0, 8),   // 0x18: done -> 0x20
			insts.EncodeJAL(0, -20),    // 0x1c: -> 0x08
			halt,                       // 0x20
		},
		Data:  []insts.Word{11, 22, 33, -44},
		Steps: 26,
		Expect: Expectation{
			PC:   0x20,
			Regs: map[uint8]insts.Word{1: 16, 2: -44, 3: 0},
			Data: map[int]insts.Word{
				0: 11, 1: 22, 2: 33, 3: -44,
				4: 11, 5: 22, 6: 33, 7: -44,
			},
		},
	}
}

// 3. Jump and link - JAL over skipped code, LUI/ORI constant building
func jumpAndLink() Program {
	return Program{
		Name:        "jump_and_link",
		Description: "JAL over two instructions, then build and mask a 32-bit constant",
		Words: []uint32{
			insts.EncodeJAL(1, 12),       // 0x00: x1 = 4, -> 0x0c
			insts.EncodeADDI(5, 0, 1),    // 0x04: skipped
			insts.EncodeADDI(5, 0, 2),    // 0x08: skipped
			insts.EncodeLUI(6, 0x12345),  // 0x0c: x6 = 0x12345000
			insts.EncodeORI(6, 6, 0x678), // 0x10: x6 = 0x12345678
			insts.EncodeXORI(7, 6, -1),   // 0x14: x7 = ^x6
			insts.EncodeAND(8, 6, 7),     // 0x18: x8 = 0
			insts.EncodeOR(9, 6, 7),      // 0x1c: x9 = -1
			halt,                         // 0x20
		},
		Steps: 7,
		Expect: Expectation{
			PC: 0x20,
			Regs: map[uint8]insts.Word{
				1: 4,
				5: 0,
				6: 0x12345678,
				7: ^insts.Word(0x12345678),
				8: 0,
				9: -1,
			},
		},
	}
}

// 4. Signed compare - SLT/SLTI on negative operands, SUB, ANDI
func signedCompare() Program {
	return Program{
		Name:        "signed_compare",
		Description: "signed set-less-than on mixed-sign operands",
		Words: []uint32{
			insts.EncodeADDI(1, 0, -3), // 0x00
			insts.EncodeADDI(2, 0, 2),  // 0x04
			insts.EncodeSLT(3, 1, 2),   // 0x08: -3 < 2
			insts.EncodeSLT(4, 2, 1),   // 0x0c: 2 < -3
			insts.EncodeSLTI(5, 1, -4), // 0x10: -3 < -4
			insts.EncodeSLTI(6, 1, -2), // 0x14: -3 < -2
			insts.EncodeSUB(7, 2, 1),   // 0x18: 2 - -3
			insts.EncodeANDI(8, 7, 4),  // 0x1c
			halt,                       // 0x20
		},
		Steps: 9,
		Expect: Expectation{
			PC: 0x20,
			Regs: map[uint8]insts.Word{
				1: -3, 2: 2, 3: 1, 4: 0, 5: 0, 6: 1, 7: 5, 8: 4,
			},
		},
	}
}

// 5. Illegal recovery - both diagnostics advance the PC and change nothing
func illegalRecovery() Program {
	return Program{
		Name:        "illegal_recovery",
		Description: "illegal opcode and illegal funct3 words are skipped",
		Words: []uint32{
			// illegal opcode
			0x00000000,
			// illegal funct3
			insts.EncodeI(insts.OpcodeOpImm, 0b001, 1, 0, 5),
			insts.EncodeADDI(1, 0, 9),
			halt,
		},
		Steps: 4,
		Expect: Expectation{
			PC:          0x0c,
			Regs:        map[uint8]insts.Word{1: 9},
			Diagnostics: 2,
		},
	}
}
