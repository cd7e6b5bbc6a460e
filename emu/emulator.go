package emu

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvgold/insts"
)

// StepResult represents the architectural state after one cycle.
type StepResult struct {
	// Cycle is the number of committed cycles, including this one.
	Cycle uint64

	// PC is the program counter after the cycle.
	PC insts.Word

	// Regs is a snapshot of x0-x31 after the cycle.
	Regs [NumRegs]insts.Word

	// Inst is the instruction fetched this cycle.
	Inst insts.Instruction

	// Effect is the effect committed this cycle.
	Effect Effect

	// Diagnostic is set for an illegal opcode or funct3. The cycle still
	// committed with PC + 4.
	Diagnostic error

	// Err is set if the cycle faulted. Nothing was committed.
	Err error
}

// Emulator is the golden model. It owns the PC, the register file and both
// memories. It is not safe for concurrent use.
type Emulator struct {
	regFile    *RegFile
	instMemory *InstMemory
	dataMemory *DataMemory
	decoder    *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	logger  *logrus.Logger
	tracers []Tracer

	instWords       int
	dataWords       int
	strictAlignment bool

	// Execution state
	cycle    uint64
	maxSteps uint64 // 0 means no limit
	inst     insts.Instruction
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithInstMemoryWords sets the instruction memory capacity in words.
func WithInstMemoryWords(n int) EmulatorOption {
	return func(e *Emulator) {
		e.instWords = n
	}
}

// WithDataMemoryWords sets the data memory capacity in words.
func WithDataMemoryWords(n int) EmulatorOption {
	return func(e *Emulator) {
		e.dataWords = n
	}
}

// WithStrictAlignment makes misaligned LW/SW addresses fault instead of
// being truncated to the containing word.
func WithStrictAlignment(strict bool) EmulatorOption {
	return func(e *Emulator) {
		e.strictAlignment = strict
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *logrus.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithTracer registers a tracer notified after every committed cycle.
func WithTracer(t Tracer) EmulatorOption {
	return func(e *Emulator) {
		e.tracers = append(e.tracers, t)
	}
}

// WithMaxSteps sets the maximum number of cycles to execute.
// A value of 0 means no limit.
func WithMaxSteps(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxSteps = max
	}
}

// NewEmulator creates a new golden model with PC 0, zero registers and
// zeroed memories.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:   &RegFile{},
		decoder:   insts.NewDecoder(),
		logger:    logrus.StandardLogger(),
		instWords: DefaultMemoryWords,
		dataWords: DefaultMemoryWords,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.instMemory = NewInstMemory(e.instWords)
	e.dataMemory = NewDataMemory(e.dataWords)

	// Create execution units
	e.alu = NewALU()
	e.lsu = NewLoadStoreUnit(e.dataMemory, e.strictAlignment)
	e.branchUnit = NewBranchUnit()

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// InstMemory returns the instruction memory.
func (e *Emulator) InstMemory() *InstMemory {
	return e.instMemory
}

// DataMemory returns the data memory.
func (e *Emulator) DataMemory() *DataMemory {
	return e.dataMemory
}

// Cycle returns the number of committed cycles since creation or reset.
func (e *Emulator) Cycle() uint64 {
	return e.cycle
}

// AddTracer registers a tracer after construction.
func (e *Emulator) AddTracer(t Tracer) {
	e.tracers = append(e.tracers, t)
}

// LoadImage copies an instruction image into instruction memory starting at
// index 0. Words beyond capacity are dropped. It returns the number of words
// stored. It must not be called while a step is in progress.
func (e *Emulator) LoadImage(words []uint32) int {
	n := e.instMemory.Load(words)
	e.logger.WithFields(logrus.Fields{
		"words":   n,
		"dropped": len(words) - n,
	}).Debug("loaded instruction image")
	return n
}

// LoadData copies initial data words into data memory starting at index 0.
func (e *Emulator) LoadData(words []insts.Word) int {
	return e.dataMemory.Load(words)
}

// Reset sets the PC and all registers to zero. Both memories are kept.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.cycle = 0
}

// State returns the current PC and registers without executing anything.
func (e *Emulator) State() StepResult {
	return StepResult{
		Cycle: e.cycle,
		PC:    e.regFile.PC,
		Regs:  e.regFile.Snapshot(),
	}
}

// Step executes exactly one cycle: fetch, decode, execute, commit.
func (e *Emulator) Step() StepResult {
	if e.maxSteps > 0 && e.cycle >= e.maxSteps {
		return e.fault(ErrStepLimit)
	}

	pc := e.regFile.PC

	// 1. Fetch
	if pc < 0 {
		return e.fault(fmt.Errorf("%w: pc 0x%x", ErrAddressOutOfRange, insts.UWord(pc)))
	}
	word, err := e.instMemory.Fetch(int(pc >> 2))
	if err != nil {
		return e.fault(err)
	}

	// 2. Decode
	e.decoder.DecodeInto(word, &e.inst)

	// 3. Execute
	eff, err := e.execute(&e.inst)
	if err != nil {
		return e.fault(err)
	}

	// 4. Commit
	e.commit(eff)
	e.cycle++

	if eff.Diagnostic != nil {
		e.logger.WithFields(logrus.Fields{
			"pc":     fmt.Sprintf("0x%08x", insts.UWord(pc)),
			"word":   fmt.Sprintf("0x%08x", word),
			"opcode": e.inst.Fields.Opcode,
			"funct3": e.inst.Fields.Funct3,
		}).Warn(eff.Diagnostic.Error())
	}

	result := StepResult{
		Cycle:      e.cycle,
		PC:         e.regFile.PC,
		Regs:       e.regFile.Snapshot(),
		Inst:       e.inst,
		Effect:     eff,
		Diagnostic: eff.Diagnostic,
	}

	if len(e.tracers) > 0 {
		ev := &TraceEvent{
			Cycle:  e.cycle,
			PC:     pc,
			Inst:   &result.Inst,
			Effect: eff,
		}
		for _, t := range e.tracers {
			t.Trace(ev)
		}
	}

	return result
}

func (e *Emulator) fault(err error) StepResult {
	result := e.State()
	result.Err = err
	return result
}

// Run executes cycles until steps cycles have committed, a cycle faults or
// ctx is cancelled. ctx is checked between cycles only. A steps value of 0
// runs until a fault, the step limit or cancellation. Illegal instructions
// do not stop Run.
func (e *Emulator) Run(ctx context.Context, steps uint64) (StepResult, error) {
	result := e.State()
	for n := uint64(0); steps == 0 || n < steps; n++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result = e.Step()
		if result.Err != nil {
			if errors.Is(result.Err, ErrStepLimit) {
				e.logger.WithField("cycles", e.cycle).Info("step limit reached")
			}
			return result, result.Err
		}
	}
	return result, nil
}
