package emu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvgold/insts"
)

// TraceEvent describes one committed cycle.
type TraceEvent struct {
	Cycle  uint64
	PC     insts.Word // PC of the instruction
	Inst   *insts.Instruction
	Effect Effect
}

// Tracer observes committed cycles. Tracers run after commit and must not
// modify the emulator.
type Tracer interface {
	Trace(ev *TraceEvent)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ev *TraceEvent)

// Trace calls f(ev).
func (f TracerFunc) Trace(ev *TraceEvent) {
	f(ev)
}

// LogTracer logs every committed instruction at debug level.
type LogTracer struct {
	logger *logrus.Logger
}

// NewLogTracer creates a tracer writing to logger.
func NewLogTracer(logger *logrus.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Trace logs ev.
func (t *LogTracer) Trace(ev *TraceEvent) {
	if !t.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	t.logger.WithFields(logrus.Fields{
		"cycle":   ev.Cycle,
		"pc":      fmt.Sprintf("0x%08x", insts.UWord(ev.PC)),
		"effect":  ev.Effect.String(),
		"next_pc": fmt.Sprintf("0x%08x", insts.UWord(ev.Effect.NextPC)),
	}).Debug(ev.Inst.String())
}

// Recorder keeps every trace event in memory.
type Recorder struct {
	Events []TraceEvent
}

// Trace appends a copy of ev.
func (r *Recorder) Trace(ev *TraceEvent) {
	inst := *ev.Inst
	cp := *ev
	cp.Inst = &inst
	r.Events = append(r.Events, cp)
}
