package programs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvgold/cache"
	"github.com/sarchlab/rvgold/config"
	"github.com/sarchlab/rvgold/emu"
	"github.com/sarchlab/rvgold/insts"
)

// Result holds the outcome of a single program run.
type Result struct {
	// Name identifies the program
	Name string `json:"name"`

	// Description explains what the program exercises
	Description string `json:"description"`

	// Cycles is the number of committed cycles
	Cycles uint64 `json:"cycles"`

	// Diagnostics is the number of illegal instructions seen
	Diagnostics int `json:"diagnostics"`

	// Mismatches lists every difference from the expected final state
	Mismatches []string `json:"mismatches,omitempty"`

	// Err is the fault or cancellation that stopped the run, if any
	Err string `json:"error,omitempty"`

	// DCacheHits/Misses (if the cache model is enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// SimulatedSeconds is Cycles at the configured clock frequency
	SimulatedSeconds float64 `json:"simulated_seconds"`

	// WallTime is the actual time taken to run the program
	WallTime time.Duration `json:"wall_time_ns"`
}

// Passed reports whether the run finished without a fault and matched the
// expected state.
func (r Result) Passed() bool {
	return r.Err == "" && len(r.Mismatches) == 0
}

// Harness runs canned programs on fresh emulators and reports results.
type Harness struct {
	config   *config.Config
	logger   *logrus.Logger
	output   io.Writer
	programs []Program
}

// NewHarness creates a harness. A nil cfg uses config.Default and a nil
// logger uses the logrus standard logger.
func NewHarness(cfg *config.Config, logger *logrus.Logger, output io.Writer) *Harness {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if output == nil {
		output = os.Stdout
	}
	return &Harness{
		config: cfg,
		logger: logger,
		output: output,
	}
}

// AddProgram adds a program to the harness.
func (h *Harness) AddProgram(p Program) {
	h.programs = append(h.programs, p)
}

// AddPrograms adds multiple programs to the harness.
func (h *Harness) AddPrograms(programs []Program) {
	h.programs = append(h.programs, programs...)
}

// RunAll runs every program and returns the results in order.
func (h *Harness) RunAll(ctx context.Context) []Result {
	results := make([]Result, 0, len(h.programs))
	for _, p := range h.programs {
		results = append(results, h.Run(ctx, p))
	}
	return results
}

// Run executes one program on a fresh emulator.
func (h *Harness) Run(ctx context.Context, p Program) Result {
	diagnostics := 0
	counter := emu.TracerFunc(func(ev *emu.TraceEvent) {
		if ev.Effect.Diagnostic != nil {
			diagnostics++
		}
	})

	opts := h.config.EmulatorOptions(h.logger)
	opts = append(opts, emu.WithTracer(counter))

	var dcache *cache.Cache
	if h.config.Cache.Enabled {
		dcache = cache.FromConfig(h.config.Cache)
		opts = append(opts, emu.WithTracer(dcache))
	}

	e := emu.NewEmulator(opts...)
	p.Load(e)

	start := time.Now()
	final, err := e.Run(ctx, p.Steps)
	wallTime := time.Since(start)

	result := Result{
		Name:             p.Name,
		Description:      p.Description,
		Cycles:           e.Cycle(),
		Diagnostics:      diagnostics,
		SimulatedSeconds: h.config.SimulatedSeconds(e.Cycle()),
		WallTime:         wallTime,
	}

	if err != nil {
		result.Err = err.Error()
		h.logger.WithFields(logrus.Fields{
			"program": p.Name,
			"cycle":   e.Cycle(),
		}).WithError(err).Error("program stopped")
	} else {
		result.Mismatches = p.Verify(final, e.DataMemory(), diagnostics)
	}

	if dcache != nil {
		stats := dcache.Stats()
		result.DCacheHits = stats.Hits
		result.DCacheMisses = stats.Misses
	}

	return result
}

// Verify compares a final state against the program's expectation.
func (p Program) Verify(
	final emu.StepResult,
	dmem *emu.DataMemory,
	diagnostics int,
) []string {
	var mismatches []string

	if final.PC != p.Expect.PC {
		mismatches = append(mismatches, fmt.Sprintf(
			"pc: got 0x%08x, want 0x%08x",
			insts.UWord(final.PC), insts.UWord(p.Expect.PC)))
	}

	for r := uint8(0); r < emu.NumRegs; r++ {
		want, ok := p.Expect.Regs[r]
		if !ok {
			continue
		}
		if got := final.Regs[r]; got != want {
			mismatches = append(mismatches, fmt.Sprintf(
				"x%d: got %d, want %d", r, got, want))
		}
	}

	indices := make([]int, 0, len(p.Expect.Data))
	for i := range p.Expect.Data {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		want := p.Expect.Data[i]
		got, err := dmem.Read(i)
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("dmem[%d]: %v", i, err))
			continue
		}
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf(
				"dmem[%d]: got %d, want %d", i, got, want))
		}
	}

	if diagnostics != p.Expect.Diagnostics {
		mismatches = append(mismatches, fmt.Sprintf(
			"diagnostics: got %d, want %d", diagnostics, p.Expect.Diagnostics))
	}

	return mismatches
}

// PrintResults outputs results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	_, _ = fmt.Fprintln(h.output, "=== rvgold Program Results ===")
	_, _ = fmt.Fprintln(h.output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
		}
		_, _ = fmt.Fprintf(h.output, "Program: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(h.output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.output, "  Cycles:      %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.output, "  Diagnostics: %d\n", r.Diagnostics)
		_, _ = fmt.Fprintf(h.output, "  Simulated:   %.9fs\n", r.SimulatedSeconds)
		if r.Err != "" {
			_, _ = fmt.Fprintf(h.output, "  Error: %s\n", r.Err)
		}
		for _, m := range r.Mismatches {
			_, _ = fmt.Fprintf(h.output, "  Mismatch: %s\n", m)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.output, "")
	}
}

// PrintCSV outputs results in CSV format.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.output,
		"name,passed,cycles,diagnostics,mismatches,dcache_hits,dcache_misses")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.output, "%s,%t,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Passed(),
			r.Cycles,
			r.Diagnostics,
			len(r.Mismatches),
			r.DCacheHits,
			r.DCacheMisses,
		)
	}
}

// Report is the JSON output format for a harness run.
type Report struct {
	Timestamp string   `json:"timestamp"`
	XLEN      int      `json:"xlen"`
	Passed    int      `json:"passed"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// PrintJSON outputs results as a single JSON report.
func (h *Harness) PrintJSON(results []Result) error {
	report := Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		XLEN:      insts.XLEN,
		Results:   results,
	}
	for _, r := range results {
		if r.Passed() {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	encoder := json.NewEncoder(h.output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
