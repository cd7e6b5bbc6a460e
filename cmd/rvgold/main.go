// Package main provides the rvgold command line driver.
//
// rvgold loads an instruction image, resets the golden model and prints the
// architectural state after every cycle, one comparator line per cycle, so
// the output can be diffed against an RTL simulation dump.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvgold/cache"
	"github.com/sarchlab/rvgold/config"
	"github.com/sarchlab/rvgold/emu"
	"github.com/sarchlab/rvgold/insts"
	"github.com/sarchlab/rvgold/loader"
	"github.com/sarchlab/rvgold/programs"
	"github.com/sarchlab/rvgold/statsview"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	steps       uint64
	jsonOutput  bool
	csvOutput   bool
	dataPath    string
	elf         bool
	logLevel    string
	trace       bool
	cache       bool
	statsview   bool
	cpuProfile  string
	program     string
	allPrograms bool
	verbose     bool
	imagePath   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("rvgold", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to machine configuration JSON file")
	fs.Uint64Var(&opts.steps, "steps", 0, "Number of cycles to run (0 = program default, or 100 for images)")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Print one JSON object per cycle (or a JSON report with -programs)")
	fs.BoolVar(&opts.csvOutput, "csv", false, "Print -programs results as CSV")
	fs.StringVar(&opts.dataPath, "data", "", "Hex file with the initial data memory image")
	fs.BoolVar(&opts.elf, "elf", false, "Treat the image as a RISC-V ELF file (implied by a .elf suffix)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides the configuration)")
	fs.BoolVar(&opts.trace, "trace", false, "Log every committed instruction at debug level")
	fs.BoolVar(&opts.cache, "cache", false, "Enable the data cache model")
	fs.BoolVar(&opts.statsview, "statsview", false, "Serve runtime statistics over HTTP")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write a CPU profile to file")
	fs.StringVar(&opts.program, "program", "", "Run a canned program instead of an image ("+
		strings.Join(programs.Names(), ", ")+")")
	fs.BoolVar(&opts.allPrograms, "programs", false, "Run and check every canned program")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: rvgold [options] <image.hex|image.elf>\n")
		_, _ = fmt.Fprintf(stderr, "       rvgold [options] -program <name>\n")
		_, _ = fmt.Fprintf(stderr, "       rvgold [options] -programs\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		opts.imagePath = fs.Arg(0)
	}
	if opts.imagePath == "" && opts.program == "" && !opts.allPrograms {
		fs.Usage()
		return nil, errors.New("no image given")
	}

	return opts, nil
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.trace {
		cfg.Trace = true
		if cfg.Level() < logrus.DebugLevel {
			cfg.LogLevel = logrus.DebugLevel.String()
		}
	}
	if opts.cache {
		cfg.Cache.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	logger.SetLevel(cfg.Level())
	return logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger := newLogger(cfg, stderr)

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			logger.WithError(err).Error("cannot create CPU profile")
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			logger.WithError(err).Error("cannot start CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if opts.statsview {
		if err := statsview.Launch(statsview.DefaultAddress, stderr); err != nil {
			logger.WithError(err).Warn("statsview disabled")
		}
	}

	if opts.allPrograms {
		return runPrograms(ctx, opts, cfg, logger, stdout)
	}

	return runImage(ctx, opts, cfg, logger, stdout)
}

// runPrograms runs every canned program through the harness.
func runPrograms(
	ctx context.Context,
	opts *options,
	cfg *config.Config,
	logger *logrus.Logger,
	stdout io.Writer,
) int {
	h := programs.NewHarness(cfg, logger, stdout)
	h.AddPrograms(programs.All())
	results := h.RunAll(ctx)

	switch {
	case opts.jsonOutput:
		if err := h.PrintJSON(results); err != nil {
			logger.WithError(err).Error("cannot write report")
			return 1
		}
	case opts.csvOutput:
		h.PrintCSV(results)
	default:
		h.PrintResults(results)
	}

	for _, r := range results {
		if !r.Passed() {
			return 1
		}
	}
	return 0
}

// source is what gets loaded into the emulator before reset.
type source struct {
	name  string
	words []uint32
	data  []insts.Word
	steps uint64
}

func loadSource(opts *options, cfg *config.Config, logger *logrus.Logger) (*source, error) {
	if opts.program != "" {
		p, ok := programs.Lookup(opts.program)
		if !ok {
			return nil, fmt.Errorf("unknown program %q (have: %s)",
				opts.program, strings.Join(programs.Names(), ", "))
		}
		return &source{name: p.Name, words: p.Words, data: p.Data, steps: p.Steps}, nil
	}

	var (
		img *loader.Image
		err error
	)
	if opts.elf || strings.EqualFold(filepath.Ext(opts.imagePath), ".elf") {
		img, err = loader.LoadELF(opts.imagePath, cfg.InstWords, cfg.DataWords)
	} else {
		img, err = loader.LoadHex(opts.imagePath, cfg.InstWords)
	}
	if err != nil {
		return nil, err
	}
	if img.Dropped > 0 {
		logger.WithFields(logrus.Fields{
			"image":    opts.imagePath,
			"dropped":  img.Dropped,
			"capacity": cfg.InstWords,
		}).Warn("image larger than instruction memory")
	}

	src := &source{name: opts.imagePath, words: img.Words, data: img.Data, steps: 100}
	if opts.dataPath != "" {
		src.data, err = loader.LoadHexData(opts.dataPath, cfg.DataWords)
		if err != nil {
			return nil, err
		}
	}
	return src, nil
}

// runImage loads an image, resets the model and prints one comparator line
// per cycle.
func runImage(
	ctx context.Context,
	opts *options,
	cfg *config.Config,
	logger *logrus.Logger,
	stdout io.Writer,
) int {
	src, err := loadSource(opts, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("cannot load image")
		return 1
	}

	steps := src.steps
	if opts.steps > 0 {
		steps = opts.steps
	}

	emuOpts := cfg.EmulatorOptions(logger)
	var dcache *cache.Cache
	if cfg.Cache.Enabled {
		dcache = cache.FromConfig(cfg.Cache)
		emuOpts = append(emuOpts, emu.WithTracer(dcache))
	}

	e := emu.NewEmulator(emuOpts...)
	e.LoadImage(src.words)
	e.LoadData(src.data)
	e.Reset()

	if opts.verbose {
		logger.WithFields(logrus.Fields{
			"image":      src.name,
			"words":      len(src.words),
			"data_words": len(src.data),
			"steps":      steps,
			"xlen":       insts.XLEN,
		}).Info("loaded")
	}

	w := newStateWriter(stdout, opts.jsonOutput)
	diagnostics := 0
	code := 0
	for n := uint64(0); n < steps; n++ {
		if err := ctx.Err(); err != nil {
			logger.WithError(err).Warn("interrupted")
			code = 1
			break
		}

		result := e.Step()
		if result.Err != nil {
			logger.WithFields(logrus.Fields{
				"cycle": result.Cycle,
				"pc":    fmt.Sprintf("0x%08x", insts.UWord(result.PC)),
			}).WithError(result.Err).Error("cycle faulted")
			code = 1
			break
		}
		if result.Diagnostic != nil {
			diagnostics++
		}

		if err := w.write(&result); err != nil {
			logger.WithError(err).Error("cannot write state")
			return 1
		}
	}

	summary := logrus.Fields{
		"cycles":            e.Cycle(),
		"diagnostics":       diagnostics,
		"simulated_seconds": cfg.SimulatedSeconds(e.Cycle()),
	}
	if dcache != nil {
		stats := dcache.Stats()
		summary["dcache_hits"] = stats.Hits
		summary["dcache_misses"] = stats.Misses
		summary["dcache_hit_rate"] = fmt.Sprintf("%.3f", stats.HitRate())
		summary["dcache_cycles"] = stats.Cycles
	}
	logger.WithFields(summary).Info("done")

	return code
}

// stateWriter prints the comparator feed.
type stateWriter struct {
	out  io.Writer
	json *json.Encoder
}

func newStateWriter(out io.Writer, asJSON bool) *stateWriter {
	w := &stateWriter{out: out}
	if asJSON {
		w.json = json.NewEncoder(out)
	}
	return w
}

// stateLine is the JSON form of one comparator line.
type stateLine struct {
	Cycle      uint64   `json:"cycle"`
	PC         string   `json:"pc"`
	Regs       []string `json:"regs"`
	Inst       string   `json:"inst"`
	Diagnostic string   `json:"diagnostic,omitempty"`
}

const hexDigits = insts.XLEN / 4

func hexWord(v insts.Word) string {
	return fmt.Sprintf("0x%0*x", hexDigits, insts.UWord(v))
}

func (w *stateWriter) write(r *emu.StepResult) error {
	if w.json != nil {
		line := stateLine{
			Cycle: r.Cycle,
			PC:    hexWord(r.PC),
			Regs:  make([]string, emu.NumRegs),
			Inst:  r.Inst.String(),
		}
		for i, v := range r.Regs {
			line.Regs[i] = hexWord(v)
		}
		if r.Diagnostic != nil {
			line.Diagnostic = r.Diagnostic.Error()
		}
		return w.json.Encode(line)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "cycle=%d pc=%s", r.Cycle, hexWord(r.PC))
	for i, v := range r.Regs {
		fmt.Fprintf(&sb, " x%d=%s", i, hexWord(v))
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w.out, sb.String())
	return err
}
