package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/rvgold/config"
	"github.com/sarchlab/rvgold/emu"
	"github.com/sarchlab/rvgold/insts"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Default", func() {
		It("should describe the reference machine", func() {
			cfg := config.Default()

			Expect(cfg.InstWords).To(Equal(1024))
			Expect(cfg.DataWords).To(Equal(1024))
			Expect(cfg.StrictAlignment).To(BeFalse())
			Expect(cfg.MaxSteps).To(BeZero())
			Expect(cfg.Level()).To(Equal(logrus.InfoLevel))
			Expect(cfg.ClockFreq).To(Equal(100 * sim.MHz))
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("Load and Save", func() {
		It("should round-trip through a file", func() {
			cfg := config.Default()
			cfg.DataWords = 64
			cfg.Cache.Enabled = true
			path := filepath.Join(tempDir, "cfg.json")

			Expect(cfg.Save(path)).To(Succeed())
			loaded, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"inst_words": 16, "log_level": "debug"}`), 0644)).To(Succeed())

			cfg, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.InstWords).To(Equal(16))
			Expect(cfg.DataWords).To(Equal(1024))
			Expect(cfg.Level()).To(Equal(logrus.DebugLevel))
		})

		It("should fail on a missing file", func() {
			_, err := config.Load(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
		})

		It("should fail on invalid JSON", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{`), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})

	Describe("Validate", func() {
		DescribeTable("should reject unusable machines",
			func(mutate func(*config.Config), msg string) {
				cfg := config.Default()
				mutate(cfg)
				Expect(cfg.Validate()).To(MatchError(ContainSubstring(msg)))
			},
			Entry("zero inst words", func(c *config.Config) { c.InstWords = 0 }, "inst_words"),
			Entry("negative data words", func(c *config.Config) { c.DataWords = -1 }, "data_words"),
			Entry("unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"),
			Entry("zero clock", func(c *config.Config) { c.ClockFreq = 0 }, "clock_freq"),
			Entry("odd block size", func(c *config.Config) {
				c.Cache.Enabled = true
				c.Cache.BlockSize = 6
			}, "block_size"),
			Entry("size not divisible", func(c *config.Config) {
				c.Cache.Enabled = true
				c.Cache.Size = 100
			}, "size"),
			Entry("miss faster than hit", func(c *config.Config) {
				c.Cache.Enabled = true
				c.Cache.MissLatency = 0
			}, "miss_latency"),
		)

		It("should ignore cache parameters when the cache is disabled", func() {
			cfg := config.Default()
			cfg.Cache.BlockSize = 0
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("Clone", func() {
		It("should return an independent copy", func() {
			cfg := config.Default()
			clone := cfg.Clone()
			clone.Cache.Size = 1

			Expect(cfg.Cache.Size).To(Equal(4 * 1024))
		})
	})

	Describe("SimulatedSeconds", func() {
		It("should divide cycles by the clock frequency", func() {
			cfg := config.Default()
			Expect(cfg.SimulatedSeconds(100)).To(BeNumerically("~", 1e-6, 1e-12))
		})
	})

	Describe("EmulatorOptions", func() {
		It("should configure memory capacities and the step limit", func() {
			cfg := config.Default()
			cfg.InstWords = 8
			cfg.DataWords = 4
			cfg.MaxSteps = 2
			logger, _ := logtest.NewNullLogger()

			e := emu.NewEmulator(cfg.EmulatorOptions(logger)...)

			Expect(e.InstMemory().Capacity()).To(Equal(8))
			Expect(e.DataMemory().Capacity()).To(Equal(4))
			e.Step()
			e.Step()
			Expect(e.Step().Err).To(MatchError(emu.ErrStepLimit))
		})

		It("should attach a log tracer when tracing", func() {
			cfg := config.Default()
			cfg.Trace = true
			logger, hook := logtest.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)

			e := emu.NewEmulator(cfg.EmulatorOptions(logger)...)
			e.LoadImage([]uint32{insts.EncodeADDI(1, 0, 1)})
			e.Step()

			Expect(hook.LastEntry().Message).To(Equal("addi x1, x0, 1"))
		})
	})
})
