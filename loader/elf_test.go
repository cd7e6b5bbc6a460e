package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvgold/insts"
	"github.com/sarchlab/rvgold/loader"
)

const (
	emRISCV  = 243
	emX86_64 = 62
	pfX      = 0x1
	pfW      = 0x2
	pfR      = 0x4
)

type testSegment struct {
	vaddr uint64
	flags uint32
	data  []byte
	memsz uint64 // 0 means len(data)
}

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("LoadELF", func() {
		Context("with a valid RISC-V ELF binary", func() {
			var elfPath string

			BeforeEach(func() {
				elfPath = filepath.Join(tempDir, "test.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 0, flags: pfR | pfX, data: wordsToBytes(
						insts.EncodeADDI(1, 0, 5),
						insts.EncodeLW(2, 0, 0),
					)},
					{vaddr: 8, flags: pfR | pfW, data: wordsToBytes(42, 0xFFFFFFFF), memsz: 16},
				})
			})

			It("should place text words at vaddr >> 2", func() {
				img, err := loader.LoadELF(elfPath, 1024, 1024)

				Expect(err).NotTo(HaveOccurred())
				Expect(img.Words).To(Equal([]uint32{
					insts.EncodeADDI(1, 0, 5),
					insts.EncodeLW(2, 0, 0),
				}))
				Expect(img.Source).To(Equal(elfPath))
			})

			It("should place data words and zero the BSS tail", func() {
				img, err := loader.LoadELF(elfPath, 1024, 1024)

				Expect(err).NotTo(HaveOccurred())
				Expect(img.Data).To(Equal([]insts.Word{0, 0, 42, -1, 0, 0}))
			})

			It("should reject segments beyond capacity", func() {
				_, err := loader.LoadELF(elfPath, 1, 1024)
				Expect(err).To(MatchError(loader.ErrCapacity))

				_, err = loader.LoadELF(elfPath, 1024, 4)
				Expect(err).To(MatchError(loader.ErrCapacity))
			})
		})

		Context("with a read-only data segment", func() {
			It("should place constants in the data image", func() {
				elfPath := filepath.Join(tempDir, "rodata.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 0, flags: pfR | pfX, data: wordsToBytes(insts.EncodeLW(1, 0, 16))},
					{vaddr: 16, flags: pfR, data: wordsToBytes(42)},
				})

				img, err := loader.LoadELF(elfPath, 1024, 1024)

				Expect(err).NotTo(HaveOccurred())
				Expect(img.Words).To(Equal([]uint32{insts.EncodeLW(1, 0, 16)}))
				Expect(img.Data).To(Equal([]insts.Word{0, 0, 0, 0, 42}))
			})

			It("should check read-only segments against data capacity", func() {
				elfPath := filepath.Join(tempDir, "rodata-big.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 16, flags: pfR, data: wordsToBytes(42)},
				})

				_, err := loader.LoadELF(elfPath, 1024, 4)
				Expect(err).To(MatchError(loader.ErrCapacity))
			})
		})

		Context("with a malformed segment", func() {
			It("should reject filesz larger than memsz without panicking", func() {
				elfPath := filepath.Join(tempDir, "filesz.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 0, flags: pfR | pfW, data: wordsToBytes(1, 2), memsz: 4},
				})

				var err error
				Expect(func() {
					_, err = loader.LoadELF(elfPath, 1024, 1024)
				}).NotTo(Panic())
				Expect(err).To(MatchError(loader.ErrMalformedImage))
				Expect(err.Error()).To(ContainSubstring("filesz"))
			})

			It("should reject a huge memsz before reading it", func() {
				elfPath := filepath.Join(tempDir, "memsz.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 0, flags: pfR | pfW, data: wordsToBytes(1), memsz: 0xFFFFFFFC},
				})

				_, err := loader.LoadELF(elfPath, 1024, 1024)
				Expect(err).To(MatchError(loader.ErrCapacity))
			})

			It("should reject a segment that starts past capacity", func() {
				elfPath := filepath.Join(tempDir, "vaddr.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 0x7FFFFFF0, flags: pfR | pfX, data: wordsToBytes(1)},
				})

				_, err := loader.LoadELF(elfPath, 1024, 1024)
				Expect(err).To(MatchError(loader.ErrCapacity))
			})

			It("should reject a misaligned segment", func() {
				elfPath := filepath.Join(tempDir, "align.elf")
				createRISCVELF(elfPath, emRISCV, 0, []testSegment{
					{vaddr: 2, flags: pfR | pfW, data: wordsToBytes(1)},
				})

				_, err := loader.LoadELF(elfPath, 1024, 1024)
				Expect(err).To(MatchError(loader.ErrMalformedImage))
			})
		})

		Context("with an invalid file", func() {
			It("should return resource unavailable for a missing file", func() {
				_, err := loader.LoadELF("/nonexistent/path/to/file.elf", 1024, 1024)
				Expect(err).To(MatchError(loader.ErrResourceUnavailable))
				Expect(err.Error()).To(ContainSubstring("failed to open"))
			})

			It("should reject a non-ELF file", func() {
				notElfPath := filepath.Join(tempDir, "not-elf.bin")
				Expect(os.WriteFile(notElfPath, []byte("not an elf file"), 0644)).To(Succeed())

				_, err := loader.LoadELF(notElfPath, 1024, 1024)
				Expect(err).To(MatchError(loader.ErrNotRISCV))
			})

			It("should reject an empty file", func() {
				emptyPath := filepath.Join(tempDir, "empty.elf")
				Expect(os.WriteFile(emptyPath, []byte{}, 0644)).To(Succeed())

				_, err := loader.LoadELF(emptyPath, 1024, 1024)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a foreign ELF", func() {
			It("should reject another machine type", func() {
				elfPath := filepath.Join(tempDir, "x86.elf")
				createRISCVELF(elfPath, emX86_64, 0, nil)

				_, err := loader.LoadELF(elfPath, 1024, 1024)
				Expect(err).To(MatchError(loader.ErrNotRISCV))
				Expect(err.Error()).To(ContainSubstring("machine type"))
			})

			It("should reject a nonzero entry point", func() {
				elfPath := filepath.Join(tempDir, "entry.elf")
				createRISCVELF(elfPath, emRISCV, 0x10000, nil)

				_, err := loader.LoadELF(elfPath, 1024, 1024)
				Expect(err).To(MatchError(loader.ErrNotRISCV))
				Expect(err.Error()).To(ContainSubstring("entry point"))
			})
		})
	})
})

func wordsToBytes(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// createRISCVELF writes a minimal little-endian ELF executable whose class
// matches the architectural width.
func createRISCVELF(path string, machine uint16, entry uint64, segs []testSegment) {
	if insts.XLEN == 64 {
		createELF64(path, machine, entry, segs)
		return
	}
	createELF32(path, machine, entry, segs)
}

func createELF32(path string, machine uint16, entry uint64, segs []testSegment) {
	const ehsize, phentsize = 52, 32
	le := binary.LittleEndian

	elfHeader := make([]byte, ehsize)
	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 1                                  // 32-bit
	elfHeader[5] = 1                                  // little endian
	elfHeader[6] = 1                                  // version
	le.PutUint16(elfHeader[16:18], 2)                 // executable
	le.PutUint16(elfHeader[18:20], machine)           // machine
	le.PutUint32(elfHeader[20:24], 1)                 // version
	le.PutUint32(elfHeader[24:28], uint32(entry))     // entry
	le.PutUint32(elfHeader[28:32], ehsize)            // phoff
	le.PutUint16(elfHeader[40:42], ehsize)            // ehsize
	le.PutUint16(elfHeader[42:44], phentsize)         // phentsize
	le.PutUint16(elfHeader[44:46], uint16(len(segs))) // phnum
	le.PutUint16(elfHeader[46:48], 40)                // shentsize

	offset := uint32(ehsize + phentsize*len(segs))
	var progHeaders, payload []byte
	for _, seg := range segs {
		memsz := seg.memsz
		if memsz == 0 {
			memsz = uint64(len(seg.data))
		}
		ph := make([]byte, phentsize)
		le.PutUint32(ph[0:4], 1) // PT_LOAD
		le.PutUint32(ph[4:8], offset)
		le.PutUint32(ph[8:12], uint32(seg.vaddr))
		le.PutUint32(ph[12:16], uint32(seg.vaddr))
		le.PutUint32(ph[16:20], uint32(len(seg.data)))
		le.PutUint32(ph[20:24], uint32(memsz))
		le.PutUint32(ph[24:28], seg.flags)
		le.PutUint32(ph[28:32], 4)
		progHeaders = append(progHeaders, ph...)
		payload = append(payload, seg.data...)
		offset += uint32(len(seg.data))
	}

	writeELF(path, elfHeader, progHeaders, payload)
}

func createELF64(path string, machine uint16, entry uint64, segs []testSegment) {
	const ehsize, phentsize = 64, 56
	le := binary.LittleEndian

	elfHeader := make([]byte, ehsize)
	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2                                  // 64-bit
	elfHeader[5] = 1                                  // little endian
	elfHeader[6] = 1                                  // version
	le.PutUint16(elfHeader[16:18], 2)                 // executable
	le.PutUint16(elfHeader[18:20], machine)           // machine
	le.PutUint32(elfHeader[20:24], 1)                 // version
	le.PutUint64(elfHeader[24:32], entry)             // entry
	le.PutUint64(elfHeader[32:40], ehsize)            // phoff
	le.PutUint16(elfHeader[52:54], ehsize)            // ehsize
	le.PutUint16(elfHeader[54:56], phentsize)         // phentsize
	le.PutUint16(elfHeader[56:58], uint16(len(segs))) // phnum
	le.PutUint16(elfHeader[58:60], 64)                // shentsize

	offset := uint64(ehsize + phentsize*len(segs))
	var progHeaders, payload []byte
	for _, seg := range segs {
		memsz := seg.memsz
		if memsz == 0 {
			memsz = uint64(len(seg.data))
		}
		ph := make([]byte, phentsize)
		le.PutUint32(ph[0:4], 1) // PT_LOAD
		le.PutUint32(ph[4:8], seg.flags)
		le.PutUint64(ph[8:16], offset)
		le.PutUint64(ph[16:24], seg.vaddr)
		le.PutUint64(ph[24:32], seg.vaddr)
		le.PutUint64(ph[32:40], uint64(len(seg.data)))
		le.PutUint64(ph[40:48], memsz)
		le.PutUint64(ph[48:56], 4)
		progHeaders = append(progHeaders, ph...)
		payload = append(payload, seg.data...)
		offset += uint64(len(seg.data))
	}

	writeELF(path, elfHeader, progHeaders, payload)
}

func writeELF(path string, parts ...[]byte) {
	file, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = file.Close() }()
	for _, p := range parts {
		_, err = file.Write(p)
		Expect(err).NotTo(HaveOccurred())
	}
}
