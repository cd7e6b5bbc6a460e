package loader

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rvgold/insts"
)

// LoadELF parses a little-endian RISC-V ELF executable. The ELF class must
// match the architectural width and the entry point must be 0, since the
// model always starts from PC 0. Executable PT_LOAD segments fill the
// instruction image at vaddr >> 2; every other PT_LOAD segment (writable data
// as well as read-only constants) fills the data image the same way, one
// 32-bit word per index. Segments are checked against capacity before they
// are read.
func LoadELF(path string, instWords, dataWords int) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open ELF file: %w", ErrResourceUnavailable, err)
	}
	defer func() { _ = file.Close() }()

	f, err := elf.NewFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRISCV, err)
	}

	wantClass := elf.ELFCLASS32
	if insts.XLEN == 64 {
		wantClass = elf.ELFCLASS64
	}
	if f.Class != wantClass {
		return nil, fmt.Errorf("%w: ELF class %v, want %v", ErrNotRISCV, f.Class, wantClass)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%w: machine type %v", ErrNotRISCV, f.Machine)
	}
	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("%w: big-endian ELF", ErrNotRISCV)
	}
	if f.Entry != 0 {
		return nil, fmt.Errorf("%w: entry point 0x%x, the model starts at 0", ErrNotRISCV, f.Entry)
	}

	img := &Image{Source: path}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD || phdr.Memsz == 0 {
			continue
		}

		if phdr.Vaddr&0x3 != 0 {
			return nil, fmt.Errorf("%w: segment at 0x%x is not word aligned", ErrMalformedImage, phdr.Vaddr)
		}

		if phdr.Filesz > phdr.Memsz {
			return nil, fmt.Errorf("%w: segment at 0x%x has filesz %d > memsz %d",
				ErrMalformedImage, phdr.Vaddr, phdr.Filesz, phdr.Memsz)
		}

		text := phdr.Flags&elf.PF_X != 0
		kind, capacity := "data", dataWords
		if text {
			kind, capacity = "text", instWords
		}

		start := phdr.Vaddr >> 2
		count := (phdr.Memsz >> 2) + min(phdr.Memsz&0x3, 1)
		if start > uint64(capacity) || count > uint64(capacity)-start {
			return nil, fmt.Errorf("%w: %s segment at 0x%x needs %d words, have %d",
				ErrCapacity, kind, phdr.Vaddr, start+count, capacity)
		}

		// Read segment data; the BSS tail (memsz > filesz) stays zero.
		data := make([]byte, count*4)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data[:phdr.Filesz], 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		first, end := int(start), int(start+count)
		if text {
			img.Words = grow(img.Words, end)
			for i := first; i < end; i++ {
				img.Words[i] = binary.LittleEndian.Uint32(data[(i-first)*4:])
			}
			continue
		}

		img.Data = grow(img.Data, end)
		for i := first; i < end; i++ {
			img.Data[i] = insts.SignExtend(binary.LittleEndian.Uint32(data[(i-first)*4:]), 32)
		}
	}

	return img, nil
}

func grow[T any](s []T, n int) []T {
	if len(s) >= n {
		return s
	}
	return append(s, make([]T, n-len(s))...)
}
