package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvgold/emu"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		memory *emu.DataMemory
		lsu    *emu.LoadStoreUnit
	)

	BeforeEach(func() {
		memory = emu.NewDataMemory(8)
		lsu = emu.NewLoadStoreUnit(memory, false)
	})

	Describe("WordIndex", func() {
		It("should drop the low two address bits", func() {
			for addr, want := range map[W]int{0: 0, 3: 0, 4: 1, 7: 1, 28: 7, 31: 7} {
				index, err := lsu.WordIndex(addr)
				Expect(err).NotTo(HaveOccurred())
				Expect(index).To(Equal(want), "addr %d", addr)
			}
		})

		It("should reject addresses past capacity", func() {
			_, err := lsu.WordIndex(32)
			Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
		})

		It("should reject negative addresses", func() {
			_, err := lsu.WordIndex(-4)
			Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
		})

		It("should reject misaligned addresses with strict alignment", func() {
			lsu = emu.NewLoadStoreUnit(memory, true)

			_, err := lsu.WordIndex(6)
			Expect(err).To(MatchError(emu.ErrMisaligned))

			index, err := lsu.WordIndex(8)
			Expect(err).NotTo(HaveOccurred())
			Expect(index).To(Equal(2))
		})
	})

	Describe("LW", func() {
		It("should read base + offset", func() {
			Expect(memory.Write(3, -42)).To(Succeed())

			value, access, err := lsu.LW(8, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(W(-42)))
			Expect(access).To(Equal(emu.MemAccess{Kind: emu.AccessLoad, Addr: 12, Index: 3}))
		})

		It("should accept a negative offset", func() {
			Expect(memory.Write(0, 9)).To(Succeed())

			value, _, err := lsu.LW(4, -4)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(W(9)))
		})

		It("should not record an access on failure", func() {
			_, access, err := lsu.LW(0, 64)
			Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
			Expect(access.Kind).To(Equal(emu.AccessNone))
		})
	})

	Describe("SW", func() {
		It("should resolve the target without writing", func() {
			access, err := lsu.SW(4, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(access).To(Equal(emu.MemAccess{Kind: emu.AccessStore, Addr: 8, Index: 2}))
			Expect(memory.Words()).To(HaveEach(W(0)))
		})

		It("should fail past capacity", func() {
			_, err := lsu.SW(28, 4)
			Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
		})
	})
})
