package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvgold/emu"
)

var _ = Describe("BranchUnit", func() {
	var branchUnit *emu.BranchUnit

	BeforeEach(func() {
		branchUnit = emu.NewBranchUnit()
	})

	Describe("BEQ", func() {
		It("should branch forward when equal", func() {
			next, taken := branchUnit.BEQ(0x100, 7, 7, 8)

			Expect(taken).To(BeTrue())
			Expect(next).To(Equal(W(0x108)))
		})

		It("should branch backward when equal", func() {
			next, taken := branchUnit.BEQ(0x100, -1, -1, -0x100)

			Expect(taken).To(BeTrue())
			Expect(next).To(Equal(W(0)))
		})

		It("should fall through when not equal", func() {
			next, taken := branchUnit.BEQ(0x100, 1, 2, 8)

			Expect(taken).To(BeFalse())
			Expect(next).To(Equal(W(0x104)))
		})

		It("should stay in place with a zero displacement", func() {
			next, taken := branchUnit.BEQ(0, 0, 0, 0)

			Expect(taken).To(BeTrue())
			Expect(next).To(Equal(W(0)))
		})

		It("should compare full words", func() {
			_, taken := branchUnit.BEQ(0, minWord(), maxWord(), 8)
			Expect(taken).To(BeFalse())
		})
	})

	Describe("JAL", func() {
		It("should link pc + 4 and jump forward", func() {
			link, target := branchUnit.JAL(0x20, 0x40)

			Expect(link).To(Equal(W(0x24)))
			Expect(target).To(Equal(W(0x60)))
		})

		It("should jump backward", func() {
			link, target := branchUnit.JAL(0x20, -0x20)

			Expect(link).To(Equal(W(0x24)))
			Expect(target).To(Equal(W(0)))
		})

		It("should allow a self loop", func() {
			_, target := branchUnit.JAL(0x1c, 0)
			Expect(target).To(Equal(W(0x1c)))
		})
	})
})
