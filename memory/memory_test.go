package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elfboot/memory"
)

var _ = Describe("Storage", func() {
	var ram *memory.Storage

	BeforeEach(func() {
		ram = memory.NewStorage(0x80000000, 0x100000)
	})

	It("should report its geometry", func() {
		Expect(ram.Base()).To(Equal(uint64(0x80000000)))
		Expect(ram.Capacity()).To(Equal(uint64(0x100000)))
		Expect(ram.MemorySize()).To(Equal(uint64(0x100000)))
	})

	It("should read back written bytes at physical addresses", func() {
		Expect(ram.Write(0x80001000, []byte{1, 2, 3, 4})).To(Succeed())

		data, err := ram.Read(0x80001000, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read untouched memory as zero", func() {
		data, err := ram.Read(0x80002000, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(make([]byte, 8)))
	})

	It("should accept a write ending at the last byte", func() {
		Expect(ram.Write(0x80000000+0x100000-2, []byte{7, 8})).To(Succeed())
	})

	DescribeTable("should reject writes outside RAM",
		func(addr uint64, n int) {
			err := ram.Write(addr, make([]byte, n))
			Expect(err).To(MatchError(ContainSubstring("outside RAM")))
		},
		Entry("below base", uint64(0x7ffffff0), 4),
		Entry("straddling the end", uint64(0x80000000+0x100000-2), 4),
		Entry("past the end", uint64(0x90000000), 1),
	)
})

var _ = Describe("Recorder", func() {
	var rec *memory.Recorder

	BeforeEach(func() {
		rec = memory.NewRecorder()
	})

	It("should keep its own copy of written data", func() {
		data := []byte{1, 2, 3}
		Expect(rec.Write(0x10, data)).To(Succeed())
		data[0] = 0xff

		Expect(rec.Stores()).To(Equal([]memory.Store{{Addr: 0x10, Data: []byte{1, 2, 3}}}))
		Expect(rec.Snapshot(0x10, 3)).To(Equal([]byte{1, 2, 3}))
	})

	It("should track touched addresses and totals", func() {
		Expect(rec.Write(0x10, []byte{0, 0})).To(Succeed())
		Expect(rec.Write(0x20, []byte{5})).To(Succeed())

		Expect(rec.WriteCount()).To(Equal(2))
		Expect(rec.BytesWritten()).To(Equal(uint64(3)))
		Expect(rec.Touched(0x11)).To(BeTrue())
		Expect(rec.Touched(0x12)).To(BeFalse())
	})

	It("should let later writes win", func() {
		Expect(rec.Write(0x10, []byte{1, 1, 1})).To(Succeed())
		Expect(rec.Write(0x11, []byte{2})).To(Succeed())

		Expect(rec.Snapshot(0x10, 3)).To(Equal([]byte{1, 2, 1}))
	})

	It("should forget everything on Reset", func() {
		Expect(rec.Write(0x10, []byte{1})).To(Succeed())
		rec.Reset()

		Expect(rec.WriteCount()).To(BeZero())
		Expect(rec.Touched(0x10)).To(BeFalse())
	})
})
