package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elfboot/config"
	"github.com/sarchlab/elfboot/loader"
)

var _ = Describe("BootConfig", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	Describe("DefaultBootConfig", func() {
		It("should load into simulated RAM covering the 32-bit space", func() {
			c := config.DefaultBootConfig()
			Expect(c.Sink).To(Equal(config.SinkSimulated))
			Expect(c.RAMBase).To(BeZero())
			Expect(c.RAMSize).To(Equal(uint64(1 << 32)))
			Expect(c.ChunkSize).To(Equal(loader.DefaultChunkSize))
			Expect(c.Validate()).To(Succeed())
		})

		It("should hand the RAM size to the entry point by default", func() {
			c := config.DefaultBootConfig()
			Expect(c.EntryMemorySize()).To(Equal(uint64(1 << 32)))

			c.MemorySize = 0x2000000
			Expect(c.EntryMemorySize()).To(Equal(uint64(0x2000000)))
		})
	})

	Describe("LoadConfig", func() {
		It("should read YAML and keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "boot.yaml")
			Expect(os.WriteFile(path, []byte(
				"image: vmlinux\n"+
					"cmdline: console=ttyS0,9600 root=/dev/hda1\n"+
					"memory_size: 0x4000000\n"+
					"ram_base: 0x80000000\n"+
					"ram_size: 0x8000000\n"), 0644)).To(Succeed())

			c, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Image).To(Equal("vmlinux"))
			Expect(c.CommandLine).To(Equal("console=ttyS0,9600 root=/dev/hda1"))
			Expect(c.MemorySize).To(Equal(uint64(0x4000000)))
			Expect(c.RAMBase).To(Equal(uint64(0x80000000)))
			Expect(c.RAMSize).To(Equal(uint64(0x8000000)))
			Expect(c.Sink).To(Equal(config.SinkSimulated))
			Expect(c.Disassemble).To(Equal(8))
		})

		It("should read JSON by extension", func() {
			path := filepath.Join(tempDir, "boot.json")
			Expect(os.WriteFile(path, []byte(`{"image": "kernel.elf", "sink": "devmem", "verbose": true}`), 0644)).To(Succeed())

			c, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Image).To(Equal("kernel.elf"))
			Expect(c.Sink).To(Equal(config.SinkDevMem))
			Expect(c.Verbose).To(BeTrue())
			Expect(c.DevMemPath).To(Equal("/dev/mem"))
		})

		It("should fail on a missing file", func() {
			_, err := config.LoadConfig(filepath.Join(tempDir, "nope.yaml"))
			Expect(err).To(MatchError(ContainSubstring("failed to read boot config file")))
		})

		It("should fail on malformed content", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse boot config")))
		})
	})

	DescribeTable("SaveConfig round trip",
		func(name string) {
			c := config.DefaultBootConfig()
			c.Image = "vmlinux.32"
			c.CommandLine = "init=/bin/sh"
			c.RAMBase = 0x80000000
			path := filepath.Join(tempDir, name)

			Expect(c.SaveConfig(path)).To(Succeed())
			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		},
		Entry("yaml", "boot.yaml"),
		Entry("json", "boot.json"),
	)

	Describe("ApplyEnv", func() {
		It("should override from ELFBOOT variables", func() {
			GinkgoT().Setenv(config.EnvImage, "/boot/other.elf")
			GinkgoT().Setenv(config.EnvCmdLine, "quiet")
			GinkgoT().Setenv(config.EnvMemorySize, "0x1000000")
			GinkgoT().Setenv(config.EnvSink, "devmem")
			GinkgoT().Setenv(config.EnvVerbose, "true")

			c := config.DefaultBootConfig()
			Expect(c.ApplyEnv()).To(Succeed())
			Expect(c.Image).To(Equal("/boot/other.elf"))
			Expect(c.CommandLine).To(Equal("quiet"))
			Expect(c.MemorySize).To(Equal(uint64(0x1000000)))
			Expect(c.Sink).To(Equal(config.SinkDevMem))
			Expect(c.Verbose).To(BeTrue())
		})

		It("should keep values when variables are unset", func() {
			c := config.DefaultBootConfig()
			c.CommandLine = "keep"
			Expect(c.ApplyEnv()).To(Succeed())
			Expect(c.CommandLine).To(Equal("keep"))
			Expect(c.Sink).To(Equal(config.SinkSimulated))
		})

		It("should reject a malformed memory size", func() {
			GinkgoT().Setenv(config.EnvMemorySize, "lots")

			c := config.DefaultBootConfig()
			Expect(c.ApplyEnv()).To(MatchError(ContainSubstring(config.EnvMemorySize)))
		})
	})

	Describe("Validate", func() {
		It("should reject an unknown sink", func() {
			c := config.DefaultBootConfig()
			c.Sink = "tape"
			Expect(c.Validate()).To(MatchError(ContainSubstring("unknown sink")))
		})

		It("should reject empty simulated RAM", func() {
			c := config.DefaultBootConfig()
			c.RAMSize = 0
			Expect(c.Validate()).To(MatchError("ram_size must be > 0"))
		})

		It("should reject a non-positive chunk size", func() {
			c := config.DefaultBootConfig()
			c.ChunkSize = 0
			Expect(c.Validate()).To(MatchError("chunk_size must be > 0"))
		})

		It("should reject a negative disassembly count", func() {
			c := config.DefaultBootConfig()
			c.Disassemble = -1
			Expect(c.Validate()).To(MatchError("disassemble must be >= 0"))
		})
	})

	It("should Clone independently", func() {
		c := config.DefaultBootConfig()
		clone := c.Clone()
		clone.CommandLine = "changed"
		Expect(c.CommandLine).To(BeEmpty())
	})
})
