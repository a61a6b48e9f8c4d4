// Package config holds the boot configuration used by the elfboot command.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/elfboot/loader"
)

// SinkKind selects where loaded segments are written.
type SinkKind string

const (
	// SinkSimulated writes into simulated RAM.
	SinkSimulated SinkKind = "sim"
	// SinkDevMem writes into physical memory through /dev/mem.
	SinkDevMem SinkKind = "devmem"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvImage      = "ELFBOOT_IMAGE"
	EnvCmdLine    = "ELFBOOT_CMDLINE"
	EnvMemorySize = "ELFBOOT_MEMORY_SIZE"
	EnvSink       = "ELFBOOT_SINK"
	EnvVerbose    = "ELFBOOT_VERBOSE"
)

// BootConfig describes one boot attempt.
type BootConfig struct {
	// Image is the path of the ELF image to load.
	Image string `json:"image" yaml:"image"`

	// CommandLine is passed to the image's entry point.
	CommandLine string `json:"cmdline" yaml:"cmdline"`

	// MemorySize is the first argument of the entry point. Zero means the
	// size of the simulated RAM.
	MemorySize uint64 `json:"memory_size" yaml:"memory_size"`

	// Sink selects simulated RAM or /dev/mem. Default: sim.
	Sink SinkKind `json:"sink" yaml:"sink"`

	// RAMBase is the lowest physical address of simulated RAM. Default: 0.
	RAMBase uint64 `json:"ram_base" yaml:"ram_base"`

	// RAMSize is the size of simulated RAM. Default: 4GB, the whole 32-bit
	// physical space.
	RAMSize uint64 `json:"ram_size" yaml:"ram_size"`

	// DevMemPath is the physical memory device. Default: /dev/mem.
	DevMemPath string `json:"devmem_path" yaml:"devmem_path"`

	// ChunkSize is the segment copy buffer size. Default: 64KB.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// Disassemble is how many entry-point instructions to decode when the
	// simulated target takes over. Default: 8.
	Disassemble int `json:"disassemble" yaml:"disassemble"`

	// Verbose enables per-segment debug output.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// DefaultBootConfig returns a BootConfig that loads into simulated RAM.
func DefaultBootConfig() *BootConfig {
	return &BootConfig{
		Sink:        SinkSimulated,
		RAMBase:     0,
		RAMSize:     1 << 32,
		DevMemPath:  "/dev/mem",
		ChunkSize:   loader.DefaultChunkSize,
		Disassemble: 8,
	}
}

// LoadConfig loads a BootConfig from a YAML file, or a JSON file if the
// name ends in .json. Fields missing from the file keep their defaults.
func LoadConfig(path string) (*BootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boot config file: %w", err)
	}

	config := DefaultBootConfig()
	if isJSON(path) {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse boot config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a BootConfig to a YAML or JSON file, chosen by
// extension as in LoadConfig.
func (c *BootConfig) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize boot config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write boot config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from ELFBOOT_* environment variables.
func (c *BootConfig) ApplyEnv() error {
	c.Image = env.Str(EnvImage, c.Image)
	c.CommandLine = env.Str(EnvCmdLine, c.CommandLine)
	c.Sink = SinkKind(env.Str(EnvSink, string(c.Sink)))
	c.Verbose = c.Verbose || env.Bool(EnvVerbose)

	if s := env.Str(EnvMemorySize, ""); s != "" {
		size, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMemorySize, s, err)
		}
		c.MemorySize = size
	}

	return nil
}

// EntryMemorySize returns the memory size handed to the entry point.
func (c *BootConfig) EntryMemorySize() uint64 {
	if c.MemorySize == 0 {
		return c.RAMSize
	}
	return c.MemorySize
}

// Validate checks that the configuration can be used for a boot.
func (c *BootConfig) Validate() error {
	switch c.Sink {
	case SinkSimulated:
		if c.RAMSize == 0 {
			return fmt.Errorf("ram_size must be > 0")
		}
		if c.RAMBase+c.RAMSize < c.RAMBase {
			return fmt.Errorf("ram_base + ram_size overflows")
		}
	case SinkDevMem:
		if c.DevMemPath == "" {
			return fmt.Errorf("devmem_path must be set for the devmem sink")
		}
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0")
	}
	if c.Disassemble < 0 {
		return fmt.Errorf("disassemble must be >= 0")
	}
	return nil
}

// Clone returns a copy of the BootConfig.
func (c *BootConfig) Clone() *BootConfig {
	clone := *c
	return &clone
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
