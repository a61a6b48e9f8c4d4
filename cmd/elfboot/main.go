// Package main provides the elfboot command.
// elfboot loads a big-endian ELF image into physical memory and hands it
// control, either for real through /dev/mem or into simulated RAM.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/elfboot/config"
	"github.com/sarchlab/elfboot/loader"
	"github.com/sarchlab/elfboot/memory"
	"github.com/sarchlab/elfboot/target"
)

var (
	configPath  = flag.String("config", "", "Path to boot configuration file (YAML, or JSON by extension)")
	cmdLine     = flag.String("cmdline", "", "Command line passed to the image")
	memSize     = flag.Uint64("mem", 0, "Memory size passed to the image (0 means simulated RAM size)")
	sinkKind    = flag.String("sink", "", "Memory sink: sim or devmem")
	disasm      = flag.Int("disasm", 0, "Entry-point instructions to disassemble in sim mode")
	interactive = flag.Bool("i", false, "Edit the command line at a prompt before booting")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.Image == "" {
		fmt.Fprintf(os.Stderr, "Usage: elfboot [options] <image.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *interactive {
		line, err := promptCommandLine(cfg.CommandLine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading command line: %v\n", err)
			os.Exit(2)
		}
		cfg.CommandLine = line
	}

	os.Exit(run(cfg, os.Stdout, os.Stderr))
}

// buildConfig layers the config file, the environment and explicitly set
// flags, in that order.
func buildConfig() (*config.BootConfig, error) {
	cfg := config.DefaultBootConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cmdline":
			cfg.CommandLine = *cmdLine
		case "mem":
			cfg.MemorySize = *memSize
		case "sink":
			cfg.Sink = config.SinkKind(*sinkKind)
		case "disasm":
			cfg.Disassemble = *disasm
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if flag.NArg() > 0 {
		cfg.Image = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid boot config: %w", err)
	}
	return cfg, nil
}

// run performs one boot attempt and returns the process exit code.
func run(cfg *config.BootConfig, stdout, stderr io.Writer) int {
	image, err := os.Open(cfg.Image)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening image: %v\n", err)
		return 1
	}
	defer func() { _ = image.Close() }()

	var (
		sink  loader.MemorySink
		trace *target.Trace
	)
	switch cfg.Sink {
	case config.SinkDevMem:
		dev, err := memory.OpenDevMem(cfg.DevMemPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening physical memory: %v\n", err)
			return 1
		}
		defer func() { _ = dev.Close() }()

		sink = dev
		trace = target.NewTrace(nil, target.WithStdout(stdout))
	default:
		ram := memory.NewStorage(cfg.RAMBase, cfg.RAMSize)
		sink = ram
		trace = target.NewTrace(ram,
			target.WithStdout(stdout),
			target.WithInstructions(cfg.Disassemble))
	}

	l := loader.New(sink, trace,
		loader.WithStdout(stdout),
		loader.WithVerbose(cfg.Verbose),
		loader.WithChunkSize(cfg.ChunkSize),
		loader.WithPlatform(loader.FixedMemorySize(cfg.EntryMemorySize())),
	)

	if _, err := l.Boot(image, cfg.CommandLine); err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	return 0
}
