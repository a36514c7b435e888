// Command sonora is a small engine control CLI for quick experimentation
// with the engine outside of a REPL. It creates an engine (from defaults,
// an optional YAML config and flag overrides), optionally adds one demo
// generator (--add-afunc), and then either renders to a WAV file
// (--render-to-disk) or starts a realtime sink, logs the status and stops
// after two seconds. Clear, pre/post control callbacks and arbitrary events
// are not exposed as commands; they are available through the package API.
package main

import (
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/aural/sonora"
	"github.com/aural/sonora/generators"
)

// defaults holds engine-creation defaults optionally loaded from a YAML
// file via --config, preferring an explicit, inspectable config step over
// environment-variable sprawl.
type defaults struct {
	SampleRate uint32  `yaml:"sampleRate"`
	Nchnls     uint32  `yaml:"nchnls"`
	BlockSize  uint32  `yaml:"blockSize"`
	Tempo      float64 `yaml:"tempo"`
}

func loadDefaults(path string) (defaults, error) {
	d := defaults{SampleRate: 44100, Nchnls: 1, BlockSize: 64, Tempo: 60}
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse config: %w", err)
	}
	return d, nil
}

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "YAML file with engine defaults (sampleRate, nchnls, blockSize, tempo)")
		sampleRate = pflag.Uint32P("sample-rate", "r", 0, "override sample rate")
		nchnls     = pflag.Uint32P("nchnls", "n", 0, "override channel count")
		blockSize  = pflag.Uint32P("block-size", "b", 0, "override block size")
		gen        = pflag.String("add-afunc", "", "add a demo generator by name: const, decay")
		render     = pflag.String("render-to-disk", "", "render to this WAV path instead of a live sink")
		blocks     = pflag.Uint64("blocks", 200, "maximum blocks to render when --render-to-disk is set (0: no cap)")
		help       = pflag.BoolP("help", "h", false, "display help text")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "sonora — realtime audio synthesis engine control CLI")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	logger := charmlog.New(os.Stderr)

	d, err := loadDefaults(*configPath)
	if err != nil {
		logger.Fatal("config", "err", err)
	}
	if *sampleRate != 0 {
		d.SampleRate = *sampleRate
	}
	if *nchnls != 0 {
		d.Nchnls = *nchnls
	}
	if *blockSize != 0 {
		d.BlockSize = *blockSize
	}

	engine, err := sonora.NewEngine(sonora.EngineConfig{
		SampleRate:   d.SampleRate,
		Nchnls:       d.Nchnls,
		BlockSize:    d.BlockSize,
		InitialTempo: d.Tempo,
		Diagnostics:  sonora.NewDefaultErrorHandler(logger),
	})
	if err != nil {
		logger.Fatal("create engine", "err", err)
	}
	sonora.Register(engine)
	logger.Info("created", "id", engine.ID, "sampleRate", d.SampleRate, "nchnls", d.Nchnls, "blockSize", d.BlockSize)

	if *render != "" {
		// RenderToDisk transitions status itself; generators/cfuncs queued
		// beforehand would be dropped by the stopped-engine no-op, so they
		// are added to the event list directly via an immediate event.
		addDemoGenerator(engine, *gen)
		if err := engine.RenderToDisk(*render, *blocks); err != nil {
			logger.Fatal("render", "err", err)
		}
		logger.Info("status", "status", engine.Status())
		return
	}

	sink, err := sonora.OpenRealtimeSink(d.SampleRate, d.Nchnls, d.BlockSize)
	if err != nil {
		logger.Fatal("open realtime sink", "err", err)
	}
	if err := engine.Start(sink); err != nil {
		logger.Fatal("start", "err", err)
	}
	addDemoGenerator(engine, *gen)
	logger.Info("status", "status", engine.Status())

	time.Sleep(2 * time.Second)
	engine.Stop()
}

func addDemoGenerator(engine *sonora.Engine, name string) {
	var g sonora.Generator
	switch name {
	case "const":
		g = generators.NewConst(0.25)
	case "decay":
		g = generators.NewDecay(0.8, 0.999, 1e-4)
	default:
		return
	}
	engine.AddEvents(sonora.EventAt(func(...interface{}) sonora.EventResult {
		return g
	}, engine.Events.Now()))
}
