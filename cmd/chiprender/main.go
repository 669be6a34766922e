// ABOUTME: Entry point for the offline chip renderer
// ABOUTME: Parses CLI flags, drives a scripted render, and writes a WAV file
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chipsynth/chipsynth-go/internal/script"
	"github.com/chipsynth/chipsynth-go/internal/version"
	"github.com/chipsynth/chipsynth-go/internal/wav"
	"github.com/chipsynth/chipsynth-go/pkg/chip"
	"github.com/chipsynth/chipsynth-go/pkg/chips"
	"github.com/chipsynth/chipsynth-go/pkg/render"
	"github.com/chipsynth/chipsynth-go/pkg/snapshot"
)

var (
	chipName   = flag.String("chip", "ssg", fmt.Sprintf("Chip to render %v", chips.Names()))
	clock      = flag.Uint("clock", 2000000, "Master clock in Hz")
	scriptPath = flag.String("script", "", "Register script to replay (optional)")
	seconds    = flag.Float64("seconds", 1.0, "Length of audio to render")
	outputs    = flag.Int("outputs", 0, "Channels to render (0 = all chip outputs)")
	outPath    = flag.String("out", "out.wav", "Output WAV file")
	savePath   = flag.String("save-state", "", "Write a state snapshot after rendering (optional)")
	loadPath   = flag.String("load-state", "", "Restore a state snapshot before rendering (optional)")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("%s chiprender %s\n", version.Product, version.Version)
		return
	}

	if err := run(); err != nil {
		log.Fatalf("chiprender: %v", err)
	}
}

func run() error {
	dev, err := chips.New(*chipName, uint32(*clock))
	if err != nil {
		return err
	}

	numOutputs := *outputs
	if numOutputs == 0 {
		numOutputs = dev.Outputs()
	}

	if *loadPath != "" {
		meta, blob, err := snapshot.ReadFile(*loadPath)
		if err != nil {
			return err
		}
		if meta.ChipName != dev.Name() {
			return fmt.Errorf("snapshot %s is for chip %q, not %q", *loadPath, meta.ChipName, dev.Name())
		}
		if meta.Clock != dev.Clock() {
			return fmt.Errorf("snapshot %s was taken at clock %d, device runs at %d", *loadPath, meta.Clock, dev.Clock())
		}
		chip.Load(dev, blob)
		log.Printf("Restored state %s from %s", meta.ID, *loadPath)
	}

	var sc *script.Script
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		sc, err = script.Parse(f, dev.SampleRate())
		f.Close()
		if err != nil {
			return err
		}
		log.Printf("Loaded %d register events from %s", sc.Len(), *scriptPath)
	}

	totalSamples := uint64(*seconds * float64(dev.SampleRate()))
	log.Printf("Rendering %s: %d frames at %dHz, %d channel(s)",
		dev.Name(), totalSamples, dev.SampleRate(), numOutputs)

	samples := make([]int32, 0, totalSamples*uint64(numOutputs))
	err = script.Render(dev, sc, totalSamples, numOutputs, func(v *render.View) error {
		samples = append(samples, v.Int32s()...)
		return nil
	})
	if err != nil {
		return err
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *outPath, err)
	}
	defer f.Close()
	if err := wav.Write(f, dev.SampleRate(), numOutputs, samples); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", *outPath, err)
	}
	log.Printf("Wrote %s", *outPath)

	if *savePath != "" {
		meta := snapshot.Meta{ChipName: dev.Name(), Clock: dev.Clock()}
		if err := snapshot.WriteFile(*savePath, meta, chip.Save(dev)); err != nil {
			return err
		}
		log.Printf("Saved state to %s", *savePath)
	}

	return nil
}
