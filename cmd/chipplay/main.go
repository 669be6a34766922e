// ABOUTME: Entry point for the interactive chip player
// ABOUTME: Renders a scripted performance and plays it with a status TUI
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/chipsynth/chipsynth-go/internal/playback"
	"github.com/chipsynth/chipsynth-go/internal/script"
	"github.com/chipsynth/chipsynth-go/internal/ui"
	"github.com/chipsynth/chipsynth-go/internal/version"
	"github.com/chipsynth/chipsynth-go/internal/wav"
	"github.com/chipsynth/chipsynth-go/pkg/chips"
	"github.com/chipsynth/chipsynth-go/pkg/render"
)

var (
	chipName   = flag.String("chip", "ssg", fmt.Sprintf("Chip to play %v", chips.Names()))
	clock      = flag.Uint("clock", 2000000, "Master clock in Hz")
	scriptPath = flag.String("script", "", "Register script to replay (optional)")
	seconds    = flag.Float64("seconds", 2.0, "Length of audio to play")
	volume     = flag.Int("volume", 100, "Initial volume (0-100)")
	logFile    = flag.String("log-file", "chipplay.log", "Log file path")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("%s chipplay %s\n", version.Product, version.Version)
		return
	}

	// The TUI owns the terminal; logs go to a file only.
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()
	log.SetOutput(f)

	if err := run(); err != nil {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
		log.Fatalf("chipplay: %v", err)
	}
}

func run() error {
	dev, err := chips.New(*chipName, uint32(*clock))
	if err != nil {
		return err
	}

	var sc *script.Script
	if *scriptPath != "" {
		sf, err := os.Open(*scriptPath)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		sc, err = script.Parse(sf, dev.SampleRate())
		sf.Close()
		if err != nil {
			return err
		}
	}

	totalSamples := uint64(*seconds * float64(dev.SampleRate()))
	numOutputs := dev.Outputs()
	log.Printf("Rendering %s: %d frames at %dHz", dev.Name(), totalSamples, dev.SampleRate())

	samples := make([]int32, 0, totalSamples*uint64(numOutputs))
	err = script.Render(dev, sc, totalSamples, numOutputs, func(v *render.View) error {
		samples = append(samples, v.Int32s()...)
		return nil
	})
	if err != nil {
		return err
	}

	out, err := playback.New(dev.SampleRate(), numOutputs)
	if err != nil {
		return err
	}
	defer out.Close()
	out.SetVolume(*volume)

	volCtrl := ui.NewVolumeControl()
	program := ui.Run(volCtrl)

	if err := out.Play(wav.PCM16LE(samples)); err != nil {
		return err
	}
	start := time.Now()

	go func() {
		program.Send(ui.StatusMsg{
			ChipName:   dev.Name(),
			Clock:      dev.Clock(),
			SampleRate: dev.SampleRate(),
			State:      "playing",
		})

		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				played := uint64(time.Since(start).Seconds() * float64(dev.SampleRate()))
				state := "playing"
				if played >= totalSamples {
					played = totalSamples
				}
				if !out.IsPlaying() {
					state = "done"
				}
				program.Send(ui.StatusMsg{Played: &played, Total: &totalSamples, State: state})
			case change := <-volCtrl.Changes:
				// Volume changes land on the next clip; mute is
				// immediate enough for a short performance.
				out.SetVolume(change.Volume)
				out.SetMuted(change.Muted)
			case <-volCtrl.Quit:
				return
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
