// Command rigmon loads a control configuration, drives the rig for a
// number of frames, and prints the resolved control values.
//
// Usage:
//
//	rigmon [flags] config.yaml
//
// Without inputs attached a run is fully deterministic: the frame clock
// advances at -fps and every control follows its animation. Attaching
// MIDI, OSC or audio inputs turns rigmon into a live monitor; -frames 0
// runs at real-time pace until interrupted.
//
// Examples:
//
//	rigmon show.yaml
//	rigmon -frames 240 -every 60 show.yaml
//	rigmon -dump show.yaml
//	rigmon -frames 0 -watch -osc :9000 -midi -state state.json show.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-rig/audioin"
	"github.com/cwbudde/algo-rig/config"
	"github.com/cwbudde/algo-rig/graph"
	"github.com/cwbudde/algo-rig/midiin"
	"github.com/cwbudde/algo-rig/oscin"
	"github.com/cwbudde/algo-rig/persist"
	"github.com/cwbudde/algo-rig/rig"
	"github.com/cwbudde/algo-rig/timing"
)

func main() {
	frames := flag.Uint64("frames", 60, "frames to run (0 = run until interrupted)")
	fps := flag.Float64("fps", 60, "frame rate the clock advances at")
	bpm := flag.Float64("bpm", 120, "tempo in beats per minute")
	every := flag.Uint64("every", 0, "print values every N frames (0 = final frame only)")
	dump := flag.Bool("dump", false, "print the dependency graph and exit")
	watch := flag.Bool("watch", false, "watch the configuration file and apply edits live")
	useMIDI := flag.Bool("midi", false, "open a MIDI input port")
	device := flag.String("device", "", "MIDI device name substring (empty = first input)")
	clockMode := flag.String("clock", "frame", "timing source: frame or midi")
	oscAddr := flag.String("osc", "", "OSC listen address, e.g. :9000 (empty = disabled)")
	audioCh := flag.Int("audio", 0, "audio input channel count (0 = disabled)")
	hrcc := flag.Bool("hrcc", false, "pair CC 0-31 with CC 32-63 as 14-bit controls")
	statePath := flag.String("state", "", "persisted state file to load before and save after the run")
	seed := flag.Int64("seed", -1, "random seed (-1 = time-based)")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rigmon [flags] config.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Drives a control rig and prints the resolved values.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rigmon show.yaml\n")
		fmt.Fprintf(os.Stderr, "  rigmon -frames 240 -every 60 show.yaml\n")
		fmt.Fprintf(os.Stderr, "  rigmon -frames 0 -watch -osc :9000 show.yaml\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	doc, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *dump {
		if err := printGraph(doc); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := []rig.Option{rig.WithLogger(logger), rig.WithHRCC(*hrcc)}
	if *seed >= 0 {
		opts = append(opts, rig.WithRandSeed(*seed))
	}

	var midiPort *midiin.Port
	if *useMIDI || *clockMode == "midi" {
		midiPort, err = midiin.Open(*device, midiin.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, rig.WithMIDIInput(midiPort))
	}

	src, err := newClock(*clockMode, *bpm, *fps, midiPort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *oscAddr != "" {
		server, err := oscin.Open(*oscAddr, oscin.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, rig.WithOSCServer(server))
	}

	if *audioCh > 0 {
		stream, err := audioin.Open(*audioCh, audioin.DefaultSampleRate, audioin.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, rig.WithAudioInput(stream))
	}

	if *watch {
		watcher, err := config.NewWatcher(path, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, rig.WithWatcher(watcher))
	}

	hub, err := rig.New(doc, src, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer hub.Close()

	if *statePath != "" {
		st, err := persist.Load(*statePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Info("no persisted state yet", "path", *statePath)
			} else {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
		} else {
			hub.ApplyState(st)
		}
	}

	run(hub, *frames, *fps, *every)

	if err := printValues(hub); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *statePath != "" {
		if err := persist.Save(*statePath, hub.ExportState()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("state saved", "path", *statePath)
	}
}

// run drives the hub. A zero frame budget runs at real-time pace until
// SIGINT or SIGTERM.
func run(hub *rig.Hub, frames uint64, fps float64, every uint64) {
	if frames > 0 {
		for i := uint64(0); i < frames; i++ {
			hub.Update()
			if every > 0 && hub.Frame()%every == 0 {
				printSample(hub)
			}
		}
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			hub.Update()
			if every > 0 && hub.Frame()%every == 0 {
				printSample(hub)
			}
		}
	}
}

func printSample(hub *rig.Hub) {
	fmt.Printf("frame %d (beat %.3f)\n", hub.Frame(), hub.Beats())
	if err := printValues(hub); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func printValues(hub *rig.Hub) error {
	doc := hub.Document()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Control\tType\tValue\tChanged\n"); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "-------\t----\t-----\t-------\n"); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}

	for _, name := range hub.Names() {
		c, ok := doc.Control(name)
		if !ok {
			continue
		}
		changed := ""
		if hub.AnyChangedIn([]string{name}) {
			changed = "*"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			name, c.Kind, renderValue(hub, c), changed); err != nil {
			return fmt.Errorf("write output row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func renderValue(hub *rig.Hub, c *config.Control) string {
	switch c.Kind {
	case config.KindCheckbox:
		return strconv.FormatBool(hub.GetBool(c.Name))
	case config.KindSelect:
		return hub.GetString(c.Name)
	case config.KindSeparator:
		return ""
	default:
		return strconv.FormatFloat(hub.Get(c.Name), 'f', 4, 64)
	}
}

// newClock builds the timing source. In midi mode the clock follows
// MIDI realtime messages (with timecode resync) received on the port.
func newClock(mode string, bpm, fps float64, port *midiin.Port) (timing.Source, error) {
	switch mode {
	case "frame":
		return timing.NewFrameSource(bpm, fps)
	case "midi":
		if port == nil {
			return nil, fmt.Errorf("clock mode midi requires -midi")
		}
		src, err := timing.NewHybridSource(bpm)
		if err != nil {
			return nil, err
		}
		port.Subscribe(src.Handle)
		return src, nil
	default:
		return nil, fmt.Errorf("unknown clock mode %q (frame or midi)", mode)
	}
}

// printGraph renders the control dependency graph the way the hub wires
// it: modulators and live references, aliases resolved.
func printGraph(doc *config.Document) error {
	deps := make(map[string][]string, len(doc.Controls))
	for _, name := range doc.Names() {
		c, _ := doc.Control(name)
		var mapped []string
		for _, d := range c.Dependencies() {
			if target, ok := doc.Aliases[d]; ok {
				d = target
			}
			if d == name {
				continue
			}
			mapped = append(mapped, d)
		}
		deps[name] = mapped
	}
	g, err := graph.New(deps)
	if err != nil {
		return err
	}
	fmt.Print(g.Dump())
	return nil
}
