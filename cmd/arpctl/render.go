package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-arp/config"
	"go-arp/host"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theory"
)

type renderOptions struct {
	pattern     string
	notes       []int
	method      int
	root        int
	scale       int
	subdivision string
	bpm         int
	seconds     float64
	sampleRate  float64
	blockSize   int
}

var renderOpts renderOptions

func init() {
	rootCmd.AddCommand(renderCmd)

	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.pattern, "pattern", "p", sequencer.DefaultPattern, "pattern text")
	f.IntSliceVarP(&renderOpts.notes, "notes", "n", []int{60, 64, 67}, "held MIDI notes, in press order")
	f.IntVarP(&renderOpts.method, "method", "m", int(theory.NotesPlayed), "chord method: 0 notes played, 1 as is, 2 single note")
	f.IntVar(&renderOpts.root, "root", 0, "scale root, 0 (C) to 11")
	f.IntVar(&renderOpts.scale, "scale", int(theory.ScaleMajor), "scale type index")
	f.StringVar(&renderOpts.subdivision, "sub", sequencer.DefaultSubdivision.String(), "step length, e.g. 1/8, 1/16T, 1/8.")
	f.IntVar(&renderOpts.bpm, "bpm", int(sequencer.DefaultTempo), "tempo")
	f.Float64Var(&renderOpts.seconds, "seconds", 2, "length to render")
	f.Float64Var(&renderOpts.sampleRate, "rate", sequencer.DefaultSampleRate, "sample rate")
	f.IntVar(&renderOpts.blockSize, "block", config.DefaultBlockSize, "frames per block")
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run voice 1 over held notes offline and print its events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render(cmd.OutOrStdout(), renderOpts)
	},
}

// render presses every note at sample 0, holds them for the whole run and
// prints what comes out, one line per event, at absolute sample positions.
// A # line describing the chord comes first.
func render(w io.Writer, o renderOptions) error {
	if o.sampleRate <= 0 || o.blockSize <= 0 {
		return fmt.Errorf("rate and block must be positive")
	}

	ctrl := sequencer.NewController(sequencer.DefaultParams())
	sub, err := sequencer.ParseSubdivision(o.subdivision)
	if err != nil {
		return err
	}
	for _, set := range []func() error{
		func() error { return ctrl.SetPattern(0, o.pattern) },
		func() error { return ctrl.SetMethod(theory.ChordMethod(o.method)) },
		func() error { return ctrl.SetRoot(o.root) },
		func() error { return ctrl.SetScale(theory.ScaleType(o.scale)) },
		func() error { return ctrl.SetSubdivision(0, sub) },
	} {
		if err := set(); err != nil {
			return err
		}
	}

	var held theory.HeldNotes
	input := make([]midi.Event, 0, len(o.notes))
	for _, n := range o.notes {
		if n < 0 || n > 127 {
			return fmt.Errorf("note %d: %w", n, sequencer.ErrInvalidParameter)
		}
		held.Add(uint8(n))
		input = append(input, midi.On(0, uint8(n), 100))
	}

	p := ctrl.Load()
	chord, _ := theory.BuildChord(&held, p.Method, p.ScaleValue(), false)
	fmt.Fprintf(w, "# %s, chord %s, degrees %v\n", p.ScaleValue(), chord.Name(), chord.Degrees())

	engine := sequencer.NewEngine(o.sampleRate, ctrl)
	transport := host.NewTransport(o.bpm)
	total := int(o.seconds * o.sampleRate)

	var out []midi.Event
	for start := 0; start < total; start += o.blockSize {
		frames := min(o.blockSize, total-start)
		out = engine.Process(sequencer.Block{
			Frames:    frames,
			Input:     input,
			Transport: transport.Advance(frames, o.sampleRate),
		}, out[:0])
		input = nil

		for _, e := range out {
			e.Offset += start
			fmt.Fprintf(w, "%8.4fs  %s\n", float64(e.Offset)/o.sampleRate, e)
		}
	}
	return nil
}
