package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-arp/midi"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := midi.ListPorts()
		if err != nil {
			// CoreMIDI hangs now and then
			return fmt.Errorf("%w (try: sudo killall coreaudiod midiserver)", err)
		}
		printPorts(cmd.OutOrStdout(), ports)
		return nil
	},
}

func printPorts(w io.Writer, ports midi.Ports) {
	fmt.Fprintln(w, "=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Fprintf(w, "  %d: %s\n", i, p.String())
	}
	fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Fprintf(w, "  %d: %s\n", i, p.String())
	}
}
