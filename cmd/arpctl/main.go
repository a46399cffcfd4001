package main

import (
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var rootCmd = &cobra.Command{
	Use:   "arpctl",
	Short: "go-arp without the TUI",
	Long: `arpctl lists MIDI ports, generates patterns, renders the arpeggiator
offline and runs it headless behind the HTTP control API.`,
	SilenceUsage: true,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
