package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-arp/config"
	"go-arp/theory"
)

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.AddCommand(presetsShowCmd, presetsMvCmd, presetsRmCmd)
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List saved presets, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := config.ListPresets()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(presets) == 0 {
			fmt.Fprintln(w, "no presets")
			return nil
		}
		for _, p := range presets {
			name := p.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(w, "%s  %-20s %s\n", p.Timestamp.Format("2006-01-02 15:04"), name, p.Filename)
		}
		return nil
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show [FILE]",
	Short: "Print a preset, the newest without FILE",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := ""
		if len(args) == 1 {
			filename = args[0]
		}
		p, err := config.LoadPreset(filename)
		if err != nil {
			return err
		}
		printPreset(cmd.OutOrStdout(), p)
		return nil
	},
}

var presetsMvCmd = &cobra.Command{
	Use:   "mv FILE NAME",
	Short: "Rename a preset, keeping its timestamp",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, err := config.RenamePreset(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), filename)
		return nil
	},
}

var presetsRmCmd = &cobra.Command{
	Use:   "rm FILE",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.DeletePreset(args[0])
	},
}

func printPreset(w io.Writer, p *config.Preset) {
	s := p.Session
	fmt.Fprintf(w, "name:   %s\n", p.Name)
	fmt.Fprintf(w, "tempo:  %d\n", p.Tempo)
	fmt.Fprintf(w, "scale:  %s\n", theory.NewScale(s.Root, theory.ScaleType(s.Scale)))
	fmt.Fprintf(w, "method: %s\n", theory.ChordMethod(s.Method))
	for i, v := range s.Voices {
		on := "off"
		if v.On {
			on = "on"
		}
		fmt.Fprintf(w, "voice %d: %-3s ch%-2d %-5s %s\n", i+1, on, v.Channel, v.Subdivision, v.Pattern)
	}
}
