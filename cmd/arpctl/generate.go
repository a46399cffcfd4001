package main

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/spf13/cobra"

	"go-arp/pattern"
)

var (
	randomLength int
	randomSeed   int64
)

func init() {
	rootCmd.AddCommand(euclidCmd)
	rootCmd.AddCommand(randomCmd)

	randomCmd.Flags().IntVarP(&randomLength, "length", "n", pattern.RandomLength, "number of steps")
	randomCmd.Flags().Int64Var(&randomSeed, "seed", 0, "seed for a repeatable pattern (0 picks one)")
}

var euclidCmd = &cobra.Command{
	Use:   "euclid HITS STEPS",
	Short: "Print a Euclidean rhythm as pattern text",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hits, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("hits: %w", err)
		}
		steps, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("steps: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pattern.Euclid(hits, steps))
		return nil
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random pattern",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var r *rand.Rand
		if randomSeed != 0 {
			r = rand.New(rand.NewSource(randomSeed))
		}
		fmt.Fprintln(cmd.OutOrStdout(), pattern.RandomN(r, randomLength))
	},
}
