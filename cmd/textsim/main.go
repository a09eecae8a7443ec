package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

var (
	cyan  = color.New(color.FgCyan).SprintFunc()
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "textsim",
		Short: "Compare two texts by lexical similarity",
		Long: `textsim scores how alike two texts are.

Each text is tokenized into words and decimal numbers, turned into a vector
over the combined vocabulary (term frequency or first-occurrence position),
and the two vectors are compared with cosine similarity, euclidean distance
or match ratio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		newCompareCmd(),
		newPresetsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red(err))
		os.Exit(1)
	}
}
