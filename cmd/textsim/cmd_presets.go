package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/presets"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "List bundled sample texts, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := presets.NewEmbedded()
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				p, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return json.NewEncoder(out).Encode(p)
				}
				fmt.Fprint(out, p.Body)
				return nil
			}

			list := store.All()
			if jsonOut {
				return json.NewEncoder(out).Encode(list)
			}
			for _, p := range list {
				fmt.Fprintf(out, "%s  %s\n", cyan(p.Name), gray(firstLine(p.Body)))
			}
			return nil
		},
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
