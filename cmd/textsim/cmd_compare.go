package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/presets"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity/vector"
)

// source is one side of a comparison as given on the command line.
type source struct {
	text   string
	file   string
	preset string
}

func (s *source) bind(cmd *cobra.Command, side string) {
	cmd.Flags().StringVar(&s.text, "text-"+side, "", "inline text for side "+strings.ToUpper(side))
	cmd.Flags().StringVar(&s.file, "file-"+side, "", "read side "+strings.ToUpper(side)+" from a file (- for stdin)")
	cmd.Flags().StringVar(&s.preset, "preset-"+side, "", "use a bundled preset for side "+strings.ToUpper(side))
}

func (s *source) load(ctx context.Context, cmd *cobra.Command, side string, store presets.Store) (string, error) {
	n := 0
	for _, f := range []string{"text-", "file-", "preset-"} {
		if cmd.Flags().Changed(f + side) {
			n++
		}
	}
	switch {
	case n == 0:
		return "", fmt.Errorf("side %s: one of --text-%s, --file-%s or --preset-%s is required", side, side, side, side)
	case n > 1:
		return "", fmt.Errorf("side %s: --text-%s, --file-%s and --preset-%s are mutually exclusive", side, side, side, side)
	case cmd.Flags().Changed("text-" + side):
		return s.text, nil
	case cmd.Flags().Changed("file-" + side):
		if s.file == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return "", fmt.Errorf("side %s: reading stdin: %w", side, err)
			}
			return string(data), nil
		}
		data, err := os.ReadFile(s.file)
		if err != nil {
			return "", fmt.Errorf("side %s: %w", side, err)
		}
		return string(data), nil
	default:
		p, err := store.Get(ctx, s.preset)
		if err != nil {
			return "", fmt.Errorf("side %s: %w", side, err)
		}
		return p.Body, nil
	}
}

type compareOutput struct {
	Score          float64             `json:"score"`
	Display        string              `json:"display"`
	Label          string              `json:"label"`
	Strategy       similarity.Strategy `json:"strategy"`
	Metric         similarity.Metric   `json:"metric"`
	VocabularySize int                 `json:"vocabulary_size"`
	TokensA        int                 `json:"tokens_a"`
	TokensB        int                 `json:"tokens_b"`
	VectorA        vector.Vector       `json:"vector_a,omitempty"`
	VectorB        vector.Vector       `json:"vector_b,omitempty"`
}

func newCompareCmd() *cobra.Command {
	var a, b source
	var strategyName, metricName string
	var all, verbose bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score the similarity of two texts",
		Example: `  textsim compare --text-a "the cat sat" --text-b "the cat ran"
  textsim compare --preset-a Paragraph_A --preset-b Paragraph_B --metric euclidean
  textsim compare --file-a notes.txt --file-b - --all < draft.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := similarity.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			metric, err := similarity.ParseMetric(metricName)
			if err != nil {
				return err
			}
			store, err := presets.NewEmbedded()
			if err != nil {
				return err
			}
			textA, err := a.load(cmd.Context(), cmd, "a", store)
			if err != nil {
				return err
			}
			textB, err := b.load(cmd.Context(), cmd, "b", store)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if all {
				return compareAll(out, textA, textB, jsonOut)
			}

			res, err := similarity.Analyze(similarity.Request{TextA: textA, TextB: textB, Strategy: strategy, Metric: metric})
			if err != nil {
				return err
			}
			if jsonOut {
				return json.NewEncoder(out).Encode(toOutput(res, verbose))
			}
			printResult(out, res, verbose)
			return nil
		},
	}

	a.bind(cmd, "a")
	b.bind(cmd, "b")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", similarity.Frequency.String(), "feature strategy: frequency or first-occurrence")
	cmd.Flags().StringVarP(&metricName, "metric", "m", similarity.Cosine.String(), "metric: cosine, euclidean or match-ratio")
	cmd.Flags().BoolVar(&all, "all", false, "score every strategy and metric combination")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the generated vectors")
	return cmd
}

func toOutput(res *similarity.Result, verbose bool) compareOutput {
	summary := report.Summarize(res)
	o := compareOutput{
		Score:          res.Score,
		Display:        summary.Display,
		Label:          summary.Label,
		Strategy:       res.Strategy,
		Metric:         res.Metric,
		VocabularySize: res.VocabularySize,
		TokensA:        res.TokensA,
		TokensB:        res.TokensB,
	}
	if verbose {
		o.VectorA, o.VectorB = res.VectorA, res.VectorB
	}
	return o
}

func printResult(out io.Writer, res *similarity.Result, verbose bool) {
	summary := report.Summarize(res)
	fmt.Fprintf(out, "%s: %s\n", cyan(summary.Label), green(summary.Display))
	if !verbose {
		return
	}
	fmt.Fprintf(out, "%s %d  %s %d  %s %d\n",
		gray("vocabulary"), res.VocabularySize,
		gray("tokens A"), res.TokensA,
		gray("tokens B"), res.TokensB,
	)
	fmt.Fprintf(out, "%s %s\n", bold("A"), formatVector(res.VectorA))
	fmt.Fprintf(out, "%s %s\n", bold("B"), formatVector(res.VectorB))
}

func compareAll(out io.Writer, textA, textB string, jsonOut bool) error {
	results := make([]compareOutput, 0, len(similarity.Strategies)*len(similarity.Metrics))
	for _, s := range similarity.Strategies {
		for _, m := range similarity.Metrics {
			res, err := similarity.Analyze(similarity.Request{TextA: textA, TextB: textB, Strategy: s, Metric: m})
			if err != nil {
				return fmt.Errorf("%s/%s: %w", s, m, err)
			}
			results = append(results, toOutput(res, false))
		}
	}
	if jsonOut {
		return json.NewEncoder(out).Encode(results)
	}
	width := 0
	for _, r := range results {
		width = max(width, len(r.Label))
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-*s  %s\n", width, r.Label, green(r.Display))
	}
	return nil
}

// formatVector renders a vector as term=value pairs in term order.
func formatVector(v vector.Vector) string {
	terms := v.Terms()
	if len(terms) == 0 {
		return "{}"
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%s=%d", t, v[t])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
