package similarity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrInvalidSelector is returned for a strategy or metric outside the
// recognised set.
var ErrInvalidSelector = errors.New("invalid selector")

// Strategy selects how a text is turned into a feature vector.
type Strategy int

const (
	Frequency Strategy = iota
	FirstOccurrence
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{Frequency, FirstOccurrence}

var strategyNames = map[Strategy]string{
	Frequency:       "frequency",
	FirstOccurrence: "first-occurrence",
}

var strategyAliases = map[string]Strategy{
	"frequency":        Frequency,
	"freq":             Frequency,
	"tf":               Frequency,
	"first-occurrence": FirstOccurrence,
	"first_occurrence": FirstOccurrence,
	"firstoccurrence":  FirstOccurrence,
	"first":            FirstOccurrence,
	"position":         FirstOccurrence,
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Valid reports whether s is a recognised strategy.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelector, s)
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy resolves a strategy name or alias, ignoring case.
func ParseStrategy(name string) (Strategy, error) {
	key := normalizeName(name)
	if s, ok := strategyAliases[key]; ok {
		return s, nil
	}
	return 0, unknownSelector("strategy", name, strategyAliases)
}

// Metric selects how two feature vectors are scored against each other.
type Metric int

const (
	Cosine Metric = iota
	Euclidean
	MatchRatio
)

// Metrics lists every supported metric in display order.
var Metrics = []Metric{Cosine, Euclidean, MatchRatio}

var metricNames = map[Metric]string{
	Cosine:     "cosine",
	Euclidean:  "euclidean",
	MatchRatio: "match-ratio",
}

var metricAliases = map[string]Metric{
	"cosine":      Cosine,
	"cos":         Cosine,
	"euclidean":   Euclidean,
	"euclid":      Euclidean,
	"l2":          Euclidean,
	"match-ratio": MatchRatio,
	"match_ratio": MatchRatio,
	"matchratio":  MatchRatio,
	"match":       MatchRatio,
	"hamming":     MatchRatio,
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Valid reports whether m is a recognised metric.
func (m Metric) Valid() bool {
	_, ok := metricNames[m]
	return ok
}

// IsDistance reports whether lower scores mean more similar texts.
func (m Metric) IsDistance() bool {
	return m == Euclidean
}

func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelector, m)
	}
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMetric resolves a metric name or alias, ignoring case.
func ParseMetric(name string) (Metric, error) {
	key := normalizeName(name)
	if m, ok := metricAliases[key]; ok {
		return m, nil
	}
	return 0, unknownSelector("metric", name, metricAliases)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func unknownSelector[T any](kind, name string, aliases map[string]T) error {
	if suggestion := Suggest(normalizeName(name), keys(aliases)); suggestion != "" {
		return fmt.Errorf("%w: unknown %s %q (did you mean %q?)", ErrInvalidSelector, kind, name, suggestion)
	}
	return fmt.Errorf("%w: unknown %s %q", ErrInvalidSelector, kind, name)
}

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Suggest returns the candidate closest to name by edit distance, or "" if
// none is close enough to be a plausible typo.
func Suggest(name string, candidates []string) string {
	if name == "" {
		return ""
	}
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(name)/3) {
		return ""
	}
	return best
}
