// Package presets serves the named sample paragraphs offered as comparison
// inputs. Presets are read from the binary or from PostgreSQL.
package presets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	apperrors "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/errors"
)

// Preset is a named sample text.
type Preset struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Store looks up presets. List returns presets ordered by name.
type Store interface {
	List(ctx context.Context) ([]Preset, error)
	Get(ctx context.Context, name string) (Preset, error)
}

// Names returns the preset names in order.
func Names(list []Preset) []string {
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	return names
}

// notFound builds the error for an unknown preset, naming the closest known
// preset when one is near enough.
func notFound(name string, known []string) error {
	msg := fmt.Sprintf("unknown preset %q", name)
	if s := similarity.Suggest(name, known); s != "" {
		msg += fmt.Sprintf(", did you mean %q?", s)
	} else if len(known) > 0 {
		msg += " (available: " + strings.Join(known, ", ") + ")"
	}
	return apperrors.New(apperrors.ErrPresetNotFound, http.StatusNotFound, msg)
}
