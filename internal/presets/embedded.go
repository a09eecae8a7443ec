package presets

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed data/*.txt
var dataFS embed.FS

// Embedded serves the presets compiled into the binary.
type Embedded struct {
	byName map[string]Preset
	names  []string
}

// NewEmbedded loads the bundled presets.
func NewEmbedded() (*Embedded, error) {
	return newEmbeddedFS(dataFS, "data")
}

func newEmbeddedFS(fsys fs.FS, dir string) (*Embedded, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	e := &Embedded{byName: make(map[string]Preset, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading preset %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")
		e.byName[name] = Preset{Name: name, Body: string(body)}
		e.names = append(e.names, name)
	}
	slices.Sort(e.names)
	return e, nil
}

// All returns every bundled preset ordered by name.
func (e *Embedded) All() []Preset {
	out := make([]Preset, 0, len(e.names))
	for _, name := range e.names {
		out = append(out, e.byName[name])
	}
	return out
}

func (e *Embedded) List(_ context.Context) ([]Preset, error) {
	return e.All(), nil
}

func (e *Embedded) Get(_ context.Context, name string) (Preset, error) {
	p, ok := e.byName[name]
	if !ok {
		return Preset{}, notFound(name, e.names)
	}
	return p, nil
}
