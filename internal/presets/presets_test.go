package presets

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/errors"
)

func TestEmbeddedBundlesFourParagraphs(t *testing.T) {
	store, err := NewEmbedded()
	require.NoError(t, err)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Paragraph_A", "Paragraph_B", "Paragraph_C", "Paragraph_D"}, Names(list))
	for _, p := range list {
		assert.NotEmpty(t, p.Body, p.Name)
	}
}

func TestEmbeddedGet(t *testing.T) {
	store, err := NewEmbedded()
	require.NoError(t, err)

	p, err := store.Get(context.Background(), "Paragraph_A")
	require.NoError(t, err)
	assert.Equal(t, "Paragraph_A", p.Name)
	assert.Contains(t, p.Body, "quick brown fox")
}

func TestEmbeddedUnknownSuggestsClosest(t *testing.T) {
	store, err := NewEmbedded()
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "Paragraph_E")
	require.ErrorIs(t, err, apperrors.ErrPresetNotFound)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatusCode(err))
	assert.Contains(t, apperrors.Message(err), "did you mean")
}

func TestEmbeddedUnknownListsAvailable(t *testing.T) {
	store, err := NewEmbedded()
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "recipes")
	require.ErrorIs(t, err, apperrors.ErrPresetNotFound)
	assert.Contains(t, apperrors.Message(err), "available: Paragraph_A")
}

func TestUnknownPresetNameIsEscaped(t *testing.T) {
	msg := apperrors.Message(notFound("evil\"\nname", []string{"Paragraph_A"}))
	assert.Contains(t, msg, `unknown preset "evil\"\nname"`)
	assert.NotContains(t, msg, "\n")
}

func TestEmbeddedSkipsNonText(t *testing.T) {
	fsys := fstest.MapFS{
		"p/b.txt":        {Data: []byte("beta")},
		"p/a.txt":        {Data: []byte("alpha")},
		"p/README.md":    {Data: []byte("ignored")},
		"p/nested/c.txt": {Data: []byte("ignored")},
	}
	store, err := newEmbeddedFS(fsys, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Names(store.All()))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, isTransient(notFound("x", nil)))
	assert.False(t, isTransient(context.Canceled))
	assert.True(t, isTransient(context.DeadlineExceeded))
	assert.True(t, isTransient(assert.AnError))
}
