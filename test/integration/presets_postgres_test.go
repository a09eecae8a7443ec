package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/comparator/handler"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/presets"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/postgres"
)

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	db, err := postgres.New(testPostgresConfig())
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "textsim_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "textsim"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func seededPostgresStore(t *testing.T) *presets.Postgres {
	t.Helper()
	db := skipIfNoPostgres(t)
	ctx := context.Background()

	store := presets.NewPostgres(db, nil, 2*time.Second)
	require.NoError(t, store.EnsureSchema(ctx))
	_, err := db.DB.ExecContext(ctx, `DELETE FROM presets`)
	require.NoError(t, err)

	embedded, err := presets.NewEmbedded()
	require.NoError(t, err)
	require.NoError(t, store.Seed(ctx, embedded.All()))
	return store
}

func TestPostgresPresetStore(t *testing.T) {
	store := seededPostgresStore(t)
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paragraph_A", "Paragraph_B", "Paragraph_C", "Paragraph_D"}, presets.Names(list))

	p, err := store.Get(ctx, "Paragraph_C")
	require.NoError(t, err)
	assert.Contains(t, p.Body, "replicated log")

	_, err = store.Get(ctx, "Paragraph_Y")
	require.ErrorIs(t, err, apperrors.ErrPresetNotFound)
	assert.Contains(t, apperrors.Message(err), "did you mean")
	require.NoError(t, store.Ping(ctx))
}

func TestPostgresSeedIsIdempotent(t *testing.T) {
	store := seededPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, []presets.Preset{{Name: "Paragraph_A", Body: "replaced"}}))
	p, err := store.Get(ctx, "Paragraph_A")
	require.NoError(t, err)
	assert.Equal(t, "replaced", p.Body)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestCompareWithPostgresPresets(t *testing.T) {
	store := seededPostgresStore(t)
	srv := newServer(t, store, 1000)

	resp := postJSON(t, srv.URL+"/api/v1/compare", map[string]string{
		"preset_a": "Paragraph_A", "preset_b": "Paragraph_A", "metric": "euclidean",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, decode[handler.CompareResponse](t, resp.Body).Score)
}
