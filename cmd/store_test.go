package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranksignal/accuracy-cli/internal/config"
	"github.com/ranksignal/accuracy-cli/internal/model"
)

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.Migrate(context.Background()))
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "mysql"},
	}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestStatusProvider_FromConfig(t *testing.T) {
	cfg = &config.Config{
		Integration: config.IntegrationConfig{
			DefaultSources: []string{"search_console"},
			ProjectSources: map[string][]string{
				"proj-a": {"search_console", "ahrefs"},
			},
		},
	}

	provider := statusProvider()

	sources, err := provider.ActiveSources(context.Background(), "proj-a")
	require.NoError(t, err)
	assert.Equal(t, []model.DataSource{model.SourceSearchConsole, model.SourceAhrefs}, sources)

	sources, err = provider.ActiveSources(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, []model.DataSource{model.SourceSearchConsole}, sources)
}
