package inttest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dhis2-sre/eventos/pkg/config"
	"github.com/dhis2-sre/eventos/pkg/storage"
	_ "github.com/lib/pq" // postgres driver
	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupDB creates a PostgreSQL container. Gorm is connected to the DB and runs the migrations.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	container, err := gnomock.Start(
		postgres.Preset(
			postgres.WithUser("eventos", "eventos"),
			postgres.WithDatabase("test_eventos"),
		),
	)
	require.NoError(t, err, "failed to start DB")
	t.Cleanup(func() { require.NoError(t, gnomock.Stop(container), "failed to stop DB") })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := storage.NewDatabase(config.Postgresql{
		Host:         container.Host,
		Port:         container.DefaultPort(),
		Username:     "eventos",
		Password:     "eventos",
		DatabaseName: "test_eventos",
	}, logger)
	require.NoError(t, err, "failed to setup DB")
	return db
}
