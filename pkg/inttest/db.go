package inttest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/dhis2-sre/im-remote-cluster/pkg/catalog"
	"github.com/dhis2-sre/im-remote-cluster/pkg/config"
	"github.com/dhis2-sre/im-remote-cluster/pkg/storage"
	_ "github.com/lib/pq" // postgres driver
	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	dbUser = "im"
	dbName = "test_remote_cluster"
)

// SetupDB starts a PostgreSQL container and returns a migrated gorm DB connected to it. The
// container is stopped once the test and its subtests are done.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	container, err := gnomock.Start(postgres.Preset(
		postgres.WithUser(dbUser, dbUser),
		postgres.WithDatabase(dbName),
	))
	require.NoError(t, err, "failed to start DB")
	t.Cleanup(func() { require.NoError(t, gnomock.Stop(container), "failed to stop DB") })

	db, err := storage.NewDatabase(discardLogger(), config.Postgresql{
		Host:         container.Host,
		Port:         container.DefaultPort(),
		Username:     dbUser,
		Password:     dbUser,
		DatabaseName: dbName,
	})
	require.NoError(t, err, "failed to setup DB")
	return db
}

// SetupCatalog stores the embedded view service and view definitions in the DB.
func SetupCatalog(t *testing.T, db *gorm.DB) catalog.Service {
	t.Helper()

	service := catalog.NewService(catalog.NewRepository(db))
	err := catalog.LoadDefinitions(context.Background(), discardLogger(), "", service)
	require.NoError(t, err, "failed to load catalog definitions")
	return service
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
