package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dhis2-sre/im-remote-cluster/pkg/config"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	slogGorm "github.com/orandin/slog-gorm"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase connects to PostgreSQL, instruments gorm with OpenTelemetry and migrates the schema.
// Queries are logged through logger.
func NewDatabase(logger *slog.Logger, c config.Postgresql) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable", c.Host, c.Username, c.Password, c.DatabaseName, c.Port)

	databaseConfig := gorm.Config{
		Logger: slogGorm.New(
			slogGorm.WithHandler(logger.Handler()),
			slogGorm.WithSlowThreshold(200*time.Millisecond),
		),
		// needed for gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), &databaseConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(c.DatabaseName))); err != nil {
		return nil, fmt.Errorf("failed to instrument database: %v", err)
	}

	err = db.AutoMigrate(
		&model.ViewService{},
		&model.ViewServiceParameter{},
		&model.View{},
		&model.ViewServiceMapping{},

		&model.RemoteCluster{},
		&model.RemoteClusterService{},
		&model.RemoteClusterProperty{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return db, nil
}
