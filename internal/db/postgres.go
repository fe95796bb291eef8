package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/types"
	"github.com/yungbote/igsnforms-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "igsnforms", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.PrefixCounter{},
		&types.Deposition{},
		&types.Sample{},
		&types.Form{},
		&types.FormEntry{},
		&types.Changeset{},
		&types.Setting{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []string{
		`ALTER TABLE "deposition"
		   ADD CONSTRAINT "fk_deposition_parent_id"
		   FOREIGN KEY ("parent_id")
		   REFERENCES "deposition"("id")
		   ON DELETE CASCADE`,
		`ALTER TABLE "entry"
		   ADD CONSTRAINT "fk_entry_form_id"
		   FOREIGN KEY ("form_id")
		   REFERENCES "form"("id")
		   ON DELETE CASCADE`,
		`ALTER TABLE "changeset"
		   ADD CONSTRAINT "fk_changeset_entry_id"
		   FOREIGN KEY ("entry_id")
		   REFERENCES "entry"("id")
		   ON DELETE CASCADE`,
	}
	for _, stmt := range constraints {
		if err := s.db.Exec(stmt).Error; err != nil {
			// Re-running migrations hits "already exists"; that is fine.
			s.log.Debug("Constraint statement skipped", "error", err)
		}
	}
	return nil
}
