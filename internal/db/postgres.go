package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vaartalab/newsroom-backend/internal/config"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg config.PostgresConfig, log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	serviceLog.Info("Connecting to Postgres...", "host", cfg.Host, "db", cfg.DBName)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// NewSQLiteMemoryService opens a throwaway in-memory database with the
// same schema, used by tests and local spikes. Each call gets its own
// namespace so parallel tests cannot see each other's rows.
func NewSQLiteMemoryService(log *logger.Logger) (*PostgresService, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &PostgresService{db: gdb, log: log.With("service", "SQLiteService")}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Tenant{},
		&types.Domain{},
		&types.Language{},
		&types.Category{},
		&types.Staffer{},
		&types.Article{},
		&types.NewspaperArticle{},
		&types.WebArticle{},
		&types.ShortNews{},
		&types.ArticleReadProgress{},
		&types.ShortNewsReadProgress{},
		&types.Comment{},
		&types.Reaction{},
		&types.PromptTemplate{},
		&types.State{},
		&types.District{},
		&types.Mandal{},
		&types.Village{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// IsUniqueViolation reports whether err is a unique-constraint breach,
// covering both the postgres driver and the sqlite test seam.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
