package db

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Settings are the connection parameters for the preferences database.
type Settings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN renders the lib/pq connection string.
func (s Settings) DSN() string {
	port := s.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		s.Host, port, s.User, s.Password, s.Name)
}

// Connect creates a connection to PostgreSQL with OpenTelemetry instrumentation
func Connect(s Settings, log logrus.FieldLogger) (*sql.DB, error) {
	if s.Host == "" || s.User == "" || s.Name == "" {
		return nil, fmt.Errorf("missing required database settings")
	}

	db, err := otelsql.Open("postgres", s.DSN(),
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(s.Name),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Register database stats for metrics
	_, err = otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(s.Name),
		),
	)
	if err != nil {
		log.WithError(err).Warn("Failed to register database stats metrics")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	log.WithFields(logrus.Fields{"host": s.Host, "database": s.Name}).Info("Connected to PostgreSQL")
	return db, nil
}
