package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/rentscope/internal/config"
)

// Connection holds the warehouse database connection
type Connection struct {
	DB *sql.DB
}

// NewConnection opens a pooled connection to the warehouse database
// using PG* environment variables with local defaults.
func NewConnection() (*Connection, error) {
	host := config.GetEnv("PGHOST", "localhost")
	port := config.GetEnv("PGPORT", "5432")
	user := config.GetEnv("PGUSER", "rentscope")
	password := config.GetEnv("PGPASSWORD", "rentscope")
	dbname := config.GetEnv("PGDATABASE", "rentscope")
	sslmode := config.GetEnv("PGSSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	return Open(dsn)
}

// Open opens a pooled connection from an explicit DSN.
func Open(dsn string) (*Connection, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(config.GetEnvInt("PGMAXCONNS", 20))
	db.SetMaxIdleConns(config.GetEnvInt("PGMAXCONNS", 20) / 2)

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}
