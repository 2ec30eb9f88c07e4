package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// GetConfig returns database configuration with defaults
func GetConfig() *DBConfig {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.name", "card_authorizations")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Minute*5)

	return &DBConfig{
		Host:            viper.GetString("database.host"),
		Port:            viper.GetString("database.port"),
		User:            viper.GetString("database.user"),
		Password:        viper.GetString("database.password"),
		Name:            viper.GetString("database.name"),
		SSLMode:         viper.GetString("database.ssl_mode"),
		MaxOpenConns:    viper.GetInt("database.max_open_conns"),
		MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
	}
}

// InitDB opens the connection pool and verifies connectivity
func InitDB() (*sql.DB, error) {
	config := GetConfig()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Name, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	logrus.Info("Database connection established")
	return db, nil
}

// EnsureSchema creates the tables and the card number sequence if they do
// not exist. Card numbers come from a database sequence so that concurrent
// instances never hand out the same number.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS card_number_seq START 1111111111111111`,
		`CREATE TABLE IF NOT EXISTS cards (
			id BIGSERIAL PRIMARY KEY,
			card_number VARCHAR(16) NOT NULL UNIQUE,
			cardholder_name VARCHAR(100) NOT NULL,
			expiration_date DATE NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			balance NUMERIC(10,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS card_controls (
			id BIGSERIAL PRIMARY KEY,
			card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			control_type VARCHAR(20) NOT NULL,
			detail VARCHAR(100),
			amount NUMERIC(10,2)
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			transaction_id UUID NOT NULL UNIQUE,
			card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			amount NUMERIC(10,2) NOT NULL,
			merchant VARCHAR(100) NOT NULL,
			merchant_category VARCHAR(50) NOT NULL,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			reason_declined VARCHAR(255),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_card_controls_card_id ON card_controls(card_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_card_id ON transactions(card_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}

	return nil
}

// InitDatabase initializes database with error handling
func InitDatabase() *sql.DB {
	db, err := InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		logrus.Fatalf("Failed to set up schema: %v", err)
	}

	return db
}
