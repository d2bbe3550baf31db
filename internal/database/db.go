package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the bookings and busy_slots tables when missing.
// The UNIQUE KEY on (hall_number, date, hour) is the mechanism that makes
// double-booking impossible under concurrency: the second transaction to
// claim an hour fails on insert and rolls back.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			booking_id VARCHAR(50) NOT NULL,
			hall_number INT NOT NULL,
			date CHAR(10) NOT NULL,
			time CHAR(5) NOT NULL,
			duration INT NOT NULL DEFAULT 2,
			guests VARCHAR(50) NOT NULL DEFAULT '',
			name VARCHAR(100) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			email VARCHAR(100) NOT NULL DEFAULT '',
			comments TEXT,
			menu_items TEXT,
			total_amount DECIMAL(10,2) NOT NULL,
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_id VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_bookings_booking_id (booking_id),
			KEY idx_bookings_date (date),
			KEY idx_bookings_phone (phone)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS busy_slots (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			hall_number INT NOT NULL,
			date CHAR(10) NOT NULL,
			hour CHAR(5) NOT NULL,
			booking_id VARCHAR(50) NOT NULL,
			UNIQUE KEY uq_busy_slots_slot (hall_number, date, hour),
			KEY idx_busy_slots_date_hall (date, hall_number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
