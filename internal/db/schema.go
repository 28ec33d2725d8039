package db

import (
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the service owns. Statements are
// idempotent so startup is safe against an already-provisioned database.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db tidak tersedia")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			username VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(100) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'student',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_username (username),
			UNIQUE KEY uniq_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS wallets (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			balance BIGINT NOT NULL DEFAULT 0,
			currency VARCHAR(10) NOT NULL DEFAULT 'POIN',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS wallet_transactions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			wallet_id BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			type VARCHAR(30) NOT NULL,
			description VARCHAR(500) NOT NULL DEFAULT '',
			reference VARCHAR(100) NOT NULL DEFAULT '',
			balance_after BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			KEY idx_wallet (wallet_id),
			KEY idx_wallet_created (wallet_id, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS routes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			code VARCHAR(50) NOT NULL,
			name VARCHAR(255) NOT NULL,
			fare BIGINT NOT NULL DEFAULT 0,
			peak_hour_fare BIGINT NOT NULL DEFAULT 0,
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_code (code)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS stops (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			route_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			latitude DOUBLE NOT NULL DEFAULT 0,
			longitude DOUBLE NOT NULL DEFAULT 0,
			sequence INT NOT NULL DEFAULT 0,
			KEY idx_route (route_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS shuttles (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			plate_number VARCHAR(50) NOT NULL,
			capacity INT NOT NULL DEFAULT 0,
			route_id BIGINT NULL,
			active TINYINT(1) NOT NULL DEFAULT 1,
			UNIQUE KEY uniq_plate (plate_number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			route_id BIGINT NOT NULL,
			from_stop_id BIGINT NOT NULL,
			to_stop_id BIGINT NOT NULL,
			departure_time DATETIME NOT NULL,
			fare BIGINT NOT NULL,
			is_peak_hour TINYINT(1) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
			shuttle_id BIGINT NULL,
			debit_tx_id BIGINT NOT NULL,
			refund_tx_id BIGINT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			cancelled_at DATETIME NULL,
			KEY idx_user (user_id),
			KEY idx_route (route_id),
			KEY idx_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
