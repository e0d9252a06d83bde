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

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the application tables when they do not exist yet.
// The statements are idempotent so calling this on every startup is safe.
// Uniqueness invariants (username, email, jti) are enforced here rather
// than in application code; concurrent writes rely on these constraints.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(80) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			xp INT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			current_streak INT NOT NULL DEFAULT 0,
			best_streak INT NOT NULL DEFAULT 0,
			total_cards INT NOT NULL DEFAULT 0,
			last_activity TIMESTAMP NULL,
			last_streak_date DATE NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			jti VARCHAR(64) NOT NULL UNIQUE,
			user_id BIGINT UNSIGNED NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			expires_at DATETIME NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_user_expires (user_id, expires_at)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS flashcards (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NULL,
			subject VARCHAR(50) NOT NULL,
			notes TEXT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			difficulty ENUM('easy','medium','hard') NOT NULL DEFAULT 'medium',
			times_reviewed INT NOT NULL DEFAULT 0,
			last_reviewed TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL,
			INDEX idx_user_subject (user_id, subject),
			INDEX idx_user_created (user_id, created_at)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS todos (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			due_date DATE NOT NULL,
			priority ENUM('low','medium','high') NOT NULL DEFAULT 'medium',
			subject VARCHAR(50) NOT NULL DEFAULT 'other',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_user_due (user_id, due_date)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS timetable_entries (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			subject VARCHAR(50) NOT NULL,
			day_of_week VARCHAR(10) NOT NULL,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			notes TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_user_day (user_id, day_of_week)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS study_streaks (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			study_date DATE NOT NULL,
			cards_studied INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY unique_user_date (user_id, study_date),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS study_sessions (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NULL,
			subject VARCHAR(50) NOT NULL,
			flashcards_studied INT NOT NULL DEFAULT 0,
			session_duration_minutes INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL,
			INDEX idx_user_date (user_id, created_at)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS xp_log (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			xp_gained INT NOT NULL,
			reason VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_user_date (user_id, created_at)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,

		`CREATE TABLE IF NOT EXISTS payments (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NULL,
			ref VARCHAR(255),
			amount INT NOT NULL DEFAULT 0,
			currency VARCHAR(10) NOT NULL DEFAULT 'KES',
			status VARCHAR(50),
			metadata JSON,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL,
			INDEX idx_ref (ref),
			INDEX idx_user_status (user_id, status)
		) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
