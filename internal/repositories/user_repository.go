package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Exists reports whether a user row exists.
func (r UserRepository) Exists(id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	var one int
	err := r.db().QueryRow(`SELECT 1 FROM users WHERE id=? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r UserRepository) GetByID(id int64) (models.User, error) {
	var u models.User
	err := r.db().QueryRow(`
		SELECT id, name, username, email, COALESCE(phone,''), role, status, created_at
		FROM users WHERE id=? LIMIT 1`, id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetForLogin fetches by email or username and returns the stored hash.
func (r UserRepository) GetForLogin(identity string) (models.User, string, error) {
	identity = strings.TrimSpace(identity)
	var (
		u    models.User
		hash string
	)
	err := r.db().QueryRow(`
		SELECT id, name, username, email, COALESCE(phone,''), password_hash, role, status, created_at
		FROM users WHERE email=? OR username=? LIMIT 1`, identity, identity).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &hash, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, "", err
	}
	return u, hash, nil
}

// CountByIdentity is used by register to reject duplicates.
func (r UserRepository) CountByIdentity(email, username string) (int, error) {
	var n int
	err := r.db().QueryRow(`SELECT COUNT(*) FROM users WHERE email=? OR username=?`, email, username).Scan(&n)
	return n, err
}

func (r UserRepository) Create(name, username, email, phone, passwordHash, role string) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO users (name, username, email, phone, password_hash, role, status)
		VALUES (?,?,?,?,?,?, 'active')`,
		name, username, email, phone, passwordHash, role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r UserRepository) List(limit, offset int) ([]models.User, error) {
	rows, err := r.db().Query(`
		SELECT id, name, username, email, COALESCE(phone,''), role, status, created_at
		FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
