package database

import (
	"database/sql"
	"errors"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"voiceguard-backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

// Create inserts a new account. The UNIQUE constraint on email is the
// authoritative duplicate check: a concurrent insert with the same email
// fails here with ErrEmailTaken regardless of any pre-check above.
func (r *UserRepo) Create(user *models.User) error {
	result, err := DB.Exec(`
		INSERT INTO users (first_name, last_name, email, occupation, password_hash)
		VALUES (?, ?, ?, ?, ?)
	`, user.FirstName, user.LastName, user.Email, user.Occupation, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	return r.getOne("SELECT id, first_name, last_name, email, occupation, password_hash, created_at, updated_at FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by email. Lookups are case-sensitive, matching
// the email exactly as stored.
func (r *UserRepo) GetByEmail(email string) (*models.User, error) {
	return r.getOne("SELECT id, first_name, last_name, email, occupation, password_hash, created_at, updated_at FROM users WHERE email = ?", email)
}

func (r *UserRepo) getOne(query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := DB.QueryRow(query, arg).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.Occupation, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// List retrieves all users
func (r *UserRepo) List() ([]*models.User, error) {
	rows, err := DB.Query(`
		SELECT id, first_name, last_name, email, occupation, password_hash, created_at, updated_at
		FROM users ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID, &user.FirstName, &user.LastName, &user.Email,
			&user.Occupation, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update updates a user's mutable fields
func (r *UserRepo) Update(user *models.User) error {
	user.UpdatedAt = time.Now()

	result, err := DB.Exec(`
		UPDATE users SET
			first_name = ?,
			last_name = ?,
			occupation = ?,
			password_hash = ?,
			updated_at = ?
		WHERE id = ?
	`, user.FirstName, user.LastName, user.Occupation, user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// ExistsByEmail checks if a user with the given email exists
func (r *UserRepo) ExistsByEmail(email string) (bool, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count)
	return count > 0, err
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
