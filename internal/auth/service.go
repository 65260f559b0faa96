package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"voiceguard-backend/internal/database"
	"voiceguard-backend/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports a client-correctable problem with registration or
// update input. The message is safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const passwordSpecials = "!@#$%^&*"

// Service handles account management and authentication
type Service struct {
	users  *database.UserRepo
	tokens *TokenManager
}

// NewService creates a new account service
func NewService(tokens *TokenManager) *Service {
	return &Service{
		users:  database.NewUserRepo(),
		tokens: tokens,
	}
}

// Register validates the request, hashes the password and persists a new
// account. Duplicate emails fail with database.ErrEmailTaken; the pre-check
// below is an optimization only, the store's uniqueness constraint is what
// closes the concurrent-registration race.
func (s *Service) Register(req models.RegisterRequest) (*models.User, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Occupation == "" || req.Password == "" {
		return nil, &ValidationError{Message: "All fields are required."}
	}

	if !emailPattern.MatchString(req.Email) {
		return nil, &ValidationError{Message: "Please provide a valid email address."}
	}

	if !validPassword(req.Password) {
		return nil, &ValidationError{
			Message: "Password must be at least 8 characters long, and include at least one number and one special character.",
		}
	}

	exists, err := s.users.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, database.ErrEmailTaken
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Occupation:   req.Occupation,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies credentials and issues a session token. An unknown
// email and a wrong password return the identical error, so callers cannot
// probe which accounts exist.
func (s *Service) Authenticate(email, password string) (string, time.Time, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	valid, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, err
	}
	if !valid {
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

// ListAccounts returns all registered accounts
func (s *Service) ListAccounts() ([]*models.User, error) {
	return s.users.List()
}

// GetAccount returns a single account by ID
func (s *Service) GetAccount(id int64) (*models.User, error) {
	return s.users.GetByID(id)
}

// UpdateAccount changes the mutable fields of an account. Email is
// immutable. A new password is validated and re-hashed.
func (s *Service) UpdateAccount(id int64, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if *req.FirstName == "" {
			return nil, &ValidationError{Message: "First name cannot be empty."}
		}
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" {
			return nil, &ValidationError{Message: "Last name cannot be empty."}
		}
		user.LastName = *req.LastName
	}
	if req.Occupation != nil {
		if *req.Occupation == "" {
			return nil, &ValidationError{Message: "Occupation cannot be empty."}
		}
		user.Occupation = *req.Occupation
	}
	if req.Password != nil {
		if !validPassword(*req.Password) {
			return nil, &ValidationError{
				Message: "Password must be at least 8 characters long, and include at least one number and one special character.",
			}
		}
		passwordHash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

// validPassword enforces the registration password policy: at least 8
// characters, at least one digit, at least one of !@#$%^&*, and nothing
// outside letters, digits and that special set.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			// allowed
		default:
			return false
		}
	}

	return hasDigit && hasSpecial
}
