package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceguard-backend/internal/models"
)

func openTestDB(t *testing.T) *UserRepo {
	t.Helper()
	err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { Close() })
	return NewUserRepo()
}

func testUser(email string) *models.User {
	return &models.User{
		FirstName:    "John",
		LastName:     "Doe",
		Email:        email,
		Occupation:   "teacher",
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := openTestDB(t)

	user := testUser("john@example.com")
	require.NoError(t, repo.Create(user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", byID.Email)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)

	byEmail, err := repo.GetByEmail("john@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepo_UniqueEmail(t *testing.T) {
	repo := openTestDB(t)

	require.NoError(t, repo.Create(testUser("john@example.com")))

	err := repo.Create(testUser("john@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserRepo_EmailCaseSensitive(t *testing.T) {
	repo := openTestDB(t)

	require.NoError(t, repo.Create(testUser("john@example.com")))

	// Stored case-sensitively: a different casing is a different key
	_, err := repo.GetByEmail("John@Example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_GetMissing(t *testing.T) {
	repo := openTestDB(t)

	_, err := repo.GetByID(99)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_List(t *testing.T) {
	repo := openTestDB(t)

	require.NoError(t, repo.Create(testUser("b@example.com")))
	require.NoError(t, repo.Create(testUser("a@example.com")))

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, "b@example.com", users[1].Email)
}

func TestUserRepo_Update(t *testing.T) {
	repo := openTestDB(t)

	user := testUser("john@example.com")
	require.NoError(t, repo.Create(user))

	user.Occupation = "researcher"
	require.NoError(t, repo.Update(user))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "researcher", got.Occupation)
}

func TestUserRepo_UpdateMissing(t *testing.T) {
	repo := openTestDB(t)

	user := testUser("john@example.com")
	user.ID = 99
	assert.ErrorIs(t, repo.Update(user), ErrUserNotFound)
}

func TestUserRepo_ExistsByEmail(t *testing.T) {
	repo := openTestDB(t)

	exists, err := repo.ExistsByEmail("john@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Create(testUser("john@example.com")))

	exists, err = repo.ExistsByEmail("john@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
