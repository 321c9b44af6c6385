package auth

import (
	"testing"

	"homeward-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := domain.User{Fullname: "Test User", Email: email, PasswordHash: string(hash)}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestLoginUser_Valid(t *testing.T) {
	db := setupAuthTest(t)
	seeded := seedUser(t, db, "test@example.com", "pa55word!")

	u, err := LoginUser(db, LoginInput{Email: "test@example.com", Password: "pa55word!"})
	require.NoError(t, err)
	assert.Equal(t, seeded.UserID, u.UserID)
	assert.Equal(t, "Test User", u.Fullname)
}

func TestLoginUser_MissingFields(t *testing.T) {
	db := setupAuthTest(t)
	_, err := LoginUser(db, LoginInput{Email: "", Password: ""})
	assert.Equal(t, ErrEmailPasswordRequired, err)
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	db := setupAuthTest(t)
	_, err := LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "pa55word!"})
	assert.Equal(t, ErrInvalidEmail, err)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	db := setupAuthTest(t)
	seedUser(t, db, "test@example.com", "pa55word!")
	_, err := LoginUser(db, LoginInput{Email: "test@example.com", Password: "wr0ngpass!"})
	assert.Equal(t, ErrIncorrectPassword, err)
}

func TestRegisterUser_CreatesUser(t *testing.T) {
	db := setupAuthTest(t)

	u, err := RegisterUser(db, RegisterInput{
		Fullname: "New User",
		Email:    "new@example.com",
		Password: "pa55word!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	assert.NotEqual(t, "pa55word!", u.PasswordHash)

	// Round-trip through login
	back, err := LoginUser(db, LoginInput{Email: "new@example.com", Password: "pa55word!"})
	require.NoError(t, err)
	assert.Equal(t, u.UserID, back.UserID)
}

func TestRegisterUser_Rejections(t *testing.T) {
	db := setupAuthTest(t)
	seedUser(t, db, "taken@example.com", "pa55word!")

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"missing fields", RegisterInput{}, ErrEmailPasswordRequired},
		{"bad email", RegisterInput{Fullname: "A B", Email: "not-an-email", Password: "pa55word!"}, ErrInvalidEmail},
		{"bad fullname", RegisterInput{Fullname: "123", Email: "a@b.com", Password: "pa55word!"}, ErrInvalidFullname},
		{"weak password", RegisterInput{Fullname: "A B", Email: "a@b.com", Password: "short"}, ErrWeakPassword},
		{"taken email", RegisterInput{Fullname: "A B", Email: "taken@example.com", Password: "pa55word!"}, ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RegisterUser(db, tc.input)
			assert.Equal(t, tc.want, err)
		})
	}
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"fullname": "Test",
		"email":    "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":  "550e8400-e29b-41d4-a716-446655440000",
		"fullname": "Test User",
		"email":    "test@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "Test User", u.Fullname)
	assert.Equal(t, "test@example.com", u.Email)
}
