package services

import (
	"testing"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInAndTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "admin@test.local", models.RoleAdmin)

	svc := NewAuthService(db, "test-secret", 24)
	result, err := svc.SignIn("Admin@Test.Local", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestSignInWrongPassword(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin@test.local", models.RoleAdmin)

	svc := NewAuthService(db, "test-secret", 24)
	_, err := svc.SignIn("admin@test.local", "wrong-password")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	_, err = svc.SignIn("nobody@test.local", "password123")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestSignInInactiveUser(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "admin@test.local", models.RoleAdmin)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error)

	svc := NewAuthService(db, "test-secret", 24)
	_, err := svc.SignIn("admin@test.local", "password123")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, "test-secret", 24)

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Токен, подписанный другим секретом
	other := NewAuthService(db, "other-secret", 24)
	user := seedUser(t, db, "admin@test.local", models.RoleAdmin)
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	dept := seedDepartment(t, db, "Хирургия")

	svc := NewAuthService(db, "test-secret", 24)
	user, err := svc.CreateUser(CreateUserInput{
		Name:         "Иванов И.И.",
		Email:        "Ivanov@Test.Local",
		Password:     "password123",
		Role:         models.RoleDoctor,
		DepartmentID: &dept.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "ivanov@test.local", user.Email)
	assert.True(t, user.IsActive)
	assert.True(t, user.CheckPassword("password123"))
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "taken@test.local", models.RoleStaff)

	svc := NewAuthService(db, "test-secret", 24)

	_, err := svc.CreateUser(CreateUserInput{
		Name: "x", Email: "new@test.local", Password: "password123", Role: "Janitor",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	_, err = svc.CreateUser(CreateUserInput{
		Name: "x", Email: "new@test.local", Password: "123", Role: models.RoleStaff,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	_, err = svc.CreateUser(CreateUserInput{
		Name: "x", Email: "taken@test.local", Password: "password123", Role: models.RoleStaff,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))
}
