package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// AuthClaims — JWT claims с данными пользователя
type AuthClaims struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService отвечает за вход, выпуск/проверку JWT и создание пользователей
type AuthService struct {
	db        *gorm.DB
	secretKey []byte
	tokenTTL  time.Duration
}

// NewAuthService создает новый AuthService
func NewAuthService(db *gorm.DB, secretKey string, ttlHours int) *AuthService {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthService{
		db:        db,
		secretKey: []byte(secretKey),
		tokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

// SignInResult — результат успешного входа
type SignInResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// SignIn проверяет пароль и возвращает JWT токен
func (s *AuthService) SignIn(email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.Validation("email и пароль обязательны", "email")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Не раскрываем, что именно неверно
			return nil, apperrors.Unauthorized("неверный email или пароль")
		}
		return nil, apperrors.Internal("auth.signin", err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized("учетная запись деактивирована")
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.Unauthorized("неверный email или пароль")
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, apperrors.Internal("auth.token", err)
	}

	log.Printf("🔑 Вход пользователя: %s (%s)", user.Email, user.Role)
	return &SignInResult{Token: token, User: &user}, nil
}

// GenerateToken выпускает JWT HS256 токен
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "medstock-server",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken проверяет токен и возвращает claims
func (s *AuthService) ValidateToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// CreateUserInput — данные для создания пользователя
type CreateUserInput struct {
	Name         string          `json:"name" binding:"required"`
	Email        string          `json:"email" binding:"required"`
	Password     string          `json:"password" binding:"required"`
	Role         models.UserRole `json:"role" binding:"required"`
	DepartmentID *string         `json:"department_id"`
}

// CreateUser создает нового пользователя (только для администраторов)
func (s *AuthService) CreateUser(input CreateUserInput) (*models.User, error) {
	if !models.IsValidRole(input.Role) {
		return nil, apperrors.Validation("недопустимая роль: "+string(input.Role), "role")
	}
	if len(input.Password) < 6 {
		return nil, apperrors.Validation("пароль должен быть не короче 6 символов", "password")
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Internal("auth.create_user", err)
	}
	if count > 0 {
		return nil, apperrors.Validation("пользователь с таким email уже существует", "email")
	}

	if input.DepartmentID != nil && *input.DepartmentID != "" {
		var dep models.Department
		if err := s.db.First(&dep, "id = ?", *input.DepartmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.InvalidReference("отделение не найдено: " + *input.DepartmentID)
			}
			return nil, apperrors.Internal("auth.create_user", err)
		}
	}

	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		IsActive:     true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, apperrors.Internal("auth.hash_password", err)
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperrors.Internal("auth.create_user", err)
	}

	log.Printf("👤 Создан пользователь: %s (%s)", user.Email, user.Role)
	return &user, nil
}
