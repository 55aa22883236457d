package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRole представляет роль пользователя в системе
type UserRole string

const (
	RoleAdmin        UserRole = "Admin"
	RoleDoctor       UserRole = "Doctor"
	RoleStoreManager UserRole = "Store Manager"
	RoleStaff        UserRole = "Staff"
)

// ValidRoles — все допустимые роли
var ValidRoles = []UserRole{RoleAdmin, RoleDoctor, RoleStoreManager, RoleStaff}

// IsValidRole проверяет допустимость роли
func IsValidRole(r UserRole) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// User представляет сотрудника больницы
type User struct {
	ID           string   `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string   `json:"name" gorm:"type:varchar(255);not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"type:varchar(255);not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'Staff'"`

	DepartmentID *string     `json:"department_id" gorm:"type:uuid"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName указывает имя таблицы
func (User) TableName() string {
	return "users"
}

// BeforeCreate генерирует UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// SetPassword хеширует и сохраняет пароль
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword сравнивает пароль с хешем
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
