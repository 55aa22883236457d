package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department представляет отделение больницы
type Department struct {
	ID          string `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Floor       string `json:"floor" gorm:"type:varchar(50)"`

	HeadID *string `json:"head_id" gorm:"type:uuid"`
	Head   *User   `gorm:"foreignKey:HeadID" json:"head,omitempty"`

	ContactEmail string `json:"contact_email" gorm:"type:varchar(255)"`
	ContactPhone string `json:"contact_phone" gorm:"type:varchar(50)"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName указывает имя таблицы
func (Department) TableName() string {
	return "departments"
}

// BeforeCreate генерирует UUID
func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
