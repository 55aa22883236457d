package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog представляет запись журнала действий пользователей.
// В отличие от MovementLog фиксирует любые операции API (вход, создание
// материала, решение по заявке), а не только складские движения.
type ActivityLog struct {
	ID     string `json:"id" gorm:"type:uuid;primaryKey"`
	UserID string `json:"user_id" gorm:"type:uuid;not null;index"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Action     string  `json:"action" gorm:"type:varchar(100);not null;index"` // например "material.create"
	EntityType string  `json:"entity_type" gorm:"type:varchar(50);index"`
	EntityID   *string `json:"entity_id" gorm:"type:uuid;index"`
	Details    string  `json:"details" gorm:"type:text"`
	IPAddress  string  `json:"ip_address" gorm:"type:varchar(45)"`

	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
}

// TableName указывает имя таблицы
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// BeforeCreate генерирует UUID
func (al *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if al.ID == "" {
		al.ID = uuid.New().String()
	}
	return nil
}
