package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vendor представляет поставщика материалов
type Vendor struct {
	ID            string `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	ContactPerson string `json:"contact_person" gorm:"type:varchar(255)"`
	Email         string `json:"email" gorm:"type:varchar(255)"`
	Phone         string `json:"phone" gorm:"type:varchar(50)"`
	Address       string `json:"address" gorm:"type:text"`
	Website       string `json:"website" gorm:"type:varchar(255)"`
	TaxID         string `json:"tax_id" gorm:"type:varchar(100)"`

	// Категории поставляемых материалов
	Categories []string `json:"categories" gorm:"serializer:json;type:text"`

	ContractStartDate *time.Time `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	PaymentTerms      string     `json:"payment_terms" gorm:"type:varchar(255)"`
	Notes             string     `json:"notes" gorm:"type:text"`

	AddedByID *string `json:"added_by_id" gorm:"type:uuid"`
	AddedBy   *User   `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName указывает имя таблицы
func (Vendor) TableName() string {
	return "vendors"
}

// BeforeCreate генерирует UUID
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
