package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus представляет статус заявки на материал
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// RequestPriority представляет приоритет заявки
type RequestPriority string

const (
	PriorityHigh   RequestPriority = "High"
	PriorityMedium RequestPriority = "Medium"
	PriorityLow    RequestPriority = "Low"
)

// MaterialRequest представляет заявку отделения на выдачу материала.
// Жизненный цикл: Pending -> Approved | Rejected. Решение принимается
// ровно один раз, повторная обработка запрещена.
type MaterialRequest struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	MaterialID string    `json:"material_id" gorm:"type:uuid;not null;index"`
	Material   *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Quantity   int       `json:"quantity" gorm:"not null"`

	DepartmentID string      `json:"department_id" gorm:"type:uuid;not null;index"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	RequestedByID string `json:"requested_by_id" gorm:"type:uuid;not null;index"`
	RequestedBy   *User  `gorm:"foreignKey:RequestedByID" json:"requested_by,omitempty"`

	Purpose  string          `json:"purpose" gorm:"type:text;not null"`
	Priority RequestPriority `json:"priority" gorm:"type:varchar(10);default:'Medium'"`
	Status   RequestStatus   `json:"status" gorm:"type:varchar(10);default:'Pending';index"`

	// ApprovedByID и ApprovedAt заполняются только при одобрении
	ApprovedByID    *string    `json:"approved_by_id" gorm:"type:uuid"`
	ApprovedBy      *User      `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectionReason *string    `json:"rejection_reason" gorm:"type:text"` // обязательно при отклонении

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName указывает имя таблицы
func (MaterialRequest) TableName() string {
	return "material_requests"
}

// BeforeCreate генерирует UUID
func (mr *MaterialRequest) BeforeCreate(tx *gorm.DB) error {
	if mr.ID == "" {
		mr.ID = uuid.New().String()
	}
	return nil
}

// IsDecided сообщает, было ли по заявке уже принято решение
func (mr *MaterialRequest) IsDecided() bool {
	return mr.Status != RequestPending
}
