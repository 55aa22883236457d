package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialCategory представляет категорию материала
type MaterialCategory string

const (
	CategoryReusable   MaterialCategory = "Reusable"
	CategoryConsumable MaterialCategory = "Consumable"
	CategoryHazardous  MaterialCategory = "Hazardous"
	CategoryCritical   MaterialCategory = "Critical"
)

// MaterialSource представляет источник поступления материала
type MaterialSource string

const (
	SourceVendor      MaterialSource = "Vendor"
	SourceDonation    MaterialSource = "Donation"
	SourceProcurement MaterialSource = "Internal Procurement"
)

// MaterialStatus представляет статус материала
type MaterialStatus string

const (
	StatusAvailable   MaterialStatus = "Available"
	StatusIssued      MaterialStatus = "Issued" // весь остаток выдан
	StatusLowStock    MaterialStatus = "Low Stock"
	StatusExpired     MaterialStatus = "Expired"
	StatusDamaged     MaterialStatus = "Damaged"
	StatusDisposed    MaterialStatus = "Disposed"
	StatusMaintenance MaterialStatus = "Maintenance"
	StatusDeleted     MaterialStatus = "Deleted" // мягкое удаление, запись остается для аудита
)

// BatchStatus представляет статус партии
type BatchStatus string

const (
	BatchActive   BatchStatus = "active"
	BatchExpired  BatchStatus = "expired"
	BatchDepleted BatchStatus = "depleted"
)

// Material представляет материал на складе больницы.
// Если у материала есть партии, скалярное поле Quantity игнорируется:
// фактический остаток — сумма остатков партий.
type Material struct {
	ID           string           `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string           `json:"name" gorm:"type:varchar(255);not null;index"`
	Description  string           `json:"description" gorm:"type:text"`
	Category     MaterialCategory `json:"category" gorm:"type:varchar(50);not null;index"`
	SerialNumber *string          `json:"serial_number" gorm:"type:varchar(100);uniqueIndex"`
	Barcode      string           `json:"barcode" gorm:"type:varchar(100)"`

	Quantity      int    `json:"quantity" gorm:"not null;default:0"` // авторитетно только без партий
	Unit          string `json:"unit" gorm:"type:varchar(20);default:'pieces'"` // pieces, boxes, liters, kg, units
	MinStockLevel int    `json:"min_stock_level" gorm:"default:5"`

	ExpiryDate *time.Time     `json:"expiry_date" gorm:"index"` // для материалов без партий
	Source     MaterialSource `json:"source" gorm:"type:varchar(50);not null"`

	VendorID      *string    `json:"vendor_id" gorm:"type:uuid;index"`
	Vendor        *Vendor    `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	OrderNumber   string     `json:"order_number" gorm:"type:varchar(100)"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	WarrantyUntil *time.Time `json:"warranty_until"`

	StorageArea string `json:"storage_area" gorm:"type:varchar(100)"`
	Shelf       string `json:"shelf" gorm:"type:varchar(50)"`
	Bin         string `json:"bin" gorm:"type:varchar(50)"`

	Status MaterialStatus `json:"status" gorm:"type:varchar(50);default:'Available';index"`

	LastAuditDate  *time.Time `json:"last_audit_date"`
	LastIssuedDate *time.Time `json:"last_issued_date"`

	AddedByID       string  `json:"added_by_id" gorm:"type:uuid;not null"`
	AddedBy         *User   `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`
	LastUpdatedByID *string `json:"last_updated_by_id" gorm:"type:uuid"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;index"`

	// Relations
	Batches []MaterialBatch `gorm:"foreignKey:MaterialID" json:"batches,omitempty"`
}

// TableName указывает имя таблицы
func (Material) TableName() string {
	return "materials"
}

// BeforeCreate генерирует UUID
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MaterialBatch представляет партию материала с отслеживанием срока годности
type MaterialBatch struct {
	ID                string      `json:"id" gorm:"type:uuid;primaryKey"`
	MaterialID        string      `json:"material_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_material_batch"`
	BatchNumber       string      `json:"batch_number" gorm:"type:varchar(100);not null;uniqueIndex:idx_material_batch"`
	Quantity          int         `json:"quantity" gorm:"not null"`
	ExpiryDate        *time.Time  `json:"expiry_date" gorm:"index"`
	ManufacturingDate *time.Time  `json:"manufacturing_date"`
	SupplierID        *string     `json:"supplier_id" gorm:"type:uuid;index"`
	Supplier          *Vendor     `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	PurchasePrice     float64     `json:"purchase_price" gorm:"type:decimal(12,2);default:0"`
	PurchaseDate      *time.Time  `json:"purchase_date"`
	Status            BatchStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	CreatedAt         time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (MaterialBatch) TableName() string {
	return "material_batches"
}

// BeforeCreate генерирует UUID
func (b *MaterialBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// IsExpiredAt проверяет, просрочена ли партия на момент now
func (b *MaterialBatch) IsExpiredAt(now time.Time) bool {
	return b.ExpiryDate != nil && !b.ExpiryDate.After(now)
}

// HasBatches сообщает, ведется ли учет материала по партиям.
// Требует предзагруженных Batches.
func (m *Material) HasBatches() bool {
	return len(m.Batches) > 0
}

// EffectiveQuantity возвращает фактический остаток: сумму остатков партий,
// либо скалярное Quantity, если партий нет
func (m *Material) EffectiveQuantity() int {
	if !m.HasBatches() {
		return m.Quantity
	}
	total := 0
	for _, b := range m.Batches {
		total += b.Quantity
	}
	return total
}

// FindBatch находит партию по номеру
func (m *Material) FindBatch(batchNumber string) *MaterialBatch {
	for i := range m.Batches {
		if m.Batches[i].BatchNumber == batchNumber {
			return &m.Batches[i]
		}
	}
	return nil
}

// hasExpiredStock проверяет наличие просроченного неизрасходованного остатка
func (m *Material) hasExpiredStock(now time.Time) bool {
	if m.HasBatches() {
		for _, b := range m.Batches {
			if b.Status != BatchDepleted && b.Quantity > 0 && b.IsExpiredAt(now) {
				return true
			}
		}
		return false
	}
	return m.Quantity > 0 && m.ExpiryDate != nil && !m.ExpiryDate.After(now)
}

// IsTerminalStatus сообщает, исключен ли статус из автоматического пересчета.
// Deleted, Disposed, Damaged и Maintenance устанавливаются явно и не сбрасываются
// изменением количества.
func (s MaterialStatus) IsTerminal() bool {
	switch s {
	case StatusDeleted, StatusDisposed, StatusDamaged, StatusMaintenance:
		return true
	}
	return false
}

// DeriveStatus вычисляет статус материала из остатка, минимального уровня
// и сроков годности. Порядок правил важен: просрочка перекрывает остальные.
// Терминальные статусы не пересчитываются. Функция чистая и идемпотентная;
// вызывается после каждой мутации остатка.
func (m *Material) DeriveStatus(now time.Time) MaterialStatus {
	if m.Status.IsTerminal() {
		return m.Status
	}
	if m.hasExpiredStock(now) {
		return StatusExpired
	}
	qty := m.EffectiveQuantity()
	if qty <= 0 {
		return StatusIssued
	}
	if m.MinStockLevel > 0 && qty <= m.MinStockLevel {
		return StatusLowStock
	}
	return StatusAvailable
}

// RefreshStatus применяет DeriveStatus к самому материалу
func (m *Material) RefreshStatus(now time.Time) {
	m.Status = m.DeriveStatus(now)
}

// CanBeIssued проверяет, допускает ли статус выдачу со склада
func (m *Material) CanBeIssued() bool {
	switch m.Status {
	case StatusDeleted, StatusExpired, StatusDamaged, StatusDisposed:
		return false
	}
	return true
}
