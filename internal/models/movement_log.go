package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementAction представляет тип движения материала
type MovementAction string

const (
	ActionIssued      MovementAction = "Issued"
	ActionReturned    MovementAction = "Returned"
	ActionTransferred MovementAction = "Transferred"
	ActionDisposed    MovementAction = "Disposed"
)

// ReturnCondition представляет состояние материала при возврате
type ReturnCondition string

const (
	ConditionGood    ReturnCondition = "Good"
	ConditionDamaged ReturnCondition = "Damaged"
	ConditionExpired ReturnCondition = "Expired"
)

// LocationInventory — условное обозначение склада в полях from/to
const LocationInventory = "Inventory"

// MovementLog представляет неизменяемую запись журнала движения материалов.
// Это аудиторский след склада: записи никогда не обновляются и не удаляются.
// Ровно одна запись создается на каждую успешную операцию выдачи/возврата/списания.
type MovementLog struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	MaterialID  string         `json:"material_id" gorm:"type:uuid;not null;index"`
	Material    *Material      `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	BatchNumber *string        `json:"batch_number" gorm:"type:varchar(100)"` // заполнено для партийного учета
	Quantity    int            `json:"quantity" gorm:"not null"`              // всегда положительное
	Action      MovementAction `json:"action" gorm:"type:varchar(20);not null;index"`

	From string  `json:"from" gorm:"column:from_location;type:varchar(100);not null"`
	To   *string `json:"to" gorm:"column:to_location;type:varchar(100);index"` // NULL только для списания

	Purpose        string  `json:"purpose" gorm:"type:text;not null"`
	DisposalMethod *string `json:"disposal_method" gorm:"type:varchar(100)"` // только для Disposed

	PerformedByID string  `json:"performed_by_id" gorm:"type:uuid;not null;index"`
	PerformedBy   *User   `gorm:"foreignKey:PerformedByID" json:"performed_by,omitempty"`
	AssignedToID  *string `json:"assigned_to_id" gorm:"type:uuid;index"` // врач/медсестра, за кем закреплен материал
	AssignedTo    *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	RequestID *string          `json:"request_id" gorm:"type:uuid;index"` // если выдача по заявке
	Request   *MaterialRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`

	Condition       *ReturnCondition `json:"condition" gorm:"type:varchar(20)"`       // обязательно для Returned
	RelatedMovement *string          `json:"related_movement" gorm:"type:uuid;index"` // ссылка на исходную выдачу

	Notes     string    `json:"notes" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
}

// TableName указывает имя таблицы
func (MovementLog) TableName() string {
	return "movement_logs"
}

// BeforeCreate генерирует UUID
func (ml *MovementLog) BeforeCreate(tx *gorm.DB) error {
	if ml.ID == "" {
		ml.ID = uuid.New().String()
	}
	return nil
}
