package services

import (
	"log"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"gorm.io/gorm"
)

// Действия, фиксируемые в журнале активности
const (
	ActivityLogin           = "LOGIN"
	ActivityCreateUser      = "CREATE_USER"
	ActivityCreateMaterial  = "CREATE_MATERIAL"
	ActivityUpdateMaterial  = "UPDATE_MATERIAL"
	ActivityDeleteMaterial  = "DELETE_MATERIAL"
	ActivityIssueMaterial   = "ISSUE_MATERIAL"
	ActivityReturnMaterial  = "RETURN_MATERIAL"
	ActivityDisposeMaterial = "DISPOSE_MATERIAL"
	ActivityCreateRequest   = "CREATE_REQUEST"
	ActivityApproveRequest  = "APPROVE_REQUEST"
	ActivityRejectRequest   = "REJECT_REQUEST"
	ActivityCreateVendor    = "CREATE_VENDOR"
	ActivityUpdateVendor    = "UPDATE_VENDOR"
	ActivityDeleteVendor    = "DELETE_VENDOR"
	ActivityCreateDept      = "CREATE_DEPARTMENT"
	ActivityUpdateDept      = "UPDATE_DEPARTMENT"
	ActivityDeleteDept      = "DELETE_DEPARTMENT"
)

// ActivityService ведет журнал действий пользователей.
// Запись в журнал — побочный эффект: сбой записи логируется,
// но никогда не откатывает основную операцию.
type ActivityService struct {
	db        *gorm.DB
	publisher *ActivityPublisher
}

// NewActivityService создает новый ActivityService
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// SetPublisher подключает Kafka publisher (может быть nil)
func (s *ActivityService) SetPublisher(p *ActivityPublisher) {
	s.publisher = p
}

// Record сохраняет запись о действии пользователя
func (s *ActivityService) Record(userID, action, entityType string, entityID *string, details, ip string) {
	entry := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ip,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("⚠️ Не удалось записать действие %s пользователя %s: %v", action, userID, err)
		return
	}

	if s.publisher != nil {
		eid := ""
		if entityID != nil {
			eid = *entityID
		}
		s.publisher.Publish(ActivityEvent{
			UserID:     userID,
			Action:     action,
			EntityType: entityType,
			EntityID:   eid,
			Details:    details,
			Timestamp:  time.Now().UTC(),
		})
	}
}

// ActivityFilter — фильтры выборки журнала
type ActivityFilter struct {
	UserID     string
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int
}

// List возвращает записи журнала с фильтрацией и пагинацией
func (s *ActivityService) List(filter ActivityFilter) ([]models.ActivityLog, int64, error) {
	query := s.db.Model(&models.ActivityLog{}).Preload("User")

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.From != nil {
		query = query.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("timestamp <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("activity.list", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var entries []models.ActivityLog
	err := query.Order("timestamp DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error
	if err != nil {
		return nil, 0, apperrors.Internal("activity.list", err)
	}

	return entries, total, nil
}
