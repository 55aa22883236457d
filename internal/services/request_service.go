package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"gorm.io/gorm"
)

// RequestService управляет заявками отделений на выдачу материалов.
// Одобрение заявки вызывает выдачу внутри той же транзакции: изменение
// заявки, списание остатка и запись журнала фиксируются одним коммитом.
type RequestService struct {
	db        *gorm.DB
	inventory *InventoryService
}

// NewRequestService создает новый RequestService
func NewRequestService(db *gorm.DB, inventory *InventoryService) *RequestService {
	return &RequestService{db: db, inventory: inventory}
}

// SubmitRequestInput — данные новой заявки
type SubmitRequestInput struct {
	MaterialID   string                 `json:"material_id" binding:"required"`
	Quantity     int                    `json:"quantity" binding:"required"`
	DepartmentID string                 `json:"department_id" binding:"required"`
	Purpose      string                 `json:"purpose" binding:"required"`
	Priority     models.RequestPriority `json:"priority"`
	RequestedBy  string                 `json:"-"`
}

// Submit создает заявку в статусе Pending
func (s *RequestService) Submit(input SubmitRequestInput) (*models.MaterialRequest, error) {
	if input.Quantity < 1 {
		return nil, apperrors.Validation("количество должно быть не меньше 1", "quantity")
	}
	if strings.TrimSpace(input.Purpose) == "" {
		return nil, apperrors.Validation("не указана цель заявки", "purpose")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	switch priority {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return nil, apperrors.Validation("недопустимый приоритет: "+string(priority), "priority")
	}

	var material models.Material
	if err := s.db.Preload("Batches").First(&material, "id = ?", input.MaterialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material", input.MaterialID)
		}
		return nil, apperrors.Internal("requests.submit", err)
	}

	if material.Status == models.StatusDeleted || material.Status == models.StatusExpired {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("материал в статусе %q недоступен для заявок", material.Status))
	}
	if available := material.EffectiveQuantity(); available < input.Quantity {
		return nil, apperrors.InsufficientStock(available, input.Quantity)
	}

	var department models.Department
	if err := s.db.First(&department, "id = ?", input.DepartmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.InvalidReference("отделение не найдено: " + input.DepartmentID)
		}
		return nil, apperrors.Internal("requests.submit", err)
	}

	request := models.MaterialRequest{
		MaterialID:    input.MaterialID,
		Quantity:      input.Quantity,
		DepartmentID:  input.DepartmentID,
		RequestedByID: input.RequestedBy,
		Purpose:       input.Purpose,
		Priority:      priority,
		Status:        models.RequestPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, apperrors.Internal("requests.submit", err)
	}

	log.Printf("📝 Заявка создана: %s x%d для отделения %s (приоритет: %s)",
		material.Name, input.Quantity, department.Name, priority)
	return &request, nil
}

// DecideRequestInput — решение по заявке
type DecideRequestInput struct {
	Decision        models.RequestStatus `json:"decision" binding:"required"` // Approved | Rejected
	RejectionReason string               `json:"rejection_reason"`
	ApproverID      string               `json:"-"`
}

// Decide одобряет или отклоняет заявку ровно один раз
func (s *RequestService) Decide(requestID string, input DecideRequestInput) (*models.MaterialRequest, error) {
	if input.Decision != models.RequestApproved && input.Decision != models.RequestRejected {
		return nil, apperrors.Validation("решение должно быть Approved или Rejected", "decision")
	}
	if input.Decision == models.RequestRejected && strings.TrimSpace(input.RejectionReason) == "" {
		return nil, apperrors.Validation("при отклонении обязательна причина", "rejection_reason")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var request models.MaterialRequest
	if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("request", requestID)
		}
		return nil, apperrors.Internal("requests.decide", err)
	}

	if request.IsDecided() {
		tx.Rollback()
		return nil, apperrors.AlreadyProcessed(requestID)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status": input.Decision,
	}

	var mutation *MutationResult
	if input.Decision == models.RequestApproved {
		// Ссылка на одобрившего и время одобрения ставятся только здесь
		updates["approved_by_id"] = input.ApproverID
		updates["approved_at"] = now
		// Выдача внутри этой же транзакции; InventoryService повторно
		// проверяет наличие — остаток мог измениться после подачи заявки
		reqID := request.ID
		result, err := s.inventory.IssueInTx(tx, IssueInput{
			MaterialID:   request.MaterialID,
			Quantity:     request.Quantity,
			ToDepartment: request.DepartmentID,
			Purpose:      request.Purpose,
			PerformedBy:  input.ApproverID,
			AssignedTo:   &request.RequestedByID,
			RequestID:    &reqID,
		})
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		mutation = result
	} else {
		updates["rejection_reason"] = strings.TrimSpace(input.RejectionReason)
	}

	// Условный UPDATE защищает от одновременного второго решения
	res := tx.Model(&models.MaterialRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return nil, apperrors.Internal("requests.decide", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, apperrors.AlreadyProcessed(requestID)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("requests.decide", err)
	}

	if mutation != nil {
		s.inventory.afterMutation(mutation.Material, AlertIssued,
			fmt.Sprintf("Выдано по заявке: %d x %s", request.Quantity, mutation.Material.Name))
	}

	request.Status = input.Decision
	if input.Decision == models.RequestApproved {
		request.ApprovedByID = &input.ApproverID
		request.ApprovedAt = &now
	} else {
		reason := strings.TrimSpace(input.RejectionReason)
		request.RejectionReason = &reason
	}

	log.Printf("✅ Решение по заявке %s: %s", requestID, input.Decision)
	return &request, nil
}

// RequestFilter — фильтры выборки заявок
type RequestFilter struct {
	Status       models.RequestStatus
	DepartmentID string
	RequestedBy  string
	Page         int
	PerPage      int
}

// List возвращает заявки с фильтрацией и пагинацией
func (s *RequestService) List(filter RequestFilter) ([]models.MaterialRequest, int64, error) {
	query := s.db.Model(&models.MaterialRequest{}).
		Preload("Material").
		Preload("Department").
		Preload("RequestedBy").
		Preload("ApprovedBy")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.RequestedBy != "" {
		query = query.Where("requested_by_id = ?", filter.RequestedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("requests.list", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var requests []models.MaterialRequest
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&requests).Error
	if err != nil {
		return nil, 0, apperrors.Internal("requests.list", err)
	}

	return requests, total, nil
}

// Get возвращает заявку со связями
func (s *RequestService) Get(id string) (*models.MaterialRequest, error) {
	var request models.MaterialRequest
	err := s.db.Preload("Material").
		Preload("Department").
		Preload("RequestedBy").
		Preload("ApprovedBy").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("request", id)
		}
		return nil, apperrors.Internal("requests.get", err)
	}
	return &request, nil
}
