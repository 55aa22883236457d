package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"
	"medstock/server/internal/utils"

	"gorm.io/gorm"
)

// Ключи кеша складской статистики
const (
	cacheKeyMovementStats = "stats:movements"
	cacheKeyExpiringSoon  = "stats:expiring"
	statsCacheTTL         = 2 * time.Minute
)

// InventoryService — единственная точка изменения остатков.
// Каждая операция (выдача, возврат, списание) выполняется в одной
// транзакции: изменение остатка и запись в журнал движений либо
// фиксируются вместе, либо откатываются вместе.
type InventoryService struct {
	db       *gorm.DB
	redis    *utils.RedisClient // может быть nil
	notifier StockNotifier      // может быть nil
}

// NewInventoryService создает новый InventoryService
func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// SetRedis подключает кеш статистики
func (s *InventoryService) SetRedis(r *utils.RedisClient) {
	s.redis = r
}

// SetNotifier подключает рассылку оповещений
func (s *InventoryService) SetNotifier(n StockNotifier) {
	s.notifier = n
}

// IssueInput — параметры выдачи материала
type IssueInput struct {
	MaterialID   string  `json:"material_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required"`
	ToDepartment string  `json:"to_department" binding:"required"`
	Purpose      string  `json:"purpose" binding:"required"`
	PerformedBy  string  `json:"-"`
	AssignedTo   *string `json:"assigned_to"`
	BatchNumber  *string `json:"batch_number"`
	RequestID    *string `json:"-"`
	Notes        string  `json:"notes"`
}

// MutationResult — результат складской операции
type MutationResult struct {
	Material *models.Material    `json:"material"`
	Movement *models.MovementLog `json:"movement"`
}

// Issue выдает материал со склада
func (s *InventoryService) Issue(input IssueInput) (*MutationResult, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result, err := s.IssueInTx(tx, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("inventory.issue", err)
	}

	s.afterMutation(result.Material, AlertIssued,
		fmt.Sprintf("Выдано %d x %s в %s", input.Quantity, result.Material.Name, input.ToDepartment))
	log.Printf("📦 Выдача: %s x%d → %s", result.Material.Name, input.Quantity, input.ToDepartment)
	return result, nil
}

// IssueInTx выполняет выдачу внутри внешней транзакции.
// Используется напрямую при одобрении заявки, чтобы изменение заявки,
// списание остатка и запись журнала зафиксировались одним коммитом.
func (s *InventoryService) IssueInTx(tx *gorm.DB, input IssueInput) (*MutationResult, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("количество должно быть положительным", "quantity")
	}
	if strings.TrimSpace(input.ToDepartment) == "" {
		return nil, apperrors.Validation("не указано отделение-получатель", "to_department")
	}
	if strings.TrimSpace(input.Purpose) == "" {
		return nil, apperrors.Validation("не указана цель выдачи", "purpose")
	}

	material, err := s.loadMaterial(tx, input.MaterialID)
	if err != nil {
		return nil, err
	}

	if !material.CanBeIssued() {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("материал в статусе %q не подлежит выдаче", material.Status))
	}

	if err := s.decrementStock(tx, material, input.Quantity, input.BatchNumber); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	material, err = s.recomputeAfterMutation(tx, material.ID, now, nil)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"last_issued_date": now}
	if input.PerformedBy != "" {
		updates["last_updated_by_id"] = input.PerformedBy
	}
	if err := tx.Model(&models.Material{}).Where("id = ?", material.ID).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal("inventory.issue", err)
	}

	to := input.ToDepartment
	movement := models.MovementLog{
		MaterialID:    material.ID,
		BatchNumber:   input.BatchNumber,
		Quantity:      input.Quantity,
		Action:        models.ActionIssued,
		From:          models.LocationInventory,
		To:            &to,
		Purpose:       input.Purpose,
		PerformedByID: input.PerformedBy,
		AssignedToID:  input.AssignedTo,
		RequestID:     input.RequestID,
		Notes:         input.Notes,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, apperrors.Internal("inventory.issue", err)
	}

	return &MutationResult{Material: material, Movement: &movement}, nil
}

// ReturnInput — параметры возврата по исходной выдаче
type ReturnInput struct {
	MovementID  string                 `json:"movement_id" binding:"required"`
	Condition   models.ReturnCondition `json:"condition" binding:"required"`
	Notes       string                 `json:"notes"`
	PerformedBy string                 `json:"-"`
}

// Return возвращает ранее выданный материал на склад
func (s *InventoryService) Return(input ReturnInput) (*MutationResult, error) {
	switch input.Condition {
	case models.ConditionGood, models.ConditionDamaged, models.ConditionExpired:
	default:
		return nil, apperrors.Validation("недопустимое состояние возврата: "+string(input.Condition), "condition")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Исходная запись журнала должна быть выдачей
	var original models.MovementLog
	if err := tx.First(&original, "id = ?", input.MovementID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("movement", input.MovementID)
		}
		return nil, apperrors.Internal("inventory.return", err)
	}
	if original.Action != models.ActionIssued {
		tx.Rollback()
		return nil, apperrors.InvalidReference(
			fmt.Sprintf("запись %s имеет действие %q, возврат возможен только по выдаче", original.ID, original.Action))
	}

	// Повторный возврат по той же выдаче запрещен
	var already int64
	if err := tx.Model(&models.MovementLog{}).
		Where("related_movement = ? AND action = ?", original.ID, models.ActionReturned).
		Count(&already).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("inventory.return", err)
	}
	if already > 0 {
		tx.Rollback()
		return nil, apperrors.InvalidState("по этой выдаче уже оформлен возврат")
	}

	material, err := s.loadMaterial(tx, original.MaterialID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := s.incrementStock(tx, material, original.Quantity, original.BatchNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now().UTC()
	var forced *models.MaterialStatus
	if input.Condition == models.ConditionDamaged {
		damaged := models.StatusDamaged
		forced = &damaged
	}
	material, err = s.recomputeAfterMutation(tx, material.ID, now, forced)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	from := models.LocationInventory
	if original.To != nil {
		from = *original.To
	}
	to := models.LocationInventory
	condition := input.Condition
	movement := models.MovementLog{
		MaterialID:      material.ID,
		BatchNumber:     original.BatchNumber,
		Quantity:        original.Quantity,
		Action:          models.ActionReturned,
		From:            from,
		To:              &to,
		Purpose:         "Возврат по выдаче " + original.ID,
		PerformedByID:   input.PerformedBy,
		Condition:       &condition,
		RelatedMovement: &original.ID,
		Notes:           input.Notes,
	}
	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("inventory.return", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("inventory.return", err)
	}

	s.afterMutation(material, AlertLowStock, "")
	log.Printf("↩️ Возврат: %s x%d (состояние: %s)", material.Name, original.Quantity, input.Condition)
	return &MutationResult{Material: material, Movement: &movement}, nil
}

// DisposeInput — параметры списания материала
type DisposeInput struct {
	MaterialID     string  `json:"material_id" binding:"required"`
	Quantity       int     `json:"quantity" binding:"required"`
	Reason         string  `json:"reason" binding:"required"`
	DisposalMethod string  `json:"disposal_method" binding:"required"`
	BatchNumber    *string `json:"batch_number"`
	PerformedBy    string  `json:"-"`
	Notes          string  `json:"notes"`
}

// Dispose списывает материал со склада (утилизация)
func (s *InventoryService) Dispose(input DisposeInput) (*MutationResult, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("количество должно быть положительным", "quantity")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.Validation("не указана причина списания", "reason")
	}
	if strings.TrimSpace(input.DisposalMethod) == "" {
		return nil, apperrors.Validation("не указан способ утилизации", "disposal_method")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	material, err := s.loadMaterial(tx, input.MaterialID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if material.Status == models.StatusDeleted {
		tx.Rollback()
		return nil, apperrors.InvalidState("материал удален и не подлежит списанию")
	}

	if err := s.decrementStock(tx, material, input.Quantity, input.BatchNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now().UTC()
	// Disposed выставляется только при полном исчерпании остатка
	material, err = s.recomputeAfterMutation(tx, material.ID, now, nil)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if material.EffectiveQuantity() <= 0 {
		material.Status = models.StatusDisposed
		if err := tx.Model(&models.Material{}).Where("id = ?", material.ID).
			Update("status", models.StatusDisposed).Error; err != nil {
			tx.Rollback()
			return nil, apperrors.Internal("inventory.dispose", err)
		}
	}

	method := input.DisposalMethod
	movement := models.MovementLog{
		MaterialID:     material.ID,
		BatchNumber:    input.BatchNumber,
		Quantity:       input.Quantity,
		Action:         models.ActionDisposed,
		From:           models.LocationInventory,
		To:             nil,
		Purpose:        input.Reason,
		DisposalMethod: &method,
		PerformedByID:  input.PerformedBy,
		Notes:          input.Notes,
	}
	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("inventory.dispose", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("inventory.dispose", err)
	}

	s.afterMutation(material, AlertDisposed,
		fmt.Sprintf("Списано %d x %s (%s)", input.Quantity, material.Name, input.DisposalMethod))
	log.Printf("🗑 Списание: %s x%d, способ: %s", material.Name, input.Quantity, input.DisposalMethod)
	return &MutationResult{Material: material, Movement: &movement}, nil
}

// loadMaterial загружает материал с партиями внутри транзакции
func (s *InventoryService) loadMaterial(tx *gorm.DB, id string) (*models.Material, error) {
	var material models.Material
	if err := tx.Preload("Batches").First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material", id)
		}
		return nil, apperrors.Internal("inventory.load", err)
	}
	return &material, nil
}

// decrementStock атомарно уменьшает остаток материала или партии.
// Условный UPDATE с проверкой quantity >= ? защищает от гонки двух
// одновременных выдач: проиграла та, чей RowsAffected == 0.
func (s *InventoryService) decrementStock(tx *gorm.DB, material *models.Material, quantity int, batchNumber *string) error {
	if material.HasBatches() {
		if batchNumber == nil || strings.TrimSpace(*batchNumber) == "" {
			return apperrors.Validation("для материала с партиями необходимо указать номер партии", "batch_number")
		}

		batch := material.FindBatch(*batchNumber)
		if batch == nil {
			return apperrors.NotFound("batch", *batchNumber)
		}

		res := tx.Model(&models.MaterialBatch{}).
			Where("material_id = ? AND batch_number = ? AND quantity >= ?", material.ID, *batchNumber, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return apperrors.Internal("inventory.decrement_batch", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.InsufficientStock(batch.Quantity, quantity)
		}

		// Исчерпанная партия помечается depleted
		if err := tx.Model(&models.MaterialBatch{}).
			Where("material_id = ? AND batch_number = ? AND quantity <= 0", material.ID, *batchNumber).
			Update("status", models.BatchDepleted).Error; err != nil {
			return apperrors.Internal("inventory.decrement_batch", err)
		}
		return nil
	}

	res := tx.Model(&models.Material{}).
		Where("id = ? AND quantity >= ?", material.ID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return apperrors.Internal("inventory.decrement", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.InsufficientStock(material.Quantity, quantity)
	}
	return nil
}

// incrementStock возвращает остаток материала или партии
func (s *InventoryService) incrementStock(tx *gorm.DB, material *models.Material, quantity int, batchNumber *string) error {
	if batchNumber != nil && *batchNumber != "" {
		batch := material.FindBatch(*batchNumber)
		if batch == nil {
			return apperrors.NotFound("batch", *batchNumber)
		}

		if err := tx.Model(&models.MaterialBatch{}).
			Where("material_id = ? AND batch_number = ?", material.ID, *batchNumber).
			Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			return apperrors.Internal("inventory.increment_batch", err)
		}

		// Пополненная партия снова активна, если срок не вышел
		now := time.Now().UTC()
		status := models.BatchActive
		if batch.IsExpiredAt(now) {
			status = models.BatchExpired
		}
		if err := tx.Model(&models.MaterialBatch{}).
			Where("material_id = ? AND batch_number = ?", material.ID, *batchNumber).
			Update("status", status).Error; err != nil {
			return apperrors.Internal("inventory.increment_batch", err)
		}
		return nil
	}

	if err := tx.Model(&models.Material{}).
		Where("id = ?", material.ID).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
		return apperrors.Internal("inventory.increment", err)
	}
	return nil
}

// recomputeAfterMutation перечитывает материал и обновляет его статус.
// forced задает статус принудительно (возврат поврежденного материала).
func (s *InventoryService) recomputeAfterMutation(tx *gorm.DB, materialID string, now time.Time, forced *models.MaterialStatus) (*models.Material, error) {
	material, err := s.loadMaterial(tx, materialID)
	if err != nil {
		return nil, err
	}

	newStatus := material.Status
	if forced != nil {
		newStatus = *forced
	} else {
		newStatus = material.DeriveStatus(now)
	}

	if newStatus != material.Status {
		if err := tx.Model(&models.Material{}).Where("id = ?", materialID).
			Update("status", newStatus).Error; err != nil {
			return nil, apperrors.Internal("inventory.status", err)
		}
		material.Status = newStatus
	}

	return material, nil
}

// afterMutation инвалидирует кеш статистики и рассылает оповещения
func (s *InventoryService) afterMutation(material *models.Material, alertType, message string) {
	if s.redis != nil {
		if err := s.redis.Delete(cacheKeyMovementStats); err != nil {
			log.Printf("⚠️ Redis: не удалось сбросить кеш статистики: %v", err)
		}
		if err := s.redis.Delete(cacheKeyExpiringSoon); err != nil {
			log.Printf("⚠️ Redis: не удалось сбросить кеш сроков годности: %v", err)
		}
	}

	if s.notifier == nil || material == nil {
		return
	}

	now := time.Now().UTC()
	if message != "" {
		s.notifier.NotifyStockAlert(StockAlert{
			Type:         alertType,
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Quantity:     material.EffectiveQuantity(),
			Status:       material.Status,
			Message:      message,
			Timestamp:    now,
		})
	}

	// Отдельное оповещение при падении ниже минимального уровня
	if material.Status == models.StatusLowStock || material.Status == models.StatusIssued {
		s.notifier.NotifyStockAlert(StockAlert{
			Type:         AlertLowStock,
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Quantity:     material.EffectiveQuantity(),
			Status:       material.Status,
			Message:      fmt.Sprintf("Остаток %s ниже минимального уровня (%d)", material.Name, material.MinStockLevel),
			Timestamp:    now,
		})
	}
}
