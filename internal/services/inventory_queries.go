package services

import (
	"log"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"
)

// MovementFilter — фильтры выборки журнала движений
type MovementFilter struct {
	Action     models.MovementAction
	MaterialID string
	Department string
	AssignedTo string
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int
}

// ListMovements возвращает записи журнала движений с фильтрацией
func (s *InventoryService) ListMovements(filter MovementFilter) ([]models.MovementLog, int64, error) {
	query := s.db.Model(&models.MovementLog{}).
		Preload("Material").
		Preload("PerformedBy").
		Preload("AssignedTo")

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.MaterialID != "" {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.Department != "" {
		query = query.Where("to_location = ? OR from_location = ?", filter.Department, filter.Department)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to_id = ?", filter.AssignedTo)
	}
	if filter.From != nil {
		query = query.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("timestamp <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("movements.list", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var movements []models.MovementLog
	err := query.Order("timestamp DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&movements).Error
	if err != nil {
		return nil, 0, apperrors.Internal("movements.list", err)
	}

	return movements, total, nil
}

// ActionStats — агрегат по одному типу движения
type ActionStats struct {
	Action        models.MovementAction `json:"action"`
	Count         int64                 `json:"count"`
	TotalQuantity int64                 `json:"total_quantity"`
}

// MovementStats возвращает агрегаты движений по типам действий.
// Результат кешируется в Redis и сбрасывается при каждой мутации склада.
func (s *InventoryService) MovementStats() ([]ActionStats, error) {
	if s.redis != nil {
		var cached []ActionStats
		if err := s.redis.GetJSON(cacheKeyMovementStats, &cached); err == nil {
			return cached, nil
		}
	}

	var stats []ActionStats
	err := s.db.Model(&models.MovementLog{}).
		Select("action, COUNT(*) as count, COALESCE(SUM(quantity), 0) as total_quantity").
		Group("action").
		Order("action").
		Scan(&stats).Error
	if err != nil {
		return nil, apperrors.Internal("movements.stats", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(cacheKeyMovementStats, stats, statsCacheTTL); err != nil {
			log.Printf("⚠️ Redis: не удалось закешировать статистику движений: %v", err)
		}
	}

	return stats, nil
}

// IssuedItem — выданный и не возвращенный материал
type IssuedItem struct {
	Movement *models.MovementLog `json:"movement"`
	DaysOut  int                 `json:"days_out"`
}

// TrackIssuedItems возвращает выдачи, по которым не оформлен возврат
func (s *InventoryService) TrackIssuedItems() ([]IssuedItem, error) {
	var movements []models.MovementLog
	err := s.db.Model(&models.MovementLog{}).
		Preload("Material").
		Preload("PerformedBy").
		Preload("AssignedTo").
		Where("action = ?", models.ActionIssued).
		Where("id NOT IN (?)", s.db.Model(&models.MovementLog{}).
			Select("related_movement").
			Where("action = ? AND related_movement IS NOT NULL", models.ActionReturned)).
		Order("timestamp ASC").
		Find(&movements).Error
	if err != nil {
		return nil, apperrors.Internal("movements.track_issued", err)
	}

	now := time.Now().UTC()
	items := make([]IssuedItem, 0, len(movements))
	for i := range movements {
		items = append(items, IssuedItem{
			Movement: &movements[i],
			DaysOut:  int(now.Sub(movements[i].Timestamp).Hours() / 24),
		})
	}
	return items, nil
}

// ExpiredMovementSummary — сводка по выбытию материалов со склада
type ExpiredMovementSummary struct {
	Movements []models.MovementLog `json:"movements"`
	Total     int64                `json:"total"`
}

// ExpiredDisposals возвращает все списания и возвраты в состоянии Expired
func (s *InventoryService) ExpiredDisposals() (*ExpiredMovementSummary, error) {
	var movements []models.MovementLog
	err := s.db.Model(&models.MovementLog{}).
		Preload("Material").
		Preload("PerformedBy").
		Where("action = ? OR (action = ? AND condition = ?)",
			models.ActionDisposed, models.ActionReturned, models.ConditionExpired).
		Order("timestamp DESC").
		Find(&movements).Error
	if err != nil {
		return nil, apperrors.Internal("movements.expired", err)
	}

	return &ExpiredMovementSummary{
		Movements: movements,
		Total:     int64(len(movements)),
	}, nil
}
