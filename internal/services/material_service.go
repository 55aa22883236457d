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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialService управляет каталогом материалов: создание, обновление,
// мягкое удаление, партии и отчеты по срокам годности.
// Изменения остатков проходят только через InventoryService.
type MaterialService struct {
	db       *gorm.DB
	redis    *utils.RedisClient // может быть nil
	notifier StockNotifier      // может быть nil
}

// NewMaterialService создает новый MaterialService
func NewMaterialService(db *gorm.DB) *MaterialService {
	return &MaterialService{db: db}
}

// SetRedis подключает кеш
func (s *MaterialService) SetRedis(r *utils.RedisClient) {
	s.redis = r
}

// SetNotifier подключает рассылку оповещений
func (s *MaterialService) SetNotifier(n StockNotifier) {
	s.notifier = n
}

// BatchInput — данные партии при создании/добавлении
type BatchInput struct {
	BatchNumber       string     `json:"batch_number" binding:"required"`
	Quantity          int        `json:"quantity" binding:"required"`
	ExpiryDate        *time.Time `json:"expiry_date"`
	ManufacturingDate *time.Time `json:"manufacturing_date"`
	SupplierID        *string    `json:"supplier_id"`
	PurchasePrice     float64    `json:"purchase_price"`
	PurchaseDate      *time.Time `json:"purchase_date"`
}

// CreateMaterialInput — данные нового материала
type CreateMaterialInput struct {
	Name          string                  `json:"name" binding:"required"`
	Description   string                  `json:"description"`
	Category      models.MaterialCategory `json:"category" binding:"required"`
	SerialNumber  *string                 `json:"serial_number"`
	Barcode       string                  `json:"barcode"`
	Quantity      int                     `json:"quantity"`
	Unit          string                  `json:"unit"`
	MinStockLevel *int                    `json:"min_stock_level"`
	ExpiryDate    *time.Time              `json:"expiry_date"`
	Source        models.MaterialSource   `json:"source" binding:"required"`
	VendorID      *string                 `json:"vendor_id"`
	OrderNumber   string                  `json:"order_number"`
	PurchaseDate  *time.Time              `json:"purchase_date"`
	WarrantyUntil *time.Time              `json:"warranty_until"`
	StorageArea   string                  `json:"storage_area"`
	Shelf         string                  `json:"shelf"`
	Bin           string                  `json:"bin"`
	Batches       []BatchInput            `json:"batches"`
	AddedBy       string                  `json:"-"`
}

func validCategory(c models.MaterialCategory) bool {
	switch c {
	case models.CategoryReusable, models.CategoryConsumable, models.CategoryHazardous, models.CategoryCritical:
		return true
	}
	return false
}

func validSource(src models.MaterialSource) bool {
	switch src {
	case models.SourceVendor, models.SourceDonation, models.SourceProcurement:
		return true
	}
	return false
}

// Create создает материал с выводом начального статуса
func (s *MaterialService) Create(input CreateMaterialInput) (*models.Material, error) {
	if !validCategory(input.Category) {
		return nil, apperrors.Validation("недопустимая категория: "+string(input.Category), "category")
	}
	if !validSource(input.Source) {
		return nil, apperrors.Validation("недопустимый источник: "+string(input.Source), "source")
	}
	if input.Quantity < 0 {
		return nil, apperrors.Validation("количество не может быть отрицательным", "quantity")
	}

	// Серийный номер: уникальность либо генерация
	serial := input.SerialNumber
	if serial == nil || strings.TrimSpace(*serial) == "" {
		generated := generateSerialNumber()
		serial = &generated
	} else {
		var count int64
		if err := s.db.Model(&models.Material{}).
			Where("serial_number = ?", *serial).Count(&count).Error; err != nil {
			return nil, apperrors.Internal("materials.create", err)
		}
		if count > 0 {
			return nil, apperrors.Validation("серийный номер уже используется: "+*serial, "serial_number")
		}
	}

	if input.VendorID != nil && *input.VendorID != "" {
		var vendor models.Vendor
		if err := s.db.First(&vendor, "id = ?", *input.VendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.InvalidReference("поставщик не найден: " + *input.VendorID)
			}
			return nil, apperrors.Internal("materials.create", err)
		}
	}

	minStock := 5
	if input.MinStockLevel != nil {
		minStock = *input.MinStockLevel
	}
	unit := input.Unit
	if unit == "" {
		unit = "pieces"
	}

	material := models.Material{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Category:      input.Category,
		SerialNumber:  serial,
		Barcode:       input.Barcode,
		Quantity:      input.Quantity,
		Unit:          unit,
		MinStockLevel: minStock,
		ExpiryDate:    input.ExpiryDate,
		Source:        input.Source,
		VendorID:      input.VendorID,
		OrderNumber:   input.OrderNumber,
		PurchaseDate:  input.PurchaseDate,
		WarrantyUntil: input.WarrantyUntil,
		StorageArea:   input.StorageArea,
		Shelf:         input.Shelf,
		Bin:           input.Bin,
		AddedByID:     input.AddedBy,
	}

	now := time.Now().UTC()
	for _, b := range input.Batches {
		if b.Quantity < 0 {
			return nil, apperrors.Validation("количество в партии не может быть отрицательным", "batches")
		}
		status := models.BatchActive
		if b.ExpiryDate != nil && !b.ExpiryDate.After(now) {
			status = models.BatchExpired
		}
		material.Batches = append(material.Batches, models.MaterialBatch{
			BatchNumber:       b.BatchNumber,
			Quantity:          b.Quantity,
			ExpiryDate:        b.ExpiryDate,
			ManufacturingDate: b.ManufacturingDate,
			SupplierID:        b.SupplierID,
			PurchasePrice:     b.PurchasePrice,
			PurchaseDate:      b.PurchaseDate,
			Status:            status,
		})
	}

	// Начальный статус выводится тем же правилом, что и при мутациях
	material.RefreshStatus(now)

	if err := s.db.Create(&material).Error; err != nil {
		return nil, apperrors.Internal("materials.create", err)
	}

	s.invalidateCache()
	log.Printf("➕ Материал создан: %s (%s), остаток: %d", material.Name, *material.SerialNumber, material.EffectiveQuantity())
	return &material, nil
}

func generateSerialNumber() string {
	return "MED-" + strings.ToUpper(uuid.New().String()[:8])
}

// UpdateMaterialInput — изменяемые поля материала
type UpdateMaterialInput struct {
	Name          *string                  `json:"name"`
	Description   *string                  `json:"description"`
	Category      *models.MaterialCategory `json:"category"`
	Barcode       *string                  `json:"barcode"`
	Quantity      *int                     `json:"quantity"`
	Unit          *string                  `json:"unit"`
	MinStockLevel *int                     `json:"min_stock_level"`
	ExpiryDate    *time.Time               `json:"expiry_date"`
	VendorID      *string                  `json:"vendor_id"`
	StorageArea   *string                  `json:"storage_area"`
	Shelf         *string                  `json:"shelf"`
	Bin           *string                  `json:"bin"`
	Status        *models.MaterialStatus   `json:"status"` // явная установка (Maintenance, Damaged)
	UpdatedBy     string                   `json:"-"`
}

// Update изменяет поля материала и пересчитывает статус
func (s *MaterialService) Update(id string, input UpdateMaterialInput) (*models.Material, error) {
	var material models.Material
	if err := s.db.Preload("Batches").First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material", id)
		}
		return nil, apperrors.Internal("materials.update", err)
	}

	if material.Status == models.StatusDeleted {
		return nil, apperrors.InvalidState("материал удален и не подлежит изменению")
	}

	if input.Name != nil {
		material.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		material.Description = *input.Description
	}
	if input.Category != nil {
		if !validCategory(*input.Category) {
			return nil, apperrors.Validation("недопустимая категория: "+string(*input.Category), "category")
		}
		material.Category = *input.Category
	}
	if input.Barcode != nil {
		material.Barcode = *input.Barcode
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperrors.Validation("количество не может быть отрицательным", "quantity")
		}
		if material.HasBatches() {
			return nil, apperrors.InvalidState("остаток материала с партиями изменяется только через партии")
		}
		material.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		material.Unit = *input.Unit
	}
	if input.MinStockLevel != nil {
		material.MinStockLevel = *input.MinStockLevel
	}
	if input.ExpiryDate != nil {
		material.ExpiryDate = input.ExpiryDate
	}
	if input.VendorID != nil {
		if *input.VendorID != "" {
			var vendor models.Vendor
			if err := s.db.First(&vendor, "id = ?", *input.VendorID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.InvalidReference("поставщик не найден: " + *input.VendorID)
				}
				return nil, apperrors.Internal("materials.update", err)
			}
		}
		material.VendorID = input.VendorID
	}
	if input.StorageArea != nil {
		material.StorageArea = *input.StorageArea
	}
	if input.Shelf != nil {
		material.Shelf = *input.Shelf
	}
	if input.Bin != nil {
		material.Bin = *input.Bin
	}

	now := time.Now().UTC()
	if input.Status != nil {
		// Явная установка терминального статуса (обслуживание, повреждение)
		material.Status = *input.Status
	} else {
		material.RefreshStatus(now)
	}
	material.LastUpdatedByID = &input.UpdatedBy

	if err := s.db.Save(&material).Error; err != nil {
		return nil, apperrors.Internal("materials.update", err)
	}

	s.invalidateCache()
	return &material, nil
}

// SoftDelete помечает материал удаленным, запись сохраняется для аудита
func (s *MaterialService) SoftDelete(id, deletedBy string) error {
	var material models.Material
	if err := s.db.First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("material", id)
		}
		return apperrors.Internal("materials.delete", err)
	}

	if material.Status == models.StatusDeleted {
		return apperrors.InvalidState("материал уже удален")
	}

	err := s.db.Model(&models.Material{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             models.StatusDeleted,
		"last_updated_by_id": deletedBy,
	}).Error
	if err != nil {
		return apperrors.Internal("materials.delete", err)
	}

	s.invalidateCache()
	log.Printf("🗑 Материал помечен удаленным: %s", material.Name)
	return nil
}

// Get возвращает материал со связями
func (s *MaterialService) Get(id string) (*models.Material, error) {
	var material models.Material
	err := s.db.Preload("Batches").
		Preload("Vendor").
		Preload("AddedBy").
		First(&material, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material", id)
		}
		return nil, apperrors.Internal("materials.get", err)
	}
	return &material, nil
}

// MaterialFilter — фильтры каталога
type MaterialFilter struct {
	Category       models.MaterialCategory
	Source         models.MaterialSource
	Status         models.MaterialStatus
	Search         string
	IncludeDeleted bool
	Page           int
	PerPage        int
}

// List возвращает материалы с фильтрацией и пагинацией
func (s *MaterialService) List(filter MaterialFilter) ([]models.Material, int64, error) {
	query := s.db.Model(&models.Material{}).Preload("Batches").Preload("Vendor")

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else if !filter.IncludeDeleted {
		query = query.Where("status <> ?", models.StatusDeleted)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(barcode) LIKE ? OR LOWER(serial_number) LIKE ?",
			like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("materials.list", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var materials []models.Material
	err := query.Order("updated_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&materials).Error
	if err != nil {
		return nil, 0, apperrors.Internal("materials.list", err)
	}

	return materials, total, nil
}

// AddBatch добавляет партию к материалу
func (s *MaterialService) AddBatch(materialID string, input BatchInput) (*models.Material, error) {
	var material models.Material
	if err := s.db.Preload("Batches").First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material", materialID)
		}
		return nil, apperrors.Internal("materials.add_batch", err)
	}

	if material.Status == models.StatusDeleted {
		return nil, apperrors.InvalidState("материал удален")
	}
	if input.Quantity < 0 {
		return nil, apperrors.Validation("количество в партии не может быть отрицательным", "quantity")
	}
	if material.FindBatch(input.BatchNumber) != nil {
		return nil, apperrors.Validation("партия с таким номером уже существует: "+input.BatchNumber, "batch_number")
	}

	now := time.Now().UTC()
	status := models.BatchActive
	if input.ExpiryDate != nil && !input.ExpiryDate.After(now) {
		status = models.BatchExpired
	}

	batch := models.MaterialBatch{
		MaterialID:        material.ID,
		BatchNumber:       input.BatchNumber,
		Quantity:          input.Quantity,
		ExpiryDate:        input.ExpiryDate,
		ManufacturingDate: input.ManufacturingDate,
		SupplierID:        input.SupplierID,
		PurchasePrice:     input.PurchasePrice,
		PurchaseDate:      input.PurchaseDate,
		Status:            status,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&batch).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("materials.add_batch", err)
	}

	// Статус пересчитываем с учетом новой партии
	var fresh models.Material
	if err := tx.Preload("Batches").First(&fresh, "id = ?", materialID).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("materials.add_batch", err)
	}
	if !fresh.Status.IsTerminal() {
		newStatus := fresh.DeriveStatus(now)
		if newStatus != fresh.Status {
			if err := tx.Model(&models.Material{}).Where("id = ?", materialID).
				Update("status", newStatus).Error; err != nil {
				tx.Rollback()
				return nil, apperrors.Internal("materials.add_batch", err)
			}
			fresh.Status = newStatus
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("materials.add_batch", err)
	}

	s.invalidateCache()
	return &fresh, nil
}

// UpdateBatchInput — изменяемые поля партии
type UpdateBatchInput struct {
	Quantity   *int       `json:"quantity"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

// UpdateBatch изменяет количество или срок годности партии
func (s *MaterialService) UpdateBatch(materialID, batchNumber string, input UpdateBatchInput) (*models.Material, error) {
	var material models.Material
	if err := s.db.Preload("Batches").First(&material, "id = ?", materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("material", materialID)
		}
		return nil, apperrors.Internal("materials.update_batch", err)
	}

	batch := material.FindBatch(batchNumber)
	if batch == nil {
		return nil, apperrors.NotFound("batch", batchNumber)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperrors.Validation("количество в партии не может быть отрицательным", "quantity")
		}
		updates["quantity"] = *input.Quantity
	}
	if input.ExpiryDate != nil {
		updates["expiry_date"] = input.ExpiryDate
	}
	if len(updates) == 0 {
		return &material, nil
	}

	// Статус партии выводится из новых значений
	qty := batch.Quantity
	if input.Quantity != nil {
		qty = *input.Quantity
	}
	expiry := batch.ExpiryDate
	if input.ExpiryDate != nil {
		expiry = input.ExpiryDate
	}
	switch {
	case qty <= 0:
		updates["status"] = models.BatchDepleted
	case expiry != nil && !expiry.After(now):
		updates["status"] = models.BatchExpired
	default:
		updates["status"] = models.BatchActive
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&models.MaterialBatch{}).
		Where("material_id = ? AND batch_number = ?", materialID, batchNumber).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("materials.update_batch", err)
	}

	var fresh models.Material
	if err := tx.Preload("Batches").First(&fresh, "id = ?", materialID).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("materials.update_batch", err)
	}
	if !fresh.Status.IsTerminal() {
		newStatus := fresh.DeriveStatus(now)
		if newStatus != fresh.Status {
			if err := tx.Model(&models.Material{}).Where("id = ?", materialID).
				Update("status", newStatus).Error; err != nil {
				tx.Rollback()
				return nil, apperrors.Internal("materials.update_batch", err)
			}
			fresh.Status = newStatus
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("materials.update_batch", err)
	}

	s.invalidateCache()
	return &fresh, nil
}

// ExpiringMaterial — материал с истекающим сроком годности
type ExpiringMaterial struct {
	MaterialID   string     `json:"material_id"`
	Name         string     `json:"name"`
	BatchNumber  *string    `json:"batch_number,omitempty"`
	Quantity     int        `json:"quantity"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	DaysLeft     int        `json:"days_left"`
}

// ExpiringSoon возвращает материалы и партии со сроком годности в пределах
// days дней. Агрегат кешируется в Redis.
func (s *MaterialService) ExpiringSoon(days int) ([]ExpiringMaterial, error) {
	if days <= 0 {
		days = 30
	}

	cacheKey := fmt.Sprintf("%s:%d", cacheKeyExpiringSoon, days)
	if s.redis != nil {
		var cached []ExpiringMaterial
		if err := s.redis.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	now := time.Now().UTC()
	deadline := now.AddDate(0, 0, days)
	var results []ExpiringMaterial

	// Партии с истекающим сроком
	var batches []models.MaterialBatch
	err := s.db.Model(&models.MaterialBatch{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ? AND quantity > 0 AND status <> ?",
			deadline, models.BatchDepleted).
		Find(&batches).Error
	if err != nil {
		return nil, apperrors.Internal("materials.expiring", err)
	}

	batchMaterialIDs := make(map[string]bool)
	for i := range batches {
		b := batches[i]
		batchMaterialIDs[b.MaterialID] = true
		bn := b.BatchNumber
		results = append(results, ExpiringMaterial{
			MaterialID:  b.MaterialID,
			BatchNumber: &bn,
			Quantity:    b.Quantity,
			ExpiryDate:  b.ExpiryDate,
			DaysLeft:    daysUntil(now, b.ExpiryDate),
		})
	}

	// Материалы без партий с собственным сроком годности
	var materials []models.Material
	err = s.db.Model(&models.Material{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ? AND quantity > 0 AND status <> ?",
			deadline, models.StatusDeleted).
		Find(&materials).Error
	if err != nil {
		return nil, apperrors.Internal("materials.expiring", err)
	}

	nameByID := make(map[string]string)
	for i := range materials {
		m := materials[i]
		nameByID[m.ID] = m.Name
		if batchMaterialIDs[m.ID] {
			continue
		}
		results = append(results, ExpiringMaterial{
			MaterialID: m.ID,
			Name:       m.Name,
			Quantity:   m.Quantity,
			ExpiryDate: m.ExpiryDate,
			DaysLeft:   daysUntil(now, m.ExpiryDate),
		})
	}

	// Дозаполняем имена материалов для партийных записей
	var missing []string
	for id := range batchMaterialIDs {
		if _, ok := nameByID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		var owners []models.Material
		if err := s.db.Where("id IN ?", missing).Find(&owners).Error; err == nil {
			for i := range owners {
				nameByID[owners[i].ID] = owners[i].Name
			}
		}
	}
	for i := range results {
		if results[i].Name == "" {
			results[i].Name = nameByID[results[i].MaterialID]
		}
	}

	if s.redis != nil {
		if err := s.redis.Set(cacheKey, results, statsCacheTTL); err != nil {
			log.Printf("⚠️ Redis: не удалось закешировать истекающие материалы: %v", err)
		}
	}

	return results, nil
}

func daysUntil(now time.Time, expiry *time.Time) int {
	if expiry == nil {
		return 0
	}
	return int(expiry.Sub(now).Hours() / 24)
}

// ExpirySweep помечает просроченные партии и обновляет статусы материалов.
// Вызывается фоновым тикером; читающие пути корректны и без него,
// тикер лишь поддерживает сохраненное состояние свежим.
func (s *MaterialService) ExpirySweep() {
	now := time.Now().UTC()

	// Просроченные активные партии
	res := s.db.Model(&models.MaterialBatch{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", models.BatchActive, now).
		Update("status", models.BatchExpired)
	if res.Error != nil {
		log.Printf("⚠️ Проверка сроков: ошибка обновления партий: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("⏰ Проверка сроков: просрочено партий: %d", res.RowsAffected)
	}

	// Материалы-кандидаты: нетерминальный статус и собственный либо партийный срок
	var candidates []models.Material
	err := s.db.Preload("Batches").
		Where("status NOT IN ?", []models.MaterialStatus{
			models.StatusDeleted, models.StatusDisposed, models.StatusDamaged, models.StatusMaintenance, models.StatusExpired,
		}).
		Find(&candidates).Error
	if err != nil {
		log.Printf("⚠️ Проверка сроков: ошибка выборки материалов: %v", err)
		return
	}

	relabeled := 0
	for i := range candidates {
		m := &candidates[i]
		newStatus := m.DeriveStatus(now)
		if newStatus == m.Status {
			continue
		}
		if err := s.db.Model(&models.Material{}).Where("id = ?", m.ID).
			Update("status", newStatus).Error; err != nil {
			log.Printf("⚠️ Проверка сроков: не удалось обновить %s: %v", m.Name, err)
			continue
		}
		relabeled++
		if newStatus == models.StatusExpired && s.notifier != nil {
			s.notifier.NotifyStockAlert(StockAlert{
				Type:         AlertExpired,
				MaterialID:   m.ID,
				MaterialName: m.Name,
				Quantity:     m.EffectiveQuantity(),
				Status:       newStatus,
				Message:      fmt.Sprintf("Срок годности %s истек", m.Name),
				Timestamp:    now,
			})
		}
	}

	if relabeled > 0 {
		s.invalidateCache()
		log.Printf("⏰ Проверка сроков: обновлено статусов материалов: %d", relabeled)
	}
}

func (s *MaterialService) invalidateCache() {
	if s.redis == nil {
		return
	}
	if err := s.redis.DeletePattern(cacheKeyExpiringSoon + "*"); err != nil {
		log.Printf("⚠️ Redis: не удалось сбросить кеш сроков годности: %v", err)
	}
	if err := s.redis.Delete(cacheKeyMovementStats); err != nil {
		log.Printf("⚠️ Redis: не удалось сбросить кеш статистики: %v", err)
	}
}
