package api

import (
	"net/http"
	"strconv"

	"medstock/server/internal/models"
	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// MaterialController управляет API endpoints каталога материалов
type MaterialController struct {
	materialService *services.MaterialService
	activityService *services.ActivityService
	expiringDays    int
}

// NewMaterialController создает новый контроллер материалов
func NewMaterialController(materialService *services.MaterialService, activityService *services.ActivityService, expiringDays int) *MaterialController {
	return &MaterialController{
		materialService: materialService,
		activityService: activityService,
		expiringDays:    expiringDays,
	}
}

// List возвращает материалы с фильтрацией
// GET /api/v1/materials
func (mc *MaterialController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	// Удаленные материалы видят только администратор и кладовщик
	role := currentUserRole(c)
	includeDeleted := c.Query("include_deleted") == "true" &&
		(role == models.RoleAdmin || role == models.RoleStoreManager)

	filter := services.MaterialFilter{
		Category:       models.MaterialCategory(c.Query("category")),
		Source:         models.MaterialSource(c.Query("source")),
		Status:         models.MaterialStatus(c.Query("status")),
		Search:         c.Query("search"),
		IncludeDeleted: includeDeleted,
		Page:           page,
		PerPage:        perPage,
	}

	materials, total, err := mc.materialService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"materials": materials,
		"total":     total,
		"page":      page,
	})
}

// Get возвращает материал по id
// GET /api/v1/materials/:id
func (mc *MaterialController) Get(c *gin.Context) {
	material, err := mc.materialService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"material": material})
}

// Create создает материал
// POST /api/v1/materials
func (mc *MaterialController) Create(c *gin.Context) {
	var req services.CreateMaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.AddedBy = currentUserID(c)

	material, err := mc.materialService.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityCreateMaterial, "material", &material.ID, material.Name, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{"material": material})
}

// Update изменяет материал
// PUT /api/v1/materials/:id
func (mc *MaterialController) Update(c *gin.Context) {
	var req services.UpdateMaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.UpdatedBy = currentUserID(c)

	material, err := mc.materialService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityUpdateMaterial, "material", &material.ID, material.Name, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"material": material})
}

// Delete помечает материал удаленным (мягкое удаление)
// DELETE /api/v1/materials/:id
func (mc *MaterialController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := mc.materialService.SoftDelete(id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityDeleteMaterial, "material", &id, "", c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Материал помечен удаленным"})
}

// AddBatch добавляет партию
// POST /api/v1/materials/:id/batches
func (mc *MaterialController) AddBatch(c *gin.Context) {
	var req services.BatchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	material, err := mc.materialService.AddBatch(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityUpdateMaterial, "material", &material.ID,
		"Добавлена партия "+req.BatchNumber, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{"material": material})
}

// UpdateBatch изменяет партию
// PUT /api/v1/materials/:id/batches/:batchNumber
func (mc *MaterialController) UpdateBatch(c *gin.Context) {
	var req services.UpdateBatchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	material, err := mc.materialService.UpdateBatch(c.Param("id"), c.Param("batchNumber"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityUpdateMaterial, "material", &material.ID,
		"Изменена партия "+c.Param("batchNumber"), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"material": material})
}

// Expiring возвращает материалы с истекающим сроком годности
// GET /api/v1/materials/expiring
func (mc *MaterialController) Expiring(c *gin.Context) {
	days := mc.expiringDays
	if v := c.Query("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	items, err := mc.materialService.ExpiringSoon(days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expiring": items,
		"days":     days,
		"total":    len(items),
	})
}
