package api

import (
	"net/http"
	"strconv"
	"time"

	"medstock/server/internal/models"
	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// MovementController управляет API endpoints складских движений
type MovementController struct {
	inventoryService *services.InventoryService
	activityService  *services.ActivityService
}

// NewMovementController создает новый контроллер движений
func NewMovementController(inventoryService *services.InventoryService, activityService *services.ActivityService) *MovementController {
	return &MovementController{
		inventoryService: inventoryService,
		activityService:  activityService,
	}
}

// Issue выдает материал со склада
// POST /api/v1/movements/issue
func (mc *MovementController) Issue(c *gin.Context) {
	var req services.IssueInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.PerformedBy = currentUserID(c)

	result, err := mc.inventoryService.Issue(req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityIssueMaterial, "material",
		&result.Material.ID, result.Movement.ID, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{
		"material": result.Material,
		"movement": result.Movement,
	})
}

// Return возвращает материал по исходной выдаче
// POST /api/v1/movements/return
func (mc *MovementController) Return(c *gin.Context) {
	var req services.ReturnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.PerformedBy = currentUserID(c)

	result, err := mc.inventoryService.Return(req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityReturnMaterial, "material",
		&result.Material.ID, result.Movement.ID, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{
		"material": result.Material,
		"movement": result.Movement,
	})
}

// Dispose списывает материал
// POST /api/v1/movements/dispose
func (mc *MovementController) Dispose(c *gin.Context) {
	var req services.DisposeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.PerformedBy = currentUserID(c)

	result, err := mc.inventoryService.Dispose(req)
	if err != nil {
		respondError(c, err)
		return
	}

	mc.activityService.Record(currentUserID(c), services.ActivityDisposeMaterial, "material",
		&result.Material.ID, result.Movement.ID, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{
		"material": result.Material,
		"movement": result.Movement,
	})
}

// List возвращает журнал движений с фильтрацией
// GET /api/v1/movements
func (mc *MovementController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	filter := services.MovementFilter{
		Action:     models.MovementAction(c.Query("action")),
		MaterialID: c.Query("material_id"),
		Department: c.Query("department"),
		AssignedTo: c.Query("assigned_to"),
		Page:       page,
		PerPage:    perPage,
	}

	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	movements, total, err := mc.inventoryService.ListMovements(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movements": movements,
		"total":     total,
		"page":      page,
	})
}

// Stats возвращает агрегаты движений по типам действий
// GET /api/v1/movements/stats
func (mc *MovementController) Stats(c *gin.Context) {
	stats, err := mc.inventoryService.MovementStats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// Expired возвращает списания и возвраты просроченных материалов
// GET /api/v1/movements/expired
func (mc *MovementController) Expired(c *gin.Context) {
	summary, err := mc.inventoryService.ExpiredDisposals()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
