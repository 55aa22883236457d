package api

import (
	"net/http"
	"strconv"

	"medstock/server/internal/models"
	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// RequestController управляет API endpoints заявок на материалы
type RequestController struct {
	requestService   *services.RequestService
	inventoryService *services.InventoryService
	activityService  *services.ActivityService
}

// NewRequestController создает новый контроллер заявок
func NewRequestController(requestService *services.RequestService, inventoryService *services.InventoryService, activityService *services.ActivityService) *RequestController {
	return &RequestController{
		requestService:   requestService,
		inventoryService: inventoryService,
		activityService:  activityService,
	}
}

// Submit создает заявку
// POST /api/v1/requests
func (rc *RequestController) Submit(c *gin.Context) {
	var req services.SubmitRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.RequestedBy = currentUserID(c)

	request, err := rc.requestService.Submit(req)
	if err != nil {
		respondError(c, err)
		return
	}

	rc.activityService.Record(currentUserID(c), services.ActivityCreateRequest, "request", &request.ID, "", c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// Decide одобряет или отклоняет заявку
// PUT /api/v1/requests/:id
func (rc *RequestController) Decide(c *gin.Context) {
	var req services.DecideRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}
	req.ApproverID = currentUserID(c)

	id := c.Param("id")
	request, err := rc.requestService.Decide(id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	action := services.ActivityApproveRequest
	if request.Status == models.RequestRejected {
		action = services.ActivityRejectRequest
	}
	rc.activityService.Record(currentUserID(c), action, "request", &request.ID, "", c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// List возвращает заявки с фильтрацией
// GET /api/v1/requests
func (rc *RequestController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	filter := services.RequestFilter{
		Status:       models.RequestStatus(c.Query("status")),
		DepartmentID: c.Query("department_id"),
		Page:         page,
		PerPage:      perPage,
	}

	requests, total, err := rc.requestService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
		"page":     page,
	})
}

// My возвращает заявки текущего пользователя
// GET /api/v1/requests/my
func (rc *RequestController) My(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	requests, total, err := rc.requestService.List(services.RequestFilter{
		RequestedBy: currentUserID(c),
		Status:      models.RequestStatus(c.Query("status")),
		Page:        page,
		PerPage:     perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    total,
		"page":     page,
	})
}

// TrackIssued возвращает выданные и не возвращенные материалы
// GET /api/v1/requests/track-issued
func (rc *RequestController) TrackIssued(c *gin.Context) {
	items, err := rc.inventoryService.TrackIssuedItems()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issued": items,
		"total":  len(items),
	})
}
