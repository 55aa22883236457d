package api

import (
	"net/http"
	"strconv"
	"time"

	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// ActivityController управляет API endpoints журнала активности
type ActivityController struct {
	activityService *services.ActivityService
}

// NewActivityController создает новый контроллер журнала активности
func NewActivityController(activityService *services.ActivityService) *ActivityController {
	return &ActivityController{activityService: activityService}
}

func parseActivityFilter(c *gin.Context) services.ActivityFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	filter := services.ActivityFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
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

	return filter
}

// List возвращает журнал действий пользователей
// GET /api/v1/activity
func (ac *ActivityController) List(c *gin.Context) {
	filter := parseActivityFilter(c)
	filter.UserID = c.Query("user_id")

	entries, total, err := ac.activityService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity": entries,
		"total":    total,
	})
}

// ByUser возвращает журнал действий конкретного пользователя
// GET /api/v1/activity/user/:id
func (ac *ActivityController) ByUser(c *gin.Context) {
	filter := parseActivityFilter(c)
	filter.UserID = c.Param("id")

	entries, total, err := ac.activityService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity": entries,
		"total":    total,
	})
}
