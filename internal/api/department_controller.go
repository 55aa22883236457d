package api

import (
	"net/http"

	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// DepartmentController управляет API endpoints справочника отделений
type DepartmentController struct {
	departmentService *services.DepartmentService
	activityService   *services.ActivityService
}

// NewDepartmentController создает новый контроллер отделений
func NewDepartmentController(departmentService *services.DepartmentService, activityService *services.ActivityService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
		activityService:   activityService,
	}
}

// List возвращает отделения
// GET /api/v1/departments
func (dc *DepartmentController) List(c *gin.Context) {
	departments, err := dc.departmentService.List(c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

// Get возвращает отделение по id
// GET /api/v1/departments/:id
func (dc *DepartmentController) Get(c *gin.Context) {
	department, err := dc.departmentService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"department": department})
}

// Create создает отделение
// POST /api/v1/departments
func (dc *DepartmentController) Create(c *gin.Context) {
	var req services.DepartmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	department, err := dc.departmentService.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	dc.activityService.Record(currentUserID(c), services.ActivityCreateDept, "department", &department.ID, department.Name, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{"department": department})
}

// Update изменяет отделение
// PUT /api/v1/departments/:id
func (dc *DepartmentController) Update(c *gin.Context) {
	var req services.DepartmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	department, err := dc.departmentService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	dc.activityService.Record(currentUserID(c), services.ActivityUpdateDept, "department", &department.ID, department.Name, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"department": department})
}

// Delete мягко отключает отделение
// DELETE /api/v1/departments/:id
func (dc *DepartmentController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := dc.departmentService.Deactivate(id); err != nil {
		respondError(c, err)
		return
	}

	dc.activityService.Record(currentUserID(c), services.ActivityDeleteDept, "department", &id, "", c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Отделение деактивировано"})
}
