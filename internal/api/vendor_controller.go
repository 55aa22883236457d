package api

import (
	"net/http"

	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// VendorController управляет API endpoints справочника поставщиков
type VendorController struct {
	vendorService   *services.VendorService
	activityService *services.ActivityService
}

// NewVendorController создает новый контроллер поставщиков
func NewVendorController(vendorService *services.VendorService, activityService *services.ActivityService) *VendorController {
	return &VendorController{
		vendorService:   vendorService,
		activityService: activityService,
	}
}

// List возвращает поставщиков
// GET /api/v1/vendors
func (vc *VendorController) List(c *gin.Context) {
	vendors, err := vc.vendorService.List(c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// Get возвращает поставщика по id
// GET /api/v1/vendors/:id
func (vc *VendorController) Get(c *gin.Context) {
	vendor, err := vc.vendorService.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// Create создает поставщика
// POST /api/v1/vendors
func (vc *VendorController) Create(c *gin.Context) {
	var req services.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	req.AddedBy = currentUserID(c)
	vendor, err := vc.vendorService.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	vc.activityService.Record(currentUserID(c), services.ActivityCreateVendor, "vendor", &vendor.ID, vendor.Name, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{"vendor": vendor})
}

// Update изменяет поставщика
// PUT /api/v1/vendors/:id
func (vc *VendorController) Update(c *gin.Context) {
	var req services.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	vendor, err := vc.vendorService.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	vc.activityService.Record(currentUserID(c), services.ActivityUpdateVendor, "vendor", &vendor.ID, vendor.Name, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

// Delete мягко отключает поставщика
// DELETE /api/v1/vendors/:id
func (vc *VendorController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := vc.vendorService.Deactivate(id); err != nil {
		respondError(c, err)
		return
	}

	vc.activityService.Record(currentUserID(c), services.ActivityDeleteVendor, "vendor", &id, "", c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Поставщик деактивирован"})
}
