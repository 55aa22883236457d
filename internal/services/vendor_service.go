package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"gorm.io/gorm"
)

// VendorService управляет справочником поставщиков
type VendorService struct {
	db *gorm.DB
}

// NewVendorService создает новый VendorService
func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

// VendorInput — данные поставщика
type VendorInput struct {
	Name              string     `json:"name" binding:"required"`
	ContactPerson     string     `json:"contact_person"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Address           string     `json:"address"`
	Website           string     `json:"website"`
	TaxID             string     `json:"tax_id"`
	Categories        []string   `json:"categories"`
	ContractStartDate *time.Time `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date"`
	PaymentTerms      string     `json:"payment_terms"`
	Notes             string     `json:"notes"`
	AddedBy           string     `json:"-"`
}

// Create создает поставщика
func (s *VendorService) Create(input VendorInput) (*models.Vendor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Validation("название поставщика обязательно", "name")
	}

	var count int64
	if err := s.db.Model(&models.Vendor{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Internal("vendors.create", err)
	}
	if count > 0 {
		return nil, apperrors.Validation("поставщик с таким названием уже существует", "name")
	}

	if input.ContractStartDate != nil && input.ContractEndDate != nil &&
		input.ContractEndDate.Before(*input.ContractStartDate) {
		return nil, apperrors.Validation("окончание контракта раньше его начала", "contract_end_date")
	}

	vendor := models.Vendor{
		Name:              name,
		ContactPerson:     input.ContactPerson,
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:             input.Phone,
		Address:           input.Address,
		Website:           input.Website,
		TaxID:             input.TaxID,
		Categories:        input.Categories,
		ContractStartDate: input.ContractStartDate,
		ContractEndDate:   input.ContractEndDate,
		PaymentTerms:      input.PaymentTerms,
		Notes:             input.Notes,
		IsActive:          true,
	}
	if input.AddedBy != "" {
		vendor.AddedByID = &input.AddedBy
	}
	if err := s.db.Create(&vendor).Error; err != nil {
		return nil, apperrors.Internal("vendors.create", err)
	}

	log.Printf("🏭 Поставщик создан: %s", vendor.Name)
	return &vendor, nil
}

// Update изменяет данные поставщика
func (s *VendorService) Update(id string, input VendorInput) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vendor", id)
		}
		return nil, apperrors.Internal("vendors.update", err)
	}

	name := strings.TrimSpace(input.Name)
	if name != "" && name != vendor.Name {
		var count int64
		if err := s.db.Model(&models.Vendor{}).
			Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, apperrors.Internal("vendors.update", err)
		}
		if count > 0 {
			return nil, apperrors.Validation("поставщик с таким названием уже существует", "name")
		}
		vendor.Name = name
	}
	if input.ContractStartDate != nil && input.ContractEndDate != nil &&
		input.ContractEndDate.Before(*input.ContractStartDate) {
		return nil, apperrors.Validation("окончание контракта раньше его начала", "contract_end_date")
	}

	vendor.ContactPerson = input.ContactPerson
	vendor.Email = strings.ToLower(strings.TrimSpace(input.Email))
	vendor.Phone = input.Phone
	vendor.Address = input.Address
	vendor.Website = input.Website
	vendor.TaxID = input.TaxID
	vendor.Categories = input.Categories
	vendor.ContractStartDate = input.ContractStartDate
	vendor.ContractEndDate = input.ContractEndDate
	vendor.PaymentTerms = input.PaymentTerms
	vendor.Notes = input.Notes

	if err := s.db.Save(&vendor).Error; err != nil {
		return nil, apperrors.Internal("vendors.update", err)
	}
	return &vendor, nil
}

// Deactivate мягко отключает поставщика, ссылки из материалов сохраняются
func (s *VendorService) Deactivate(id string) error {
	res := s.db.Model(&models.Vendor{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return apperrors.Internal("vendors.deactivate", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("vendor", id)
	}
	return nil
}

// Get возвращает поставщика
func (s *VendorService) Get(id string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("vendor", id)
		}
		return nil, apperrors.Internal("vendors.get", err)
	}
	return &vendor, nil
}

// List возвращает поставщиков, по умолчанию только активных
func (s *VendorService) List(includeInactive bool) ([]models.Vendor, error) {
	query := s.db.Model(&models.Vendor{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var vendors []models.Vendor
	if err := query.Order("name").Find(&vendors).Error; err != nil {
		return nil, apperrors.Internal("vendors.list", err)
	}
	return vendors, nil
}
