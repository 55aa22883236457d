package services

import (
	"errors"
	"log"
	"strings"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"gorm.io/gorm"
)

// DepartmentService управляет справочником отделений больницы
type DepartmentService struct {
	db *gorm.DB
}

// NewDepartmentService создает новый DepartmentService
func NewDepartmentService(db *gorm.DB) *DepartmentService {
	return &DepartmentService{db: db}
}

// DepartmentInput — данные отделения
type DepartmentInput struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Floor        string  `json:"floor"`
	HeadID       *string `json:"head_id"`
	ContactEmail string  `json:"contact_email"`
	ContactPhone string  `json:"contact_phone"`
}

// Create создает отделение с уникальным названием
func (s *DepartmentService) Create(input DepartmentInput) (*models.Department, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.Validation("название отделения обязательно", "name")
	}

	var count int64
	if err := s.db.Model(&models.Department{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Internal("departments.create", err)
	}
	if count > 0 {
		return nil, apperrors.Validation("отделение с таким названием уже существует", "name")
	}

	if input.HeadID != nil && *input.HeadID != "" {
		var head models.User
		if err := s.db.First(&head, "id = ?", *input.HeadID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.InvalidReference("пользователь не найден: " + *input.HeadID)
			}
			return nil, apperrors.Internal("departments.create", err)
		}
	}

	department := models.Department{
		Name:         name,
		Description:  input.Description,
		Floor:        input.Floor,
		HeadID:       input.HeadID,
		ContactEmail: strings.ToLower(strings.TrimSpace(input.ContactEmail)),
		ContactPhone: input.ContactPhone,
		IsActive:     true,
	}
	if err := s.db.Create(&department).Error; err != nil {
		return nil, apperrors.Internal("departments.create", err)
	}

	log.Printf("🏥 Отделение создано: %s", department.Name)
	return &department, nil
}

// Update изменяет данные отделения
func (s *DepartmentService) Update(id string, input DepartmentInput) (*models.Department, error) {
	var department models.Department
	if err := s.db.First(&department, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("department", id)
		}
		return nil, apperrors.Internal("departments.update", err)
	}

	name := strings.TrimSpace(input.Name)
	if name != "" && name != department.Name {
		var count int64
		if err := s.db.Model(&models.Department{}).
			Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, apperrors.Internal("departments.update", err)
		}
		if count > 0 {
			return nil, apperrors.Validation("отделение с таким названием уже существует", "name")
		}
		department.Name = name
	}
	department.Description = input.Description
	department.Floor = input.Floor
	department.ContactEmail = strings.ToLower(strings.TrimSpace(input.ContactEmail))
	department.ContactPhone = input.ContactPhone
	if input.HeadID != nil {
		if *input.HeadID != "" {
			var head models.User
			if err := s.db.First(&head, "id = ?", *input.HeadID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.InvalidReference("пользователь не найден: " + *input.HeadID)
				}
				return nil, apperrors.Internal("departments.update", err)
			}
		}
		department.HeadID = input.HeadID
	}

	if err := s.db.Save(&department).Error; err != nil {
		return nil, apperrors.Internal("departments.update", err)
	}
	return &department, nil
}

// Deactivate мягко отключает отделение
func (s *DepartmentService) Deactivate(id string) error {
	res := s.db.Model(&models.Department{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return apperrors.Internal("departments.deactivate", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("department", id)
	}
	return nil
}

// Get возвращает отделение
func (s *DepartmentService) Get(id string) (*models.Department, error) {
	var department models.Department
	if err := s.db.Preload("Head").First(&department, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("department", id)
		}
		return nil, apperrors.Internal("departments.get", err)
	}
	return &department, nil
}

// List возвращает отделения, по умолчанию только активные
func (s *DepartmentService) List(includeInactive bool) ([]models.Department, error) {
	query := s.db.Model(&models.Department{}).Preload("Head")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var departments []models.Department
	if err := query.Order("name").Find(&departments).Error; err != nil {
		return nil, apperrors.Internal("departments.list", err)
	}
	return departments, nil
}
