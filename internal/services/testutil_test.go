package services

import (
	"testing"
	"time"

	"medstock/server/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB открывает изолированную in-memory базу для одного теста
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	// Одно соединение, иначе pool выдаст свежую пустую :memory: базу
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// seedUser создает пользователя с заданной ролью
func seedUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	user := models.User{
		Name:     "Тестовый пользователь",
		Email:    email,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedDepartment создает отделение
func seedDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()

	department := models.Department{Name: name, IsActive: true}
	require.NoError(t, db.Create(&department).Error)
	return &department
}

// seedMaterial создает материал без партий с заданным остатком
func seedMaterial(t *testing.T, db *gorm.DB, addedBy string, quantity, minStock int) *models.Material {
	t.Helper()

	material := models.Material{
		Name:          "Перчатки нитриловые",
		Category:      models.CategoryConsumable,
		Quantity:      quantity,
		Unit:          "boxes",
		MinStockLevel: minStock,
		Source:        models.SourceVendor,
		AddedByID:     addedBy,
	}
	material.RefreshStatus(time.Now().UTC())
	require.NoError(t, db.Create(&material).Error)
	return &material
}

// seedBatchedMaterial создает материал с одной партией
func seedBatchedMaterial(t *testing.T, db *gorm.DB, addedBy, batchNumber string, quantity int, expiry *time.Time) *models.Material {
	t.Helper()

	material := models.Material{
		Name:          "Физраствор 0.9%",
		Category:      models.CategoryConsumable,
		Unit:          "liters",
		MinStockLevel: 2,
		Source:        models.SourceVendor,
		AddedByID:     addedBy,
		Batches: []models.MaterialBatch{
			{
				BatchNumber: batchNumber,
				Quantity:    quantity,
				ExpiryDate:  expiry,
				Status:      models.BatchActive,
			},
		},
	}
	material.RefreshStatus(time.Now().UTC())
	require.NoError(t, db.Create(&material).Error)
	return &material
}
