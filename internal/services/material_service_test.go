package services

import (
	"strings"
	"testing"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMaterialGeneratesSerial(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)

	svc := NewMaterialService(db)
	material, err := svc.Create(CreateMaterialInput{
		Name:     "Шприцы 5 мл",
		Category: models.CategoryConsumable,
		Quantity: 50,
		Unit:     "pcs",
		Source:   models.SourceVendor,
		AddedBy:  manager.ID,
	})
	require.NoError(t, err)

	require.NotNil(t, material.SerialNumber)
	assert.True(t, strings.HasPrefix(*material.SerialNumber, "MED-"))
	assert.Equal(t, models.StatusAvailable, material.Status)
}

func TestCreateMaterialDuplicateSerial(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)

	svc := NewMaterialService(db)
	serial := "MED-FIXED001"
	_, err := svc.Create(CreateMaterialInput{
		Name: "Бинты", Category: models.CategoryConsumable,
		SerialNumber: &serial, Quantity: 10, Unit: "pcs",
		Source: models.SourceVendor, AddedBy: manager.ID,
	})
	require.NoError(t, err)

	_, err = svc.Create(CreateMaterialInput{
		Name: "Бинты стерильные", Category: models.CategoryConsumable,
		SerialNumber: &serial, Quantity: 5, Unit: "pcs",
		Source: models.SourceVendor, AddedBy: manager.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))
}

func TestCreateMaterialWithBatches(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)

	future := time.Now().UTC().Add(90 * 24 * time.Hour)
	svc := NewMaterialService(db)
	material, err := svc.Create(CreateMaterialInput{
		Name: "Физраствор 0.9%", Category: models.CategoryConsumable,
		Unit: "liters", Source: models.SourceVendor, AddedBy: manager.ID,
		Batches: []BatchInput{
			{BatchNumber: "GL-01", Quantity: 20, ExpiryDate: &future},
			{BatchNumber: "GL-02", Quantity: 10},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 30, material.EffectiveQuantity())
	require.Len(t, material.Batches, 2)
	assert.Equal(t, models.BatchActive, material.Batches[0].Status)
}

func TestCreateMaterialInvalidCategory(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)

	svc := NewMaterialService(db)
	_, err := svc.Create(CreateMaterialInput{
		Name: "x", Category: "Unknown", Quantity: 1, Unit: "pcs",
		Source: models.SourceVendor, AddedBy: manager.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))
}

func TestUpdateMaterialRecomputesStatus(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	material := seedMaterial(t, db, manager.ID, 10, 2)

	svc := NewMaterialService(db)
	newMin := 15
	updated, err := svc.Update(material.ID, UpdateMaterialInput{
		MinStockLevel: &newMin, UpdatedBy: manager.ID,
	})
	require.NoError(t, err)

	// Порог поднялся выше остатка — статус пересчитан в Low Stock
	assert.Equal(t, models.StatusLowStock, updated.Status)
}

func TestUpdateQuantityBlockedForBatchedMaterial(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	material := seedBatchedMaterial(t, db, manager.ID, "B1", 10, nil)

	svc := NewMaterialService(db)
	qty := 99
	_, err := svc.Update(material.ID, UpdateMaterialInput{
		Quantity: &qty, UpdatedBy: manager.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))
}

func TestSoftDelete(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	material := seedMaterial(t, db, manager.ID, 10, 2)

	svc := NewMaterialService(db)
	require.NoError(t, svc.SoftDelete(material.ID, manager.ID))

	// Запись сохраняется, но исчезает из выдачи по умолчанию
	fresh, err := svc.Get(material.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, fresh.Status)

	list, total, err := svc.List(MaterialFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, list)

	withDeleted, total, err := svc.List(MaterialFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, withDeleted, 1)
}

func TestListSearch(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)

	svc := NewMaterialService(db)
	for _, name := range []string{"Перчатки нитриловые", "Перчатки латексные", "Шприцы 5 мл"} {
		_, err := svc.Create(CreateMaterialInput{
			Name: name, Category: models.CategoryConsumable, Quantity: 10, Unit: "pcs",
			Source: models.SourceVendor, AddedBy: manager.ID,
		})
		require.NoError(t, err)
	}

	list, total, err := svc.List(MaterialFilter{Search: "Перчатки"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)
}

func TestAddBatchDuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	material := seedBatchedMaterial(t, db, manager.ID, "B1", 10, nil)

	svc := NewMaterialService(db)
	_, err := svc.AddBatch(material.ID, BatchInput{BatchNumber: "B1", Quantity: 5})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	updated, err := svc.AddBatch(material.ID, BatchInput{BatchNumber: "B2", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.EffectiveQuantity())
}

func TestUpdateBatchExpiryChangesStatus(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	material := seedBatchedMaterial(t, db, manager.ID, "B1", 10, nil)

	svc := NewMaterialService(db)
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	updated, err := svc.UpdateBatch(material.ID, "B1", UpdateBatchInput{
		ExpiryDate: &yesterday,
	})
	require.NoError(t, err)

	// Просроченная партия переводит материал в Expired
	assert.Equal(t, models.StatusExpired, updated.Status)

	batch := updated.FindBatch("B1")
	require.NotNil(t, batch)
	assert.Equal(t, models.BatchExpired, batch.Status)
}

func TestExpiringSoon(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)

	svc := NewMaterialService(db)
	soon := time.Now().UTC().Add(10 * 24 * time.Hour)
	far := time.Now().UTC().Add(120 * 24 * time.Hour)

	_, err := svc.Create(CreateMaterialInput{
		Name: "Физраствор 0.9%", Category: models.CategoryConsumable,
		Unit: "liters", Source: models.SourceVendor, AddedBy: manager.ID,
		Batches: []BatchInput{
			{BatchNumber: "SOON", Quantity: 5, ExpiryDate: &soon},
			{BatchNumber: "FAR", Quantity: 5, ExpiryDate: &far},
		},
	})
	require.NoError(t, err)

	// Материал без партий со сроком годности тоже попадает в выборку
	_, err = svc.Create(CreateMaterialInput{
		Name: "Тест-полоски", Category: models.CategoryConsumable,
		Quantity: 3, Unit: "packs", ExpiryDate: &soon,
		Source: models.SourceVendor, AddedBy: manager.ID,
	})
	require.NoError(t, err)

	expiring, err := svc.ExpiringSoon(30)
	require.NoError(t, err)
	require.Len(t, expiring, 2)
	for _, e := range expiring {
		assert.LessOrEqual(t, e.DaysLeft, 30)
	}
}

func TestExpirySweep(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	yesterday := time.Now().UTC().Add(-24 * time.Hour)

	material := models.Material{
		Name:     "Антисептик",
		Category: models.CategoryConsumable,
		Unit:     "bottles",
		Source:   models.SourceVendor,
		AddedByID: manager.ID,
		Status:   models.StatusAvailable,
		Batches: []models.MaterialBatch{
			{BatchNumber: "OLD", Quantity: 4, ExpiryDate: &yesterday, Status: models.BatchActive},
		},
	}
	require.NoError(t, db.Create(&material).Error)

	svc := NewMaterialService(db)
	svc.ExpirySweep()

	var fresh models.Material
	require.NoError(t, db.Preload("Batches").First(&fresh, "id = ?", material.ID).Error)
	assert.Equal(t, models.StatusExpired, fresh.Status)
	assert.Equal(t, models.BatchExpired, fresh.Batches[0].Status)
}
