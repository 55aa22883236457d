package services

import (
	"testing"
	"time"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorCRUD(t *testing.T) {
	db := newTestDB(t)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	svc := NewVendorService(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	vendor, err := svc.Create(VendorInput{
		Name: "МедТехСнаб", ContactPerson: "Петров П.П.", Email: "Sales@MedTech.Example",
		Categories:        []string{"Consumable", "Critical"},
		ContractStartDate: &start, ContractEndDate: &end,
		TaxID: "7707083893", AddedBy: manager.ID,
	})
	require.NoError(t, err)
	assert.True(t, vendor.IsActive)
	assert.Equal(t, "sales@medtech.example", vendor.Email)
	require.NotNil(t, vendor.AddedByID)
	assert.Equal(t, manager.ID, *vendor.AddedByID)

	// Категории и сроки контракта переживают запись в базу
	fresh, err := svc.Get(vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Consumable", "Critical"}, fresh.Categories)
	require.NotNil(t, fresh.ContractEndDate)

	// Контракт не может заканчиваться раньше начала
	_, err = svc.Create(VendorInput{
		Name: "Сомнительный", ContractStartDate: &end, ContractEndDate: &start,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	// Название уникально
	_, err = svc.Create(VendorInput{Name: "МедТехСнаб"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	updated, err := svc.Update(vendor.ID, VendorInput{Name: "МедТехСнаб", Phone: "+7 900 000-00-00"})
	require.NoError(t, err)
	assert.Equal(t, "+7 900 000-00-00", updated.Phone)

	require.NoError(t, svc.Deactivate(vendor.ID))

	active, err := svc.List(false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDepartmentCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewDepartmentService(db)

	dept, err := svc.Create(DepartmentInput{
		Name: "Кардиология", Floor: "3",
		ContactEmail: "Cardio@Hospital.Example", ContactPhone: "+7 495 000-00-00",
	})
	require.NoError(t, err)
	assert.Equal(t, "cardio@hospital.example", dept.ContactEmail)
	assert.Equal(t, "+7 495 000-00-00", dept.ContactPhone)

	_, err = svc.Create(DepartmentInput{Name: "Кардиология"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	require.NoError(t, svc.Deactivate(dept.ID))

	err = svc.Deactivate("00000000-0000-0000-0000-000000000000")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestActivityRecordAndList(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "admin@test.local", models.RoleAdmin)
	svc := NewActivityService(db)

	svc.Record(user.ID, ActivityLogin, "user", &user.ID, "вход в систему", "127.0.0.1")
	svc.Record(user.ID, ActivityCreateMaterial, "material", nil, "создан материал", "127.0.0.1")

	entries, total, err := svc.List(ActivityFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, entries, 2)

	logins, total, err := svc.List(ActivityFilter{Action: ActivityLogin})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, ActivityLogin, logins[0].Action)
}
