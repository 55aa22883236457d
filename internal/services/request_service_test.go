package services

import (
	"testing"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRequest(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	dept := seedDepartment(t, db, "Хирургия")
	material := seedMaterial(t, db, doctor.ID, 10, 2)

	svc := NewRequestService(db, NewInventoryService(db))
	request, err := svc.Submit(SubmitRequestInput{
		MaterialID:   material.ID,
		Quantity:     3,
		DepartmentID: dept.ID,
		Purpose:      "Плановая операция",
		RequestedBy:  doctor.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, request.Status)
	// Приоритет по умолчанию — Medium
	assert.Equal(t, models.PriorityMedium, request.Priority)
	assert.Nil(t, request.ApprovedAt)
}

func TestSubmitRequestValidation(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	dept := seedDepartment(t, db, "Хирургия")
	material := seedMaterial(t, db, doctor.ID, 5, 2)

	svc := NewRequestService(db, NewInventoryService(db))

	_, err := svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 0, DepartmentID: dept.ID,
		Purpose: "x", RequestedBy: doctor.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	_, err = svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 1, DepartmentID: dept.ID,
		Purpose: "", RequestedBy: doctor.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	// Запрошено больше, чем есть на складе
	_, err = svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 6, DepartmentID: dept.ID,
		Purpose: "x", RequestedBy: doctor.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))
}

func TestApproveRequestIssuesMaterial(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	dept := seedDepartment(t, db, "Терапия")
	material := seedMaterial(t, db, manager.ID, 10, 2)

	inventory := NewInventoryService(db)
	svc := NewRequestService(db, inventory)

	request, err := svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 4, DepartmentID: dept.ID,
		Purpose: "Нужды отделения", RequestedBy: doctor.ID,
	})
	require.NoError(t, err)

	decided, err := svc.Decide(request.ID, DecideRequestInput{
		Decision: models.RequestApproved, ApproverID: manager.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestApproved, decided.Status)
	require.NotNil(t, decided.ApprovedByID)
	assert.Equal(t, manager.ID, *decided.ApprovedByID)
	require.NotNil(t, decided.ApprovedAt)

	// Одобрение списывает остаток и пишет запись в журнал движений
	var fresh models.Material
	require.NoError(t, db.First(&fresh, "id = ?", material.ID).Error)
	assert.Equal(t, 6, fresh.Quantity)

	var movement models.MovementLog
	require.NoError(t, db.First(&movement, "request_id = ?", request.ID).Error)
	assert.Equal(t, models.ActionIssued, movement.Action)
	assert.Equal(t, 4, movement.Quantity)
	require.NotNil(t, movement.AssignedToID)
	assert.Equal(t, doctor.ID, *movement.AssignedToID)
}

func TestRejectRequestRequiresReason(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	dept := seedDepartment(t, db, "Терапия")
	material := seedMaterial(t, db, manager.ID, 10, 2)

	svc := NewRequestService(db, NewInventoryService(db))
	request, err := svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 2, DepartmentID: dept.ID,
		Purpose: "x", RequestedBy: doctor.ID,
	})
	require.NoError(t, err)

	_, err = svc.Decide(request.ID, DecideRequestInput{
		Decision: models.RequestRejected, ApproverID: manager.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationError))

	// Заявка осталась Pending, журнал пуст
	fresh, err := svc.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, fresh.Status)

	var count int64
	require.NoError(t, db.Model(&models.MovementLog{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRejectRequestKeepsStock(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	dept := seedDepartment(t, db, "Терапия")
	material := seedMaterial(t, db, manager.ID, 10, 2)

	svc := NewRequestService(db, NewInventoryService(db))
	request, err := svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 2, DepartmentID: dept.ID,
		Purpose: "x", RequestedBy: doctor.ID,
	})
	require.NoError(t, err)

	decided, err := svc.Decide(request.ID, DecideRequestInput{
		Decision:        models.RequestRejected,
		RejectionReason: "Недостаточное обоснование",
		ApproverID:      manager.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestRejected, decided.Status)
	require.NotNil(t, decided.RejectionReason)

	// Отклонение не заполняет поля одобрения
	var freshRequest models.MaterialRequest
	require.NoError(t, db.First(&freshRequest, "id = ?", request.ID).Error)
	assert.Nil(t, freshRequest.ApprovedByID)
	assert.Nil(t, freshRequest.ApprovedAt)

	var fresh models.Material
	require.NoError(t, db.First(&fresh, "id = ?", material.ID).Error)
	assert.Equal(t, 10, fresh.Quantity)
}

func TestDecideTwiceFails(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	dept := seedDepartment(t, db, "Терапия")
	material := seedMaterial(t, db, manager.ID, 10, 2)

	svc := NewRequestService(db, NewInventoryService(db))
	request, err := svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 2, DepartmentID: dept.ID,
		Purpose: "x", RequestedBy: doctor.ID,
	})
	require.NoError(t, err)

	_, err = svc.Decide(request.ID, DecideRequestInput{
		Decision: models.RequestApproved, ApproverID: manager.ID,
	})
	require.NoError(t, err)

	_, err = svc.Decide(request.ID, DecideRequestInput{
		Decision: models.RequestApproved, ApproverID: manager.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyProcessed))

	// Повторное одобрение не списывает остаток и не пишет вторую запись в журнал
	var fresh models.Material
	require.NoError(t, db.First(&fresh, "id = ?", material.ID).Error)
	assert.Equal(t, 8, fresh.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.MovementLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApproveFailsWhenStockGone(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	manager := seedUser(t, db, "store@test.local", models.RoleStoreManager)
	dept := seedDepartment(t, db, "Терапия")
	material := seedMaterial(t, db, manager.ID, 5, 1)

	inventory := NewInventoryService(db)
	svc := NewRequestService(db, inventory)

	request, err := svc.Submit(SubmitRequestInput{
		MaterialID: material.ID, Quantity: 4, DepartmentID: dept.ID,
		Purpose: "x", RequestedBy: doctor.ID,
	})
	require.NoError(t, err)

	// Пока заявка ждала решения, склад опустел
	_, err = inventory.Issue(IssueInput{
		MaterialID: material.ID, Quantity: 3,
		ToDepartment: "Реанимация", Purpose: "Срочно", PerformedBy: manager.ID,
	})
	require.NoError(t, err)

	_, err = svc.Decide(request.ID, DecideRequestInput{
		Decision: models.RequestApproved, ApproverID: manager.ID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientStock))

	// Неудачное одобрение не меняет статус заявки
	fresh, err := svc.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, fresh.Status)
}

func TestRequestList(t *testing.T) {
	db := newTestDB(t)
	doctor := seedUser(t, db, "doctor@test.local", models.RoleDoctor)
	staff := seedUser(t, db, "staff@test.local", models.RoleStaff)
	dept := seedDepartment(t, db, "Терапия")
	material := seedMaterial(t, db, doctor.ID, 20, 2)

	svc := NewRequestService(db, NewInventoryService(db))
	for _, userID := range []string{doctor.ID, doctor.ID, staff.ID} {
		_, err := svc.Submit(SubmitRequestInput{
			MaterialID: material.ID, Quantity: 1, DepartmentID: dept.ID,
			Purpose: "x", RequestedBy: userID,
		})
		require.NoError(t, err)
	}

	all, total, err := svc.List(RequestFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	mine, total, err := svc.List(RequestFilter{RequestedBy: doctor.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)
}
