package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveQuantity(t *testing.T) {
	m := &Material{Quantity: 7}
	assert.Equal(t, 7, m.EffectiveQuantity())

	m.Batches = []MaterialBatch{
		{BatchNumber: "B1", Quantity: 3},
		{BatchNumber: "B2", Quantity: 4},
	}
	// При наличии партий скалярное Quantity игнорируется
	assert.Equal(t, 7, m.EffectiveQuantity())

	m.Batches[0].Quantity = 0
	assert.Equal(t, 4, m.EffectiveQuantity())
}

func TestDeriveStatusOrdering(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		material Material
		want     MaterialStatus
	}{
		{
			name:     "достаточный остаток",
			material: Material{Quantity: 10, MinStockLevel: 5, Status: StatusAvailable},
			want:     StatusAvailable,
		},
		{
			name:     "остаток на минимальном уровне",
			material: Material{Quantity: 5, MinStockLevel: 5, Status: StatusAvailable},
			want:     StatusLowStock,
		},
		{
			name:     "нулевой остаток",
			material: Material{Quantity: 0, MinStockLevel: 5, Status: StatusAvailable},
			want:     StatusIssued,
		},
		{
			name:     "просрочка перекрывает остаток",
			material: Material{Quantity: 10, MinStockLevel: 5, ExpiryDate: &yesterday, Status: StatusAvailable},
			want:     StatusExpired,
		},
		{
			name:     "нулевой просроченный остаток не считается просрочкой",
			material: Material{Quantity: 0, MinStockLevel: 5, ExpiryDate: &yesterday, Status: StatusAvailable},
			want:     StatusIssued,
		},
		{
			name:     "срок в будущем не влияет",
			material: Material{Quantity: 10, MinStockLevel: 5, ExpiryDate: &tomorrow, Status: StatusAvailable},
			want:     StatusAvailable,
		},
		{
			name: "просроченная партия перекрывает активную",
			material: Material{
				MinStockLevel: 2,
				Status:        StatusAvailable,
				Batches: []MaterialBatch{
					{BatchNumber: "B1", Quantity: 5, ExpiryDate: &tomorrow, Status: BatchActive},
					{BatchNumber: "B2", Quantity: 3, ExpiryDate: &yesterday, Status: BatchActive},
				},
			},
			want: StatusExpired,
		},
		{
			name: "исчерпанная просроченная партия не считается",
			material: Material{
				MinStockLevel: 2,
				Status:        StatusAvailable,
				Batches: []MaterialBatch{
					{BatchNumber: "B1", Quantity: 5, ExpiryDate: &tomorrow, Status: BatchActive},
					{BatchNumber: "B2", Quantity: 0, ExpiryDate: &yesterday, Status: BatchDepleted},
				},
			},
			want: StatusAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.material.DeriveStatus(now))
		})
	}
}

func TestDeriveStatusTerminalNotOverridden(t *testing.T) {
	now := time.Now().UTC()

	for _, status := range []MaterialStatus{StatusDeleted, StatusDisposed, StatusDamaged, StatusMaintenance} {
		m := Material{Quantity: 100, MinStockLevel: 5, Status: status}
		assert.Equal(t, status, m.DeriveStatus(now), "терминальный статус %s не должен пересчитываться", status)
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	now := time.Now().UTC()
	m := Material{Quantity: 3, MinStockLevel: 5, Status: StatusAvailable}

	first := m.DeriveStatus(now)
	m.Status = first
	second := m.DeriveStatus(now)
	assert.Equal(t, first, second)
	assert.Equal(t, StatusLowStock, second)
}

func TestCanBeIssued(t *testing.T) {
	issuable := []MaterialStatus{StatusAvailable, StatusLowStock, StatusIssued, StatusMaintenance}
	for _, status := range issuable {
		m := Material{Status: status}
		assert.True(t, m.CanBeIssued(), "статус %s", status)
	}

	blocked := []MaterialStatus{StatusDeleted, StatusExpired, StatusDamaged, StatusDisposed}
	for _, status := range blocked {
		m := Material{Status: status}
		assert.False(t, m.CanBeIssued(), "статус %s", status)
	}
}

func TestFindBatch(t *testing.T) {
	m := Material{
		Batches: []MaterialBatch{
			{BatchNumber: "B1", Quantity: 3},
			{BatchNumber: "B2", Quantity: 4},
		},
	}

	batch := m.FindBatch("B2")
	assert.NotNil(t, batch)
	assert.Equal(t, 4, batch.Quantity)
	assert.Nil(t, m.FindBatch("B3"))
}
