package services

import (
	"time"

	"medstock/server/internal/models"
)

// Типы оповещений склада
const (
	AlertLowStock = "low_stock"
	AlertExpired  = "expired"
	AlertIssued   = "issued"
	AlertDisposed = "disposed"
)

// StockAlert — оповещение о состоянии склада для подключенных дашбордов
type StockAlert struct {
	Type         string                `json:"type"`
	MaterialID   string                `json:"material_id"`
	MaterialName string                `json:"material_name"`
	Quantity     int                   `json:"quantity"`
	Status       models.MaterialStatus `json:"status"`
	Message      string                `json:"message"`
	Timestamp    time.Time             `json:"timestamp"`
}

// StockNotifier рассылает оповещения (реализуется WebSocket-хабом).
// Сервисы терпимы к nil: без хаба оповещения просто не отправляются.
type StockNotifier interface {
	NotifyStockAlert(alert StockAlert)
}
