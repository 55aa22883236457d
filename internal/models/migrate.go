package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate создает/обновляет все таблицы системы
func AutoMigrate(db *gorm.DB) error {
	log.Println("🔄 Запуск миграций базы данных...")

	err := db.AutoMigrate(
		&User{},
		&Department{},
		&Vendor{},
		&Material{},
		&MaterialBatch{},
		&MaterialRequest{},
		&MovementLog{},
		&ActivityLog{},
	)
	if err != nil {
		return err
	}

	log.Println("✅ Миграции выполнены успешно")
	return nil
}
