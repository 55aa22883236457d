package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"medstock/server/internal/config"
	"medstock/server/internal/database"
	"medstock/server/internal/models"
)

// Скрипт наполняет базу демонстрационными данными:
// администратор, отделения, поставщики и несколько материалов с партиями.
// Запуск: go run scripts/seed_demo_data.go
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ .env файл не найден, используем переменные окружения системы")
	}

	cfg := config.Load()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к PostgreSQL: %v", err)
	}
	defer database.ClosePostgres(db)

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Ошибка миграции: %v", err)
	}

	// Администратор
	admin := models.User{
		Name:     "Администратор",
		Email:    "admin@medstock.local",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword("admin123"); err != nil {
		log.Fatalf("❌ Ошибка хеширования пароля: %v", err)
	}
	var existing models.User
	if err := db.Where("email = ?", admin.Email).First(&existing).Error; err == nil {
		log.Printf("ℹ️ Администратор уже существует: %s", existing.Email)
		admin = existing
	} else {
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("❌ Ошибка создания администратора: %v", err)
		}
		log.Printf("✅ Администратор создан: %s / admin123", admin.Email)
	}

	// Кладовщик
	manager := models.User{
		Name:     "Заведующий складом",
		Email:    "store@medstock.local",
		Role:     models.RoleStoreManager,
		IsActive: true,
	}
	if err := manager.SetPassword("store123"); err == nil {
		var m models.User
		if err := db.Where("email = ?", manager.Email).First(&m).Error; err != nil {
			if err := db.Create(&manager).Error; err == nil {
				log.Printf("✅ Кладовщик создан: %s / store123", manager.Email)
			}
		} else {
			manager = m
		}
	}

	// Отделения
	departments := []models.Department{
		{Name: "Хирургия", Floor: "3", IsActive: true},
		{Name: "Терапия", Floor: "2", IsActive: true},
		{Name: "Реанимация", Floor: "1", IsActive: true},
	}
	for i := range departments {
		d := &departments[i]
		var count int64
		db.Model(&models.Department{}).Where("name = ?", d.Name).Count(&count)
		if count == 0 {
			if err := db.Create(d).Error; err == nil {
				log.Printf("✅ Отделение создано: %s", d.Name)
			}
		}
	}

	// Поставщики
	vendors := []models.Vendor{
		{Name: "МедТехСнаб", ContactPerson: "Иванова А.П.", Phone: "+7 900 111-22-33", IsActive: true},
		{Name: "ФармаОпт", ContactPerson: "Петров С.В.", Phone: "+7 900 444-55-66", IsActive: true},
	}
	for i := range vendors {
		v := &vendors[i]
		var count int64
		db.Model(&models.Vendor{}).Where("name = ?", v.Name).Count(&count)
		if count == 0 {
			if err := db.Create(v).Error; err == nil {
				log.Printf("✅ Поставщик создан: %s", v.Name)
			}
		}
	}

	var vendor models.Vendor
	db.Where("name = ?", "МедТехСнаб").First(&vendor)

	// Материалы
	now := time.Now().UTC()
	in6Months := now.AddDate(0, 6, 0)
	in1Month := now.AddDate(0, 1, 0)

	serial1 := "MED-DEMO001"
	gloves := models.Material{
		Name:          "Перчатки нитриловые",
		Category:      models.CategoryConsumable,
		SerialNumber:  &serial1,
		Unit:          "boxes",
		MinStockLevel: 10,
		Source:        models.SourceVendor,
		VendorID:      &vendor.ID,
		StorageArea:   "A",
		Shelf:         "1",
		AddedByID:     admin.ID,
		Batches: []models.MaterialBatch{
			{BatchNumber: "GL-2026-01", Quantity: 40, ExpiryDate: &in6Months, Status: models.BatchActive},
			{BatchNumber: "GL-2026-02", Quantity: 15, ExpiryDate: &in1Month, Status: models.BatchActive},
		},
	}
	gloves.RefreshStatus(now)

	serial2 := "MED-DEMO002"
	scalpels := models.Material{
		Name:          "Скальпель одноразовый",
		Category:      models.CategoryCritical,
		SerialNumber:  &serial2,
		Quantity:      120,
		Unit:          "pieces",
		MinStockLevel: 20,
		Source:        models.SourceVendor,
		VendorID:      &vendor.ID,
		StorageArea:   "B",
		Shelf:         "4",
		AddedByID:     admin.ID,
	}
	scalpels.RefreshStatus(now)

	for _, m := range []models.Material{gloves, scalpels} {
		var count int64
		db.Model(&models.Material{}).Where("serial_number = ?", *m.SerialNumber).Count(&count)
		if count == 0 {
			if err := db.Create(&m).Error; err == nil {
				log.Printf("✅ Материал создан: %s (остаток: %d)", m.Name, m.EffectiveQuantity())
			} else {
				log.Printf("⚠️ Ошибка создания материала %s: %v", m.Name, err)
			}
		}
	}

	log.Println("🎉 Демо-данные загружены")
}
