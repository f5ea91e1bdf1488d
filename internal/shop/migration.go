package shop

import "gorm.io/gorm"

func RunMigration(db *gorm.DB) error {
	return db.AutoMigrate(
		&TelegramUser{},
		&Category{},
		&Subcategory{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&Delivery{},
	)
}
