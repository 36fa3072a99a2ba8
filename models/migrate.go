package models

import "gorm.io/gorm"

// AutoMigrate legt alle Tabellen an bzw. passt sie an.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Project{},
		&Video{},
		&AcademicPaper{},
		&EBook{},
		&Repository{},
		&Interaction{},
	)
}
