package models

// User ist ein registrierter Nutzer.
type User struct {
	Base

	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (User) TableName() string {
	return "users"
}
