package domain

// Category Model
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`          // Primary key
	Name string `gorm:"size:255;not null" json:"name"` // Label
}
