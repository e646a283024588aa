package model

// Category is carried over from the original schema. No route reads or
// writes it yet; the association table exists for future labeling.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null;uniqueIndex" json:"name"`
}
