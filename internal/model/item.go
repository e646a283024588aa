package model

import "time"

// Item kinds. News and recipes share one table; the kind column keeps
// the two feeds apart and the image field is only used by recipes.
const (
	KindNews   = "news"
	KindRecipe = "recipe"
)

func ValidKind(kind string) bool {
	return kind == KindNews || kind == KindRecipe
}

type Item struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Kind     string `gorm:"size:16;not null;index" json:"kind"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageURL string `gorm:"size:255" json:"image_url,omitempty"`
	// No column default here: gorm drops zero-valued fields that carry a
	// default tag from the INSERT, which would flip explicitly public
	// items back to private. The service layer owns the default.
	IsPrivate   bool       `gorm:"not null" json:"is_private"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        *User      `json:"-"`
	Categories  []Category `gorm:"many2many:item_categories" json:"-"`
	CreatedDate time.Time  `json:"created_date"`
}

// OwnerName is the display name of the owning user when it was preloaded.
func (i Item) OwnerName() string {
	if i.User == nil {
		return ""
	}
	return i.User.Name
}
