// Package response defines the wire shapes of the item API.
package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// Item is the public representation of an item record.
type Item struct {
	ID          uint   `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	UserID      uint   `json:"user_id"`
	IsPrivate   bool   `json:"is_private"`
	CreatedDate string `json:"created_date"`
	OwnerName   string `json:"owner_name"`
	ImageURL    string `json:"image_url,omitempty"`
}

func NewItem(item model.Item) Item {
	return Item{
		ID:          item.ID,
		Kind:        item.Kind,
		Title:       item.Title,
		Content:     item.Content,
		UserID:      item.UserID,
		IsPrivate:   item.IsPrivate,
		CreatedDate: item.CreatedDate.Format(timeLayout),
		OwnerName:   item.OwnerName(),
		ImageURL:    item.ImageURL,
	}
}

func NewItems(items []model.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, NewItem(item))
	}
	return out
}

// Success is the OK body the original API spoke.
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": "OK"})
}

// Message writes a {"message": ...} body with the given status.
func Message(c *gin.Context, status int, format string, args ...interface{}) {
	c.JSON(status, gin.H{"message": fmt.Sprintf(format, args...)})
}

// NotFoundItem is the canonical missing-item body. Unauthorized
// mutations reuse it so they cannot be told apart from a missing id.
func NotFoundItem(c *gin.Context, id uint) {
	Message(c, http.StatusNotFound, "item %d not found", id)
}

// AccessDenied is the distinct body for reading a private item that
// belongs to someone else.
func AccessDenied(c *gin.Context) {
	Message(c, http.StatusForbidden, "access denied")
}
