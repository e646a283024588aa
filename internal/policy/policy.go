// Package policy holds the visibility and ownership rules for items.
// Every surface that exposes an item (rendered pages and the JSON API)
// goes through these decisions, so the rules live in one place.
package policy

import "github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"

// AnonymousID is the viewer id of an unauthenticated request.
const AnonymousID uint = 0

// Decision is the outcome of a view check.
type Decision int

const (
	Visible Decision = iota
	Forbidden
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Visible:
		return "visible"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// CanView decides whether viewerID may read item. A nil item means the
// record does not exist. Private items are readable by their owner only;
// everyone, anonymous included, may read public items.
func CanView(viewerID uint, item *model.Item) Decision {
	if item == nil {
		return NotFound
	}
	if !item.IsPrivate {
		return Visible
	}
	if viewerID != AnonymousID && viewerID == item.UserID {
		return Visible
	}
	return Forbidden
}

// CanModify reports whether viewerID may edit or delete item. Only the
// owner may mutate, public or not. Callers are expected to answer a
// failed modify exactly like a missing record: unlike viewing, mutation
// never discloses that the item exists.
func CanModify(viewerID uint, item *model.Item) bool {
	if item == nil || viewerID == AnonymousID {
		return false
	}
	return viewerID == item.UserID
}

// Listable reports whether item belongs in a list view for viewerID:
// public items always, private items only for their owner.
func Listable(viewerID uint, item model.Item) bool {
	return !item.IsPrivate || (viewerID != AnonymousID && viewerID == item.UserID)
}

// FilterListable keeps the items Listable for viewerID, preserving order.
func FilterListable(viewerID uint, items []model.Item) []model.Item {
	visible := make([]model.Item, 0, len(items))
	for _, item := range items {
		if Listable(viewerID, item) {
			visible = append(visible, item)
		}
	}
	return visible
}
