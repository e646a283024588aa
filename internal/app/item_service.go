package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/pkg/timeutil"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/policy"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrItemForbidden = errors.New("access denied")
)

// ActivityPublisher forwards audit events to the broker. Publishing is
// best-effort: a broker outage must not fail the user's request.
type ActivityPublisher interface {
	Publish(ctx context.Context, activity model.Activity) error
}

type ItemService struct {
	itemRepo  *repository.ItemRepository
	publisher ActivityPublisher
}

type CreateItemInput struct {
	Kind     string
	Title    string
	Content  string
	ImageURL string
	// Private defaults to true when not given: items stay private until
	// the owner publishes them.
	Private *bool
}

type UpdateItemInput struct {
	Title    string
	Content  string
	ImageURL *string
	Private  *bool
}

func NewItemService(itemRepo *repository.ItemRepository, publisher ActivityPublisher) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		publisher: publisher,
	}
}

// ListVisible returns the items viewerID may see in a feed, newest
// first. Kind filters to news or recipes; empty lists both.
func (s *ItemService) ListVisible(viewerID uint, kind string) ([]model.Item, error) {
	if kind != "" && !model.ValidKind(kind) {
		return nil, ErrInvalidInput
	}
	items, err := s.itemRepo.List(kind)
	if err != nil {
		return nil, err
	}
	return policy.FilterListable(viewerID, items), nil
}

// Get returns the item when viewerID may read it. A private item read by
// anyone but its owner is ErrItemForbidden; a missing id is
// ErrItemNotFound. The two stay distinct on purpose.
func (s *ItemService) Get(viewerID, id uint) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	switch policy.CanView(viewerID, item) {
	case policy.Visible:
		return item, nil
	case policy.Forbidden:
		return nil, ErrItemForbidden
	default:
		return nil, ErrItemNotFound
	}
}

// GetOwned returns the item only for its owner, for edit forms. Missing
// and not-owned both come back as ErrItemNotFound: mutation paths never
// reveal that a foreign item exists.
func (s *ItemService) GetOwned(viewerID, id uint) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(viewerID, item) {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *ItemService) Create(ownerID uint, input CreateItemInput) (*model.Item, error) {
	if ownerID == policy.AnonymousID {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" || !model.ValidKind(input.Kind) {
		return nil, ErrInvalidInput
	}

	private := true
	if input.Private != nil {
		private = *input.Private
	}

	item := &model.Item{
		Kind:        input.Kind,
		Title:       title,
		Content:     content,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		IsPrivate:   private,
		UserID:      ownerID,
		CreatedDate: timeutil.RoundToMinute(time.Now()),
	}
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	s.recordActivity(ownerID, model.ActionItemCreated, item.ID, item.Kind, item.Title)
	return item, nil
}

// Update mutates title, content, visibility and image. created_date is
// deliberately not updatable. Non-owner and missing ids are both
// ErrItemNotFound.
func (s *ItemService) Update(viewerID, id uint, input UpdateItemInput) error {
	if viewerID == policy.AnonymousID {
		return ErrItemNotFound
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return ErrInvalidInput
	}

	fields := map[string]interface{}{
		"title":   title,
		"content": content,
	}
	if input.Private != nil {
		fields["is_private"] = *input.Private
	}
	if input.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*input.ImageURL)
	}

	ok, err := s.itemRepo.UpdateOwned(id, viewerID, fields)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}

	s.recordActivity(viewerID, model.ActionItemUpdated, id, "", title)
	return nil
}

// Delete removes the item for its owner; anyone else gets the same
// ErrItemNotFound a missing id would produce.
func (s *ItemService) Delete(viewerID, id uint) error {
	if viewerID == policy.AnonymousID {
		return ErrItemNotFound
	}

	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !policy.CanModify(viewerID, item) {
		return ErrItemNotFound
	}

	ok, err := s.itemRepo.DeleteOwned(id, viewerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}

	s.recordActivity(viewerID, model.ActionItemDeleted, id, item.Kind, item.Title)
	return nil
}

func (s *ItemService) recordActivity(userID uint, action string, itemID uint, kind, title string) {
	if s.publisher == nil {
		return
	}
	activity := model.Activity{
		UserID:      userID,
		Action:      action,
		ItemID:      itemID,
		ItemKind:    kind,
		Title:       title,
		CreatedDate: timeutil.RoundToMinute(time.Now()),
	}
	if err := s.publisher.Publish(context.Background(), activity); err != nil {
		log.Printf("publish activity failed: %v", err)
	}
}
