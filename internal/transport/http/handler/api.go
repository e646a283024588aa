package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/app"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/middleware"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/response"
)

// APIHandler is the JSON item interface. It runs on the same services
// as the rendered pages, so the visibility rules cannot drift between
// the two surfaces.
type APIHandler struct {
	authService *app.AuthService
	itemService *app.ItemService
}

type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateItemRequest struct {
	Kind      string `json:"kind"`
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	ImageURL  string `json:"image_url"`
	IsPrivate *bool  `json:"is_private" binding:"required"`
	UserID    uint   `json:"user_id"`
}

func NewAPIHandler(authService *app.AuthService, itemService *app.ItemService) *APIHandler {
	return &APIHandler{
		authService: authService,
		itemService: itemService,
	}
}

func (h *APIHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.authService.APIToken(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredential) || errors.Is(err, app.ErrInvalidInput) {
			response.Message(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		response.Message(c, http.StatusInternalServerError, "token generation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *APIHandler) List(c *gin.Context) {
	items, err := h.itemService.ListVisible(middleware.ViewerID(c), c.Query("kind"))
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Message(c, http.StatusBadRequest, "unknown item kind")
			return
		}
		response.Message(c, http.StatusInternalServerError, "list items failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": response.NewItems(items)})
}

func (h *APIHandler) Get(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	item, err := h.itemService.Get(middleware.ViewerID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrItemNotFound):
			response.NotFoundItem(c, id)
		case errors.Is(err, app.ErrItemForbidden):
			response.AccessDenied(c)
		default:
			response.Message(c, http.StatusInternalServerError, "get item failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": response.NewItem(*item)})
}

func (h *APIHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "title, content and is_private are required")
		return
	}

	viewerID := middleware.ViewerID(c)
	// The owner comes from the token. A user_id in the body is accepted
	// for compatibility but must agree with it.
	if req.UserID != 0 && req.UserID != viewerID {
		response.Message(c, http.StatusForbidden, "user_id does not match the token")
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = model.KindNews
	}

	if _, err := h.itemService.Create(viewerID, app.CreateItemInput{
		Kind:     kind,
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Private:  req.IsPrivate,
	}); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Message(c, http.StatusBadRequest, "invalid item payload")
			return
		}
		response.Message(c, http.StatusInternalServerError, "create item failed")
		return
	}

	response.Success(c)
}

func (h *APIHandler) Delete(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(middleware.ViewerID(c), id); err != nil {
		if errors.Is(err, app.ErrItemNotFound) {
			response.NotFoundItem(c, id)
			return
		}
		response.Message(c, http.StatusInternalServerError, "delete item failed")
		return
	}

	response.Success(c)
}

func (h *APIHandler) itemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Message(c, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return uint(id), true
}
