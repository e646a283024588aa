package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/app"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/middleware"
)

// PagesHandler serves the rendered site: the feed, item pages and the
// item forms. All authorization goes through the item service, the same
// component the JSON API uses.
type PagesHandler struct {
	items      *app.ItemService
	activities *repository.ActivityRepository
}

func NewPagesHandler(items *app.ItemService, activities *repository.ActivityRepository) *PagesHandler {
	return &PagesHandler{
		items:      items,
		activities: activities,
	}
}

func (h *PagesHandler) Index(c *gin.Context) {
	kind := c.Query("kind")
	items, err := h.items.ListVisible(middleware.ViewerID(c), kind)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			h.renderError(c, http.StatusNotFound, "Страница не найдена")
			return
		}
		h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title": "Лента",
		"User":  middleware.UserFromContext(c),
		"Items": items,
		"Kind":  kind,
	})
}

func (h *PagesHandler) Show(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	item, err := h.items.Get(middleware.ViewerID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrItemForbidden):
			h.renderError(c, http.StatusForbidden, "Доступ запрещён: это приватная запись")
		case errors.Is(err, app.ErrItemNotFound):
			h.renderError(c, http.StatusNotFound, "Запись не найдена")
		default:
			h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		}
		return
	}

	c.HTML(http.StatusOK, "item.html", gin.H{
		"Title": item.Title,
		"User":  middleware.UserFromContext(c),
		"Item":  item,
	})
}

func (h *PagesHandler) ShowCreate(c *gin.Context) {
	c.HTML(http.StatusOK, "item_form.html", gin.H{
		"Title":  "Новая запись",
		"User":   middleware.UserFromContext(c),
		"Action": "/items/new",
	})
}

func (h *PagesHandler) Create(c *gin.Context) {
	input := h.bindItemForm(c)
	item, err := h.items.Create(middleware.ViewerID(c), app.CreateItemInput{
		Kind:     c.PostForm("kind"),
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: c.PostForm("image_url"),
		Private:  input.Private,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			c.HTML(http.StatusBadRequest, "item_form.html", gin.H{
				"Title":  "Новая запись",
				"User":   middleware.UserFromContext(c),
				"Action": "/items/new",
				"Error":  "Заполните заголовок и текст",
			})
			return
		}
		h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		return
	}

	c.Redirect(http.StatusFound, "/items/"+strconv.FormatUint(uint64(item.ID), 10))
}

func (h *PagesHandler) ShowEdit(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	item, err := h.items.GetOwned(middleware.ViewerID(c), id)
	if err != nil {
		if errors.Is(err, app.ErrItemNotFound) {
			// Not yours and not there look identical on purpose.
			h.renderError(c, http.StatusNotFound, "Запись не найдена")
			return
		}
		h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		return
	}

	c.HTML(http.StatusOK, "item_form.html", gin.H{
		"Title":  "Редактирование",
		"User":   middleware.UserFromContext(c),
		"Action": c.Request.URL.Path,
		"Item":   item,
	})
}

func (h *PagesHandler) Edit(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	input := h.bindItemForm(c)
	imageURL := c.PostForm("image_url")
	err := h.items.Update(middleware.ViewerID(c), id, app.UpdateItemInput{
		Title:    input.Title,
		Content:  input.Content,
		ImageURL: &imageURL,
		Private:  input.Private,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			c.HTML(http.StatusBadRequest, "item_form.html", gin.H{
				"Title":  "Редактирование",
				"User":   middleware.UserFromContext(c),
				"Action": c.Request.URL.Path,
				"Error":  "Заполните заголовок и текст",
			})
		case errors.Is(err, app.ErrItemNotFound):
			h.renderError(c, http.StatusNotFound, "Запись не найдена")
		default:
			h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		}
		return
	}

	c.Redirect(http.StatusFound, "/items/"+strconv.FormatUint(uint64(id), 10))
}

func (h *PagesHandler) Delete(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.items.Delete(middleware.ViewerID(c), id); err != nil {
		if errors.Is(err, app.ErrItemNotFound) {
			h.renderError(c, http.StatusNotFound, "Запись не найдена")
			return
		}
		h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *PagesHandler) Profile(c *gin.Context) {
	user := middleware.UserFromContext(c)
	activities, err := h.activities.ListByUserID(user.ID, 20)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Что-то пошло не так")
		return
	}

	c.HTML(http.StatusOK, "profile.html", gin.H{
		"Title":      user.Name,
		"User":       user,
		"Activities": activities,
	})
}

type itemForm struct {
	Title   string
	Content string
	Private *bool
}

// bindItemForm reads the shared title/content/visibility fields. The
// checkbox maps to an explicit bool so an unchecked box on the edit form
// publishes the item rather than being ignored.
func (h *PagesHandler) bindItemForm(c *gin.Context) itemForm {
	private := c.PostForm("is_private") != ""
	return itemForm{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Private: &private,
	}
}

func (h *PagesHandler) itemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.renderError(c, http.StatusNotFound, "Запись не найдена")
		return 0, false
	}
	return uint(id), true
}

func (h *PagesHandler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   "Ошибка",
		"User":    middleware.UserFromContext(c),
		"Status":  status,
		"Message": message,
	})
}
