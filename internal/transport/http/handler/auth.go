package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/app"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/middleware"
)

// AuthHandler serves the register/login/logout pages.
type AuthHandler struct {
	authService    *app.AuthService
	rememberMaxAge int
}

func NewAuthHandler(authService *app.AuthService, rememberMaxAge int) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		rememberMaxAge: rememberMaxAge,
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"Title": "Регистрация",
		"User":  middleware.UserFromContext(c),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	input := app.RegisterInput{
		Name:          c.PostForm("name"),
		About:         c.PostForm("about"),
		Email:         c.PostForm("email"),
		Password:      c.PostForm("password"),
		PasswordAgain: c.PostForm("password_again"),
	}

	if _, err := h.authService.Register(input); err != nil {
		message := "Не удалось зарегистрироваться"
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, app.ErrPasswordMismatch):
			message, status = "Пароли не совпадают", http.StatusBadRequest
		case errors.Is(err, app.ErrEmailExists):
			message, status = "Такой пользователь уже есть", http.StatusBadRequest
		case errors.Is(err, app.ErrInvalidInput):
			message, status = "Заполните все обязательные поля", http.StatusBadRequest
		}
		c.HTML(status, "register.html", gin.H{
			"Title": "Регистрация",
			"Error": message,
			"Form":  input,
		})
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title": "Авторизация",
		"User":  middleware.UserFromContext(c),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	input := app.LoginInput{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Remember: c.PostForm("remember") != "",
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Неправильный логин или пароль"
		if errors.Is(err, app.ErrInvalidInput) {
			status = http.StatusBadRequest
			message = "Введите почту и пароль"
		} else if !errors.Is(err, app.ErrInvalidCredential) {
			status = http.StatusInternalServerError
			message = "Не удалось войти"
		}
		c.HTML(status, "login.html", gin.H{
			"Title": "Авторизация",
			"Error": message,
			"Email": input.Email,
		})
		return
	}

	// A session cookie by default; remember-me gets an expiry matching
	// the long redis TTL.
	maxAge := 0
	if result.Remember {
		maxAge = h.rememberMaxAge
	}
	c.SetCookie(middleware.SessionCookieName, result.Token, maxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		_ = h.authService.Logout(c.Request.Context(), token)
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}
