package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appsvc "github.com/Gandalf-Rus/Yandex-lyceum-web/internal/app"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/config"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/session"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/handler"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/middleware"
)

// Deps carries everything the router needs. Handlers receive their
// collaborators here once, at construction, instead of reaching for
// process globals.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Sessions     *session.Store
	Publisher    appsvc.ActivityPublisher
	TemplateGlob string
	StartedAt    time.Time
}

func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(deps.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.LoadHTMLGlob(deps.TemplateGlob)

	userRepo := repository.NewUserRepository(deps.DB)
	itemRepo := repository.NewItemRepository(deps.DB)
	activityRepo := repository.NewActivityRepository(deps.DB)

	authService := appsvc.NewAuthService(
		userRepo,
		deps.Sessions,
		deps.Config.Auth.JWTSecret,
		time.Duration(deps.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	itemService := appsvc.NewItemService(itemRepo, deps.Publisher)

	rememberMaxAge := deps.Config.Auth.RememberTTLHour * 3600
	authHandler := handler.NewAuthHandler(authService, rememberMaxAge)
	pagesHandler := handler.NewPagesHandler(itemService, activityRepo)
	apiHandler := handler.NewAPIHandler(authService, itemService)
	healthHandler := handler.NewHealthHandler(deps.DB, deps.StartedAt)

	router.GET("/healthz", healthHandler.Check)

	pages := router.Group("/", middleware.CurrentUser(deps.Sessions, userRepo))
	pages.GET("", pagesHandler.Index)
	pages.GET("/items/:id", pagesHandler.Show)
	pages.GET("/register", authHandler.ShowRegister)
	pages.POST("/register", authHandler.Register)
	pages.GET("/login", authHandler.ShowLogin)
	pages.POST("/login", authHandler.Login)
	pages.GET("/logout", authHandler.Logout)

	authed := pages.Group("", middleware.RequireLogin())
	authed.GET("/items/new", pagesHandler.ShowCreate)
	authed.POST("/items/new", pagesHandler.Create)
	authed.GET("/items/:id/edit", pagesHandler.ShowEdit)
	authed.POST("/items/:id/edit", pagesHandler.Edit)
	authed.POST("/items/:id/delete", pagesHandler.Delete)
	authed.GET("/profile", pagesHandler.Profile)

	api := router.Group("/api", cors.Default())
	api.POST("/auth/token", apiHandler.Token)

	secret := deps.Config.Auth.JWTSecret
	api.GET("/items", middleware.APIAuth(secret, false), apiHandler.List)
	api.GET("/items/:id", middleware.APIAuth(secret, false), apiHandler.Get)
	api.POST("/items", middleware.APIAuth(secret, true), apiHandler.Create)
	api.DELETE("/items/:id", middleware.APIAuth(secret, true), apiHandler.Delete)

	return router
}
