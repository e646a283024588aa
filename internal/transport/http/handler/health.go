package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db        *gorm.DB
	startedAt time.Time
}

func NewHealthHandler(db *gorm.DB, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startedAt: startedAt,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}
