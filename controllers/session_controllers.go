package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mesalink/mesalink/config"
	"github.com/mesalink/mesalink/services"
)

type SessionController struct {
	Cfg     *config.Config
	Service *services.SessionService
}

func NewSessionController(db *gorm.DB, cfg *config.Config) *SessionController {
	return &SessionController{
		Cfg:     cfg,
		Service: services.NewSessionService(db),
	}
}

// CreateSession handles POST /sessions: the idempotent ensure
// operation diners hit on page load.
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurantId" binding:"required,uuid"`
		TableID      string `json:"tableId" binding:"required,uuid"`
		Persistent   bool   `json:"persistent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	profile := sc.Cfg.ProfileFor(req.TableID, req.Persistent)
	grant, err := sc.Service.Ensure(req.TableID, req.RestaurantID, profile.Duration, profile.RenewThreshold)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionToken": grant.Token,
		"expiresAt":    grant.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// RenewAllSessions handles POST /sessions/renew-all: force-rotates
// every table so the owner can reprint QR slips in one pass.
func (sc *SessionController) RenewAllSessions(c *gin.Context) {
	var req struct {
		RestaurantID string `json:"restaurantId" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	renewed, err := sc.Service.RenewAll(req.RestaurantID, sc.Cfg.StandardSession.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": renewed})
}
