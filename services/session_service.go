package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

// SessionService owns the table session lifecycle. A table has at most
// one active token; Ensure either reuses it or atomically replaces it.
type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

type SessionGrant struct {
	Token     string
	ExpiresAt time.Time
}

// Ensure returns the table's current token when its remaining lifetime
// exceeds threshold, otherwise mints a new one valid for duration.
// The read-modify-write runs inside a row-locked transaction so two
// concurrent callers converge on a single winning token. When the
// transactional path fails on infrastructure, a non-atomic fallback
// update is attempted and logged as degraded.
func (s *SessionService) Ensure(tableID, restaurantID string, duration, threshold time.Duration) (*SessionGrant, error) {
	grant, err := s.ensureAtomic(tableID, restaurantID, duration, threshold)
	if err == nil {
		return grant, nil
	}

	var notFound *utils.NotFoundError
	var forbidden *utils.ForbiddenError
	if errors.As(err, &notFound) || errors.As(err, &forbidden) {
		return nil, err
	}

	utils.ErrorLogger.Printf("ensure session: atomic path failed for table %s, falling back to degraded update: %v", tableID, err)
	return s.ensureFallback(tableID, restaurantID, duration)
}

func (s *SessionService) ensureAtomic(tableID, restaurantID string, duration, threshold time.Duration) (*SessionGrant, error) {
	var grant *SessionGrant

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ? AND restaurant_id = ?", tableID, restaurantID)
		// SQLite serializes writers on its own and rejects FOR UPDATE;
		// the explicit row lock is a MySQL concern.
		if tx.Dialector.Name() != "sqlite" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var table models.Table
		if err := query.First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &utils.NotFoundError{Resource: "table"}
			}
			return &utils.TransientInfraError{Op: "lock table row", Err: err}
		}

		if !table.IsActive {
			return &utils.ForbiddenError{Reason: "table is inactive"}
		}

		now := time.Now()
		if table.HasValidSession(now) && table.SessionExpiresAt.Sub(now) > threshold {
			grant = &SessionGrant{Token: *table.SessionToken, ExpiresAt: *table.SessionExpiresAt}
			return nil
		}

		token := uuid.NewString()
		expiresAt := now.Add(duration)
		update := tx.Model(&models.Table{}).Where("id = ?", table.ID).Updates(map[string]interface{}{
			"session_token":      token,
			"session_expires_at": expiresAt,
		})
		if update.Error != nil {
			return &utils.TransientInfraError{Op: "rotate session token", Err: update.Error}
		}

		grant = &SessionGrant{Token: token, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// ensureFallback always mints a fresh token. Its read-then-write race
// window is accepted only because the caller already logged the
// degraded path; the ownership check still applies.
func (s *SessionService) ensureFallback(tableID, restaurantID string, duration time.Duration) (*SessionGrant, error) {
	var table models.Table
	if err := s.DB.Where("id = ? AND restaurant_id = ?", tableID, restaurantID).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &utils.NotFoundError{Resource: "table"}
		}
		return nil, &utils.TransientInfraError{Op: "load table", Err: err}
	}
	if !table.IsActive {
		return nil, &utils.ForbiddenError{Reason: "table is inactive"}
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(duration)
	update := s.DB.Model(&models.Table{}).Where("id = ? AND restaurant_id = ?", tableID, restaurantID).Updates(map[string]interface{}{
		"session_token":      token,
		"session_expires_at": expiresAt,
	})
	if update.Error != nil {
		return nil, &utils.TransientInfraError{Op: "fallback session update", Err: update.Error}
	}

	return &SessionGrant{Token: token, ExpiresAt: expiresAt}, nil
}

type RenewedTable struct {
	ID               string    `json:"id"`
	TableNumber      int       `json:"tableNumber"`
	SessionToken     string    `json:"sessionToken"`
	SessionExpiresAt time.Time `json:"sessionExpiresAt"`
}

// RenewAll rotates every table of the restaurant. The threshold equals
// the full duration, which no remaining lifetime can exceed, so each
// table gets a fresh token; only longer-lived persistent sessions are
// left untouched. Best-effort: tables that fail are logged with their
// id and omitted from the result rather than failing the batch.
func (s *SessionService) RenewAll(restaurantID string, duration time.Duration) ([]RenewedTable, error) {
	var tables []models.Table
	if err := s.DB.Where("restaurant_id = ?", restaurantID).Find(&tables).Error; err != nil {
		return nil, &utils.TransientInfraError{Op: "list tables", Err: err}
	}

	renewed := make([]RenewedTable, 0, len(tables))
	for _, table := range tables {
		grant, err := s.Ensure(table.ID, restaurantID, duration, duration)
		if err != nil {
			utils.ErrorLogger.Printf("renew-all: skipping table %s: %v", table.ID, err)
			continue
		}
		renewed = append(renewed, RenewedTable{
			ID:               table.ID,
			TableNumber:      table.TableNumber,
			SessionToken:     grant.Token,
			SessionExpiresAt: grant.ExpiresAt,
		})
	}
	return renewed, nil
}
