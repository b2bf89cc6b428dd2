package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"gorm.io/gorm"
)

// SessionService runs the session lifecycle: in_progress → completed | cancelled,
// both terminal. Movements only land through AddMovement, which delegates to
// the inventory engine; cancellation reverses every movement through the
// engine as one transaction, appending compensating ledger entries.
type SessionService interface {
	Create(ctx context.Context, req dto.CreateSessionRequest, actor Actor) (*dto.SessionResponse, error)
	AddMovement(ctx context.Context, sessionID string, req dto.AddMovementRequest, actor Actor) (*dto.TransactionResponse, error)
	Complete(ctx context.Context, sessionID string, actor Actor) (*dto.SessionResponse, error)
	Cancel(ctx context.Context, sessionID string, actor Actor) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	List(ctx context.Context, filter dto.SessionFilter) (*dto.SessionListResponse, error)
}

type sessionService struct {
	repo         repository.SessionRepository
	locationRepo repository.LocationRepository
	inventory    InventoryService
	db           *gorm.DB
	auditor      audit.Recorder
}

func NewSessionService(
	repo repository.SessionRepository,
	locationRepo repository.LocationRepository,
	inventory InventoryService,
	db *gorm.DB,
	auditor audit.Recorder,
) SessionService {
	return &sessionService{
		repo:         repo,
		locationRepo: locationRepo,
		inventory:    inventory,
		db:           db,
		auditor:      auditor,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *sessionService) Create(ctx context.Context, req dto.CreateSessionRequest, actor Actor) (*dto.SessionResponse, error) {
	sessionType := model.SessionType(req.Type)
	if !sessionType.Valid() {
		return nil, fmt.Errorf("unknown session type %q: %w", req.Type, serviceerr.ErrInvalidInput)
	}
	location, err := s.locationRepo.FindByID(ctx, req.LocationID)
	if err != nil {
		return nil, asNotFound(err, "location", req.LocationID)
	}

	session := &model.Session{
		ID:         ident.New(ident.PrefixSession),
		Type:       sessionType,
		Status:     model.SessionInProgress,
		LocationID: req.LocationID,
		CreatedBy:  actor.ID,
		Notes:      req.Notes,
		StartedAt:  time.Now().UTC(),
		Location:   location,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor.ID, "session.create", "session", session.ID, map[string]interface{}{
		"type":        req.Type,
		"location_id": req.LocationID,
	}, actor.Origin)

	return sessionToResponse(session), nil
}

// ── AddMovement ──────────────────────────────────────────────────────────────

// AddMovement derives the transaction type from the session type: a check_in
// session credits the session's location, every other type debits it. The
// session row is locked inside the movement's transaction, so a concurrent
// cancellation either sees the movement or rejects it — never half of it.
func (s *sessionService) AddMovement(ctx context.Context, sessionID string, req dto.AddMovementRequest, actor Actor) (*dto.TransactionResponse, error) {
	var trx *model.InventoryTransaction

	txErr := runTx(ctx, s.db, func(tx *gorm.DB) error {
		session, err := s.lockInProgressTx(tx, sessionID)
		if err != nil {
			return err
		}

		in := MovementInput{
			ProductID:      req.ProductID,
			Quantity:       req.Quantity,
			BatchNumber:    req.BatchNumber,
			ExpirationDate: req.ExpirationDate,
			Notes:          req.Notes,
			SessionID:      &session.ID,
			Actor:          actor,
		}
		switch session.Type {
		case model.SessionCheckIn:
			in.Type = model.TransactionCheckIn
			in.DestinationLocationID = &session.LocationID
		case model.SessionCheckOut, model.SessionInventoryCount:
			in.Type = model.TransactionCheckOut
			in.SourceLocationID = &session.LocationID
		default:
			return fmt.Errorf("unknown session type %q: %w", session.Type, serviceerr.ErrInvalidInput)
		}

		trx, err = s.inventory.RecordMovementTx(ctx, tx, in)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Record(ctx, actor.ID, "inventory."+string(trx.Type), "transaction", trx.ID, map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	}, actor.Origin)

	resp := TransactionToResponse(trx)
	return &resp, nil
}

// ── Complete ─────────────────────────────────────────────────────────────────

// Complete performs no inventory mutation of its own — effects already landed
// via AddMovement.
func (s *sessionService) Complete(ctx context.Context, sessionID string, actor Actor) (*dto.SessionResponse, error) {
	session, err := s.transitionTx(ctx, sessionID, model.SessionCompleted, actor)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, actor.ID, "session.complete", "session", sessionID, nil, actor.Origin)
	return sessionToResponse(session), nil
}

// ── Cancel ───────────────────────────────────────────────────────────────────

func (s *sessionService) Cancel(ctx context.Context, sessionID string, actor Actor) (*dto.SessionResponse, error) {
	var session *model.Session
	var reversed int

	txErr := runTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		session, err = s.lockInProgressTx(tx, sessionID)
		if err != nil {
			return err
		}

		reversed, err = s.inventory.ReverseSessionTx(tx, sessionID, actor)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		session.Status = model.SessionCancelled
		session.CompletedAt = &now
		return s.repo.UpdateTx(tx, session)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.auditor.Record(ctx, actor.ID, "session.cancel", "session", sessionID, map[string]interface{}{
		"transactions_reversed": reversed,
	}, actor.Origin)

	return sessionToResponse(session), nil
}

// transitionTx moves a session to a terminal state under a row lock, so a
// concurrent complete/cancel cannot both pass the in_progress check.
func (s *sessionService) transitionTx(ctx context.Context, sessionID string, target model.SessionStatus, actor Actor) (*model.Session, error) {
	var session *model.Session
	txErr := runTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		session, err = s.lockInProgressTx(tx, sessionID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		session.Status = target
		session.CompletedAt = &now
		return s.repo.UpdateTx(tx, session)
	})
	if txErr != nil {
		return nil, txErr
	}
	return session, nil
}

func (s *sessionService) lockInProgressTx(tx *gorm.DB, sessionID string) (*model.Session, error) {
	session, err := s.repo.FindByIDForUpdateTx(tx, sessionID)
	if err != nil {
		return nil, asNotFound(err, "session", sessionID)
	}
	if session.Status != model.SessionInProgress {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, session.Status, serviceerr.ErrInvalidState)
	}
	return session, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *sessionService) Get(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, asNotFound(err, "session", sessionID)
	}
	return sessionToResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, filter dto.SessionFilter) (*dto.SessionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		data = append(data, *sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func sessionToResponse(s *model.Session) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:          s.ID,
		Type:        string(s.Type),
		Status:      string(s.Status),
		LocationID:  s.LocationID,
		CreatedBy:   s.CreatedBy,
		Notes:       s.Notes,
		StartedAt:   formatTime(s.StartedAt),
		CompletedAt: formatTimePtr(s.CompletedAt),
	}
	if s.Location != nil {
		resp.LocationName = s.Location.Name
	}
	return resp
}
