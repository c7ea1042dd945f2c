package service

import (
	"context"
	"time"

	"carhive/internal/domain"
	"carhive/internal/models"

	"github.com/rs/zerolog"
)

// DraftService holds booking requests that arrived without an authenticated
// user. The draft waits in the repository under the visitor's session id
// until the request is resubmitted with credentials or expires.
type DraftService struct {
	drafts domain.DraftRepository
	logger *zerolog.Logger
}

func NewDraftService(drafts domain.DraftRepository, logger *zerolog.Logger) *DraftService {
	return &DraftService{
		drafts: drafts,
		logger: logger,
	}
}

func (s *DraftService) HoldDraft(ctx context.Context, draft *models.BookingDraft) error {
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	if err := s.drafts.SetDraft(ctx, draft); err != nil {
		s.logger.Error().Err(err).Str("session_id", draft.SessionID).Msg("failed to hold booking draft")
		return err
	}
	return nil
}

func (s *DraftService) ResumeDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	draft, err := s.drafts.GetDraft(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to load booking draft")
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) DiscardDraft(ctx context.Context, sessionID string) error {
	return s.drafts.ClearDraft(ctx, sessionID)
}

func (s *DraftService) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	return s.drafts.CheckRateLimit(ctx, sessionID, limit, window)
}
