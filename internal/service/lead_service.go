package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/notify"
	"github.com/vilahaus/concierge/internal/repository"
)

// LeadService owns lead capture, visitor tracking and score recomputation.
type LeadService struct {
	store    repository.Store
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewLeadService creates a lead service. notifier may be nil.
func NewLeadService(store repository.Store, notifier *notify.Notifier, logger *zap.Logger) *LeadService {
	return &LeadService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// CaptureLead upserts the lead for a visitor, logs the submission
// interaction, recomputes the score and fires the webhook. When no
// prior row exists (tracking blocked, cleared storage) it falls back
// to an unconditional insert: durability over deduplication.
func (s *LeadService) CaptureLead(ctx context.Context, req *domain.CreateLeadRequest) (*domain.Lead, error) {
	now := time.Now()

	var existing *domain.Lead
	if req.VisitorID != "" {
		var err error
		existing, err = s.store.GetLeadByVisitor(ctx, req.VisitorID)
		if err != nil {
			s.logger.Warn("lead lookup failed, inserting unconditionally", zap.Error(err))
			existing = nil
		}
	}

	var lead *domain.Lead
	if existing != nil {
		existing.Name = req.Name
		existing.Email = req.Email
		existing.Phone = req.Phone
		existing.Message = req.Message
		if req.FlatID != "" {
			existing.FlatID = req.FlatID
		}
		if req.PurchaseTimeframe != "" {
			existing.PurchaseTimeframe = req.PurchaseTimeframe
		}
		if req.Consent && !existing.Consent {
			existing.Consent = true
			existing.ConsentAt = &now
		}
		if err := s.store.UpdateLead(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update lead: %w", err)
		}
		lead = existing
	} else {
		lead = &domain.Lead{
			VisitorID:         req.VisitorID,
			Name:              req.Name,
			Email:             req.Email,
			Phone:             req.Phone,
			Message:           req.Message,
			FlatID:            req.FlatID,
			PurchaseTimeframe: req.PurchaseTimeframe,
			Consent:           req.Consent,
		}
		if req.Consent {
			lead.ConsentAt = &now
		}
		if err := s.store.InsertLead(ctx, lead); err != nil {
			return nil, fmt.Errorf("failed to insert lead: %w", err)
		}
	}

	s.markLeadCaptured(ctx, req.VisitorID)

	details := map[string]any{"flat_id": req.FlatID, "purchase_timeframe": req.PurchaseTimeframe}
	if err := s.RecordInteraction(ctx, lead.ID, req.VisitorID, domain.InteractionLeadSubmission, details); err != nil {
		s.logger.Warn("failed to record lead submission interaction", zap.Error(err))
	}
	if _, err := s.RecalculateScore(ctx, lead.ID); err != nil {
		s.logger.Warn("failed to recalculate lead score", zap.Error(err))
	} else if fresh, err := s.store.GetLead(ctx, lead.ID); err == nil && fresh != nil {
		lead = fresh
	}

	s.notifier.LeadCaptured(lead)

	return lead, nil
}

// Qualify merges qualification answers into the visitor's lead and
// recomputes the score. The client-reported score is only honored as a
// floor; the interaction sum stays authoritative so scores never
// decrease.
func (s *LeadService) Qualify(ctx context.Context, req *domain.QualifyLeadRequest) (*domain.Lead, error) {
	lead, err := s.store.GetLeadByVisitor(ctx, req.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}

	if lead.Qualification == nil {
		lead.Qualification = make(map[string]string)
	}
	for k, v := range req.LeadData {
		lead.Qualification[k] = v
	}
	if req.FlatID != "" {
		lead.FlatID = req.FlatID
	}
	if err := s.store.UpdateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	details := map[string]any{"answers": len(req.LeadData)}
	if err := s.RecordInteraction(ctx, lead.ID, req.VisitorID, domain.InteractionQualification, details); err != nil {
		s.logger.Warn("failed to record qualification interaction", zap.Error(err))
	}

	score, err := s.RecalculateScore(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate score: %w", err)
	}
	if req.LeadScore > score {
		score = req.LeadScore
		if err := s.store.UpdateLeadScore(ctx, lead.ID, score); err != nil {
			return nil, fmt.Errorf("failed to persist score: %w", err)
		}
	}
	lead.Score = score

	return lead, nil
}

// Track records a visitor event: get-or-create the visitor row, append
// the interaction, and recompute the lead score when a lead exists.
func (s *LeadService) Track(ctx context.Context, req *domain.TrackRequest) error {
	visitor, err := s.store.GetVisitor(ctx, req.VisitorID)
	if err != nil {
		return fmt.Errorf("failed to look up visitor: %w", err)
	}
	if visitor == nil {
		visitor = &domain.Visitor{ID: req.VisitorID}
	}
	switch req.EventName {
	case domain.InteractionChatOpened:
		visitor.ConversationStarted = true
	case domain.InteractionChatMessage:
		visitor.MessageCount++
	}
	if err := s.store.UpsertVisitor(ctx, visitor); err != nil {
		return fmt.Errorf("failed to upsert visitor: %w", err)
	}

	details := req.Details
	if req.Path != "" {
		if details == nil {
			details = make(map[string]any)
		}
		details["path"] = req.Path
	}

	leadID := ""
	lead, err := s.store.GetLeadByVisitor(ctx, req.VisitorID)
	if err != nil {
		s.logger.Warn("lead lookup during tracking failed", zap.Error(err))
	} else if lead != nil {
		leadID = lead.ID
	}

	if err := s.RecordInteraction(ctx, leadID, req.VisitorID, req.EventName, details); err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}

	if leadID != "" {
		if _, err := s.RecalculateScore(ctx, leadID); err != nil {
			s.logger.Warn("failed to recalculate score after event", zap.Error(err))
		}
	}

	return nil
}

// RecordInteraction appends one event with its point value.
// Points are never negative so accumulated scores cannot decrease.
func (s *LeadService) RecordInteraction(ctx context.Context, leadID, visitorID, interactionType string, details map[string]any) error {
	return s.store.InsertInteraction(ctx, &domain.Interaction{
		LeadID:    leadID,
		VisitorID: visitorID,
		Type:      interactionType,
		Points:    domain.PointsFor(interactionType),
		Details:   details,
	})
}

// RecalculateScore recomputes and persists the lead score as the sum
// of points over all recorded interactions, floored at the currently
// stored score. The floor keeps a client score accepted by Qualify
// durable across later events, so stored scores never decrease.
func (s *LeadService) RecalculateScore(ctx context.Context, leadID string) (int, error) {
	interactions, err := s.store.ListInteractionsByLead(ctx, leadID)
	if err != nil {
		return 0, err
	}

	score := 0
	for _, interaction := range interactions {
		if interaction.Points > 0 {
			score += interaction.Points
		}
	}

	if lead, err := s.store.GetLead(ctx, leadID); err == nil && lead != nil && lead.Score > score {
		score = lead.Score
	}

	if err := s.store.UpdateLeadScore(ctx, leadID, score); err != nil {
		return 0, err
	}
	return score, nil
}

func (s *LeadService) markLeadCaptured(ctx context.Context, visitorID string) {
	if visitorID == "" {
		return
	}
	visitor, err := s.store.GetVisitor(ctx, visitorID)
	if err != nil || visitor == nil {
		return
	}
	if visitor.LeadCaptured {
		return
	}
	visitor.LeadCaptured = true
	if err := s.store.UpsertVisitor(ctx, visitor); err != nil {
		s.logger.Warn("failed to flag visitor as captured", zap.Error(err))
	}
}
