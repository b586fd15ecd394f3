// Package repository defines the persistence interfaces shared by the
// sqlite and supabase backends.
package repository

import (
	"context"

	"github.com/vilahaus/concierge/internal/domain"
)

// VisitorStore persists tracked visitors. Get returns (nil, nil) when
// no row exists for the id.
type VisitorStore interface {
	GetVisitor(ctx context.Context, id string) (*domain.Visitor, error)
	UpsertVisitor(ctx context.Context, visitor *domain.Visitor) error
}

// LeadStore persists captured leads, keyed on visitor id for upserts.
type LeadStore interface {
	GetLeadByVisitor(ctx context.Context, visitorID string) (*domain.Lead, error)
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	InsertLead(ctx context.Context, lead *domain.Lead) error
	UpdateLead(ctx context.Context, lead *domain.Lead) error
	UpdateLeadScore(ctx context.Context, leadID string, score int) error
}

// InteractionStore is append-only; interactions are never mutated.
type InteractionStore interface {
	InsertInteraction(ctx context.Context, interaction *domain.Interaction) error
	ListInteractionsByLead(ctx context.Context, leadID string) ([]*domain.Interaction, error)
}

// MessageStore persists chat turns written through by the memory service.
type MessageStore interface {
	InsertMessage(ctx context.Context, message *domain.Message) error
	// ListRecentMessages returns the ordered messages of the visitor's
	// most recent session, oldest first. An empty slice when none.
	ListRecentMessages(ctx context.Context, visitorID string) ([]*domain.Message, error)
}

// Store is the full persistence surface the services depend on.
type Store interface {
	VisitorStore
	LeadStore
	InteractionStore
	MessageStore
	Close() error
}
