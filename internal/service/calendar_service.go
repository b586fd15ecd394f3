package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/calendar"
	"github.com/vilahaus/concierge/internal/domain"
)

// CalendarArtifact is the result of a calendar action: either a file
// body to download or a URL for the browser to open.
type CalendarArtifact struct {
	ContentType string
	Filename    string
	Body        []byte
	URL         string
}

// CalendarService turns schedule requests into calendar artifacts.
type CalendarService struct {
	calendly  *calendar.CalendlyClient
	eventName string
	logger    *zap.Logger
}

// NewCalendarService creates a calendar service. calendly may be nil,
// in which case send_invite reports the collaborator unavailable.
func NewCalendarService(calendly *calendar.CalendlyClient, eventName string, logger *zap.Logger) *CalendarService {
	if eventName == "" {
		eventName = "Property Viewing"
	}
	return &CalendarService{
		calendly:  calendly,
		eventName: eventName,
		logger:    logger,
	}
}

// Handle dispatches on the requested action.
func (s *CalendarService) Handle(ctx context.Context, req *domain.CalendarRequest) (*CalendarArtifact, error) {
	switch req.Action {
	case domain.CalendarActionICS:
		body, err := calendar.BuildICS(req.ScheduleData)
		if err != nil {
			return nil, err
		}
		return &CalendarArtifact{
			ContentType: "text/calendar",
			Filename:    fmt.Sprintf("viewing-%s.ics", req.ScheduleData.FlatID),
			Body:        []byte(body),
		}, nil

	case domain.CalendarActionGoogle:
		url, err := calendar.GoogleCalendarURL(req.ScheduleData)
		if err != nil {
			return nil, err
		}
		return &CalendarArtifact{URL: url}, nil

	case domain.CalendarActionOutlook:
		url, err := calendar.OutlookCalendarURL(req.ScheduleData)
		if err != nil {
			return nil, err
		}
		return &CalendarArtifact{URL: url}, nil

	case domain.CalendarActionSendInvite:
		if s.calendly == nil {
			return nil, fmt.Errorf("calendly not configured: %w", domain.ErrUnavailable)
		}
		eventType, err := s.calendly.FindEventType(ctx, s.eventName)
		if err != nil {
			return nil, err
		}
		url, err := s.calendly.CreateInviteLink(ctx, eventType)
		if err != nil {
			return nil, err
		}
		return &CalendarArtifact{URL: url}, nil

	default:
		return nil, fmt.Errorf("unknown calendar action %q: %w", req.Action, domain.ErrInvalidRequest)
	}
}
