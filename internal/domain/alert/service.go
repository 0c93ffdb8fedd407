package alert

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

const (
	defaultCreatedBy = "County Staff"
	defaultLifetime  = 24 * time.Hour
)

// Service manages county alerts.
type Service interface {
	Active(ctx context.Context, filter Filter) ([]Alert, error)
	Create(ctx context.Context, req CreateRequest) (Alert, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct {
	repo        Repository
	catalog     Catalog
	invalidator Invalidator
	clock       clockwork.Clock
	logger      *slog.Logger
	mu          sync.Mutex
}

// NewService wires the alert domain.
func NewService(repo Repository, catalog Catalog, invalidator Invalidator, clock clockwork.Clock, logger *slog.Logger) Service {
	return &service{
		repo:        repo,
		catalog:     catalog,
		invalidator: invalidator,
		clock:       clock,
		logger:      logger.With("component", "alert.service"),
	}
}

// Active lists alerts that are switched on and not yet expired. Expired alerts
// stay in storage.
func (s *service) Active(ctx context.Context, filter Filter) ([]Alert, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "failed to read custom alerts", err)
	}
	now := s.clock.Now()
	beachID := strings.TrimSpace(filter.BeachID)
	lang := Language(strings.ToLower(strings.TrimSpace(filter.Language)))

	out := make([]Alert, 0, len(items))
	for _, a := range items {
		if !a.ActiveAt(now) {
			continue
		}
		if beachID != "" && beachID != AllBeaches && a.BeachID != AllBeaches && a.BeachID != beachID {
			continue
		}
		if lang != "" && lang != LanguageBoth && a.Language != LanguageBoth && a.Language != lang {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (Alert, error) {
	alert, err := s.build(req)
	if err != nil {
		return Alert{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return Alert{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to read custom alerts", err)
	}
	items = append(items, alert)
	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return Alert{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to save custom alert", err)
	}
	s.invalidate()
	s.logger.Info("custom alert created", "id", alert.ID, "beach", alert.BeachID, "priority", alert.Priority, "expires_at", alert.ExpiresAt)
	return alert, nil
}

func (s *service) build(req CreateRequest) (Alert, error) {
	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	if title == "" || message == "" {
		return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "title and message are required", nil)
	}

	beachID := strings.TrimSpace(req.BeachID)
	if beachID == "" {
		beachID = AllBeaches
	}
	if beachID != AllBeaches && s.catalog != nil && !s.catalog.Has(beachID) {
		return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown beachId "+beachID, nil)
	}

	priority := Priority(strings.ToLower(strings.TrimSpace(req.Priority)))
	switch priority {
	case "":
		priority = PriorityMedium
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "priority must be low, medium or high", nil)
	}

	lang := Language(strings.ToLower(strings.TrimSpace(req.Language)))
	switch lang {
	case "":
		lang = LanguageBoth
	case LanguageEnglish, LanguageSpanish, LanguageBoth:
	default:
		return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "language must be en, es or both", nil)
	}

	now := s.clock.Now().UTC()
	expiresAt := now.Add(defaultLifetime)
	if raw := strings.TrimSpace(req.ExpiresAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "expiresAt must be an RFC3339 timestamp", err)
		}
		if !parsed.After(now) {
			return Alert{}, apperrors.Wrap(apperrors.CodeInvalidInput, "expiresAt must be in the future", nil)
		}
		expiresAt = parsed.UTC()
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = defaultCreatedBy
	}

	return Alert{
		ID:        "alert-" + uuid.NewString(),
		BeachID:   beachID,
		Title:     title,
		Message:   message,
		Priority:  priority,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		IsActive:  true,
		Language:  lang,
	}, nil
}

// Deactivate switches an alert off. The record is kept.
func (s *service) Deactivate(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "alert id is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStoreError, "failed to read custom alerts", err)
	}
	found := false
	for i := range items {
		if items[i].ID == id {
			items[i].IsActive = false
			found = true
		}
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "alert not found", nil)
	}
	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreError, "failed to deactivate custom alert", err)
	}
	s.invalidate()
	s.logger.Info("custom alert deactivated", "id", id)
	return nil
}

func (s *service) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}
