package override

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/yanqian/beachsafety/internal/domain/beach"
	"github.com/yanqian/beachsafety/internal/domain/conditions"
	apperrors "github.com/yanqian/beachsafety/pkg/errors"
)

const (
	defaultMaxEntries = 100
	defaultUpdatedBy  = "County Staff"
)

// Service manages the admin override log.
type Service interface {
	List(ctx context.Context) ([]Override, error)
	Save(ctx context.Context, req SaveRequest) (Override, error)
	Reset(ctx context.Context, beachID string) (int, error)
	Latest(ctx context.Context) (map[string]conditions.Override, error)
}

type service struct {
	cfg         Config
	repo        Repository
	catalog     Catalog
	invalidator Invalidator
	clock       clockwork.Clock
	logger      *slog.Logger

	// mu serialises read-modify-write cycles on the log.
	mu sync.Mutex
}

// NewService wires the override domain.
func NewService(cfg Config, repo Repository, catalog Catalog, invalidator Invalidator, clock clockwork.Clock, logger *slog.Logger) Service {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	return &service{
		cfg:         cfg,
		repo:        repo,
		catalog:     catalog,
		invalidator: invalidator,
		clock:       clock,
		logger:      logger.With("component", "override.service"),
	}
}

func (s *service) List(ctx context.Context) ([]Override, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "failed to read admin updates", err)
	}
	return items, nil
}

func (s *service) Save(ctx context.Context, req SaveRequest) (Override, error) {
	entry, err := s.buildEntry(req)
	if err != nil {
		return Override{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return Override{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to read admin updates", err)
	}
	items = append([]Override{entry}, items...)
	if len(items) > s.cfg.MaxEntries {
		items = items[:s.cfg.MaxEntries]
	}
	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return Override{}, apperrors.Wrap(apperrors.CodeStoreError, "failed to save admin update", err)
	}
	s.invalidate()
	s.logger.Info("admin override saved", "beach", entry.BeachID, "updated_by", entry.UpdatedBy,
		"flag", entry.Changes.FlagStatus != nil, "advisory", entry.Changes.Advisory != nil, "hazards", entry.Changes.Hazards != nil)
	return entry, nil
}

func (s *service) buildEntry(req SaveRequest) (Override, error) {
	beachID := strings.TrimSpace(req.BeachID)
	if beachID == "" {
		return Override{}, apperrors.Wrap(apperrors.CodeInvalidInput, "beachId is required", nil)
	}
	if s.catalog != nil && !s.catalog.Has(beachID) {
		return Override{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown beachId "+beachID, nil)
	}

	var changes Changes
	if req.FlagStatus != nil {
		if !req.FlagStatus.Valid() {
			return Override{}, apperrors.Wrap(apperrors.CodeInvalidInput, "flagStatus must be green, yellow or red", nil)
		}
		flag := *req.FlagStatus
		changes.FlagStatus = &flag
	}
	if req.Advisory != nil {
		if advisory := strings.TrimSpace(*req.Advisory); advisory != "" {
			changes.Advisory = &advisory
		}
	}
	if req.Hazards != nil {
		for _, h := range *req.Hazards {
			if !h.Valid() {
				return Override{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown hazard "+string(h), nil)
			}
		}
		hazards := beach.NormalizeHazards(*req.Hazards)
		changes.Hazards = &hazards
	}
	if changes.Empty() {
		return Override{}, apperrors.Wrap(apperrors.CodeInvalidInput, "at least one of flagStatus, advisory or hazards is required", nil)
	}

	updatedBy := strings.TrimSpace(req.UpdatedBy)
	if updatedBy == "" {
		updatedBy = defaultUpdatedBy
	}
	return Override{
		BeachID:   beachID,
		Timestamp: s.clock.Now().UTC(),
		UpdatedBy: updatedBy,
		Changes:   changes,
	}, nil
}

// Reset removes every entry for beachID. It is irreversible.
func (s *service) Reset(ctx context.Context, beachID string) (int, error) {
	beachID = strings.TrimSpace(beachID)
	if beachID == "" {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "beachId is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStoreError, "failed to read admin updates", err)
	}
	kept := make([]Override, 0, len(items))
	for _, o := range items {
		if o.BeachID != beachID {
			kept = append(kept, o)
		}
	}
	removed := len(items) - len(kept)
	if err := s.repo.ReplaceAll(ctx, kept); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStoreError, "failed to remove override", err)
	}
	s.invalidate()
	s.logger.Info("admin override reset", "beach", beachID, "removed", removed)
	return removed, nil
}

func (s *service) Latest(ctx context.Context) (map[string]conditions.Override, error) {
	return latest(ctx, s.repo)
}

// Reader exposes the newest override per beach without the write path.
type Reader struct {
	repo Repository
}

// NewReader builds a read-only view over the log.
func NewReader(repo Repository) *Reader {
	return &Reader{repo: repo}
}

// Latest implements conditions.OverrideSource.
func (r *Reader) Latest(ctx context.Context) (map[string]conditions.Override, error) {
	return latest(ctx, r.repo)
}

// latest indexes the most recent entry per beach. Ties keep the entry seen
// first, which is the newer one in log order.
func latest(ctx context.Context, repo Repository) (map[string]conditions.Override, error) {
	items, err := repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreError, "failed to read admin updates", err)
	}
	newest := make(map[string]Override, len(items))
	for _, o := range items {
		cur, ok := newest[o.BeachID]
		if !ok || o.Timestamp.After(cur.Timestamp) {
			newest[o.BeachID] = o
		}
	}
	out := make(map[string]conditions.Override, len(newest))
	for id, o := range newest {
		out[id] = o.Changes.layer()
	}
	return out, nil
}

var _ conditions.OverrideSource = (*Reader)(nil)

func (s *service) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}
