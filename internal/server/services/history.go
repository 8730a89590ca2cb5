package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/history"
	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 1000
	recentUpdatesCount  = 5
	zeroDuration        = "0m 0s"
)

// HistoryService is the append-mostly log of firmware update attempts.
type HistoryService struct {
	repo   history.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewHistoryService(repo history.Repository, l logging.Logger) *HistoryService {
	return &HistoryService{repo: repo, logger: l.With("module", "history"), now: time.Now}
}

// Append validates and records one entry. A zero Timestamp means now.
func (s *HistoryService) Append(ctx context.Context, in models.HistoryEntry, initiator string) (*models.HistoryEntry, error) {
	if in.PrinterID == "" || in.PrinterName == "" || in.FromVersion == "" || in.ToVersion == "" || in.Status == "" {
		return nil, fmt.Errorf("printerId, printerName, fromVersion, toVersion, and status are required: %w", common.ErrValidation)
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", in.Status, common.ErrValidation)
	}

	h := in
	h.ID = uuid.NewString()
	h.InitiatedBy = initiator
	h.UpdatedBy = ""
	h.UpdatedAt = nil
	if strings.TrimSpace(h.Duration) == "" {
		h.Duration = zeroDuration
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = s.now().UTC()
	}
	if err := s.repo.Append(ctx, &h); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "history appended", "entry_id", h.ID, "printer_id", h.PrinterID, "status", h.Status)
	return &h, nil
}

// newestFirst orders by timestamp descending; later appends win ties.
func (s *HistoryService) newestFirst(ctx context.Context) ([]*models.HistoryEntry, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	slices.SortStableFunc(list, func(a, b *models.HistoryEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return list, nil
}

// List filters by printer and outcome, then paginates newest first.
func (s *HistoryService) List(ctx context.Context, f models.HistoryFilter) (*models.HistoryPage, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	f.Limit = min(f.Limit, MaxHistoryLimit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", f.Status, common.ErrValidation)
	}

	list, err := s.newestFirst(ctx)
	if err != nil {
		return nil, err
	}
	matched := list[:0]
	for _, h := range list {
		if f.PrinterID != "" && h.PrinterID != f.PrinterID {
			continue
		}
		if f.Status != "" && h.Status != f.Status {
			continue
		}
		matched = append(matched, h)
	}

	page := &models.HistoryPage{Total: len(matched), Limit: f.Limit, Offset: f.Offset, Items: []*models.HistoryEntry{}}
	if f.Offset < len(matched) {
		n := min(f.Limit, len(matched)-f.Offset)
		page.Items = matched[f.Offset : f.Offset+n]
		page.HasMore = f.Offset+n < len(matched)
	}
	return page, nil
}

func (s *HistoryService) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	return s.repo.Get(ctx, id)
}

// Update applies an administrative correction.
func (s *HistoryService) Update(ctx context.Context, id string, patch models.HistoryPatch, updatedBy string) (*models.HistoryEntry, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", *patch.Status, common.ErrValidation)
	}
	return s.repo.Update(ctx, id, func(h *models.HistoryEntry) error {
		if patch.Status != nil {
			h.Status = *patch.Status
		}
		if patch.Duration != nil {
			h.Duration = *patch.Duration
		}
		if patch.Notes != nil {
			h.Notes = *patch.Notes
		}
		if patch.ErrorMessage != nil {
			h.ErrorMessage = *patch.ErrorMessage
		}
		now := s.now().UTC()
		h.UpdatedBy = updatedBy
		h.UpdatedAt = &now
		return nil
	})
}

func (s *HistoryService) Delete(ctx context.Context, id string) (*models.HistoryEntry, error) {
	h, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return h, nil
}

// Stats counts outcomes. SuccessRate is a rounded percentage, 0 for an empty log.
func (s *HistoryService) Stats(ctx context.Context) (*models.HistoryStats, error) {
	list, err := s.newestFirst(ctx)
	if err != nil {
		return nil, err
	}
	st := &models.HistoryStats{Total: len(list)}
	for _, h := range list {
		switch h.Status {
		case models.OutcomeSuccess:
			st.Successful++
		case models.OutcomeFailed:
			st.Failed++
		case models.OutcomeRolledBack:
			st.RolledBack++
		}
	}
	if st.Total > 0 {
		st.SuccessRate = int(math.Round(float64(st.Successful) * 100 / float64(st.Total)))
	}
	st.RecentUpdates = list[:min(recentUpdatesCount, len(list))]
	return st, nil
}
