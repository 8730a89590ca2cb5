package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/common"
	"github.com/dmitrijs2005/printfleet/internal/logging"
	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/printers"
	"github.com/dmitrijs2005/printfleet/internal/timex"
	"github.com/google/uuid"
)

// PrinterService is the fleet registry.
type PrinterService struct {
	repo   printers.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewPrinterService(repo printers.Repository, l logging.Logger) *PrinterService {
	return &PrinterService{repo: repo, logger: l.With("module", "printers"), now: time.Now}
}

func (s *PrinterService) view(p *models.Printer) *models.PrinterView {
	v := &models.PrinterView{Printer: *p}
	if p.Status == models.PrinterOnline {
		v.LastSeenRelative = "Just now"
	} else {
		v.LastSeenRelative = timex.Ago(p.LastSeen, s.now())
	}
	return v
}

func (s *PrinterService) List(ctx context.Context) ([]*models.PrinterView, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.PrinterView, 0, len(list))
	for _, p := range list {
		out = append(out, s.view(p))
	}
	return out, nil
}

func (s *PrinterService) Get(ctx context.Context, id string) (*models.PrinterView, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(p), nil
}

// Create registers a printer with registry defaults.
func (s *PrinterService) Create(ctx context.Context, in models.NewPrinter) (*models.PrinterView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Model = strings.TrimSpace(in.Model)
	in.Location = strings.TrimSpace(in.Location)
	if in.Name == "" || in.Model == "" || in.Location == "" {
		return nil, fmt.Errorf("name, model, and location are required: %w", common.ErrValidation)
	}

	battery, progress := 0, 0
	temperature := 20.0
	p := &models.Printer{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Model:           in.Model,
		Location:        in.Location,
		Status:          models.PrinterOffline,
		FirmwareVersion: common.DefaultFirmwareVersion,
		LastSeen:        s.now().UTC(),
		BatteryLevel:    &battery,
		Temperature:     &temperature,
		PrintProgress:   &progress,
		IPAddress:       in.IPAddress,
		SerialNumber:    in.SerialNumber,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "printer registered", "printer_id", p.ID, "name", p.Name)
	return s.view(p), nil
}

// Update applies the allow-listed fields of patch and touches LastSeen.
func (s *PrinterService) Update(ctx context.Context, id string, patch models.PrinterPatch) (*models.PrinterView, error) {
	if err := validatePrinterPatch(patch); err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, id, func(p *models.Printer) error {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Location != nil {
			p.Location = *patch.Location
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.BatteryLevel != nil {
			v := *patch.BatteryLevel
			p.BatteryLevel = &v
		}
		if patch.Temperature != nil {
			v := *patch.Temperature
			p.Temperature = &v
		}
		if patch.PrintProgress != nil {
			v := *patch.PrintProgress
			p.PrintProgress = &v
		}
		p.LastSeen = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(p), nil
}

func validatePrinterPatch(p models.PrinterPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("name must not be empty: %w", common.ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", *p.Status, common.ErrValidation)
	}
	if p.BatteryLevel != nil && (*p.BatteryLevel < 0 || *p.BatteryLevel > 100) {
		return fmt.Errorf("batteryLevel must be within 0..100: %w", common.ErrValidation)
	}
	if p.PrintProgress != nil && (*p.PrintProgress < 0 || *p.PrintProgress > 100) {
		return fmt.Errorf("printProgress must be within 0..100: %w", common.ErrValidation)
	}
	return nil
}

// Delete removes a printer. Running deployments skip printers that no
// longer exist.
func (s *PrinterService) Delete(ctx context.Context, id string) (*models.Printer, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "printer deleted", "printer_id", id)
	return p, nil
}

// Stats counts printers per status and averages battery and temperature.
func (s *PrinterService) Stats(ctx context.Context) (*models.FleetStats, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	st := &models.FleetStats{Total: len(list)}
	var battery, temperature float64
	for _, p := range list {
		switch p.Status {
		case models.PrinterOnline:
			st.Online++
		case models.PrinterOffline:
			st.Offline++
		case models.PrinterUpdating:
			st.Updating++
		case models.PrinterError:
			st.Error++
		}
		if p.BatteryLevel != nil {
			battery += float64(*p.BatteryLevel)
		}
		if p.Temperature != nil {
			temperature += *p.Temperature
		}
	}
	if st.Total > 0 {
		st.AverageBattery = int(math.Round(battery / float64(st.Total)))
		st.AverageTemperature = int(math.Round(temperature / float64(st.Total)))
	}
	return st, nil
}

// Exists reports whether every id names a registered printer; the first
// unknown id is returned.
func (s *PrinterService) Exists(ctx context.Context, ids []string) (string, error) {
	for _, id := range ids {
		if _, err := s.repo.Get(ctx, id); err != nil {
			return id, err
		}
	}
	return "", nil
}

// Snapshot returns copies of the given printers as they are now. Unknown
// ids are skipped.
func (s *PrinterService) Snapshot(ctx context.Context, ids []string) []*models.Printer {
	out := make([]*models.Printer, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.Get(ctx, id)
		if err != nil {
			s.logger.Warn(ctx, "target printer not found", "printer_id", id, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// ApplyFirmware records a completed update: the printers run version and
// are online. Printers removed in the meantime are skipped.
func (s *PrinterService) ApplyFirmware(ctx context.Context, ids []string, version string) []*models.Printer {
	out := make([]*models.Printer, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.Update(ctx, id, func(p *models.Printer) error {
			zero := 0
			p.FirmwareVersion = version
			p.Status = models.PrinterOnline
			p.PrintProgress = &zero
			p.LastSeen = s.now().UTC()
			return nil
		})
		if err != nil {
			s.logger.Warn(ctx, "firmware not applied", "printer_id", id, "version", version, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}
