package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/printfleet/internal/server/models"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/firmware"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/history"
	"github.com/dmitrijs2005/printfleet/internal/server/repositories/printers"
	"github.com/google/uuid"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func at(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// Seed fills empty repositories with the demo fleet: four printers, two
// catalog entries and four history records.
func Seed(ctx context.Context, pr printers.Repository, fr firmware.Repository, hr history.Repository, now time.Time) error {
	fleet := []*models.Printer{
		{ID: "1", Name: "Printer A1", Model: "ConcreteBot 3000", Location: "Site A - Building 1",
			Status: models.PrinterOnline, FirmwareVersion: "2.1.4", LastSeen: now,
			BatteryLevel: intp(85), Temperature: floatp(22), PrintProgress: intp(0),
			IPAddress: "192.168.1.101", SerialNumber: "CB3000-001"},
		{ID: "2", Name: "Printer B2", Model: "ConcreteBot 3000", Location: "Site B - Foundation",
			Status: models.PrinterUpdating, FirmwareVersion: "2.1.3", LastSeen: now,
			BatteryLevel: intp(92), Temperature: floatp(24), PrintProgress: intp(45),
			IPAddress: "192.168.1.102", SerialNumber: "CB3000-002"},
		{ID: "3", Name: "Printer C3", Model: "ConcreteBot Pro", Location: "Site C - Walls",
			Status: models.PrinterOffline, FirmwareVersion: "2.0.8", LastSeen: now.Add(-2 * time.Hour),
			BatteryLevel: intp(15), Temperature: floatp(19), PrintProgress: intp(0),
			IPAddress: "192.168.1.103", SerialNumber: "CBPRO-001"},
		{ID: "4", Name: "Printer D4", Model: "ConcreteBot 3000", Location: "Site A - Building 2",
			Status: models.PrinterOnline, FirmwareVersion: "2.1.4", LastSeen: now,
			BatteryLevel: intp(78), Temperature: floatp(23), PrintProgress: intp(0),
			IPAddress: "192.168.1.104", SerialNumber: "CB3000-004"},
	}
	for _, p := range fleet {
		if err := pr.Create(ctx, p); err != nil {
			return err
		}
	}

	// Insert puts entries at the head, so the oldest goes first.
	catalog := []*models.FirmwareUpdate{
		{ID: uuid.NewString(), Version: "2.1.4", Filename: "concretebot_v2.1.4.bin", Size: 14680064,
			UploadDate: at("2024-01-10T00:00:00Z"), Status: models.FirmwareCompleted,
			Description:    "Critical security update, performance improvements.",
			TargetPrinters: []string{"1", "4"}, Progress: intp(100), UploadedBy: "admin"},
		{ID: uuid.NewString(), Version: "2.2.0", Filename: "concretebot_v2.2.0.bin", Size: 15728640,
			UploadDate: at("2024-01-15T00:00:00Z"), Status: models.FirmwarePending,
			Description:    "Enhanced mixing algorithms, improved layer adhesion, bug fixes for temperature sensors.",
			TargetPrinters: []string{"1", "2", "3", "4"}, UploadedBy: "admin"},
	}
	for _, f := range catalog {
		if err := fr.Insert(ctx, f); err != nil {
			return err
		}
	}

	log := []*models.HistoryEntry{
		{ID: uuid.NewString(), PrinterID: "2", PrinterName: "Printer B2", FromVersion: "2.1.2", ToVersion: "2.1.3",
			Timestamp: at("2024-01-05T16:45:00Z"), Status: models.OutcomeRolledBack, Duration: "12m 33s",
			InitiatedBy: "admin", Notes: "Rolled back due to compatibility issues",
			ErrorMessage: "Firmware validation failed"},
		{ID: uuid.NewString(), PrinterID: "3", PrinterName: "Printer C3", FromVersion: "2.0.7", ToVersion: "2.0.8",
			Timestamp: at("2024-01-08T09:15:00Z"), Status: models.OutcomeFailed, Duration: "3m 22s",
			InitiatedBy: "admin", Notes: "Update failed due to network connectivity",
			ErrorMessage: "Network timeout after 3 minutes"},
		{ID: uuid.NewString(), PrinterID: "4", PrinterName: "Printer D4", FromVersion: "2.1.3", ToVersion: "2.1.4",
			Timestamp: at("2024-01-10T14:25:00Z"), Status: models.OutcomeSuccess, Duration: "9m 12s",
			InitiatedBy: "admin", Notes: "Security update applied successfully"},
		{ID: uuid.NewString(), PrinterID: "1", PrinterName: "Printer A1", FromVersion: "2.1.3", ToVersion: "2.1.4",
			Timestamp: at("2024-01-10T14:30:00Z"), Status: models.OutcomeSuccess, Duration: "8m 45s",
			InitiatedBy: "admin", Notes: "Security update applied successfully"},
	}
	for _, h := range log {
		if err := hr.Append(ctx, h); err != nil {
			return err
		}
	}
	return nil
}
