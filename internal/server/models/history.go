package models

import "time"

// UpdateOutcome is the recorded result of a firmware update on one printer.
type UpdateOutcome string

const (
	OutcomeSuccess    UpdateOutcome = "success"
	OutcomeFailed     UpdateOutcome = "failed"
	OutcomeRolledBack UpdateOutcome = "rolled_back"
)

// Valid reports whether o is a known outcome.
func (o UpdateOutcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomeRolledBack:
		return true
	}
	return false
}

// HistoryEntry records one firmware update attempt on one printer.
type HistoryEntry struct {
	ID           string        `json:"id"`
	PrinterID    string        `json:"printerId"`
	PrinterName  string        `json:"printerName"`
	FromVersion  string        `json:"fromVersion"`
	ToVersion    string        `json:"toVersion"`
	Timestamp    time.Time     `json:"timestamp"`
	Status       UpdateOutcome `json:"status"`
	Duration     string        `json:"duration"`
	InitiatedBy  string        `json:"initiatedBy"`
	Notes        string        `json:"notes,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	UpdatedBy    string        `json:"updatedBy,omitempty"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// HistoryPatch is the administrative correction allow-list.
type HistoryPatch struct {
	Status       *UpdateOutcome `json:"status"`
	Duration     *string        `json:"duration"`
	Notes        *string        `json:"notes"`
	ErrorMessage *string        `json:"errorMessage"`
}

// HistoryFilter selects and paginates history entries.
type HistoryFilter struct {
	PrinterID string
	Status    UpdateOutcome
	Offset    int
	Limit     int
}

// HistoryPage is one page of filtered history.
type HistoryPage struct {
	Items   []*HistoryEntry `json:"data"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	HasMore bool            `json:"hasMore"`
}

// HistoryStats summarizes the log.
type HistoryStats struct {
	Total         int             `json:"total"`
	Successful    int             `json:"successful"`
	Failed        int             `json:"failed"`
	RolledBack    int             `json:"rolledBack"`
	SuccessRate   int             `json:"successRate"`
	RecentUpdates []*HistoryEntry `json:"recentUpdates"`
}

// Clone returns a copy of the entry.
func (h *HistoryEntry) Clone() *HistoryEntry {
	c := *h
	c.UpdatedAt = cloneTime(h.UpdatedAt)
	return &c
}
