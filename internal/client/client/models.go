package client

import "time"

// Printer is the subset of the server's printer view the CLI shows.
type Printer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Model           string `json:"model"`
	Location        string `json:"location"`
	Status          string `json:"status"`
	FirmwareVersion string `json:"firmwareVersion"`
	LastSeen        string `json:"lastSeen"`
	BatteryLevel    *int   `json:"batteryLevel,omitempty"`
}

// Firmware is a catalog entry as listed by the server.
type Firmware struct {
	ID             string     `json:"id"`
	Version        string     `json:"version"`
	Filename       string     `json:"filename"`
	Size           int64      `json:"size"`
	UploadDate     time.Time  `json:"uploadDate"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	TargetPrinters []string   `json:"targetPrinters"`
	Progress       *int       `json:"progress,omitempty"`
	DeployedBy     string     `json:"deployedBy,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// HistoryStats summarizes the deployment history.
type HistoryStats struct {
	Total       int `json:"total"`
	Successful  int `json:"successful"`
	Failed      int `json:"failed"`
	RolledBack  int `json:"rolledBack"`
	SuccessRate int `json:"successRate"`
}

// Session is the identity returned by a successful login.
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
