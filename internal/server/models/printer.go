package models

import "time"

// PrinterStatus is the reported state of a printer.
type PrinterStatus string

const (
	PrinterOnline   PrinterStatus = "online"
	PrinterOffline  PrinterStatus = "offline"
	PrinterUpdating PrinterStatus = "updating"
	PrinterError    PrinterStatus = "error"
)

// Valid reports whether s is one of the known printer statuses.
func (s PrinterStatus) Valid() bool {
	switch s {
	case PrinterOnline, PrinterOffline, PrinterUpdating, PrinterError:
		return true
	}
	return false
}

// Printer is a concrete 3D-printing machine in the fleet.
// LastSeen is the stored source of truth; the relative form is computed on read.
type Printer struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Model           string        `json:"model"`
	Location        string        `json:"location"`
	Status          PrinterStatus `json:"status"`
	FirmwareVersion string        `json:"firmwareVersion"`
	LastSeen        time.Time     `json:"lastSeenAt"`
	BatteryLevel    *int          `json:"batteryLevel,omitempty"`
	Temperature     *float64      `json:"temperature,omitempty"`
	PrintProgress   *int          `json:"printProgress,omitempty"`
	IPAddress       string        `json:"ipAddress,omitempty"`
	SerialNumber    string        `json:"serialNumber,omitempty"`
}

// PrinterView is a Printer with LastSeen projected for display.
type PrinterView struct {
	Printer
	LastSeenRelative string `json:"lastSeen"`
}

// PrinterPatch carries the fields an administrator may change.
// Nil fields are left untouched.
type PrinterPatch struct {
	Name          *string        `json:"name"`
	Location      *string        `json:"location"`
	Status        *PrinterStatus `json:"status"`
	BatteryLevel  *int           `json:"batteryLevel"`
	Temperature   *float64       `json:"temperature"`
	PrintProgress *int           `json:"printProgress"`
}

// NewPrinter is the input for registering a printer.
type NewPrinter struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Location     string `json:"location"`
	IPAddress    string `json:"ipAddress"`
	SerialNumber string `json:"serialNumber"`
}

// FleetStats aggregates printer counts and averages.
type FleetStats struct {
	Total              int `json:"total"`
	Online             int `json:"online"`
	Offline            int `json:"offline"`
	Updating           int `json:"updating"`
	Error              int `json:"error"`
	AverageBattery     int `json:"averageBattery"`
	AverageTemperature int `json:"averageTemperature"`
}

// Clone returns a deep copy so callers never share pointer fields with a store.
func (p *Printer) Clone() *Printer {
	c := *p
	if p.BatteryLevel != nil {
		v := *p.BatteryLevel
		c.BatteryLevel = &v
	}
	if p.Temperature != nil {
		v := *p.Temperature
		c.Temperature = &v
	}
	if p.PrintProgress != nil {
		v := *p.PrintProgress
		c.PrintProgress = &v
	}
	return &c
}
