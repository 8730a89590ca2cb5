package models

import "time"

// FirmwareStatus is the lifecycle state of a catalog entry.
type FirmwareStatus string

const (
	FirmwarePending   FirmwareStatus = "pending"
	FirmwareDeploying FirmwareStatus = "deploying"
	FirmwareCompleted FirmwareStatus = "completed"
	FirmwareFailed    FirmwareStatus = "failed"
	FirmwareCancelled FirmwareStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s FirmwareStatus) Terminal() bool {
	return s == FirmwareCompleted || s == FirmwareFailed || s == FirmwareCancelled
}

// StorageLocator tells the storage adapter where the bytes of a firmware
// image live. A dual store fills both halves.
type StorageLocator struct {
	Provider          string `json:"provider"`
	S3Key             string `json:"s3Key,omitempty"`
	S3URL             string `json:"s3Url,omitempty"`
	S3RecordID        string `json:"s3RecordId,omitempty"`
	DriveFileID       string `json:"driveFileId,omitempty"`
	DriveViewLink     string `json:"driveViewLink,omitempty"`
	DriveDownloadLink string `json:"driveDownloadLink,omitempty"`
}

// HasS3 reports whether the S3 half of the locator is populated.
func (l StorageLocator) HasS3() bool { return l.S3Key != "" }

// HasDrive reports whether the Drive half of the locator is populated.
func (l StorageLocator) HasDrive() bool { return l.DriveFileID != "" }

// FirmwareUpdate is a firmware image plus its deployment lifecycle.
type FirmwareUpdate struct {
	ID                string         `json:"id"`
	Version           string         `json:"version"`
	Filename          string         `json:"filename"`
	Size              int64          `json:"size"`
	UploadDate        time.Time      `json:"uploadDate"`
	Description       string         `json:"description"`
	Status            FirmwareStatus `json:"status"`
	TargetPrinters    []string       `json:"targetPrinters"`
	Progress          *int           `json:"progress,omitempty"`
	Storage           StorageLocator `json:"storage"`
	UploadedBy        string         `json:"uploadedBy"`
	Checksum          string         `json:"checksum"`
	DeployedBy        string         `json:"deployedBy,omitempty"`
	DeploymentStarted *time.Time     `json:"deploymentStarted,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	CancelledBy       string         `json:"cancelledBy,omitempty"`
	CancelledAt       *time.Time     `json:"cancelledAt,omitempty"`
	FailedAt          *time.Time     `json:"failedAt,omitempty"`
	Error             string         `json:"error,omitempty"`

	// Deleting is set while the stored bytes are being released; such an
	// entry can no longer be deployed.
	Deleting bool `json:"-"`
}

// Clone returns a deep copy of the entry.
func (f *FirmwareUpdate) Clone() *FirmwareUpdate {
	c := *f
	c.TargetPrinters = append([]string(nil), f.TargetPrinters...)
	if f.Progress != nil {
		v := *f.Progress
		c.Progress = &v
	}
	c.DeploymentStarted = cloneTime(f.DeploymentStarted)
	c.CompletedAt = cloneTime(f.CompletedAt)
	c.CancelledAt = cloneTime(f.CancelledAt)
	c.FailedAt = cloneTime(f.FailedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
