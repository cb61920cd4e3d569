package archive

import (
	"time"

	"gorm.io/datatypes"

	"horizon-scanner/models"
)

// scanRecord is the row layout of the scans table. Signals are stored as one
// JSON document, never as child rows.
type scanRecord struct {
	ID              string                              `gorm:"primaryKey;type:text"`
	Title           string                              `gorm:"not null"`
	Domain          string                              `gorm:"not null"`
	Geography       string                              `gorm:"not null"`
	Timeline        string                              `gorm:"not null"`
	DetailedContext *string                             `gorm:"column:detailed_context"`
	Signals         datatypes.JSONType[[]models.Signal] `gorm:"not null"`
	CreatedAt       time.Time                           `gorm:"index"`
	UpdatedAt       time.Time
}

func (scanRecord) TableName() string { return "scans" }

func (r scanRecord) toScan() models.Scan {
	scan := models.Scan{
		ID:        r.ID,
		Title:     r.Title,
		Domain:    r.Domain,
		Geography: r.Geography,
		Timeline:  r.Timeline,
		Signals:   r.Signals.Data(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.DetailedContext != nil {
		scan.DetailedContext = *r.DetailedContext
	}
	if scan.Signals == nil {
		scan.Signals = []models.Signal{}
	}
	return scan
}
