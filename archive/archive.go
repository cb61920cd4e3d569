// Package archive persists completed signal sets as named, timestamped scans.
//
// Every operation is a single non-transactional statement. Failures are
// logged and reported through nil/false sentinels; callers should treat a
// sentinel as "did not take effect" and must not retry automatically.
package archive

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"horizon-scanner/database"
	"horizon-scanner/models"
)

type Archive struct {
	db        *gorm.DB
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	onFailure func(op string)
}

type Option func(*Archive)

func WithClock(now func() time.Time) Option {
	return func(a *Archive) { a.now = now }
}

// WithFailureHook is called with the operation name whenever a sentinel is
// returned because of a database error.
func WithFailureHook(hook func(op string)) Option {
	return func(a *Archive) { a.onFailure = hook }
}

func New(db *gorm.DB, logger *zap.Logger, opts ...Option) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Archive{
		db:        db,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		onFailure: func(string) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Migrate creates the scans table.
func (a *Archive) Migrate() error {
	return database.Migrate(a.db, &scanRecord{})
}

func (a *Archive) fail(op string, err error, fields ...zap.Field) {
	a.logger.Error("Archive operation failed", append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
	a.onFailure(op)
}

// Save stores signals under the default title for params. It returns nil when
// the row could not be written.
func (a *Archive) Save(ctx context.Context, params models.SearchParams, signals []models.Signal) *models.Scan {
	now := a.now().UTC()
	rec := scanRecord{
		ID:        a.newID(),
		Title:     params.DefaultTitle(),
		Domain:    params.Domain,
		Geography: params.Geography,
		Timeline:  params.Timeline,
		Signals:   datatypes.NewJSONType(signals),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if params.DetailedContext != "" {
		detail := params.DetailedContext
		rec.DetailedContext = &detail
	}

	if err := a.db.WithContext(ctx).Create(&rec).Error; err != nil {
		a.fail("save", err, zap.String("domain", params.Domain))
		return nil
	}
	a.logger.Info("Scan archived", zap.String("id", rec.ID), zap.Int("signals", len(signals)))
	scan := rec.toScan()
	return &scan
}

// List returns every scan, newest first. It returns an empty slice on failure.
func (a *Archive) List(ctx context.Context) []models.Scan {
	var recs []scanRecord
	if err := a.db.WithContext(ctx).Order("created_at DESC").Find(&recs).Error; err != nil {
		a.fail("list", err)
		return []models.Scan{}
	}
	scans := make([]models.Scan, len(recs))
	for i, r := range recs {
		scans[i] = r.toScan()
	}
	return scans
}

// Get returns one scan or nil when it does not exist or cannot be read.
func (a *Archive) Get(ctx context.Context, id string) *models.Scan {
	var rec scanRecord
	err := a.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.fail("get", err, zap.String("id", id))
		}
		return nil
	}
	scan := rec.toScan()
	return &scan
}

// Rename sets a new title. Blank titles and unknown ids are not applied.
func (a *Archive) Rename(ctx context.Context, id, title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	res := a.db.WithContext(ctx).Model(&scanRecord{}).Where("id = ?", id).
		Updates(map[string]any{"title": title, "updated_at": a.now().UTC()})
	if res.Error != nil {
		a.fail("rename", res.Error, zap.String("id", id))
		return false
	}
	return res.RowsAffected > 0
}

// Delete removes a scan. Unknown ids are not applied.
func (a *Archive) Delete(ctx context.Context, id string) bool {
	res := a.db.WithContext(ctx).Where("id = ?", id).Delete(&scanRecord{})
	if res.Error != nil {
		a.fail("delete", res.Error, zap.String("id", id))
		return false
	}
	return res.RowsAffected > 0
}
