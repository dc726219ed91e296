package logger

import (
	"context"
	"time"

	"github.com/squeakroad/case-service/internal/domain"
	"gorm.io/gorm"
)

type CaseFailedEvent struct {
	ID                uint `gorm:"primaryKey"`
	ListingPublicID   string
	BuyerID           int64
	Kind              string
	Reason            string
	OrphanInvoiceHash string `gorm:"index"`
	Timestamp         time.Time
}

func (CaseFailedEvent) TableName() string {
	return "case_failures"
}

type PGCaseEventLogger struct {
	db *gorm.DB
}

func NewPGCaseEventLogger(db *gorm.DB) *PGCaseEventLogger {
	return &PGCaseEventLogger{db: db}
}

func (l *PGCaseEventLogger) LogCaseFailed(ctx context.Context, failure domain.CaseFailure) error {
	event := CaseFailedEvent{
		ListingPublicID:   failure.ListingPublicID,
		BuyerID:           failure.BuyerID,
		Kind:              failure.Kind,
		Reason:            failure.Reason,
		OrphanInvoiceHash: failure.OrphanInvoiceHash,
		Timestamp:         failure.Timestamp,
	}
	return l.db.WithContext(ctx).Create(&event).Error
}
