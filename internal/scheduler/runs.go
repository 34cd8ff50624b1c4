package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ClosingRun records that the period ending on ClosingDate was billed.
type ClosingRun struct {
	ClosingDate    string    `gorm:"primaryKey;type:text"`
	RunID          string    `gorm:"type:text;not null"`
	GeneratedCount int       `gorm:"not null"`
	SkippedCount   int       `gorm:"not null"`
	FailedCount    int       `gorm:"not null"`
	StartedAt      time.Time `gorm:"not null"`
	FinishedAt     time.Time `gorm:"not null"`
}

func (ClosingRun) TableName() string { return "invoice_closing_runs" }

func findRun(ctx context.Context, db *gorm.DB, closingDate string) (*ClosingRun, error) {
	var run ClosingRun
	err := db.WithContext(ctx).Raw(
		`SELECT closing_date, run_id, generated_count, skipped_count, failed_count, started_at, finished_at
		 FROM invoice_closing_runs WHERE closing_date = ?`,
		closingDate,
	).Scan(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ClosingDate == "" {
		return nil, nil
	}
	return &run, nil
}

func insertRun(ctx context.Context, db *gorm.DB, run *ClosingRun) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoice_closing_runs (closing_date, run_id, generated_count, skipped_count, failed_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ClosingDate, run.RunID, run.GeneratedCount, run.SkippedCount, run.FailedCount, run.StartedAt, run.FinishedAt,
	).Error
}
