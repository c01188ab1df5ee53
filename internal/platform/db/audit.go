package db

import (
	"context"
	"time"

	"gorm.io/gorm"

	"asamblea/internal/shared/audit"
)

type auditRow struct {
	ID         string `gorm:"primaryKey"`
	ElectionID int64  `gorm:"index;not null"`
	Username   string `gorm:"not null"`
	Action     string `gorm:"not null"`
	Details    string
	IP         string
	UserAgent  string
	At         time.Time
	CreatedAt  time.Time
}

func (auditRow) TableName() string { return "audit_log" }

// AuditRecorder persists audit entries through gorm. It serves both the
// Recorder and Reader sides of the audit port.
type AuditRecorder struct {
	db *gorm.DB
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db}
}

func (r *AuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	row := auditRow{
		ID:         entry.ID,
		ElectionID: entry.ElectionID,
		Username:   entry.Username,
		Action:     entry.Action,
		Details:    entry.Details,
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		At:         entry.At,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *AuditRecorder) List(ctx context.Context, electionID int64) ([]audit.Entry, error) {
	var rows []auditRow
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, audit.Entry{
			ID:         row.ID,
			ElectionID: row.ElectionID,
			Username:   row.Username,
			Action:     row.Action,
			Details:    row.Details,
			IP:         row.IP,
			UserAgent:  row.UserAgent,
			At:         row.At,
		})
	}
	return entries, nil
}

var _ audit.Recorder = (*AuditRecorder)(nil)
var _ audit.Reader = (*AuditRecorder)(nil)
