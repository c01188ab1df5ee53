package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"asamblea/internal/shared/identity"
)

type electionUserRoleRow struct {
	ID         int64  `gorm:"primaryKey"`
	ElectionID int64  `gorm:"index:idx_election_user,unique;not null"`
	Username   string `gorm:"index:idx_election_user,unique;not null"`
	Role       string `gorm:"not null"`
}

func (electionUserRoleRow) TableName() string { return "election_user_roles" }

// ElectionRoleStore is the gorm implementation of per-election role
// assignments. One row per (election, username); re-assigning replaces
// the role.
type ElectionRoleStore struct {
	db *gorm.DB
}

func NewElectionRoleStore(db *gorm.DB) *ElectionRoleStore {
	return &ElectionRoleStore{db: db}
}

func (s *ElectionRoleStore) AssignElectionRole(ctx context.Context, electionID int64, username string, role string) error {
	row := electionUserRoleRow{
		ElectionID: electionID,
		Username:   username,
		Role:       role,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_id"}, {Name: "username"}},
		DoUpdates: clause.Assignments(map[string]any{"role": role}),
	}).Create(&row).Error
}

func (s *ElectionRoleStore) RemoveElectionRole(ctx context.Context, electionID int64, username string) error {
	return s.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("username = ?", username).
		Delete(&electionUserRoleRow{}).Error
}

func (s *ElectionRoleStore) ListElectionRoles(ctx context.Context, electionID int64) ([]identity.ElectionUserRole, error) {
	var rows []electionUserRoleRow
	if err := s.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]identity.ElectionUserRole, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, identity.ElectionUserRole{
			ID:         row.ID,
			ElectionID: row.ElectionID,
			Username:   row.Username,
			Role:       row.Role,
		})
	}
	return roles, nil
}

func (s *ElectionRoleStore) HasElectionRole(ctx context.Context, electionID int64, username string, role string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&electionUserRoleRow{}).
		Where("election_id = ?", electionID).
		Where("username = ?", username).
		Where("role = ?", role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PlatformModels lists the platform-owned tables, for AutoMigrate.
func PlatformModels() []any {
	return []any{
		&auditRow{},
		&electionUserRoleRow{},
	}
}

var _ identity.ElectionRoleStore = (*ElectionRoleStore)(nil)
