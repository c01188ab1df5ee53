package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"asamblea/contexts/governance/ballot-service/domain/entities"
	"asamblea/contexts/governance/ballot-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveBallot(ctx context.Context, ballot entities.Ballot) (entities.Ballot, error) {
	row := ballotFromEntity(ballot)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return entities.Ballot{}, r.logError("ballot_repo_save_ballot_failed", err,
			"election_id", ballot.ElectionID,
			"ballot_id", ballot.ID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetBallot(ctx context.Context, ballotID int64) (entities.Ballot, bool, error) {
	var row ballotRow
	err := r.db.WithContext(ctx).
		Where("id = ?", ballotID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.logError("ballot_repo_get_ballot_failed", err, "ballot_id", ballotID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListBallots(ctx context.Context, electionID int64) ([]entities.Ballot, error) {
	var rows []ballotRow
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_ballots_failed", err, "election_id", electionID)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveOption(ctx context.Context, option entities.BallotOption) (entities.BallotOption, error) {
	row := ballotOptionRow{
		ID:       option.ID,
		BallotID: option.BallotID,
		Text:     option.Text,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return entities.BallotOption{}, r.logError("ballot_repo_save_option_failed", err,
			"ballot_id", option.BallotID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetOption(ctx context.Context, optionID int64) (entities.BallotOption, bool, error) {
	var row ballotOptionRow
	err := r.db.WithContext(ctx).
		Where("id = ?", optionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BallotOption{}, false, nil
		}
		return entities.BallotOption{}, false, r.logError("ballot_repo_get_option_failed", err, "option_id", optionID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListOptions(ctx context.Context, ballotID int64) ([]entities.BallotOption, error) {
	var rows []ballotOptionRow
	if err := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_options_failed", err, "ballot_id", ballotID)
	}
	items := make([]entities.BallotOption, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveAttendee(ctx context.Context, attendee entities.Attendee) (entities.Attendee, error) {
	row := attendeeFromEntity(attendee)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return entities.Attendee{}, r.logError("ballot_repo_save_attendee_failed", err,
			"election_id", attendee.ElectionID,
			"identifier", strings.TrimSpace(attendee.Identifier),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetAttendee(ctx context.Context, attendeeID int64) (entities.Attendee, bool, error) {
	var row attendeeRow
	err := r.db.WithContext(ctx).
		Where("id = ?", attendeeID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Attendee{}, false, nil
		}
		return entities.Attendee{}, false, r.logError("ballot_repo_get_attendee_failed", err, "attendee_id", attendeeID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetAttendeeByIdentifier(ctx context.Context, electionID int64, identifier string) (entities.Attendee, bool, error) {
	var row attendeeRow
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("identifier = ?", strings.TrimSpace(identifier)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Attendee{}, false, nil
		}
		return entities.Attendee{}, false, r.logError("ballot_repo_get_attendee_by_identifier_failed", err,
			"election_id", electionID,
			"identifier", strings.TrimSpace(identifier),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListAttendees(ctx context.Context, electionID int64) ([]entities.Attendee, error) {
	var rows []attendeeRow
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_attendees_failed", err, "election_id", electionID)
	}
	items := make([]entities.Attendee, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveVotes(ctx context.Context, votes []entities.Vote) ([]entities.Vote, error) {
	if len(votes) == 0 {
		return nil, nil
	}
	saved := make([]entities.Vote, 0, len(votes))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, vote := range votes {
			row := voteRow{
				ID:         vote.ID,
				BallotID:   vote.BallotID,
				AttendeeID: vote.AttendeeID,
				OptionID:   vote.OptionID,
				Weight:     vote.Weight,
				CreatedBy:  vote.CreatedBy,
				CreatedAt:  vote.CreatedAt,
			}
			create := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "ballot_id"}, {Name: "attendee_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"option_id":  row.OptionID,
					"weight":     row.Weight,
					"created_by": row.CreatedBy,
					"created_at": row.CreatedAt,
				}),
			}).Create(&row)
			if create.Error != nil {
				return create.Error
			}
			var persisted voteRow
			if err := tx.
				Where("ballot_id = ?", row.BallotID).
				Where("attendee_id = ?", row.AttendeeID).
				First(&persisted).Error; err != nil {
				return err
			}
			saved = append(saved, persisted.toEntity())
		}
		return nil
	})
	if err != nil {
		return nil, r.logError("ballot_repo_save_votes_failed", err, "votes", len(votes))
	}
	return saved, nil
}

func (r *Repository) GetVoteByBallotAttendee(ctx context.Context, ballotID, attendeeID int64) (entities.Vote, bool, error) {
	var row voteRow
	err := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		Where("attendee_id = ?", attendeeID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("ballot_repo_get_vote_failed", err,
			"ballot_id", ballotID,
			"attendee_id", attendeeID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByBallot(ctx context.Context, ballotID int64) ([]entities.Vote, error) {
	var rows []voteRow
	if err := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_votes_failed", err, "ballot_id", ballotID)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/ballot-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.AttendeeRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
