package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"asamblea/contexts/governance/assembly-service/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	"asamblea/contexts/governance/assembly-service/ports"
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

func (r *Repository) SaveShareholder(ctx context.Context, sh entities.Shareholder) (entities.Shareholder, error) {
	row := shareholderFromEntity(sh)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Shareholder{}, domainerrors.ErrDuplicateCode
		}
		return entities.Shareholder{}, r.logError("assembly_repo_save_shareholder_failed", err,
			"shareholder_code", strings.TrimSpace(sh.Code),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetShareholder(ctx context.Context, shareholderID int64) (entities.Shareholder, bool, error) {
	var row shareholderRow
	err := r.db.WithContext(ctx).
		Where("id = ?", shareholderID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Shareholder{}, false, nil
		}
		return entities.Shareholder{}, false, r.logError("assembly_repo_get_shareholder_failed", err,
			"shareholder_id", shareholderID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetShareholderByCode(ctx context.Context, code string) (entities.Shareholder, bool, error) {
	var row shareholderRow
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Shareholder{}, false, nil
		}
		return entities.Shareholder{}, false, r.logError("assembly_repo_get_shareholder_by_code_failed", err,
			"shareholder_code", strings.TrimSpace(code),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListShareholders(ctx context.Context) ([]entities.Shareholder, error) {
	var rows []shareholderRow
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_shareholders_failed", err)
	}
	items := make([]entities.Shareholder, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetAttendance(ctx context.Context, electionID, shareholderID int64) (entities.Attendance, bool, error) {
	var row attendanceRow
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("shareholder_id = ?", shareholderID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Attendance{}, false, nil
		}
		return entities.Attendance{}, false, r.logError("assembly_repo_get_attendance_failed", err,
			"election_id", electionID,
			"shareholder_id", shareholderID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveAttendanceChanges(ctx context.Context, changes []ports.AttendanceChange) ([]entities.Attendance, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	saved := make([]entities.Attendance, 0, len(changes))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			row := attendanceFromEntity(change.Attendance)
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			hist := historyFromEntity(change.History)
			hist.AttendanceID = row.ID
			if err := tx.Create(&hist).Error; err != nil {
				return err
			}
			saved = append(saved, row.toEntity())
		}
		return nil
	})
	if err != nil {
		return nil, r.logError("assembly_repo_save_attendance_changes_failed", err,
			"changes", len(changes),
		)
	}
	return saved, nil
}

func (r *Repository) ListAttendances(ctx context.Context, electionID int64) ([]entities.Attendance, error) {
	var rows []attendanceRow
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_attendances_failed", err, "election_id", electionID)
	}
	items := make([]entities.Attendance, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListAttendanceHistory(ctx context.Context, attendanceID int64) ([]entities.AttendanceHistory, error) {
	var rows []attendanceHistoryRow
	if err := r.db.WithContext(ctx).
		Where("attendance_id = ?", attendanceID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_attendance_history_failed", err, "attendance_id", attendanceID)
	}
	items := make([]entities.AttendanceHistory, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveProxy(ctx context.Context, proxy entities.Proxy) (entities.Proxy, error) {
	row := proxyFromEntity(proxy)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Proxy{}, domainerrors.ErrDuplicateProxyNumDoc
		}
		return entities.Proxy{}, r.logError("assembly_repo_save_proxy_failed", err,
			"election_id", proxy.ElectionID,
			"num_doc", strings.TrimSpace(proxy.NumDoc),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetProxy(ctx context.Context, proxyID int64) (entities.Proxy, bool, error) {
	var row proxyRow
	err := r.db.WithContext(ctx).
		Where("id = ?", proxyID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proxy{}, false, nil
		}
		return entities.Proxy{}, false, r.logError("assembly_repo_get_proxy_failed", err, "proxy_id", proxyID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetProxyByNumDoc(ctx context.Context, electionID int64, numDoc string) (entities.Proxy, bool, error) {
	var row proxyRow
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Where("num_doc = ?", strings.TrimSpace(numDoc)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proxy{}, false, nil
		}
		return entities.Proxy{}, false, r.logError("assembly_repo_get_proxy_by_num_doc_failed", err,
			"election_id", electionID,
			"num_doc", strings.TrimSpace(numDoc),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListProxies(ctx context.Context, electionID int64) ([]entities.Proxy, error) {
	var rows []proxyRow
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_proxies_failed", err, "election_id", electionID)
	}
	items := make([]entities.Proxy, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveAssignments(ctx context.Context, assignments []entities.ProxyAssignment) ([]entities.ProxyAssignment, error) {
	if len(assignments) == 0 {
		return nil, nil
	}
	saved := make([]entities.ProxyAssignment, 0, len(assignments))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, assignment := range assignments {
			row := proxyAssignmentRow{
				ID:                    assignment.ID,
				ProxyID:               assignment.ProxyID,
				ShareholderID:         assignment.ShareholderID,
				WeightActionsSnapshot: assignment.WeightActionsSnapshot,
				ValidFrom:             assignment.ValidFrom,
				ValidUntil:            assignment.ValidUntil,
			}
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
			saved = append(saved, row.toEntity())
		}
		return nil
	})
	if err != nil {
		return nil, r.logError("assembly_repo_save_assignments_failed", err, "assignments", len(assignments))
	}
	return saved, nil
}

func (r *Repository) ListAssignmentsByProxy(ctx context.Context, proxyID int64) ([]entities.ProxyAssignment, error) {
	var rows []proxyAssignmentRow
	if err := r.db.WithContext(ctx).
		Where("proxy_id = ?", proxyID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_assignments_by_proxy_failed", err, "proxy_id", proxyID)
	}
	items := make([]entities.ProxyAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListAssignmentsByElection(ctx context.Context, electionID int64) ([]entities.ProxyAssignment, error) {
	var rows []proxyAssignmentRow
	err := r.db.WithContext(ctx).
		Table("proxy_assignments AS a").
		Select("a.*").
		Joins("JOIN proxies AS p ON p.id = a.proxy_id").
		Where("p.election_id = ?", electionID).
		Order("a.id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("assembly_repo_list_assignments_by_election_failed", err, "election_id", electionID)
	}
	items := make([]entities.ProxyAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) HasActiveProxy(ctx context.Context, electionID, shareholderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("proxy_assignments AS a").
		Joins("JOIN proxies AS p ON p.id = a.proxy_id").
		Where("p.election_id = ?", electionID).
		Where("a.shareholder_id = ?", shareholderID).
		Where("p.status = ?", string(entities.ProxyValid)).
		Where("p.present = ?", true).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("assembly_repo_has_active_proxy_failed", err,
			"election_id", electionID,
			"shareholder_id", shareholderID,
		)
	}
	return count > 0, nil
}

func (r *Repository) SavePerson(ctx context.Context, person entities.Person) (entities.Person, error) {
	row := personRow{
		ID:       person.ID,
		Type:     string(person.Type),
		Name:     person.Name,
		Document: person.Document,
		Email:    person.Email,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return entities.Person{}, r.logError("assembly_repo_save_person_failed", err,
			"person_document", strings.TrimSpace(person.Document),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetPerson(ctx context.Context, personID int64) (entities.Person, bool, error) {
	var row personRow
	err := r.db.WithContext(ctx).
		Where("id = ?", personID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Person{}, false, nil
		}
		return entities.Person{}, false, r.logError("assembly_repo_get_person_failed", err, "person_id", personID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListPersons(ctx context.Context) ([]entities.Person, error) {
	var rows []personRow
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_persons_failed", err)
	}
	items := make([]entities.Person, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) (entities.Election, error) {
	row := electionFromEntity(election)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return entities.Election{}, r.logError("assembly_repo_save_election_failed", err,
			"election_id", election.ID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetElection(ctx context.Context, electionID int64) (entities.Election, bool, error) {
	var row electionRow
	err := r.db.WithContext(ctx).
		Where("id = ?", electionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, false, nil
		}
		return entities.Election{}, false, r.logError("assembly_repo_get_election_failed", err, "election_id", electionID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionRow
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_elections_failed", err)
	}
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/assembly-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("assembly repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ShareholderRepository = (*Repository)(nil)
var _ ports.AttendanceRepository = (*Repository)(nil)
var _ ports.ProxyRepository = (*Repository)(nil)
var _ ports.PersonRepository = (*Repository)(nil)
var _ ports.ElectionRepository = (*Repository)(nil)
