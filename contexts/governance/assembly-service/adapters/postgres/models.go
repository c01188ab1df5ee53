package postgresadapter

import (
	"time"

	"github.com/shopspring/decimal"

	"asamblea/contexts/governance/assembly-service/domain/entities"
)

type shareholderRow struct {
	ID        int64           `gorm:"primaryKey"`
	Code      string          `gorm:"uniqueIndex;not null"`
	Name      string          `gorm:"not null"`
	Document  string          `gorm:"not null"`
	Email     string
	Actions   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status    string          `gorm:"not null;default:'ACTIVE'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (shareholderRow) TableName() string { return "shareholders" }

type attendanceRow struct {
	ID            int64  `gorm:"primaryKey"`
	ElectionID    int64  `gorm:"index:idx_attendance_key,unique;not null"`
	ShareholderID int64  `gorm:"index:idx_attendance_key,unique;not null"`
	Mode          string `gorm:"not null;default:'AUSENTE'"`
	Present       bool   `gorm:"not null;default:false"`
	MarkedBy      string
	MarkedAt      time.Time
	Evidence      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (attendanceRow) TableName() string { return "attendances" }

type attendanceHistoryRow struct {
	ID           int64 `gorm:"primaryKey"`
	AttendanceID int64 `gorm:"index;not null"`
	FromMode     string
	ToMode       string
	FromPresent  bool
	ToPresent    bool
	ChangedBy    string `gorm:"not null"`
	ChangedAt    time.Time
	Reason       string
	IP           string
	UserAgent    string
}

func (attendanceHistoryRow) TableName() string { return "attendance_history" }

type personRow struct {
	ID       int64  `gorm:"primaryKey"`
	Type     string `gorm:"not null"`
	Name     string `gorm:"not null"`
	Document string `gorm:"not null"`
	Email    string
}

func (personRow) TableName() string { return "persons" }

type proxyRow struct {
	ID            int64  `gorm:"primaryKey"`
	ElectionID    int64  `gorm:"index:idx_proxy_numdoc,unique;not null"`
	ProxyPersonID int64  `gorm:"not null"`
	TipoDoc       string `gorm:"not null"`
	NumDoc        string `gorm:"index:idx_proxy_numdoc,unique;not null"`
	FechaOtorg    time.Time
	FechaVigencia *time.Time
	PdfURL        string
	Status        string `gorm:"not null;default:'VALID'"`
	Mode          string `gorm:"not null;default:'AUSENTE'"`
	Present       bool   `gorm:"not null;default:false"`
	MarkedBy      string
	MarkedAt      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (proxyRow) TableName() string { return "proxies" }

type proxyAssignmentRow struct {
	ID                    int64           `gorm:"primaryKey"`
	ProxyID               int64           `gorm:"index;not null"`
	ShareholderID         int64           `gorm:"index;not null"`
	WeightActionsSnapshot decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ValidFrom             *time.Time
	ValidUntil            *time.Time
}

func (proxyAssignmentRow) TableName() string { return "proxy_assignments" }

type electionRow struct {
	ID                int64     `gorm:"primaryKey"`
	Name              string    `gorm:"not null"`
	Date              time.Time `gorm:"not null"`
	Status            string    `gorm:"not null;default:'DRAFT'"`
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	MinQuorum         *decimal.Decimal `gorm:"type:decimal(5,4)"`
	VotingOpen        bool             `gorm:"not null;default:false"`
	VotingOpenedAt    *time.Time
	VotingOpenedBy    string
	VotingClosedAt    *time.Time
	VotingClosedBy    string
	ClosedAt          *time.Time
	IsDemo            bool `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (electionRow) TableName() string { return "elections" }

// Models lists every table this adapter owns, for AutoMigrate.
func Models() []any {
	return []any{
		&shareholderRow{},
		&attendanceRow{},
		&attendanceHistoryRow{},
		&personRow{},
		&proxyRow{},
		&proxyAssignmentRow{},
		&electionRow{},
	}
}

func (r shareholderRow) toEntity() entities.Shareholder {
	return entities.Shareholder{
		ID:       r.ID,
		Code:     r.Code,
		Name:     r.Name,
		Document: r.Document,
		Email:    r.Email,
		Actions:  r.Actions,
		Status:   r.Status,
	}
}

func shareholderFromEntity(sh entities.Shareholder) shareholderRow {
	return shareholderRow{
		ID:       sh.ID,
		Code:     sh.Code,
		Name:     sh.Name,
		Document: sh.Document,
		Email:    sh.Email,
		Actions:  sh.Actions,
		Status:   sh.Status,
	}
}

func (r attendanceRow) toEntity() entities.Attendance {
	return entities.Attendance{
		ID:            r.ID,
		ElectionID:    r.ElectionID,
		ShareholderID: r.ShareholderID,
		Mode:          entities.AttendanceMode(r.Mode),
		MarkedBy:      r.MarkedBy,
		MarkedAt:      r.MarkedAt,
		Evidence:      r.Evidence,
	}
}

func attendanceFromEntity(att entities.Attendance) attendanceRow {
	return attendanceRow{
		ID:            att.ID,
		ElectionID:    att.ElectionID,
		ShareholderID: att.ShareholderID,
		Mode:          string(att.Mode),
		Present:       att.Present(),
		MarkedBy:      att.MarkedBy,
		MarkedAt:      att.MarkedAt,
		Evidence:      att.Evidence,
	}
}

func (r attendanceHistoryRow) toEntity() entities.AttendanceHistory {
	return entities.AttendanceHistory{
		ID:           r.ID,
		AttendanceID: r.AttendanceID,
		FromMode:     entities.AttendanceMode(r.FromMode),
		ToMode:       entities.AttendanceMode(r.ToMode),
		FromPresent:  r.FromPresent,
		ToPresent:    r.ToPresent,
		ChangedBy:    r.ChangedBy,
		ChangedAt:    r.ChangedAt,
		Reason:       r.Reason,
		IP:           r.IP,
		UserAgent:    r.UserAgent,
	}
}

func historyFromEntity(hist entities.AttendanceHistory) attendanceHistoryRow {
	return attendanceHistoryRow{
		ID:           hist.ID,
		AttendanceID: hist.AttendanceID,
		FromMode:     string(hist.FromMode),
		ToMode:       string(hist.ToMode),
		FromPresent:  hist.FromPresent,
		ToPresent:    hist.ToPresent,
		ChangedBy:    hist.ChangedBy,
		ChangedAt:    hist.ChangedAt,
		Reason:       hist.Reason,
		IP:           hist.IP,
		UserAgent:    hist.UserAgent,
	}
}

func (r personRow) toEntity() entities.Person {
	return entities.Person{
		ID:       r.ID,
		Type:     entities.PersonType(r.Type),
		Name:     r.Name,
		Document: r.Document,
		Email:    r.Email,
	}
}

func (r proxyRow) toEntity() entities.Proxy {
	return entities.Proxy{
		ID:            r.ID,
		ElectionID:    r.ElectionID,
		ProxyPersonID: r.ProxyPersonID,
		TipoDoc:       r.TipoDoc,
		NumDoc:        r.NumDoc,
		FechaOtorg:    r.FechaOtorg,
		FechaVigencia: r.FechaVigencia,
		PdfURL:        r.PdfURL,
		Status:        entities.ProxyStatus(r.Status),
		Mode:          entities.AttendanceMode(r.Mode),
		MarkedBy:      r.MarkedBy,
		MarkedAt:      r.MarkedAt,
	}
}

func proxyFromEntity(proxy entities.Proxy) proxyRow {
	return proxyRow{
		ID:            proxy.ID,
		ElectionID:    proxy.ElectionID,
		ProxyPersonID: proxy.ProxyPersonID,
		TipoDoc:       proxy.TipoDoc,
		NumDoc:        proxy.NumDoc,
		FechaOtorg:    proxy.FechaOtorg,
		FechaVigencia: proxy.FechaVigencia,
		PdfURL:        proxy.PdfURL,
		Status:        string(proxy.Status),
		Mode:          string(proxy.Mode),
		Present:       proxy.Present(),
		MarkedBy:      proxy.MarkedBy,
		MarkedAt:      proxy.MarkedAt,
	}
}

func (r proxyAssignmentRow) toEntity() entities.ProxyAssignment {
	return entities.ProxyAssignment{
		ID:                    r.ID,
		ProxyID:               r.ProxyID,
		ShareholderID:         r.ShareholderID,
		WeightActionsSnapshot: r.WeightActionsSnapshot,
		ValidFrom:             r.ValidFrom,
		ValidUntil:            r.ValidUntil,
	}
}

func (r electionRow) toEntity() entities.Election {
	return entities.Election{
		ID:                r.ID,
		Name:              r.Name,
		Date:              r.Date,
		Status:            entities.ElectionStatus(r.Status),
		RegistrationStart: r.RegistrationStart,
		RegistrationEnd:   r.RegistrationEnd,
		MinQuorum:         r.MinQuorum,
		VotingOpen:        r.VotingOpen,
		VotingOpenedAt:    r.VotingOpenedAt,
		VotingOpenedBy:    r.VotingOpenedBy,
		VotingClosedAt:    r.VotingClosedAt,
		VotingClosedBy:    r.VotingClosedBy,
		ClosedAt:          r.ClosedAt,
		IsDemo:            r.IsDemo,
	}
}

func electionFromEntity(election entities.Election) electionRow {
	return electionRow{
		ID:                election.ID,
		Name:              election.Name,
		Date:              election.Date,
		Status:            string(election.Status),
		RegistrationStart: election.RegistrationStart,
		RegistrationEnd:   election.RegistrationEnd,
		MinQuorum:         election.MinQuorum,
		VotingOpen:        election.VotingOpen,
		VotingOpenedAt:    election.VotingOpenedAt,
		VotingOpenedBy:    election.VotingOpenedBy,
		VotingClosedAt:    election.VotingClosedAt,
		VotingClosedBy:    election.VotingClosedBy,
		ClosedAt:          election.ClosedAt,
		IsDemo:            election.IsDemo,
	}
}
