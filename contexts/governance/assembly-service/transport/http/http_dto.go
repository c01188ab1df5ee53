package http

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	Name              string           `json:"name"`
	Date              time.Time        `json:"date"`
	RegistrationStart *time.Time       `json:"registration_start,omitempty"`
	RegistrationEnd   *time.Time       `json:"registration_end,omitempty"`
	MinQuorum         *decimal.Decimal `json:"min_quorum,omitempty"`
	IsDemo            bool             `json:"is_demo,omitempty"`

	// Questions seed the agenda: each entry becomes a ballot titled with
	// the question text, in request order.
	Questions []string `json:"questions,omitempty"`
}

type UpdateElectionStatusRequest struct {
	Status string `json:"status"`
}

type ElectionResponse struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Date              time.Time        `json:"date"`
	Status            string           `json:"status"`
	RegistrationStart *time.Time       `json:"registration_start,omitempty"`
	RegistrationEnd   *time.Time       `json:"registration_end,omitempty"`
	MinQuorum         *decimal.Decimal `json:"min_quorum,omitempty"`
	VotingOpen        bool             `json:"voting_open"`
	VotingOpenedAt    *time.Time       `json:"voting_opened_at,omitempty"`
	VotingClosedAt    *time.Time       `json:"voting_closed_at,omitempty"`
	ClosedAt          *time.Time       `json:"closed_at,omitempty"`
	IsDemo            bool             `json:"is_demo"`
}

type ElectionListResponse struct {
	Items []ElectionResponse `json:"items"`
}

type MarkAttendanceRequest struct {
	Code     string `json:"code"`
	Mode     string `json:"mode"`
	Evidence string `json:"evidence,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type BulkMarkAttendanceRequest struct {
	Codes    []string `json:"codes"`
	Mode     string   `json:"mode"`
	Evidence string   `json:"evidence,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

type AttendanceResponse struct {
	Code     string    `json:"code"`
	Mode     string    `json:"mode"`
	Present  bool      `json:"present"`
	MarkedBy string    `json:"marked_by"`
	MarkedAt time.Time `json:"marked_at"`
	Evidence string    `json:"evidence,omitempty"`
}

type BulkMarkFailureItem struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type BulkMarkAttendanceResponse struct {
	Updated []AttendanceResponse  `json:"updated"`
	Failed  []BulkMarkFailureItem `json:"failed"`
}

type AttendanceHistoryItem struct {
	FromMode    string    `json:"from_mode"`
	ToMode      string    `json:"to_mode"`
	FromPresent bool      `json:"from_present"`
	ToPresent   bool      `json:"to_present"`
	ChangedBy   string    `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
	Reason      string    `json:"reason,omitempty"`
}

type AttendanceHistoryResponse struct {
	Code  string                  `json:"code"`
	Items []AttendanceHistoryItem `json:"items"`
}

type QuorumSummaryResponse struct {
	Total                       int             `json:"total"`
	Presencial                  int             `json:"presencial"`
	Virtual                     int             `json:"virtual"`
	Ausente                     int             `json:"ausente"`
	Representado                int             `json:"representado"`
	CapitalSuscrito             decimal.Decimal `json:"capital_suscrito"`
	CapitalPresenteDirecto      decimal.Decimal `json:"capital_presente_directo"`
	CapitalPresenteRepresentado decimal.Decimal `json:"capital_presente_representado"`
	PorcentajeQuorum            decimal.Decimal `json:"porcentaje_quorum"`
}

type ObserverRowItem struct {
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	Estado                string `json:"estado"`
	Apoderado             string `json:"apoderado,omitempty"`
	AccionesPropias       string `json:"acciones_propias"`
	AccionesRepresentadas string `json:"acciones_representadas"`
	TotalQuorum           string `json:"total_quorum"`
}

type ObserverTableResponse struct {
	Summary QuorumSummaryResponse `json:"summary"`
	Rows    []ObserverRowItem     `json:"rows"`
}

type CreatePersonRequest struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email,omitempty"`
}

type PersonResponse struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email,omitempty"`
}

type PersonListResponse struct {
	Items []PersonResponse `json:"items"`
}

type ProxyAssignmentRequest struct {
	ShareholderID int64      `json:"shareholder_id"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
}

type CreateProxyRequest struct {
	ProxyPersonID int64                    `json:"proxy_person_id"`
	TipoDoc       string                   `json:"tipo_doc"`
	NumDoc        string                   `json:"num_doc"`
	FechaOtorg    time.Time                `json:"fecha_otorgamiento"`
	FechaVigencia *time.Time               `json:"fecha_vigencia,omitempty"`
	PdfURL        string                   `json:"pdf_url,omitempty"`
	Assignments   []ProxyAssignmentRequest `json:"assignments"`
}

type ProxyAssignmentResponse struct {
	ShareholderID         int64           `json:"shareholder_id"`
	WeightActionsSnapshot decimal.Decimal `json:"weight_actions_snapshot"`
	ValidFrom             *time.Time      `json:"valid_from,omitempty"`
	ValidUntil            *time.Time      `json:"valid_until,omitempty"`
}

type ProxyResponse struct {
	ID            int64                     `json:"id"`
	ProxyPersonID int64                     `json:"proxy_person_id"`
	TipoDoc       string                    `json:"tipo_doc"`
	NumDoc        string                    `json:"num_doc"`
	FechaOtorg    time.Time                 `json:"fecha_otorgamiento"`
	FechaVigencia *time.Time                `json:"fecha_vigencia,omitempty"`
	PdfURL        string                    `json:"pdf_url,omitempty"`
	Status        string                    `json:"status"`
	Mode          string                    `json:"mode"`
	Assignments   []ProxyAssignmentResponse `json:"assignments"`
}

type ProxyListResponse struct {
	Items []ProxyResponse `json:"items"`
}

type MarkProxyAttendanceRequest struct {
	Mode string `json:"mode"`
}

type ShareholderRowRequest struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Document string          `json:"document,omitempty"`
	Email    string          `json:"email,omitempty"`
	Actions  decimal.Decimal `json:"actions"`
}

type ImportShareholdersRequest struct {
	Rows []ShareholderRowRequest `json:"rows"`
}

type ShareholderResponse struct {
	ID       int64           `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Document string          `json:"document,omitempty"`
	Email    string          `json:"email,omitempty"`
	Actions  decimal.Decimal `json:"actions"`
	Status   string          `json:"status"`
}

type ShareholderListResponse struct {
	Items []ShareholderResponse `json:"items"`
}

type ImportRowFailureItem struct {
	Index  int    `json:"index"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type ImportShareholdersResponse struct {
	Imported []ShareholderResponse  `json:"imported"`
	Failed   []ImportRowFailureItem `json:"failed"`
}
