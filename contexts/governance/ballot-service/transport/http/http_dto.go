package http

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateBallotRequest struct {
	Title string `json:"title"`
}

type BallotOptionResponse struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type BallotResponse struct {
	ID      int64                  `json:"id"`
	Title   string                 `json:"title"`
	Order   int                    `json:"order"`
	Status  string                 `json:"status"`
	Options []BallotOptionResponse `json:"options,omitempty"`
}

type BallotListResponse struct {
	Items []BallotResponse `json:"items"`
}

type CreateOptionRequest struct {
	Text string `json:"text"`
}

type CastVoteRequest struct {
	OptionID   int64 `json:"option_id"`
	AttendeeID int64 `json:"attendee_id"`
}

type VoteResponse struct {
	BallotID   int64           `json:"ballot_id"`
	OptionID   int64           `json:"option_id"`
	AttendeeID int64           `json:"attendee_id"`
	Weight     decimal.Decimal `json:"weight"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

type VoteAllRequest struct {
	OptionID int64 `json:"option_id"`
}

type VoteAllResponse struct {
	Votes int `json:"votes"`
}

type OptionResultItem struct {
	OptionID int64           `json:"option_id"`
	Text     string          `json:"text"`
	Count    int             `json:"count"`
	Weight   decimal.Decimal `json:"weight"`
}

type BallotResultsResponse struct {
	BallotID int64              `json:"ballot_id"`
	Results  []OptionResultItem `json:"results"`
}

type AttendeeRowRequest struct {
	Identifier    string          `json:"identifier"`
	Accionista    string          `json:"accionista"`
	Representante string          `json:"representante,omitempty"`
	Apoderado     string          `json:"apoderado,omitempty"`
	Acciones      decimal.Decimal `json:"acciones"`
}

type ImportAttendeesRequest struct {
	Rows []AttendeeRowRequest `json:"rows"`
}

type AttendeeResponse struct {
	ID            int64           `json:"id"`
	Identifier    string          `json:"identifier"`
	Accionista    string          `json:"accionista"`
	Representante string          `json:"representante,omitempty"`
	Apoderado     string          `json:"apoderado,omitempty"`
	Acciones      decimal.Decimal `json:"acciones"`
}

type AttendeeListResponse struct {
	Items []AttendeeResponse `json:"items"`
}

type ImportRowFailureItem struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

type ImportAttendeesResponse struct {
	Imported []AttendeeResponse     `json:"imported"`
	Failed   []ImportRowFailureItem `json:"failed"`
}
