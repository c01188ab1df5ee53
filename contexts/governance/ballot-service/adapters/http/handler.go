package httpadapter

import (
	"context"
	"log/slog"

	"asamblea/contexts/governance/ballot-service/application"
	"asamblea/contexts/governance/ballot-service/domain/entities"
	"asamblea/contexts/governance/ballot-service/domain/services"
	httptransport "asamblea/contexts/governance/ballot-service/transport/http"
	"asamblea/internal/shared/identity"
)

// Handler adapts transport DTOs to application commands. Routing, auth
// extraction and status mapping live in the platform http server.
type Handler struct {
	Ballots   application.BallotService
	Votes     application.VoteService
	Attendees application.AttendeeService
	Logger    *slog.Logger
}

func (h Handler) CreateBallotHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.CreateBallotRequest,
) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.Create(ctx, electionID, req.Title, actor)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return ballotResponse(ballot, nil), nil
}

func (h Handler) ListBallotsHandler(ctx context.Context, electionID int64) (httptransport.BallotListResponse, error) {
	ballots, err := h.Ballots.List(ctx, electionID)
	if err != nil {
		return httptransport.BallotListResponse{}, err
	}
	items := make([]httptransport.BallotResponse, 0, len(ballots))
	for _, item := range ballots {
		items = append(items, ballotResponse(item.Ballot, item.Options))
	}
	return httptransport.BallotListResponse{Items: items}, nil
}

func (h Handler) CreateOptionHandler(
	ctx context.Context,
	actor identity.Principal,
	ballotID int64,
	req httptransport.CreateOptionRequest,
) (httptransport.BallotOptionResponse, error) {
	option, err := h.Ballots.CreateOption(ctx, ballotID, req.Text, actor)
	if err != nil {
		return httptransport.BallotOptionResponse{}, err
	}
	return httptransport.BallotOptionResponse{ID: option.ID, Text: option.Text}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	actor identity.Principal,
	ballotID int64,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.Cast(ctx, application.CastVoteCommand{
		BallotID:   ballotID,
		OptionID:   req.OptionID,
		AttendeeID: req.AttendeeID,
		Actor:      actor,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		BallotID:   vote.BallotID,
		OptionID:   vote.OptionID,
		AttendeeID: vote.AttendeeID,
		Weight:     vote.Weight,
		CreatedBy:  vote.CreatedBy,
		CreatedAt:  vote.CreatedAt,
	}, nil
}

func (h Handler) VoteAllHandler(
	ctx context.Context,
	actor identity.Principal,
	ballotID int64,
	req httptransport.VoteAllRequest,
) (httptransport.VoteAllResponse, error) {
	count, err := h.Votes.CastAll(ctx, ballotID, req.OptionID, actor)
	if err != nil {
		return httptransport.VoteAllResponse{}, err
	}
	return httptransport.VoteAllResponse{Votes: count}, nil
}

func (h Handler) CloseBallotHandler(ctx context.Context, actor identity.Principal, ballotID int64) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.Close(ctx, ballotID, actor)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return ballotResponse(ballot, nil), nil
}

func (h Handler) ReopenBallotHandler(ctx context.Context, actor identity.Principal, ballotID int64) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.Reopen(ctx, ballotID, actor)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return ballotResponse(ballot, nil), nil
}

func (h Handler) BallotResultsHandler(ctx context.Context, ballotID int64) (httptransport.BallotResultsResponse, error) {
	results, err := h.Ballots.Results(ctx, ballotID)
	if err != nil {
		return httptransport.BallotResultsResponse{}, err
	}
	return httptransport.BallotResultsResponse{
		BallotID: ballotID,
		Results:  resultItems(results),
	}, nil
}

func (h Handler) ImportAttendeesHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.ImportAttendeesRequest,
) (httptransport.ImportAttendeesResponse, error) {
	rows := make([]application.AttendeeCreate, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, application.AttendeeCreate{
			Identifier:    row.Identifier,
			Accionista:    row.Accionista,
			Representante: row.Representante,
			Apoderado:     row.Apoderado,
			Acciones:      row.Acciones,
		})
	}
	result, err := h.Attendees.Import(ctx, electionID, rows, actor)
	if err != nil {
		return httptransport.ImportAttendeesResponse{}, err
	}
	resp := httptransport.ImportAttendeesResponse{
		Imported: make([]httptransport.AttendeeResponse, 0, len(result.Imported)),
		Failed:   make([]httptransport.ImportRowFailureItem, 0, len(result.Failed)),
	}
	for _, attendee := range result.Imported {
		resp.Imported = append(resp.Imported, attendeeResponse(attendee))
	}
	for _, failure := range result.Failed {
		resp.Failed = append(resp.Failed, httptransport.ImportRowFailureItem{
			Index:      failure.Index,
			Identifier: failure.Identifier,
			Reason:     failure.Reason,
		})
	}
	return resp, nil
}

func (h Handler) ListAttendeesHandler(ctx context.Context, electionID int64) (httptransport.AttendeeListResponse, error) {
	attendees, err := h.Attendees.List(ctx, electionID)
	if err != nil {
		return httptransport.AttendeeListResponse{}, err
	}
	items := make([]httptransport.AttendeeResponse, 0, len(attendees))
	for _, attendee := range attendees {
		items = append(items, attendeeResponse(attendee))
	}
	return httptransport.AttendeeListResponse{Items: items}, nil
}

func ballotResponse(ballot entities.Ballot, options []entities.BallotOption) httptransport.BallotResponse {
	resp := httptransport.BallotResponse{
		ID:     ballot.ID,
		Title:  ballot.Title,
		Order:  ballot.Order,
		Status: string(ballot.Status),
	}
	for _, option := range options {
		resp.Options = append(resp.Options, httptransport.BallotOptionResponse{
			ID:   option.ID,
			Text: option.Text,
		})
	}
	return resp
}

func resultItems(results []services.OptionResult) []httptransport.OptionResultItem {
	items := make([]httptransport.OptionResultItem, 0, len(results))
	for _, result := range results {
		items = append(items, httptransport.OptionResultItem{
			OptionID: result.OptionID,
			Text:     result.Text,
			Count:    result.Count,
			Weight:   result.Weight,
		})
	}
	return items
}

func attendeeResponse(attendee entities.Attendee) httptransport.AttendeeResponse {
	return httptransport.AttendeeResponse{
		ID:            attendee.ID,
		Identifier:    attendee.Identifier,
		Accionista:    attendee.Accionista,
		Representante: attendee.Representante,
		Apoderado:     attendee.Apoderado,
		Acciones:      attendee.Acciones,
	}
}
