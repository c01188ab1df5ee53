package httpadapter

import (
	"context"
	"log/slog"

	"asamblea/contexts/governance/assembly-service/application"
	"asamblea/contexts/governance/assembly-service/domain/entities"
	"asamblea/contexts/governance/assembly-service/domain/services"
	httptransport "asamblea/contexts/governance/assembly-service/transport/http"
	"asamblea/internal/shared/identity"
)

// Handler adapts transport DTOs to application commands. Routing, auth
// extraction and status mapping live in the platform http server.
type Handler struct {
	Elections    application.ElectionService
	Attendance   application.AttendanceService
	Proxies      application.ProxyService
	Shareholders application.ShareholderService
	Quorum       application.QuorumService
	Logger       *slog.Logger
}

func (h Handler) CreateElectionHandler(
	ctx context.Context,
	actor identity.Principal,
	req httptransport.CreateElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.Create(ctx, application.CreateElectionCommand{
		Name:              req.Name,
		Date:              req.Date,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		MinQuorum:         req.MinQuorum,
		IsDemo:            req.IsDemo,
		Actor:             actor,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return electionResponse(election), nil
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID int64) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.Get(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return electionResponse(election), nil
}

func (h Handler) ListElectionsHandler(ctx context.Context) (httptransport.ElectionListResponse, error) {
	elections, err := h.Elections.List(ctx)
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	items := make([]httptransport.ElectionResponse, 0, len(elections))
	for _, election := range elections {
		items = append(items, electionResponse(election))
	}
	return httptransport.ElectionListResponse{Items: items}, nil
}

func (h Handler) UpdateElectionStatusHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.UpdateElectionStatusRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.UpdateStatus(ctx, electionID, entities.ElectionStatus(req.Status), actor)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return electionResponse(election), nil
}

func (h Handler) StartVotingHandler(ctx context.Context, actor identity.Principal, electionID int64) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.StartVoting(ctx, electionID, actor)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return electionResponse(election), nil
}

func (h Handler) CloseVotingHandler(ctx context.Context, actor identity.Principal, electionID int64) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CloseVoting(ctx, electionID, actor)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return electionResponse(election), nil
}

func (h Handler) MarkAttendanceHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.MarkAttendanceRequest,
	ip string,
	userAgent string,
) (httptransport.AttendanceResponse, error) {
	attendance, err := h.Attendance.Mark(ctx, application.MarkAttendanceCommand{
		ElectionID: electionID,
		Code:       req.Code,
		Mode:       entities.AttendanceMode(req.Mode),
		Evidence:   req.Evidence,
		Reason:     req.Reason,
		Actor:      actor,
		IP:         ip,
		UserAgent:  userAgent,
	})
	if err != nil {
		return httptransport.AttendanceResponse{}, err
	}
	return httptransport.AttendanceResponse{
		Code:     req.Code,
		Mode:     string(attendance.Mode),
		Present:  attendance.Present(),
		MarkedBy: attendance.MarkedBy,
		MarkedAt: attendance.MarkedAt,
		Evidence: attendance.Evidence,
	}, nil
}

func (h Handler) BulkMarkAttendanceHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.BulkMarkAttendanceRequest,
	ip string,
	userAgent string,
) (httptransport.BulkMarkAttendanceResponse, error) {
	result, err := h.Attendance.BulkMark(ctx, application.BulkMarkCommand{
		ElectionID: electionID,
		Codes:      req.Codes,
		Mode:       entities.AttendanceMode(req.Mode),
		Evidence:   req.Evidence,
		Reason:     req.Reason,
		Actor:      actor,
		IP:         ip,
		UserAgent:  userAgent,
	})
	if err != nil {
		return httptransport.BulkMarkAttendanceResponse{}, err
	}
	resp := httptransport.BulkMarkAttendanceResponse{
		Updated: make([]httptransport.AttendanceResponse, 0, len(result.Updated)),
		Failed:  make([]httptransport.BulkMarkFailureItem, 0, len(result.Failed)),
	}
	for _, row := range result.Updated {
		resp.Updated = append(resp.Updated, httptransport.AttendanceResponse{
			Code:     row.Code,
			Mode:     row.Mode,
			Present:  row.Present,
			MarkedBy: row.MarkedBy,
			MarkedAt: row.MarkedAt,
		})
	}
	for _, failure := range result.Failed {
		resp.Failed = append(resp.Failed, httptransport.BulkMarkFailureItem{
			Code:   failure.Code,
			Reason: failure.Reason,
		})
	}
	return resp, nil
}

func (h Handler) AttendanceHistoryHandler(
	ctx context.Context,
	electionID int64,
	code string,
) (httptransport.AttendanceHistoryResponse, error) {
	history, err := h.Attendance.History(ctx, electionID, code)
	if err != nil {
		return httptransport.AttendanceHistoryResponse{}, err
	}
	items := make([]httptransport.AttendanceHistoryItem, 0, len(history))
	for _, entry := range history {
		items = append(items, httptransport.AttendanceHistoryItem{
			FromMode:    string(entry.FromMode),
			ToMode:      string(entry.ToMode),
			FromPresent: entry.FromPresent,
			ToPresent:   entry.ToPresent,
			ChangedBy:   entry.ChangedBy,
			ChangedAt:   entry.ChangedAt,
			Reason:      entry.Reason,
		})
	}
	return httptransport.AttendanceHistoryResponse{Code: code, Items: items}, nil
}

func (h Handler) QuorumSummaryHandler(ctx context.Context, electionID int64) (httptransport.QuorumSummaryResponse, error) {
	summary, err := h.Quorum.Summary(ctx, electionID)
	if err != nil {
		return httptransport.QuorumSummaryResponse{}, err
	}
	return quorumResponse(summary), nil
}

func (h Handler) ObserverTableHandler(ctx context.Context, electionID int64) (httptransport.ObserverTableResponse, error) {
	summary, err := h.Quorum.Summary(ctx, electionID)
	if err != nil {
		return httptransport.ObserverTableResponse{}, err
	}
	rows, err := h.Quorum.ObserverTable(ctx, electionID)
	if err != nil {
		return httptransport.ObserverTableResponse{}, err
	}
	items := make([]httptransport.ObserverRowItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, httptransport.ObserverRowItem{
			Code:                  row.Code,
			Name:                  row.Name,
			Estado:                row.Estado,
			Apoderado:             row.Apoderado,
			AccionesPropias:       row.AccionesPropias,
			AccionesRepresentadas: row.AccionesRepresentadas,
			TotalQuorum:           row.TotalQuorum,
		})
	}
	return httptransport.ObserverTableResponse{
		Summary: quorumResponse(summary),
		Rows:    items,
	}, nil
}

func (h Handler) CreatePersonHandler(
	ctx context.Context,
	req httptransport.CreatePersonRequest,
) (httptransport.PersonResponse, error) {
	person, err := h.Proxies.CreatePerson(ctx, entities.Person{
		Type:     entities.PersonType(req.Type),
		Name:     req.Name,
		Document: req.Document,
		Email:    req.Email,
	})
	if err != nil {
		return httptransport.PersonResponse{}, err
	}
	return personResponse(person), nil
}

func (h Handler) ListPersonsHandler(ctx context.Context) (httptransport.PersonListResponse, error) {
	persons, err := h.Proxies.ListPersons(ctx)
	if err != nil {
		return httptransport.PersonListResponse{}, err
	}
	items := make([]httptransport.PersonResponse, 0, len(persons))
	for _, person := range persons {
		items = append(items, personResponse(person))
	}
	return httptransport.PersonListResponse{Items: items}, nil
}

func (h Handler) CreateProxyHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.CreateProxyRequest,
	ip string,
	userAgent string,
) (httptransport.ProxyResponse, error) {
	assignments := make([]application.ProxyAssignmentInput, 0, len(req.Assignments))
	for _, assignment := range req.Assignments {
		assignments = append(assignments, application.ProxyAssignmentInput{
			ShareholderID: assignment.ShareholderID,
			ValidFrom:     assignment.ValidFrom,
			ValidUntil:    assignment.ValidUntil,
		})
	}
	result, err := h.Proxies.Create(ctx, application.CreateProxyCommand{
		ElectionID:    electionID,
		ProxyPersonID: req.ProxyPersonID,
		TipoDoc:       req.TipoDoc,
		NumDoc:        req.NumDoc,
		FechaOtorg:    req.FechaOtorg,
		FechaVigencia: req.FechaVigencia,
		PdfURL:        req.PdfURL,
		Assignments:   assignments,
		Actor:         actor,
		IP:            ip,
		UserAgent:     userAgent,
	})
	if err != nil {
		return httptransport.ProxyResponse{}, err
	}
	return proxyResponse(result), nil
}

func (h Handler) ListProxiesHandler(ctx context.Context, electionID int64) (httptransport.ProxyListResponse, error) {
	proxies, err := h.Proxies.List(ctx, electionID)
	if err != nil {
		return httptransport.ProxyListResponse{}, err
	}
	items := make([]httptransport.ProxyResponse, 0, len(proxies))
	for _, proxy := range proxies {
		items = append(items, proxyResponse(proxy))
	}
	return httptransport.ProxyListResponse{Items: items}, nil
}

func (h Handler) InvalidateProxyHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	proxyID int64,
) (httptransport.ProxyResponse, error) {
	proxy, err := h.Proxies.Invalidate(ctx, electionID, proxyID, actor)
	if err != nil {
		return httptransport.ProxyResponse{}, err
	}
	return proxyResponse(application.ProxyWithAssignments{Proxy: proxy}), nil
}

func (h Handler) MarkProxyAttendanceHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	proxyID int64,
	req httptransport.MarkProxyAttendanceRequest,
) (httptransport.ProxyResponse, error) {
	proxy, err := h.Proxies.MarkAttendance(ctx, electionID, proxyID, entities.AttendanceMode(req.Mode), actor)
	if err != nil {
		return httptransport.ProxyResponse{}, err
	}
	return proxyResponse(application.ProxyWithAssignments{Proxy: proxy}), nil
}

func (h Handler) ImportShareholdersHandler(
	ctx context.Context,
	actor identity.Principal,
	electionID int64,
	req httptransport.ImportShareholdersRequest,
) (httptransport.ImportShareholdersResponse, error) {
	rows := make([]application.ShareholderCreate, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, application.ShareholderCreate{
			Code:     row.Code,
			Name:     row.Name,
			Document: row.Document,
			Email:    row.Email,
			Actions:  row.Actions,
		})
	}
	result, err := h.Shareholders.Import(ctx, electionID, rows, actor)
	if err != nil {
		return httptransport.ImportShareholdersResponse{}, err
	}
	resp := httptransport.ImportShareholdersResponse{
		Imported: make([]httptransport.ShareholderResponse, 0, len(result.Imported)),
		Failed:   make([]httptransport.ImportRowFailureItem, 0, len(result.Failed)),
	}
	for _, sh := range result.Imported {
		resp.Imported = append(resp.Imported, shareholderResponse(sh))
	}
	for _, failure := range result.Failed {
		resp.Failed = append(resp.Failed, httptransport.ImportRowFailureItem{
			Index:  failure.Index,
			Code:   failure.Code,
			Reason: failure.Reason,
		})
	}
	return resp, nil
}

func (h Handler) ListShareholdersHandler(ctx context.Context) (httptransport.ShareholderListResponse, error) {
	shareholders, err := h.Shareholders.List(ctx)
	if err != nil {
		return httptransport.ShareholderListResponse{}, err
	}
	items := make([]httptransport.ShareholderResponse, 0, len(shareholders))
	for _, sh := range shareholders {
		items = append(items, shareholderResponse(sh))
	}
	return httptransport.ShareholderListResponse{Items: items}, nil
}

func (h Handler) GetShareholderHandler(ctx context.Context, code string) (httptransport.ShareholderResponse, error) {
	sh, err := h.Shareholders.Get(ctx, code)
	if err != nil {
		return httptransport.ShareholderResponse{}, err
	}
	return shareholderResponse(sh), nil
}

func electionResponse(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ID:                election.ID,
		Name:              election.Name,
		Date:              election.Date,
		Status:            string(election.Status),
		RegistrationStart: election.RegistrationStart,
		RegistrationEnd:   election.RegistrationEnd,
		MinQuorum:         election.MinQuorum,
		VotingOpen:        election.VotingOpen,
		VotingOpenedAt:    election.VotingOpenedAt,
		VotingClosedAt:    election.VotingClosedAt,
		ClosedAt:          election.ClosedAt,
		IsDemo:            election.IsDemo,
	}
}

func quorumResponse(summary services.QuorumSummary) httptransport.QuorumSummaryResponse {
	return httptransport.QuorumSummaryResponse{
		Total:                       summary.Total,
		Presencial:                  summary.Presencial,
		Virtual:                     summary.Virtual,
		Ausente:                     summary.Ausente,
		Representado:                summary.Representado,
		CapitalSuscrito:             summary.CapitalSuscrito,
		CapitalPresenteDirecto:      summary.CapitalPresenteDirecto,
		CapitalPresenteRepresentado: summary.CapitalPresenteRepresentado,
		PorcentajeQuorum:            summary.PorcentajeQuorum,
	}
}

func personResponse(person entities.Person) httptransport.PersonResponse {
	return httptransport.PersonResponse{
		ID:       person.ID,
		Type:     string(person.Type),
		Name:     person.Name,
		Document: person.Document,
		Email:    person.Email,
	}
}

func proxyResponse(item application.ProxyWithAssignments) httptransport.ProxyResponse {
	assignments := make([]httptransport.ProxyAssignmentResponse, 0, len(item.Assignments))
	for _, assignment := range item.Assignments {
		assignments = append(assignments, httptransport.ProxyAssignmentResponse{
			ShareholderID:         assignment.ShareholderID,
			WeightActionsSnapshot: assignment.WeightActionsSnapshot,
			ValidFrom:             assignment.ValidFrom,
			ValidUntil:            assignment.ValidUntil,
		})
	}
	return httptransport.ProxyResponse{
		ID:            item.Proxy.ID,
		ProxyPersonID: item.Proxy.ProxyPersonID,
		TipoDoc:       item.Proxy.TipoDoc,
		NumDoc:        item.Proxy.NumDoc,
		FechaOtorg:    item.Proxy.FechaOtorg,
		FechaVigencia: item.Proxy.FechaVigencia,
		PdfURL:        item.Proxy.PdfURL,
		Status:        string(item.Proxy.Status),
		Mode:          string(item.Proxy.Mode),
		Assignments:   assignments,
	}
}

func shareholderResponse(sh entities.Shareholder) httptransport.ShareholderResponse {
	return httptransport.ShareholderResponse{
		ID:       sh.ID,
		Code:     sh.Code,
		Name:     sh.Name,
		Document: sh.Document,
		Email:    sh.Email,
		Actions:  sh.Actions,
		Status:   sh.Status,
	}
}
