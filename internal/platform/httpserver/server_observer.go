package httpserver

import (
	"net/http"

	"github.com/gorilla/websocket"

	"asamblea/internal/shared/identity"
)

var observerUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers connect from the projection screen and back office, not
	// from the API origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

func observerAllowed(p identity.Principal) bool {
	return p.Role == identity.RoleObservador || p.IsAdmin()
}

func (s *Server) handleObserverTable(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !observerAllowed(principal) {
		writePlatformError(w, http.StatusForbidden, "forbidden", "observer role required")
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}
	resp, err := s.assembly.Handler.ObserverTableHandler(r.Context(), electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// wsSender adapts a websocket connection to the hub's Sender. All writes
// after registration come from the hub's single writer goroutine.
type wsSender struct {
	conn *websocket.Conn
}

func (s wsSender) Send(data []byte) error {
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleObserverSocket(w http.ResponseWriter, r *http.Request) {
	principal, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !observerAllowed(principal) {
		writePlatformError(w, http.StatusForbidden, "forbidden", "observer role required")
		return
	}
	electionID, ok := pathID(w, r, "election_id")
	if !ok {
		return
	}

	summary, err := s.assembly.Handler.QuorumSummaryHandler(r.Context(), electionID)
	if err != nil {
		writeAssemblyDomainError(w, err)
		return
	}

	conn, err := observerUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("observer upgrade failed",
			"event", "observer_upgrade_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"election_id", electionID,
			"error", err.Error(),
		)
		return
	}

	// Current state first so the observer screen renders before the next
	// attendance change arrives.
	if err := conn.WriteJSON(map[string]any{"summary": summary}); err != nil {
		_ = conn.Close()
		return
	}

	clientID := s.hub.Register(electionID, wsSender{conn: conn})
	s.logger.Info("observer connected",
		"event", "observer_connected",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"election_id", electionID,
		"client_id", clientID,
		"username", principal.Username,
	)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.Unregister(clientID)
	_ = conn.Close()
}
