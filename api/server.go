package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Solaris-FN/Hermes/gateway"
	"github.com/Solaris-FN/Hermes/party"
	"github.com/Solaris-FN/Hermes/xmpp"
)

// Server is the admin REST server.
type Server struct {
	registry *gateway.Registry
	parties  *party.Store
	domain   string
	name     string
	env      string
	started  time.Time
	router   *mux.Router
	log      *zap.Logger
}

// Config wires the admin server's collaborators.
type Config struct {
	Registry   *gateway.Registry
	Parties    *party.Store
	Domain     string
	ServerName string
	Env        string
	Logger     *zap.Logger
}

// NewServer creates the admin server and registers its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		registry: cfg.Registry,
		parties:  cfg.Parties,
		domain:   cfg.Domain,
		name:     cfg.ServerName,
		env:      cfg.Env,
		started:  time.Now(),
		router:   mux.NewRouter(),
		log:      cfg.Logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/clients", s.handleListClients).Methods("GET")
	api.HandleFunc("/clients/{accountId}/presence", s.handleGetPresence).Methods("GET")
	api.HandleFunc("/clients/{accountId}/message", s.handleForwardMessage).Methods("POST")
	api.HandleFunc("/parties", s.handleCreateParty).Methods("POST")
	api.HandleFunc("/parties", s.handleListParties).Methods("GET")
	api.HandleFunc("/parties/{id}", s.handleGetParty).Methods("GET")
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"server_name": s.name,
		"environment": s.env,
		"uptime":      time.Since(s.started).String(),
		"clients":     s.registry.Len(),
	})
}

// clientSummary is the wire shape of one live session.
type clientSummary struct {
	ConnectionID string `json:"connection_id"`
	AccountID    string `json:"account_id,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	JID          string `json:"jid,omitempty"`
	LoggedIn     bool   `json:"logged_in"`
}

func (s *Server) handleListClients(w http.ResponseWriter, _ *http.Request) {
	sessions := s.registry.List()
	out := make([]clientSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, clientSummary{
			ConnectionID: sess.ConnectionID.String(),
			AccountID:    sess.AccountID(),
			DisplayName:  sess.DisplayName(),
			JID:          sess.JID(),
			LoggedIn:     sess.IsLoggedIn(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPresence(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	sess, ok := s.registry.FindByAccountID(accountID)
	if !ok {
		respondError(w, http.StatusNotFound, "no live session for account")
		return
	}
	respondJSON(w, http.StatusOK, sess.LastPresence())
}

func (s *Server) handleForwardMessage(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		respondError(w, http.StatusBadRequest, "body is required")
		return
	}

	sess, ok := s.registry.FindByAccountID(accountID)
	if !ok {
		respondError(w, http.StatusNotFound, "no live session for account")
		return
	}

	msg := xmpp.Element("message").
		SetAttr("from", s.domain).
		SetAttr("xmlns", xmpp.NSClient).
		SetAttr("to", sess.JID()).
		SetAttr("id", uuid.NewString()).
		SetAttr("type", "chat").
		Add(xmpp.Element("body").SetText(req.Body))

	if err := sess.Send(msg.String()); err != nil {
		s.log.Warn("admin message push failed",
			zap.String("account_id", accountID),
			zap.Error(err))
		respondError(w, http.StatusBadGateway, "delivery failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req party.CreateRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid party payload")
			return
		}
	}
	p := s.parties.Create(req)
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListParties(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.parties.List())
}

func (s *Server) handleGetParty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parties.Get(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "party not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}
