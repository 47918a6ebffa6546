package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/sszokoly/bgwmon/internal/bgw"
	"github.com/sszokoly/bgwmon/internal/log"
	"github.com/sszokoly/bgwmon/internal/model"
	"github.com/sszokoly/bgwmon/internal/registry"
	"github.com/sszokoly/bgwmon/internal/storage"
)

// Handler handles HTTP requests
type Handler struct {
	registry    *registry.Registry
	storage     storage.Storage
	pollingSecs int
}

// NewHandler creates a new API handler. pollingSecs is the default poll
// interval assigned to gateways registered without one.
func NewHandler(reg *registry.Registry, s storage.Storage, pollingSecs int) *Handler {
	return &Handler{registry: reg, storage: s, pollingSecs: pollingSecs}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/gateways", h.listGateways)
	mux.HandleFunc("POST /api/gateways", h.createGateway)
	mux.HandleFunc("GET /api/gateways/{ip}", h.getGateway)
	mux.HandleFunc("DELETE /api/gateways/{ip}", h.deleteGateway)

	mux.HandleFunc("POST /api/gateways/{ip}/update", h.updateGateway)
	mux.HandleFunc("GET /api/gateways/{ip}/queue", h.drainQueue)
	mux.HandleFunc("GET /api/gateways/{ip}/history", h.getHistory)
}

// gatewaySummary is the list-view projection of a gateway.
type gatewaySummary struct {
	LANIP       string `json:"lan_ip"`
	Proto       string `json:"proto"`
	Name        string `json:"gw_name"`
	Number      string `json:"gw_number"`
	Model       string `json:"model"`
	Firmware    string `json:"fw"`
	LastSeen    string `json:"last_seen"`
	Polls       int    `json:"polls"`
	PollingSecs int    `json:"polling_secs"`
}

// listGateways handles GET /api/gateways
func (h *Handler) listGateways(w http.ResponseWriter, r *http.Request) {
	gateways := h.registry.List()

	summaries := make([]gatewaySummary, 0, len(gateways))
	for _, g := range gateways {
		summaries = append(summaries, gatewaySummary{
			LANIP:       g.LANIP,
			Proto:       g.Proto,
			Name:        g.Name,
			Number:      g.Number,
			Model:       g.Field("model"),
			Firmware:    g.Field("fw"),
			LastSeen:    g.LastSeen,
			Polls:       g.Polls,
			PollingSecs: g.PollingSecs,
		})
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

// createGatewayRequest is the body of POST /api/gateways.
type createGatewayRequest struct {
	LANIP       string `json:"lan_ip"`
	Proto       string `json:"proto"`
	PollingSecs int    `json:"polling_secs"`
}

// createGateway handles POST /api/gateways
func (h *Handler) createGateway(w http.ResponseWriter, r *http.Request) {
	var req createGatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if net.ParseIP(req.LANIP) == nil {
		h.writeError(w, http.StatusBadRequest, "invalid IP address: "+req.LANIP)
		return
	}
	if req.Proto == "" {
		req.Proto = "ssh"
	}
	if req.Proto != "ssh" && req.Proto != "telnet" {
		h.writeError(w, http.StatusBadRequest, "proto must be ssh or telnet")
		return
	}
	if req.PollingSecs <= 0 {
		req.PollingSecs = h.pollingSecs
	}

	g := h.registry.GetOrCreate(req.LANIP, req.Proto, req.PollingSecs)

	record := &model.GatewayRecord{
		LANIP:       g.LANIP,
		Proto:       g.Proto,
		PollingSecs: g.PollingSecs,
	}
	if err := h.storage.SaveGateway(record); err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, g.Snapshot())
}

// getGateway handles GET /api/gateways/{ip}
func (h *Handler) getGateway(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, g.Snapshot())
}

// deleteGateway handles DELETE /api/gateways/{ip}
func (h *Handler) deleteGateway(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")

	if err := h.registry.Remove(ip); err != nil {
		h.writeError(w, http.StatusNotFound, "gateway not found")
		return
	}
	if err := h.storage.DeleteGateway(ip); err != nil && !errors.Is(err, storage.ErrGatewayNotFound) {
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// updateGatewayRequest is the body of POST /api/gateways/{ip}/update: one
// poll cycle's worth of command outputs pushed by an external poller.
type updateGatewayRequest struct {
	Name          *string           `json:"gw_name"`
	Number        *string           `json:"gw_number"`
	LastSessionID *string           `json:"last_session_id"`
	LastSeen      string            `json:"last_seen"`
	Commands      map[string]string `json:"commands"`
}

// updateGateway handles POST /api/gateways/{ip}/update
func (h *Handler) updateGateway(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req updateGatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch := bgw.Batch{
		Name:          req.Name,
		Number:        req.Number,
		LastSessionID: req.LastSessionID,
		LastSeen:      req.LastSeen,
		Commands:      req.Commands,
	}
	if err := g.Update(batch); err != nil {
		if errors.Is(err, bgw.ErrBadTimestamp) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, err)
		return
	}

	snap := &model.Snapshot{LANIP: g.LANIP, Fields: g.Snapshot()}
	if err := h.storage.SaveSnapshot(snap); err != nil {
		h.internalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, snap.Fields)
}

// queueResponse is the body of GET /api/gateways/{ip}/queue.
type queueResponse struct {
	Requests []string `json:"requests"`
	Dropped  uint64   `json:"dropped"`
}

// drainQueue handles GET /api/gateways/{ip}/queue. Reading the queue
// drains it: each follow-up request is handed out exactly once.
func (h *Handler) drainQueue(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	resp := queueResponse{
		Requests: g.DrainRequests(),
		Dropped:  g.DroppedRequests(),
	}
	if resp.Requests == nil {
		resp.Requests = []string{}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// getHistory handles GET /api/gateways/{ip}/history
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	snaps, err := h.storage.ListSnapshots(g.LANIP, limit)
	if err != nil {
		h.internalError(w, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}

	h.writeJSON(w, http.StatusOK, snaps)
}

// lookup resolves the {ip} path value to a registered gateway, writing
// the error response on failure.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*bgw.Gateway, bool) {
	ip := r.PathValue("ip")
	if ip == "" {
		h.writeError(w, http.StatusBadRequest, "gateway IP required")
		return nil, false
	}

	g, err := h.registry.Get(ip)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "gateway not found")
		return nil, false
	}
	return g, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
