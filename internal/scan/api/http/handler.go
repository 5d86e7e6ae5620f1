package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opencourts/scandesk/internal/scan/domain/command"
	"github.com/opencourts/scandesk/internal/scan/domain/engine"
	"github.com/opencourts/scandesk/internal/scan/domain/envelope"
	"github.com/opencourts/scandesk/internal/scan/domain/means"
	"github.com/opencourts/scandesk/internal/scan/domain/plea"
	"github.com/opencourts/scandesk/internal/scan/storage"
)

const (
	headerActorType = "X-Actor-Type"
	headerActorID   = "X-Actor-Id"
	headerRequestID = "X-Request-Id"
)

// CommandExecutor runs validated commands through the write path.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd command.Command) (engine.Result, error)
}

// Handler wires scan endpoints to the command engine and read-model stores.
type Handler struct {
	engine    CommandExecutor
	envelopes storage.EnvelopeStore
	documents storage.DocumentStore
	logger    *slog.Logger
}

// New constructs a scan API handler with its dependencies.
func New(executor CommandExecutor, envelopes storage.EnvelopeStore, documents storage.DocumentStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:    executor,
		envelopes: envelopes,
		documents: documents,
		logger:    logger,
	}
}

// Register mounts scan endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/envelopes", func(r chi.Router) {
		r.Get("/", h.handleListEnvelopes)
		r.Route("/{envelopeID}", func(r chi.Router) {
			r.Get("/", h.handleGetEnvelope)
			r.Post("/register", h.handleRegister)
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", h.handleListDocuments)
				r.Route("/{documentID}", func(r chi.Router) {
					r.Get("/", h.handleGetDocument)
					r.Post("/next-step", h.handleNextStep)
					r.Post("/manually-actioned", h.handleManuallyActioned)
					r.Post("/auto-actioned", h.handleAutoActioned)
					r.Delete("/", h.handleDeleteActioned)
					r.Post("/reject", h.handleReject)
					r.Post("/expire", h.handleExpire)
					r.Post("/follow-up", h.handleFollowUp)
					r.Post("/financial-means", h.handleFinancialMeans)
					r.Post("/defendant-details", h.handleDefendantDetails)
				})
			})
		})
	})
	r.Get("/documents", h.handleListDocumentsByStatus)
}

// decisionResponse is the wire shape of a command outcome.
type decisionResponse struct {
	Events     []decisionEvent     `json:"events"`
	Rejections []decisionRejection `json:"rejections,omitempty"`
}

type decisionEvent struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
}

type decisionRejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// execute builds the command envelope from request metadata and runs it.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request, commandType command.Type, payload any) {
	if h.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "command engine is not configured")
		return
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode payload")
		return
	}

	actorType := command.ActorType(strings.TrimSpace(r.Header.Get(headerActorType)))
	if actorType == "" {
		actorType = command.ActorTypeSystem
	}
	requestID := strings.TrimSpace(r.Header.Get(headerRequestID))
	if requestID == "" {
		requestID = uuid.NewString()
	}

	cmd := command.Command{
		EnvelopeID:    chi.URLParam(r, "envelopeID"),
		Type:          commandType,
		ActorType:     actorType,
		ActorID:       strings.TrimSpace(r.Header.Get(headerActorID)),
		RequestID:     requestID,
		CorrelationID: requestID,
		PayloadJSON:   payloadJSON,
	}

	result, err := h.engine.Execute(r.Context(), cmd)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "command execution failed",
			"command_type", string(commandType),
			"envelope_id", cmd.EnvelopeID,
			"request_id", requestID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "command execution failed")
		return
	}

	response := decisionResponse{Events: make([]decisionEvent, 0, len(result.Decision.Events))}
	for _, evt := range result.Decision.Events {
		response.Events = append(response.Events, decisionEvent{Type: string(evt.Type), Seq: evt.Seq})
	}
	for _, rejection := range result.Decision.Rejections {
		response.Rejections = append(response.Rejections, decisionRejection{Code: rejection.Code, Message: rejection.Message})
	}

	status := http.StatusOK
	if len(response.Rejections) > 0 {
		status = http.StatusConflict
	}
	writeJSON(w, status, response)
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var body T
	if r.Body == nil || r.ContentLength == 0 {
		return body, true
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "decode request body: "+err.Error())
		return body, false
	}
	return body, true
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[envelope.RegisterPayload](w, r)
	if !ok {
		return
	}
	if payload.Envelope.ID == "" {
		payload.Envelope.ID = chi.URLParam(r, "envelopeID")
	}
	h.execute(w, r, envelope.CommandTypeRegister, payload)
}

func (h *Handler) handleNextStep(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[envelope.NextStepDecidePayload](w, r)
	if !ok {
		return
	}
	payload.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, envelope.CommandTypeDecideNextStep, payload)
}

func (h *Handler) handleManuallyActioned(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[envelope.MarkActionedPayload](w, r)
	if !ok {
		return
	}
	payload.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, envelope.CommandTypeMarkManuallyActioned, payload)
}

func (h *Handler) handleAutoActioned(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[envelope.MarkActionedPayload](w, r)
	if !ok {
		return
	}
	payload.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, envelope.CommandTypeMarkAutoActioned, payload)
}

func (h *Handler) handleDeleteActioned(w http.ResponseWriter, r *http.Request) {
	payload := envelope.DeleteActionedPayload{DocumentID: chi.URLParam(r, "documentID")}
	h.execute(w, r, envelope.CommandTypeDeleteActioned, payload)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[envelope.RejectPayload](w, r)
	if !ok {
		return
	}
	payload.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, envelope.CommandTypeReject, payload)
}

func (h *Handler) handleExpire(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[envelope.ExpirePayload](w, r)
	if !ok {
		return
	}
	payload.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, envelope.CommandTypeExpire, payload)
}

func (h *Handler) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	payload := envelope.FollowUpPayload{DocumentID: chi.URLParam(r, "documentID")}
	h.execute(w, r, envelope.CommandTypeRaiseFollowUp, payload)
}

func (h *Handler) handleFinancialMeans(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[means.UpdatePayload](w, r)
	if !ok {
		return
	}
	payload.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, means.CommandTypeUpdateFinancialMeans, payload)
}

func (h *Handler) handleDefendantDetails(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody[plea.UpdateDetailsPayload](w, r)
	if !ok {
		return
	}
	payload.Defendant.DocumentID = chi.URLParam(r, "documentID")
	h.execute(w, r, plea.CommandTypeUpdateDefendantDetails, payload)
}

// Query endpoints

func (h *Handler) handleListEnvelopes(w http.ResponseWriter, r *http.Request) {
	if h.envelopes == nil {
		writeError(w, http.StatusServiceUnavailable, "envelope store is not configured")
		return
	}
	records, err := h.envelopes.ListEnvelopes(r.Context(), 100)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list envelopes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list envelopes")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGetEnvelope(w http.ResponseWriter, r *http.Request) {
	if h.envelopes == nil {
		writeError(w, http.StatusServiceUnavailable, "envelope store is not configured")
		return
	}
	record, err := h.envelopes.GetEnvelope(r.Context(), chi.URLParam(r, "envelopeID"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "envelope not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get envelope failed", "error", err)
		writeError(w, http.StatusInternalServerError, "get envelope")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if h.documents == nil {
		writeError(w, http.StatusServiceUnavailable, "document store is not configured")
		return
	}
	records, err := h.documents.ListDocuments(r.Context(), chi.URLParam(r, "envelopeID"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list documents")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if h.documents == nil {
		writeError(w, http.StatusServiceUnavailable, "document store is not configured")
		return
	}
	record, err := h.documents.GetDocument(r.Context(), chi.URLParam(r, "envelopeID"), chi.URLParam(r, "documentID"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "get document failed", "error", err)
		writeError(w, http.StatusInternalServerError, "get document")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleListDocumentsByStatus(w http.ResponseWriter, r *http.Request) {
	if h.documents == nil {
		writeError(w, http.StatusServiceUnavailable, "document store is not configured")
		return
	}
	status := envelope.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status == "" {
		writeError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}
	records, err := h.documents.ListDocumentsByStatus(r.Context(), status, 100)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list documents by status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list documents by status")
		return
	}
	writeJSON(w, http.StatusOK, records)
}
