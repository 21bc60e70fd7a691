package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"amlgen/internal/generator/models"
	"amlgen/internal/lookup/service"
	"amlgen/internal/lookup/store"
	id "amlgen/pkg/domain"
	dErrors "amlgen/pkg/domain-errors"
	"amlgen/pkg/platform/httputil"
	request "amlgen/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the lookup queries the handler exposes.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	GetUser(ctx context.Context, userID id.UserID) (*models.User, error)
	GetAlert(ctx context.Context, alertID id.AlertID) (*models.Alert, error)
	ListAlerts(ctx context.Context, filter store.AlertFilter) ([]models.Alert, error)
	AlertsForUser(ctx context.Context, userID id.UserID) ([]models.Alert, error)
	TransactionsForUser(ctx context.Context, userID id.UserID) ([]models.Transaction, error)
	CaseFile(ctx context.Context, alertID id.AlertID) (*service.CaseFile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/users/{userID}", h.HandleGetUser)
	r.Get("/users/{userID}/alerts", h.HandleUserAlerts)
	r.Get("/users/{userID}/transactions", h.HandleUserTransactions)
	r.Get("/alerts", h.HandleListAlerts)
	r.Get("/alerts/{alertID}", h.HandleGetAlert)
	r.Get("/alerts/{alertID}/case", h.HandleCaseFile)
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "get user failed", err, requestID, "user_id", userID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) HandleUserAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	alerts, err := h.service.AlertsForUser(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "list user alerts failed", err, requestID, "user_id", userID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAlertListResponse(alerts))
}

// HandleUserTransactions returns every transaction the user sent or received.
func (h *Handler) HandleUserTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	txns, err := h.service.TransactionsForUser(ctx, userID)
	if err != nil {
		h.fail(ctx, w, "list user transactions failed", err, requestID, "user_id", userID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransactionListResponse(txns))
}

// HandleListAlerts lists alerts, optionally filtered by ?status= and ?severity=.
func (h *Handler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req := listAlertsRequestFromQuery(r.URL.Query())
	if !httputil.Prepare(w, req, h.logger, ctx, requestID) {
		return
	}

	alerts, err := h.service.ListAlerts(ctx, req.Filter())
	if err != nil {
		h.fail(ctx, w, "list alerts failed", err, requestID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAlertListResponse(alerts))
}

func (h *Handler) HandleGetAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	alertID, ok := parseAlertID(w, r)
	if !ok {
		return
	}

	alert, err := h.service.GetAlert(ctx, alertID)
	if err != nil {
		h.fail(ctx, w, "get alert failed", err, requestID, "alert_id", alertID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAlertResponse(alert))
}

// HandleCaseFile returns an alert together with its user's profile, other
// alerts and transactions.
func (h *Handler) HandleCaseFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	alertID, ok := parseAlertID(w, r)
	if !ok {
		return
	}

	file, err := h.service.CaseFile(ctx, alertID)
	if err != nil {
		h.fail(ctx, w, "build case file failed", err, requestID, "alert_id", alertID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseFileResponse(file))
}

// fail logs server-side failures at error and client mistakes at debug.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, requestID string, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestID)
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.DebugContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return "", false
	}
	return userID, true
}

func parseAlertID(w http.ResponseWriter, r *http.Request) (id.AlertID, bool) {
	alertID, err := id.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid alert id"))
		return "", false
	}
	return alertID, true
}
