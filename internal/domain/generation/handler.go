package generation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
	"github.com/Markolissimo/treatment-summary/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/generate-treatment-summary", h.GenerateTreatmentSummary)
	api.POST("/generate-insurance-summary", h.GenerateInsuranceSummary)
	api.POST("/documents/:id/confirm", h.Confirm)
}

func (h *Handler) GenerateTreatmentSummary(c echo.Context) error {
	var req TreatmentSummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	resp, err := h.svc.GenerateTreatmentSummary(c.Request().Context(), userID, req, requestMetaFrom(c))
	if err != nil {
		return httpErrorFor(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GenerateInsuranceSummary(c echo.Context) error {
	var req InsuranceSummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	resp, err := h.svc.GenerateInsuranceSummary(c.Request().Context(), userID, req, requestMetaFrom(c))
	if err != nil {
		return httpErrorFor(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// requestMetaFrom reads the request id stamped by the request-id middleware
// and the caller's address, for inclusion in the audit trail.
func requestMetaFrom(c echo.Context) RequestMeta {
	rid, _ := c.Get("request_id").(string)
	return RequestMeta{RequestIP: c.RealIP(), RequestID: rid}
}

type confirmRequest struct {
	ConfirmedPayload map[string]any `json:"confirmed_payload"`
	Notes            string         `json:"notes"`
}

type confirmResponse struct {
	Success         bool      `json:"success"`
	ConfirmationID  uuid.UUID `json:"confirmation_id"`
	GenerationID    uuid.UUID `json:"generation_id"`
	UserID          string    `json:"user_id"`
	DocumentType    string    `json:"document_type"`
	DocumentVersion string    `json:"document_version"`
	ConfirmedAt     string    `json:"confirmed_at"`
	Message         string    `json:"message"`
}

func (h *Handler) Confirm(c echo.Context) error {
	generationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "generation id must be a valid uuid")
	}

	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Confirm(c.Request().Context(), generationID, userID, ConfirmInput{
		ConfirmedPayload: req.ConfirmedPayload,
		Notes:            req.Notes,
	})
	if err != nil {
		return httpErrorFor(err)
	}

	return c.JSON(http.StatusOK, confirmResponse{
		Success:         true,
		ConfirmationID:  result.ConfirmationID,
		GenerationID:    result.GenerationID,
		UserID:          result.UserID,
		DocumentType:    result.DocumentKind,
		DocumentVersion: result.DocumentVersion,
		ConfirmedAt:     result.ConfirmedAt.Format("2006-01-02T15:04:05Z"),
		Message:         "document confirmed",
	})
}

// httpErrorFor maps a coordinator error to an echo.HTTPError, preserving a
// field-level message for validation failures.
func httpErrorFor(err error) *echo.HTTPError {
	status := StatusFor(err)

	var validation doctypes.ValidationErrors
	if errors.As(err, &validation) {
		return echo.NewHTTPError(status, map[string]any{"errors": validation})
	}
	return echo.NewHTTPError(status, err.Error())
}
