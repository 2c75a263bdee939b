package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/domain"
)

type AdminController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewAdminController(logger *slog.Logger, svc domain.RegistrationService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// ListRegistrationsResponse is the body for GET /admin/registrations.
// Source reports which backing store answered.
type ListRegistrationsResponse struct {
	Source        string                 `json:"source"`
	Count         int                    `json:"count"`
	Registrations []*domain.Registration `json:"registrations"`
	Error         string                 `json:"error,omitempty"`
}

// ListRegistrations godoc
// @Summary List all registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListRegistrationsResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 500 {object} controllers.ListRegistrationsResponse "Storage unavailable"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := c.Service.ListRegistrations(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list registrations failed", "err", err)
		helpers.WriteJSON(w, http.StatusInternalServerError, ListRegistrationsResponse{
			Source:        c.Service.StoreSource(),
			Count:         0,
			Registrations: []*domain.Registration{},
			Error:         err.Error(),
		})
		return
	}

	helpers.WriteJSON(w, http.StatusOK, ListRegistrationsResponse{
		Source:        c.Service.StoreSource(),
		Count:         len(regs),
		Registrations: regs,
	})
}

// ResendRequest is the request body for POST /admin/resend.
type ResendRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *ResendRequest) Validate() []string {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Name) == "" {
		return []string{"Missing email or name"}
	}
	return nil
}

// ResendResponse is the body for POST /admin/resend.
type ResendResponse struct {
	Success   bool   `json:"success"`
	EmailSent bool   `json:"emailSent"`
	SendError string `json:"sendError,omitempty"`
}

// Resend godoc
// @Summary Re-send the calendar invite to an attendee
// @Description Regenerates the invite and re-attempts delivery through the provider chain. Storage is not touched.
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ResendRequest true "Recipient"
// @Success 200 {object} controllers.ResendResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /admin/resend [post]
func (c *AdminController) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Resend(r.Context(), req.Name, req.Email)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "resend failed", "err", err)
		helpers.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	helpers.WriteJSON(w, http.StatusOK, ResendResponse{
		Success:   result.Delivery.Sent,
		EmailSent: result.Delivery.Sent,
		SendError: result.Delivery.SendError,
	})
}
