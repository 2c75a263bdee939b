package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterRequest is the request body for POST /register.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Validate implements helpers.Validator.
func (r *RegisterRequest) Validate() []string {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return []string{"Missing name or email"}
	}
	return nil
}

// StoredRecord names the persisted registration in a register response.
type StoredRecord struct {
	ID string `json:"insertedId"`
}

// RegisterResponse is the success body for POST /register. ICSBase64 carries
// the invite so a client can offer a download when the email failed.
type RegisterResponse struct {
	Success   bool          `json:"success"`
	EmailSent bool          `json:"emailSent"`
	ICSBase64 string        `json:"icsBase64"`
	SendError string        `json:"sendError,omitempty"`
	Stored    *StoredRecord `json:"stored"`
	DBError   *string       `json:"dbError"`
}

// Register godoc
// @Summary Register an attendee for the event
// @Description Persists the registration, emails a calendar invite through the configured provider chain, and returns the invite as base64. The registration succeeds even when no email could be sent; emailSent and sendError report the delivery outcome separately.
// @Tags registration
// @Accept json
// @Produce json
// @Param body body controllers.RegisterRequest true "Attendee details"
// @Success 201 {object} controllers.RegisterResponse
// @Failure 400 {object} helpers.ErrorResponse "Missing name or email"
// @Failure 409 {object} helpers.ErrorResponse "duplicate: true"
// @Failure 500 {object} helpers.ErrorResponse "Storage failure"
// @Router /register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Register(r.Context(), domain.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteError(w, http.StatusBadRequest, "Missing name or email")
		case errors.Is(err, domain.ErrDuplicateEmail):
			helpers.WriteJSON(w, http.StatusConflict, helpers.ErrorResponse{
				Error:     "This email is already registered.",
				Duplicate: true,
			})
		default:
			c.Logger.ErrorContext(r.Context(), "registration failed", "path", r.URL.Path, "err", err)
			success := false
			helpers.WriteJSON(w, http.StatusInternalServerError, helpers.ErrorResponse{
				Error:   "Database error: " + err.Error(),
				Success: &success,
			})
		}
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Success:   true,
		EmailSent: result.Delivery.Sent,
		ICSBase64: result.ICSBase64,
		SendError: result.Delivery.SendError,
		Stored:    &StoredRecord{ID: result.Registration.ID},
		DBError:   nil,
	})
}
