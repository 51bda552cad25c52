package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/avdeev/authgate/internal/application/auth"
	"github.com/avdeev/authgate/internal/infrastructure/http/middleware"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	register      *auth.Register
	login         *auth.Login
	getProfile    *auth.GetProfile
	updateProfile *auth.UpdateProfile
	validate      *validator.Validate
	log           zerolog.Logger
}

func NewAuthHandler(register *auth.Register, login *auth.Login, getProfile *auth.GetProfile, updateProfile *auth.UpdateProfile, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register:      register,
		login:         login,
		getProfile:    getProfile,
		updateProfile: updateProfile,
		validate:      validator.New(),
		log:           log,
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=128"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if msg := h.validationMessage(&body); msg != "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, msg)
		return
	}
	if len(body.Password) < auth.MinPasswordLength {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "password must be at least 8 characters")
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid email or password length")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: SanitizeName(body.FirstName),
		LastName:  SanitizeName(body.LastName),
	})
	if err != nil {
		h.fail(w, r, "user.register", "", err)
		return
	}
	AuditLog(h.log, r, "user.register", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", true)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": result.Token,
		"user":  result.User.PublicView(),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if msg := h.validationMessage(&body); msg != "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, msg)
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid email or password length")
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{Email: email, Password: password})
	if err != nil {
		h.fail(w, r, "user.login", "", err)
		return
	}
	AuditLog(h.log, r, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user":  result.User.PublicView(),
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid token")
		return
	}
	result, err := h.getProfile.Execute(r.Context(), auth.GetProfileInput{UserID: userID})
	if err != nil {
		h.fail(w, r, "user.profile_get", userID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": result.User.PublicView()})
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Email     *string `json:"email"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid token")
		return
	}
	var body updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid input")
		return
	}
	if body.Email != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "email cannot be changed through this endpoint")
		return
	}
	input := auth.UpdateProfileInput{UserID: userID}
	if body.FirstName != nil {
		s := SanitizeName(*body.FirstName)
		input.FirstName = &s
	}
	if body.LastName != nil {
		s := SanitizeName(*body.LastName)
		input.LastName = &s
	}
	result, err := h.updateProfile.Execute(r.Context(), input)
	if err != nil {
		h.fail(w, r, "user.profile_update", userID, err)
		return
	}
	AuditLog(h.log, r, "user.profile_update", userID, true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": result.User.PublicView()})
}

// fail maps a workflow error, audits it, and writes the response. Internal
// errors are logged but never surfaced.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, event, userID string, err error) {
	status, code, msg := statusForError(err)
	AuditLog(h.log, r, event, userID, false, err.Error())
	middleware.RecordAuthAttempt(strings.TrimPrefix(event, "user."), false)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("event", event).Msg("request failed")
	}
	writeErr(w, status, code, msg)
}

// validationMessage runs struct validation and converts the first failure
// into a client-safe message.
func (h *AuthHandler) validationMessage(v interface{}) string {
	err := h.validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fieldName(fe.Field()) + " is required"
	case "email":
		return "invalid email address"
	case "max":
		return fieldName(fe.Field()) + " is too long"
	default:
		return "invalid input"
	}
}

func fieldName(structField string) string {
	switch structField {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "FirstName":
		return "firstName"
	case "LastName":
		return "lastName"
	default:
		return structField
	}
}
