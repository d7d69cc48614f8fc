package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/rpsduel-go/internal/account"
	"github.com/mcoot/rpsduel-go/internal/api/apierr"
	"github.com/mcoot/rpsduel-go/internal/api/request"
	"github.com/mcoot/rpsduel-go/internal/api/response"
	"github.com/mcoot/rpsduel-go/internal/model"
)

// AccountsHandler handles account registration and login
type AccountsHandler struct {
	accounts *account.Service
}

// NewAccountsHandler creates a new accounts handler
func NewAccountsHandler(accounts *account.Service) *AccountsHandler {
	return &AccountsHandler{
		accounts: accounts,
	}
}

// Register handles POST /api/v1/accounts/register
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name is required"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.accounts.Register(r.Context(), model.ParticipantName(req.Name), req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/accounts/login
func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("name and password are required"))
		return
	}

	session, err := h.accounts.Login(r.Context(), model.ParticipantName(req.Name), req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}
