package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dentixpro/internal/auth"
	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

var emailRe = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Msg         string      `json:"msg,omitempty"`
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Datos JSON requeridos")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len([]rune(name)) < 3 {
		writeMsg(w, http.StatusBadRequest, "El nombre debe tener al menos 3 caracteres")
		return
	}
	if !emailRe.MatchString(email) {
		writeMsg(w, http.StatusBadRequest, "Email inválido")
		return
	}
	if len(req.Password) < 8 {
		writeMsg(w, http.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
		return
	}
	role := model.RoleUser
	if req.Rol != "" {
		var err error
		if role, err = model.ParseRole(req.Rol); err != nil {
			writeMsg(w, http.StatusBadRequest, "Rol inválido. Debe ser 'admin' o 'user'")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internal(w, "hash password", err)
		return
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := h.repo.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeMsg(w, http.StatusConflict, "Ya existe un usuario con este email")
			return
		}
		h.internal(w, "create user", err)
		return
	}

	tok, err := auth.MakeToken(u, h.secret, h.ttl)
	if err != nil {
		h.internal(w, "sign token", err)
		return
	}

	h.log.Info("user created", zap.String("user_id", u.ID), zap.String("rol", string(u.Role)))
	writeJSON(w, http.StatusCreated, authResponse{
		Msg:         "Usuario creado exitosamente",
		AccessToken: tok,
		User:        u,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Datos JSON requeridos")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "Email y contraseña son requeridos")
		return
	}

	// same answer for unknown email and wrong password
	u, err := h.repo.UserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internal(w, "lookup user", err)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeMsg(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	tok, err := auth.MakeToken(u, h.secret, h.ttl)
	if err != nil {
		h.internal(w, "sign token", err)
		return
	}

	h.log.Info("login", zap.String("user_id", u.ID))
	writeJSON(w, http.StatusOK, authResponse{AccessToken: tok, User: u})
}

func (h *Handler) internal(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	writeMsg(w, http.StatusInternalServerError, "Error interno del servidor")
}
