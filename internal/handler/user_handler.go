package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dentixpro/internal/auth"
	"dentixpro/internal/middleware"
	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.repo.UserByID(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err != nil {
		h.internal(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateMe changes the caller's name. Other profile fields in the body
// (userId, password, rol) are ignored.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name *string `json:"name"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "No se proporcionaron datos para actualizar")
		return
	}
	if req.Name == nil {
		writeMsg(w, http.StatusBadRequest, "No se proporcionaron datos válidos para actualizar")
		return
	}
	name := strings.TrimSpace(*req.Name)
	if len([]rune(name)) < 3 {
		writeMsg(w, http.StatusBadRequest, "El nombre debe tener al menos 3 caracteres")
		return
	}

	uid := middleware.UserID(r.Context())
	if err := h.repo.UpdateUserName(r.Context(), uid, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.internal(w, "update user", err)
		return
	}
	u, err := h.repo.UserByID(r.Context(), uid)
	if err != nil {
		h.internal(w, "get user", err)
		return
	}

	h.log.Info("profile updated", zap.String("user_id", uid))
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":  "Información actualizada exitosamente",
		"user": u,
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Datos JSON requeridos")
		return
	}
	if len(req.New) < 8 {
		writeMsg(w, http.StatusBadRequest, "La nueva contraseña debe tener al menos 8 caracteres")
		return
	}

	uid := middleware.UserID(r.Context())
	u, err := h.repo.UserByID(r.Context(), uid)
	if errors.Is(err, store.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err != nil {
		h.internal(w, "get user", err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Current) {
		writeMsg(w, http.StatusUnauthorized, "Contraseña actual incorrecta")
		return
	}

	hash, err := auth.HashPassword(req.New)
	if err != nil {
		h.internal(w, "hash password", err)
		return
	}
	if err := h.repo.SetPassword(r.Context(), uid, hash); err != nil {
		h.internal(w, "set password", err)
		return
	}

	h.log.Info("password changed", zap.String("user_id", uid))
	writeMsg(w, http.StatusOK, "Contraseña actualizada exitosamente")
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, size := pageQuery(r)
	f := store.UserFilter{Page: page, PageSize: size}
	if v := r.URL.Query().Get("rol"); v != "" {
		role, err := model.ParseRole(v)
		if err != nil {
			writeMsg(w, http.StatusBadRequest, "Rol inválido. Debe ser 'admin' o 'user'")
			return
		}
		f.Role = role
	}

	users, total, err := h.repo.ListUsers(r.Context(), f)
	if err != nil {
		h.internal(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewPage(users, total, page, size))
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	u, err := h.repo.UserByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "Usuario no encontrado")
		return nil, false
	}
	if err != nil {
		h.internal(w, "get user", err)
		return nil, false
	}
	return u, true
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if u, ok := h.loadUser(w, r); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

// UpdateUser lets an admin change another account's name, email or role.
// userId and password in the body are ignored.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Rol   *string `json:"rol"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "No se proporcionaron datos para actualizar")
		return
	}
	if req.Name == nil && req.Email == nil && req.Rol == nil {
		writeMsg(w, http.StatusBadRequest, "No se proporcionaron datos válidos para actualizar")
		return
	}

	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
		if len([]rune(u.Name)) < 3 {
			writeMsg(w, http.StatusBadRequest, "El nombre debe tener al menos 3 caracteres")
			return
		}
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailRe.MatchString(u.Email) {
			writeMsg(w, http.StatusBadRequest, "Email inválido")
			return
		}
	}
	if req.Rol != nil {
		role, err := model.ParseRole(*req.Rol)
		if err != nil {
			writeMsg(w, http.StatusBadRequest, "Rol inválido. Debe ser 'admin' o 'user'")
			return
		}
		u.Role = role
	}

	if err := h.repo.UpdateUser(r.Context(), u); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			writeMsg(w, http.StatusConflict, "Ya existe un usuario con este email")
		case errors.Is(err, store.ErrNotFound):
			writeMsg(w, http.StatusNotFound, "Usuario no encontrado")
		default:
			h.internal(w, "update user", err)
		}
		return
	}

	h.log.Info("user updated by admin",
		zap.String("user_id", u.ID),
		zap.String("by", middleware.UserID(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":  "Usuario actualizado exitosamente",
		"user": u,
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		New string `json:"new_password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Datos JSON requeridos")
		return
	}
	if len(req.New) < 8 {
		writeMsg(w, http.StatusBadRequest, "La nueva contraseña debe tener al menos 8 caracteres")
		return
	}
	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(req.New)
	if err != nil {
		h.internal(w, "hash password", err)
		return
	}
	if err := h.repo.SetPassword(r.Context(), u.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.internal(w, "reset password", err)
		return
	}

	h.log.Info("password reset by admin",
		zap.String("user_id", u.ID),
		zap.String("by", middleware.UserID(r.Context())),
	)
	writeMsg(w, http.StatusOK, "Contraseña reseteada exitosamente")
}
