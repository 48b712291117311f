package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dentixpro/internal/middleware"
	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

type createDateRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

func (h *Handler) CreateDate(w http.ResponseWriter, r *http.Request) {
	var req createDateRequest
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Datos JSON requeridos")
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	if len([]rune(req.Title)) < 5 {
		writeMsg(w, http.StatusBadRequest, "El título debe tener al menos 5 caracteres")
		return
	}
	if !model.ValidDate(req.Date) {
		writeMsg(w, http.StatusBadRequest, "Formato de fecha inválido. Use YYYY-MM-DD")
		return
	}
	if !model.ValidTime(req.Time) {
		writeMsg(w, http.StatusBadRequest, "Formato de hora inválido. Use HH:MM (24h)")
		return
	}

	a := &model.Appointment{
		ID:          uuid.New().String(),
		UserID:      middleware.UserID(r.Context()),
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Status:      model.StatusPending,
	}
	start, err := a.StartsAt(time.Local)
	if err != nil {
		writeMsg(w, http.StatusBadRequest, "Formato de fecha inválido. Use YYYY-MM-DD")
		return
	}
	if start.Before(h.now()) {
		writeMsg(w, http.StatusBadRequest, "La cita debe ser en el futuro")
		return
	}

	taken, err := h.repo.SlotTaken(r.Context(), a.Date, a.Time)
	if err != nil {
		h.internal(w, "check slot", err)
		return
	}
	if taken {
		writeMsg(w, http.StatusConflict, "Este horario ya está ocupado")
		return
	}
	if err := h.repo.CreateAppointment(r.Context(), a); err != nil {
		// lost a race for the same slot
		if errors.Is(err, store.ErrDuplicate) {
			writeMsg(w, http.StatusConflict, "Este horario ya está ocupado")
			return
		}
		h.internal(w, "create appointment", err)
		return
	}

	h.log.Info("appointment created", zap.String("id", a.ID), zap.String("user_id", a.UserID))
	writeJSON(w, http.StatusCreated, map[string]any{
		"msg":  "Cita creada exitosamente",
		"date": a,
	})
}

func (h *Handler) MyDates(w http.ResponseWriter, r *http.Request) {
	f, ok := appointmentFilter(w, r)
	if !ok {
		return
	}
	f.UserID = middleware.UserID(r.Context())
	h.listDates(w, r, f)
}

func (h *Handler) AllDates(w http.ResponseWriter, r *http.Request) {
	f, ok := appointmentFilter(w, r)
	if !ok {
		return
	}
	f.DateFrom = r.URL.Query().Get("date_from")
	f.DateTo = r.URL.Query().Get("date_to")
	h.listDates(w, r, f)
}

func appointmentFilter(w http.ResponseWriter, r *http.Request) (store.AppointmentFilter, bool) {
	page, size := pageQuery(r)
	f := store.AppointmentFilter{Page: page, PageSize: size}
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := model.ParseStatus(v)
		if err != nil {
			writeMsg(w, http.StatusBadRequest, "Estado inválido. Debe ser 'pending', 'completed' o 'cancelled'")
			return f, false
		}
		f.Status = st
	}
	return f, true
}

func (h *Handler) listDates(w http.ResponseWriter, r *http.Request, f store.AppointmentFilter) {
	items, total, err := h.repo.ListAppointments(r.Context(), f)
	if err != nil {
		h.internal(w, "list appointments", err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewPage(items, total, f.Page, f.PageSize))
}

// CancelDate lets the owner (or an admin) cancel a pending appointment.
func (h *Handler) CancelDate(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())
	a, ok := h.loadAppointment(w, r)
	if !ok {
		return
	}

	owner := a.UserID == uid
	role := model.RoleUser
	if !owner {
		if u, err := h.repo.UserByID(r.Context(), uid); err == nil {
			role = u.Role
		}
		if role != model.RoleAdmin {
			writeMsg(w, http.StatusForbidden, "No tiene permiso para cancelar esta cita")
			return
		}
	}
	h.transition(w, r, a, model.ActionCancel, role, owner)
}

func (h *Handler) CompleteDate(w http.ResponseWriter, r *http.Request) {
	if a, ok := h.loadAppointment(w, r); ok {
		h.transition(w, r, a, model.ActionComplete, model.RoleAdmin, false)
	}
}

func (h *Handler) AdminCancelDate(w http.ResponseWriter, r *http.Request) {
	if a, ok := h.loadAppointment(w, r); ok {
		h.transition(w, r, a, model.ActionCancel, model.RoleAdmin, false)
	}
}

type updateDateRequest struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// UpdateDate lets an admin edit an appointment. A status change goes through
// the same transition rules as complete and cancel, so terminal appointments
// cannot be reopened, and a new slot is checked for conflicts.
func (h *Handler) UpdateDate(w http.ResponseWriter, r *http.Request) {
	var req updateDateRequest
	if err := parseJSON(r, &req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Datos JSON requeridos")
		return
	}
	if req.Title != nil && len([]rune(strings.TrimSpace(*req.Title))) < 5 {
		writeMsg(w, http.StatusBadRequest, "El título debe tener al menos 5 caracteres")
		return
	}
	if req.Date != nil && !model.ValidDate(*req.Date) {
		writeMsg(w, http.StatusBadRequest, "Formato de fecha inválido. Use YYYY-MM-DD")
		return
	}
	if req.Time != nil && !model.ValidTime(*req.Time) {
		writeMsg(w, http.StatusBadRequest, "Formato de hora inválido. Use HH:MM (24h)")
		return
	}
	if req.Description != nil && len([]rune(strings.TrimSpace(*req.Description))) < 5 {
		writeMsg(w, http.StatusBadRequest, "La descripción debe tener al menos 5 caracteres")
		return
	}
	var status model.Status
	if req.Status != nil {
		var err error
		if status, err = model.ParseStatus(*req.Status); err != nil {
			writeMsg(w, http.StatusBadRequest, "Estado inválido. Debe ser 'pending', 'completed' o 'cancelled'")
			return
		}
	}

	a, ok := h.loadAppointment(w, r)
	if !ok {
		return
	}
	from := a.Status
	next := *a
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Date != nil {
		next.Date = *req.Date
	}
	if req.Time != nil {
		next.Time = *req.Time
	}
	if status != "" && status != from {
		to, err := statusChange(from, status)
		if err != nil {
			writeMsg(w, http.StatusBadRequest, fmt.Sprintf("No se puede cambiar a %s una cita con estado: %s", status, from))
			return
		}
		next.Status = to
	}

	moved := next.Date != a.Date || next.Time != a.Time
	if moved {
		start, err := next.StartsAt(time.Local)
		if err != nil {
			writeMsg(w, http.StatusBadRequest, "Formato de fecha inválido. Use YYYY-MM-DD")
			return
		}
		if start.Before(h.now()) {
			writeMsg(w, http.StatusBadRequest, "La cita debe ser en el futuro")
			return
		}
	}
	if moved && next.Status != model.StatusCancelled {
		taken, err := h.repo.SlotTaken(r.Context(), next.Date, next.Time)
		if err != nil {
			h.internal(w, "check slot", err)
			return
		}
		if taken {
			writeMsg(w, http.StatusConflict, "Este horario ya está ocupado")
			return
		}
	}

	err := h.repo.UpdateAppointment(r.Context(), &next, from)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		writeMsg(w, http.StatusConflict, "Este horario ya está ocupado")
		return
	case errors.Is(err, store.ErrStale):
		writeMsg(w, http.StatusConflict, "La cita fue modificada por otra operación, intente de nuevo")
		return
	case errors.Is(err, store.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "Cita no encontrada")
		return
	case err != nil:
		h.internal(w, "update appointment", err)
		return
	}

	h.log.Info("appointment updated by admin",
		zap.String("id", next.ID),
		zap.String("status", string(next.Status)),
		zap.String("by", middleware.UserID(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":  "Cita actualizada exitosamente",
		"date": next,
	})
}

// statusChange maps a requested status onto an admin transition. Pending is
// never a target: only pending appointments change status at all.
func statusChange(from, to model.Status) (model.Status, error) {
	switch to {
	case model.StatusCompleted:
		return model.Transition(from, model.ActionComplete, model.RoleAdmin, false)
	case model.StatusCancelled:
		return model.Transition(from, model.ActionCancel, model.RoleAdmin, false)
	}
	return from, fmt.Errorf("%w: %s", model.ErrTerminalStatus, from)
}

func (h *Handler) loadAppointment(w http.ResponseWriter, r *http.Request) (*model.Appointment, bool) {
	a, err := h.repo.GetAppointment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeMsg(w, http.StatusNotFound, "Cita no encontrada")
		return nil, false
	}
	if err != nil {
		h.internal(w, "get appointment", err)
		return nil, false
	}
	return a, true
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, a *model.Appointment, action model.Action, role model.Role, owner bool) {
	verb := "cancelar"
	if action == model.ActionComplete {
		verb = "completar"
	}

	to, err := model.Transition(a.Status, action, role, owner)
	switch {
	case errors.Is(err, model.ErrTerminalStatus):
		writeMsg(w, http.StatusBadRequest, fmt.Sprintf("No se puede %s una cita con estado: %s", verb, a.Status))
		return
	case err != nil:
		writeMsg(w, http.StatusForbidden, "No tiene permiso para modificar esta cita")
		return
	}

	err = h.repo.SetAppointmentStatus(r.Context(), a.ID, a.Status, to)
	switch {
	case errors.Is(err, store.ErrStale):
		writeMsg(w, http.StatusBadRequest, fmt.Sprintf("No se puede %s una cita que ya no está pendiente", verb))
		return
	case errors.Is(err, store.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "Cita no encontrada")
		return
	case err != nil:
		h.internal(w, "set status", err)
		return
	}

	h.log.Info("appointment status changed",
		zap.String("id", a.ID),
		zap.String("status", string(to)),
		zap.String("by", middleware.UserID(r.Context())),
	)
	if to == model.StatusCompleted {
		writeMsg(w, http.StatusOK, "Cita marcada como completada exitosamente")
		return
	}
	writeMsg(w, http.StatusOK, "Cita cancelada exitosamente")
}
