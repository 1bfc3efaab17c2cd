package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"agendalink/internal/backend"
	"agendalink/internal/export"
	"agendalink/internal/models"
	"agendalink/internal/session"
	"agendalink/internal/theme"
)

// adminClient returns the backend client authenticated as the caller, or
// writes 401 and returns nil when the token is missing or stale.
func (s *Server) adminClient(w http.ResponseWriter, r *http.Request) *backend.AdminClient {
	sess := session.FromRequest(r)
	if !sess.Valid() {
		writeError(w, http.StatusUnauthorized, "sessão expirada, faça login novamente")
		return nil
	}
	return s.admin.WithToken(sess.Token)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	resp, err := s.admin.Login(r.Context(), req)
	if err != nil {
		writeBackendError(w, err, "falha no login")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req backend.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	if err := s.admin.Register(r.Context(), req); err != nil {
		writeBackendError(w, err, "falha no cadastro")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	summary, err := client.Dashboard(r.Context())
	if err != nil {
		writeBackendError(w, err, "falha ao carregar painel")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// bookingRange parses from/to query params, defaulting to the current month.
func bookingRange(r *http.Request) (string, string, error) {
	now := time.Now()
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	if to == "" {
		to = time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return "", "", fmt.Errorf("invalid date %q", d)
		}
	}
	return from, to, nil
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	from, to, err := bookingRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "datas inválidas; formato esperado YYYY-MM-DD")
		return
	}

	bookings, err := client.ListBookings(r.Context(), from, to)
	if err != nil {
		writeBackendError(w, err, "falha ao listar agendamentos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "from": from, "to": to})
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	from, to, err := bookingRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "datas inválidas; formato esperado YYYY-MM-DD")
		return
	}

	bookings, err := client.ListBookings(r.Context(), from, to)
	if err != nil {
		writeBackendError(w, err, "falha ao listar agendamentos")
		return
	}

	fromDate, _ := time.Parse("2006-01-02", from)
	toDate, _ := time.Parse("2006-01-02", to)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="agendamentos_%s_a_%s.xlsx"`, from, to))

	if err := export.WriteBookingsXLSX(w, bookings, fromDate, toDate); err != nil {
		s.logger.Error().Err(err).Msg("xlsx export error")
	}
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	services, err := client.ListServices(r.Context())
	if err != nil {
		writeBackendError(w, err, "falha ao listar serviços")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	var req backend.ServicePayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	svc, err := client.CreateService(r.Context(), req)
	if err != nil {
		writeBackendError(w, err, "falha ao criar serviço")
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	var req backend.ServicePayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	svc, err := client.UpdateService(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeBackendError(w, err, "falha ao atualizar serviço")
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	if err := client.DeleteService(r.Context(), r.PathValue("id")); err != nil {
		writeBackendError(w, err, "falha ao remover serviço")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleBusinessHours(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	items, err := client.BusinessHours(r.Context())
	if err != nil {
		writeBackendError(w, err, "falha ao carregar horários")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleUpdateBusinessHours(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	var body struct {
		Items []models.BusinessHourItem `json:"items"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}
	for _, item := range body.Items {
		if item.Weekday < 0 || item.Weekday > 6 {
			writeError(w, http.StatusBadRequest, "dia da semana inválido")
			return
		}
	}

	if err := client.UpdateBusinessHours(r.Context(), body.Items); err != nil {
		writeBackendError(w, err, "falha ao salvar horários")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	from, to, err := bookingRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "datas inválidas; formato esperado YYYY-MM-DD")
		return
	}

	blocks, err := client.ListBlocks(r.Context(), from, to)
	if err != nil {
		writeBackendError(w, err, "falha ao listar bloqueios")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	var req backend.BlockPayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	block, err := client.CreateBlock(r.Context(), req)
	if err != nil {
		writeBackendError(w, err, "falha ao criar bloqueio")
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	if err := client.DeleteBlock(r.Context(), r.PathValue("id")); err != nil {
		writeBackendError(w, err, "falha ao remover bloqueio")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	links, err := client.ListBookingLinks(r.Context())
	if err != nil {
		writeBackendError(w, err, "falha ao listar links")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	tenant, err := client.Theme(r.Context())
	if err != nil {
		writeBackendError(w, err, "falha ao carregar tema")
		return
	}
	writeJSON(w, http.StatusOK, theme.Resolve(tenant, nil))
}

func (s *Server) handleUpdateTheme(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	var req backend.ThemePayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}
	if !theme.ValidMode(req.Mode) {
		writeError(w, http.StatusBadRequest, "modo de tema inválido")
		return
	}
	req.Vars = theme.SanitizeVars(req.Vars)

	updated, err := client.UpdateTheme(r.Context(), req)
	if err != nil {
		writeBackendError(w, err, "falha ao salvar tema")
		return
	}
	writeJSON(w, http.StatusOK, theme.Resolve(updated, nil))
}

func (s *Server) handleResetTheme(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	reset, err := client.ResetTheme(r.Context())
	if err != nil {
		writeBackendError(w, err, "falha ao restaurar tema")
		return
	}
	writeJSON(w, http.StatusOK, theme.Resolve(reset, nil))
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	client := s.adminClient(w, r)
	if client == nil {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := s.journal.List(r.Context(), r.PathValue("session"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao ler histórico")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
