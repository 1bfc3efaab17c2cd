package web

import (
	"errors"
	"net/http"
	"time"

	"agendalink/internal/flow"
	"agendalink/internal/models"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	_, ctrl, err := s.registry.Start(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrTooManySessions) {
			writeError(w, http.StatusServiceUnavailable, "limite de sessões atingido, tente novamente em instantes")
			return
		}
		writeError(w, http.StatusInternalServerError, "falha ao criar sessão")
		return
	}

	// Link classification happens here: a dead link still yields a
	// session whose snapshot renders the invalid/inactive screen.
	_ = ctrl.LoadServices(r.Context())

	writeJSON(w, http.StatusCreated, ctrl.Snapshot())
}

// withSession resolves the controller for path token/id, replying 404 when
// the session is unknown.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) *flow.Controller {
	token := r.PathValue("token")
	id := r.PathValue("id")

	ctrl, err := s.registry.Get(r.Context(), token, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "sessão não encontrada ou expirada")
		} else {
			writeError(w, http.StatusInternalServerError, "falha ao carregar sessão")
		}
		return nil
	}
	return ctrl
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}

	var body struct {
		ServiceID string `json:"serviceId"`
		Date      string `json:"date"`
		Reset     bool   `json:"reset"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}
	if body.Date != "" {
		if _, err := time.Parse("2006-01-02", body.Date); err != nil {
			writeError(w, http.StatusBadRequest, "data inválida; formato esperado YYYY-MM-DD")
			return
		}
	}

	ctrl.SetSelection(body.ServiceID, body.Date)
	_ = ctrl.SearchAvailability(r.Context(), body.Reset)

	s.registry.Persist(r.Context(), r.PathValue("token"), r.PathValue("id"), ctrl)
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleSelectSlot(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}

	var body struct {
		StartAt time.Time `json:"startAt"`
	}
	if err := decodeBody(r, &body); err != nil || body.StartAt.IsZero() {
		writeError(w, http.StatusBadRequest, "startAt é obrigatório")
		return
	}

	ctrl.SelectSlot(body.StartAt)
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}

	var body models.Customer
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	ctrl.SetCustomer(body)
	s.registry.Persist(r.Context(), r.PathValue("token"), r.PathValue("id"), ctrl)
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}

	err := ctrl.Submit(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, flow.ErrNoSlotSelected):
		writeError(w, http.StatusBadRequest, "selecione um horário antes de confirmar")
		return
	case errors.Is(err, flow.ErrMissingEmail):
		writeError(w, http.StatusBadRequest, "informe um email para gerar o PIX")
		return
	case errors.Is(err, flow.ErrMissingContact):
		writeError(w, http.StatusBadRequest, "informe nome e telefone")
		return
	case errors.Is(err, flow.ErrFlowNotSelecting):
		writeError(w, http.StatusConflict, "já existe uma reserva nesta sessão")
		return
	default:
		// The controller already folded the failure (and any rollback)
		// into its state; the snapshot carries the user-facing message.
	}

	s.registry.Persist(r.Context(), r.PathValue("token"), r.PathValue("id"), ctrl)
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleStartPix(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}

	var body struct {
		PayerEmail string `json:"payerEmail"`
	}
	_ = decodeBody(r, &body)

	err := ctrl.StartPix(r.Context(), body.PayerEmail)
	switch {
	case err == nil:
	case errors.Is(err, flow.ErrNoPendingBooking):
		writeError(w, http.StatusConflict, "não há reserva aguardando pagamento")
		return
	case errors.Is(err, flow.ErrMissingEmail):
		writeError(w, http.StatusBadRequest, "informe um email para gerar o PIX")
		return
	}

	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}
	ctrl.Refresh(r.Context())
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleCopyPix(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}
	ctrl.CopyPixCode()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleApproveDev(w http.ResponseWriter, r *http.Request) {
	ctrl := s.withSession(w, r)
	if ctrl == nil {
		return
	}
	if err := ctrl.ApprovePaymentDev(r.Context()); err != nil {
		if errors.Is(err, flow.ErrNoPendingBooking) {
			writeError(w, http.StatusConflict, "não há pagamento para aprovar")
			return
		}
		writeBackendError(w, err, "falha ao aprovar pagamento")
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}
