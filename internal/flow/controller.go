package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"agendalink/internal/backend"
	"agendalink/internal/clipboard"
	"agendalink/internal/events"
	"agendalink/internal/journal"
	"agendalink/internal/metrics"
	"agendalink/internal/models"

	"github.com/rs/zerolog"
)

// Backend is the slice of the public API the controller drives.
type Backend interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	Availability(ctx context.Context, serviceID, date string) (*models.AvailabilityResponse, error)
	CreateBooking(ctx context.Context, req backend.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
	CreatePixPayment(ctx context.Context, req backend.PixPaymentRequest) (*models.PixPayment, error)
	GetPayment(ctx context.Context, mpPaymentID string) (*models.PaymentSnapshot, error)
	ApprovePaymentDev(ctx context.Context, paymentID string) error
}

// Validation failures block submission locally; they never reach the network.
var (
	ErrNoSlotSelected   = errors.New("flow: no slot selected")
	ErrMissingEmail     = errors.New("flow: payer email is required")
	ErrMissingContact   = errors.New("flow: customer name and phone are required")
	ErrFlowNotSelecting = errors.New("flow: a booking already exists for this session")
	ErrNoPendingBooking = errors.New("flow: no pending booking")
	ErrClosed           = errors.New("flow: session closed")
)

const defaultPollTimeout = 10 * time.Second

type linkStatus int

const (
	linkOK linkStatus = iota
	linkInvalid
	linkInactive
)

// Options configures a Controller. Zero values get sane defaults.
type Options struct {
	SessionID         string
	PollInterval      time.Duration
	CountdownInterval time.Duration
	Clock             func() time.Time
	Logger            *zerolog.Logger
	Events            *events.EventBus
	Journal           *journal.Journal
	Clipboard         clipboard.Copier
}

// Controller owns the client-side state of one public booking session: link
// classification, selection inputs, the current booking and its PIX payment,
// and the two timers that watch them. All exported methods are safe for
// concurrent use.
type Controller struct {
	client Backend

	sessionID         string
	pollInterval      time.Duration
	countdownInterval time.Duration
	clock             func() time.Time
	logger            zerolog.Logger
	events            *events.EventBus
	journal           *journal.Journal
	clipboard         clipboard.Copier

	mu sync.Mutex

	services        []models.Service
	serviceID       string
	date            string
	availability    *models.AvailabilityResponse
	selectedStartAt time.Time
	customer        models.Customer

	created *models.Booking
	pix     *models.PixPayment

	link    linkStatus
	linkMsg string
	errMsg  string
	pixErr  string

	submitting bool
	remaining  *time.Duration

	// epoch invalidates in-flight network results and timer callbacks from
	// a previous booking or a reset flow. Bumped on every timer rearm.
	epoch         uint64
	stopPoll      chan struct{}
	stopCountdown chan struct{}

	approvedSeen bool
	expiredSeen  bool
	closed       bool
}

func NewController(client Backend, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = models.DefaultPollIntervalSeconds * time.Second
	}
	if opts.CountdownInterval <= 0 {
		opts.CountdownInterval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("session_id", opts.SessionID).Logger()
	}

	return &Controller{
		client:            client,
		sessionID:         opts.SessionID,
		pollInterval:      opts.PollInterval,
		countdownInterval: opts.CountdownInterval,
		clock:             opts.Clock,
		logger:            logger,
		events:            opts.Events,
		journal:           opts.Journal,
		clipboard:         opts.Clipboard,
		date:              opts.Clock().Format("2006-01-02"),
	}
}

// LoadServices fetches the link's service catalog and classifies link-state
// failures into the two terminal link screens.
func (c *Controller) LoadServices(ctx context.Context) error {
	services, err := c.client.ListServices(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
	c.link = linkOK
	c.linkMsg = ""

	if err != nil {
		if backend.IsLinkInvalid(err) {
			c.link = linkInvalid
			c.linkMsg = backend.Message(err, "Esse link não existe ou expirou.")
			return nil
		}
		if backend.IsLinkInactive(err) {
			c.link = linkInactive
			c.linkMsg = backend.Message(err, "Esse link está inativo no momento.")
			return nil
		}
		c.errMsg = backend.Message(err, "Falha ao carregar serviços.")
		return err
	}

	c.services = services
	if c.serviceID == "" && len(services) > 0 {
		c.serviceID = services[0].ID
	}
	return nil
}

// SetSelection updates the service/date pair used by the next availability
// search.
func (c *Controller) SetSelection(serviceID, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if serviceID != "" {
		c.serviceID = serviceID
	}
	if date != "" {
		c.date = date
	}
}

func (c *Controller) SetCustomer(customer models.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customer = customer
}

// SelectSlot records the chosen slot start. The slot list itself stays
// backend-authoritative; a stale pick is rejected on submit by the backend.
func (c *Controller) SelectSlot(startAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedStartAt = startAt
}

// SearchAvailability fetches slots for the current service/date pair. With
// reset semantics it also abandons any in-progress selection and booking
// interest, so stale slots never survive a different query.
func (c *Controller) SearchAvailability(ctx context.Context, reset bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	serviceID, date := c.serviceID, c.date
	if serviceID == "" || date == "" {
		c.mu.Unlock()
		return nil
	}
	c.errMsg = ""
	if reset {
		c.resetFlowLocked()
	}
	epoch := c.epoch
	c.mu.Unlock()

	resp, err := c.client.Availability(ctx, serviceID, date)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch {
		return nil
	}
	if err != nil {
		c.errMsg = backend.Message(err, "Falha ao carregar disponibilidade.")
		return err
	}
	c.availability = resp
	return nil
}

// Submit creates the booking, then its PIX payment, as two sequential calls.
// If PIX creation fails after the booking was created, the booking is
// cancelled best-effort and the session returns to the selection state.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.link != linkOK || c.created != nil || c.submitting {
		c.mu.Unlock()
		return ErrFlowNotSelecting
	}
	if c.selectedStartAt.IsZero() {
		c.mu.Unlock()
		return ErrNoSlotSelected
	}
	email := strings.TrimSpace(c.customer.Email)
	if email == "" {
		c.errMsg = "Informe um email para gerar o PIX."
		c.mu.Unlock()
		return ErrMissingEmail
	}
	name := strings.TrimSpace(c.customer.Name)
	phone := strings.TrimSpace(c.customer.Phone)
	if name == "" || phone == "" {
		c.mu.Unlock()
		return ErrMissingContact
	}

	req := backend.CreateBookingRequest{
		ServiceID: c.serviceID,
		StartAt:   c.selectedStartAt,
		Customer:  models.Customer{Name: name, Phone: phone, Email: email},
	}
	c.errMsg = ""
	c.pixErr = ""
	c.pix = nil
	c.submitting = true
	epoch := c.epoch
	c.mu.Unlock()

	booking, err := c.client.CreateBooking(ctx, req)
	if err != nil {
		c.failSubmit(epoch, err)
		return err
	}

	pix, err := c.client.CreatePixPayment(ctx, backend.PixPaymentRequest{
		BookingID:  booking.ID,
		PayerEmail: email,
		Intent:     models.PaymentIntentSignal,
	})
	if err != nil {
		c.rollback(ctx, booking)
		c.failSubmit(epoch, err)
		return err
	}

	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		// The session moved on while we were talking to the backend;
		// don't leave an orphaned pending booking behind.
		c.rollback(context.WithoutCancel(ctx), booking)
		return nil
	}
	c.created = booking
	c.pix = pix
	c.submitting = false
	c.rearmTimersLocked()
	payload := c.eventPayloadLocked("")
	c.mu.Unlock()

	metrics.IncBookingCreated()
	c.record(ctx, events.EventBookingCreated, payload)
	return nil
}

// StartPix generates the PIX for an already-pending booking (the flow lands
// here when booking creation succeeded but the payment was never generated,
// e.g. after a session resume).
func (c *Controller) StartPix(ctx context.Context, payerEmail string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.created == nil || !c.created.Pending() {
		c.mu.Unlock()
		return ErrNoPendingBooking
	}
	email := strings.TrimSpace(payerEmail)
	if email == "" {
		email = strings.TrimSpace(c.customer.Email)
	}
	if email == "" {
		c.mu.Unlock()
		return ErrMissingEmail
	}
	bookingID := c.created.ID
	c.pixErr = ""
	epoch := c.epoch
	c.mu.Unlock()

	pix, err := c.client.CreatePixPayment(ctx, backend.PixPaymentRequest{
		BookingID:  bookingID,
		PayerEmail: email,
		Intent:     models.PaymentIntentSignal,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch {
		return nil
	}
	if err != nil {
		c.pixErr = backend.Message(err, "Falha ao gerar PIX.")
		return err
	}
	c.pix = pix
	return nil
}

// Refresh runs one poll round on demand. Like the background ticks, its
// errors are swallowed; the screen simply keeps its last values.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	c.pollOnce(ctx, epoch)
}

// Resume re-attaches the controller to a booking created in an earlier
// process lifetime and, if it is still pending, restarts the timers.
func (c *Controller) Resume(ctx context.Context, bookingID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	booking, err := c.client.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.created = booking
	c.rearmTimersLocked()
	return nil
}

// CopyPixCode places the PIX copy-paste code on the clipboard, falling back
// to the manual copier. Failure of both is ignored: copy is a convenience,
// not a correctness-critical path.
func (c *Controller) CopyPixCode() {
	c.mu.Lock()
	var code string
	if c.pix != nil {
		code = c.pix.QRCode
	}
	copier := c.clipboard
	c.mu.Unlock()

	if code == "" || copier == nil {
		return
	}
	if err := copier.Copy(code); err != nil {
		c.logger.Debug().Err(err).Msg("pix code copy failed")
	}
}

// ApprovePaymentDev simulates provider approval for the current payment and
// polls immediately. The web layer gates this behind a dev flag.
func (c *Controller) ApprovePaymentDev(ctx context.Context) error {
	c.mu.Lock()
	if c.pix == nil {
		c.mu.Unlock()
		return ErrNoPendingBooking
	}
	paymentID := c.pix.PaymentID
	c.mu.Unlock()

	if err := c.client.ApprovePaymentDev(ctx, paymentID); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// Close tears the session down and stops both timers. A slow poll response
// arriving afterwards is discarded by the epoch guard.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimersLocked()
}

// BookingID returns the current booking id, empty when none exists.
func (c *Controller) BookingID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.created == nil {
		return ""
	}
	return c.created.ID
}

func (c *Controller) stateLocked() State {
	switch c.link {
	case linkInvalid:
		return StateLinkInvalid
	case linkInactive:
		return StateLinkInactive
	}
	return Reduce(c.created, c.pix)
}

func (c *Controller) resetFlowLocked() {
	c.stopTimersLocked()
	c.submitting = false
	c.created = nil
	c.pix = nil
	c.pixErr = ""
	c.selectedStartAt = time.Time{}
	c.remaining = nil
}

// failSubmit surfaces a creation error and returns the flow to selection.
func (c *Controller) failSubmit(epoch uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch {
		return
	}
	c.submitting = false
	c.created = nil
	c.pix = nil
	c.errMsg = backend.Message(err, "Falha ao gerar PIX. Não foi possível reservar.")
}

// rollback cancels a just-created booking after a failed PIX creation.
// Best-effort: a cancellation failure is logged and swallowed, the backend
// is expected to reap the orphan when it expires.
func (c *Controller) rollback(ctx context.Context, booking *models.Booking) {
	if err := c.client.CancelBooking(ctx, booking.ID); err != nil {
		metrics.IncRollback("failed")
		c.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("booking rollback failed")
	} else {
		metrics.IncRollback("ok")
	}

	c.record(ctx, events.EventBookingRolledBack, events.BookingEventPayload{
		SessionID:   c.sessionID,
		BookingID:   booking.ID,
		Code:        booking.Code,
		ServiceName: booking.Service.Name,
		StartAt:     booking.StartAt,
		Status:      booking.Status,
		AmountCents: booking.DueCents(),
		Detail:      "pix creation failed",
	})
}

// record publishes the event on the bus and appends it to the local journal.
func (c *Controller) record(ctx context.Context, eventType string, payload events.BookingEventPayload) {
	if c.events != nil {
		if err := c.events.PublishJSON(eventType, payload); err != nil {
			c.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
		}
	}
	if c.journal != nil {
		err := c.journal.Record(ctx, journal.Entry{
			SessionID: payload.SessionID,
			BookingID: payload.BookingID,
			Code:      payload.Code,
			Event:     eventType,
			Detail:    payload.Detail,
		})
		if err != nil {
			c.logger.Error().Err(err).Str("event_type", eventType).Msg("journal record error")
		}
	}
}

func (c *Controller) eventPayloadLocked(detail string) events.BookingEventPayload {
	p := events.BookingEventPayload{
		SessionID: c.sessionID,
		Detail:    detail,
	}
	if c.created != nil {
		p.BookingID = c.created.ID
		p.Code = c.created.Code
		p.ServiceName = c.created.Service.Name
		p.CustomerName = c.created.Customer.Name
		p.CustomerPhone = c.created.Customer.Phone
		p.StartAt = c.created.StartAt
		p.Status = c.created.Status
		p.AmountCents = c.created.DueCents()
	}
	return p
}
