package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"agendalink/internal/models"
)

// AdminClient calls the authenticated console routes. A zero-token client can
// only log in or register; WithToken derives a client for everything else.
type AdminClient struct {
	client
}

func NewAdminClient(baseURL string, timeout time.Duration) *AdminClient {
	return &AdminClient{client: newClient(baseURL, timeout)}
}

// WithToken returns a copy of the client that attaches the bearer token.
func (c *AdminClient) WithToken(token string) *AdminClient {
	dup := *c
	dup.bearer = token
	return &dup
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *AdminClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doPost(ctx, c.baseURL+"/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type RegisterRequest struct {
	TenantName    string `json:"tenantName"`
	TenantSlug    string `json:"tenantSlug"`
	AdminName     string `json:"adminName"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

func (c *AdminClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.doPost(ctx, c.baseURL+"/auth/register", req, nil)
}

// ListBookings returns bookings whose start falls inside [from, to], both
// YYYY-MM-DD.
func (c *AdminClient) ListBookings(ctx context.Context, from, to string) ([]models.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	var bookings []models.Booking
	if err := c.doGet(ctx, endpoint, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *AdminClient) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := c.doGet(ctx, c.baseURL+"/services", &services); err != nil {
		return nil, err
	}
	return services, nil
}

type ServicePayload struct {
	Name            string   `json:"name"`
	DurationMinutes int      `json:"durationMinutes"`
	PriceCents      int64    `json:"priceCents"`
	Active          bool     `json:"active"`
	SignalPercent   *float64 `json:"signalPercentOverride,omitempty"`
}

func (c *AdminClient) CreateService(ctx context.Context, req ServicePayload) (*models.Service, error) {
	var service models.Service
	if err := c.doPost(ctx, c.baseURL+"/services", req, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (c *AdminClient) UpdateService(ctx context.Context, id string, req ServicePayload) (*models.Service, error) {
	endpoint := fmt.Sprintf("%s/services/%s", c.baseURL, url.PathEscape(id))
	var service models.Service
	if err := c.doPut(ctx, endpoint, req, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (c *AdminClient) DeleteService(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/services/%s", c.baseURL, url.PathEscape(id))
	return c.doDelete(ctx, endpoint, nil)
}

func (c *AdminClient) BusinessHours(ctx context.Context) ([]models.BusinessHourItem, error) {
	var items []models.BusinessHourItem
	if err := c.doGet(ctx, c.baseURL+"/schedule/business-hours", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *AdminClient) UpdateBusinessHours(ctx context.Context, items []models.BusinessHourItem) error {
	body := map[string][]models.BusinessHourItem{"items": items}
	return c.doPut(ctx, c.baseURL+"/schedule/business-hours", body, nil)
}

func (c *AdminClient) ListBlocks(ctx context.Context, from, to string) ([]models.Block, error) {
	endpoint := fmt.Sprintf("%s/schedule/blocks?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from), url.QueryEscape(to))
	var blocks []models.Block
	if err := c.doGet(ctx, endpoint, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

type BlockPayload struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	Reason  string    `json:"reason,omitempty"`
}

func (c *AdminClient) CreateBlock(ctx context.Context, req BlockPayload) (*models.Block, error) {
	var block models.Block
	if err := c.doPost(ctx, c.baseURL+"/schedule/blocks", req, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

func (c *AdminClient) DeleteBlock(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/schedule/blocks/%s", c.baseURL, url.PathEscape(id))
	return c.doDelete(ctx, endpoint, nil)
}

func (c *AdminClient) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := c.doGet(ctx, c.baseURL+"/dashboard", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *AdminClient) ListBookingLinks(ctx context.Context) ([]models.BookingLink, error) {
	var links []models.BookingLink
	if err := c.doGet(ctx, c.baseURL+"/booking-links", &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *AdminClient) Theme(ctx context.Context) (*models.TenantTheme, error) {
	var theme models.TenantTheme
	if err := c.doGet(ctx, c.baseURL+"/theme", &theme); err != nil {
		return nil, err
	}
	return &theme, nil
}

type ThemePayload struct {
	Mode string            `json:"mode,omitempty"`
	Vars map[string]string `json:"vars,omitempty"`
}

func (c *AdminClient) UpdateTheme(ctx context.Context, req ThemePayload) (*models.TenantTheme, error) {
	var theme models.TenantTheme
	if err := c.doPatch(ctx, c.baseURL+"/theme", req, &theme); err != nil {
		return nil, err
	}
	return &theme, nil
}

func (c *AdminClient) ResetTheme(ctx context.Context) (*models.TenantTheme, error) {
	var theme models.TenantTheme
	if err := c.doDelete(ctx, c.baseURL+"/theme", &theme); err != nil {
		return nil, err
	}
	return &theme, nil
}
