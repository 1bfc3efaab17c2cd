package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"agendalink/internal/models"

	"github.com/redis/go-redis/v9"
)

// PublicClient calls the anonymous routes scoped by one public link token.
// It never attaches a bearer token.
type PublicClient struct {
	client
	token string
}

func NewPublicClient(baseURL, linkToken string, timeout time.Duration) *PublicClient {
	return &PublicClient{
		client: newClient(baseURL, timeout),
		token:  linkToken,
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *PublicClient) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.useRedisCache(redisClient, ttl)
}

func (c *PublicClient) base() string {
	return fmt.Sprintf("%s/public/links/%s", c.baseURL, url.PathEscape(c.token))
}

func (c *PublicClient) ListServices(ctx context.Context) ([]models.Service, error) {
	endpoint := c.base() + "/services"
	cacheKey := "services:" + c.token
	var services []models.Service

	if c.readCache(ctx, cacheKey, &services) {
		return services, nil
	}

	if err := c.doGet(ctx, endpoint, &services); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, services)
	return services, nil
}

// Availability fetches candidate slots for one service/date (YYYY-MM-DD)
// pair. Never cached: slot sets change with every booking.
func (c *PublicClient) Availability(ctx context.Context, serviceID, date string) (*models.AvailabilityResponse, error) {
	endpoint := fmt.Sprintf("%s/availability?serviceId=%s&date=%s",
		c.base(), url.QueryEscape(serviceID), url.QueryEscape(date))
	var resp models.AvailabilityResponse
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBookingRequest is the submit payload for a new booking.
type CreateBookingRequest struct {
	ServiceID string          `json:"serviceId"`
	StartAt   time.Time       `json:"startAt"`
	Customer  models.Customer `json:"customer"`
}

func (c *PublicClient) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	endpoint := c.base() + "/bookings"
	var booking models.Booking
	if err := c.doPost(ctx, endpoint, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *PublicClient) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	endpoint := fmt.Sprintf("%s/bookings/%s", c.base(), url.PathEscape(bookingID))
	var booking models.Booking
	if err := c.doGet(ctx, endpoint, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking is the rollback half of the submit flow; callers treat its
// errors as best-effort.
func (c *PublicClient) CancelBooking(ctx context.Context, bookingID string) error {
	endpoint := fmt.Sprintf("%s/bookings/%s/cancel", c.base(), url.PathEscape(bookingID))
	return c.doPost(ctx, endpoint, nil, nil)
}

// PixPaymentRequest asks the payment provider for a deposit charge.
type PixPaymentRequest struct {
	BookingID  string `json:"bookingId"`
	PayerEmail string `json:"payerEmail,omitempty"`
	Intent     string `json:"intent"`
}

func (c *PublicClient) CreatePixPayment(ctx context.Context, req PixPaymentRequest) (*models.PixPayment, error) {
	if req.Intent == "" {
		req.Intent = models.PaymentIntentSignal
	}
	endpoint := c.baseURL + "/payments/pix"
	var payment models.PixPayment
	if err := c.doPost(ctx, endpoint, req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment reads the provider-side payment snapshot by its external id.
func (c *PublicClient) GetPayment(ctx context.Context, mpPaymentID string) (*models.PaymentSnapshot, error) {
	endpoint := fmt.Sprintf("%s/payments/%s", c.baseURL, url.PathEscape(mpPaymentID))
	var snapshot models.PaymentSnapshot
	if err := c.doGet(ctx, endpoint, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ApprovePaymentDev simulates provider approval. Only exposed when the
// gateway runs with dev payment approval enabled.
func (c *PublicClient) ApprovePaymentDev(ctx context.Context, paymentID string) error {
	endpoint := fmt.Sprintf("%s/dev/payments/%s/approve", c.baseURL, url.PathEscape(paymentID))
	return c.doPost(ctx, endpoint, nil, nil)
}
