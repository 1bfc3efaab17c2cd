package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"agendalink/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicClient(t *testing.T) {
	ctx := context.Background()

	t.Run("ListServices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/public/links/tok_1/services", r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode([]models.Service{{ID: "svc_1", Name: "Haircut"}})
		}))
		defer srv.Close()

		c := NewPublicClient(srv.URL, "tok_1", time.Second)
		services, err := c.ListServices(ctx)
		require.NoError(t, err)
		require.Len(t, services, 1)
		assert.Equal(t, "Haircut", services[0].Name)
	})

	t.Run("ListServicesCached", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_ = json.NewEncoder(w).Encode([]models.Service{{ID: "svc_1"}})
		}))
		defer srv.Close()

		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()
		rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rc.Close()

		c := NewPublicClient(srv.URL, "tok_1", time.Second)
		c.UseRedisCache(rc, time.Minute)

		_, err = c.ListServices(ctx)
		require.NoError(t, err)
		_, err = c.ListServices(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load(), "second call must hit the cache")
	})

	t.Run("Availability", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/public/links/tok_1/availability", r.URL.Path)
			assert.Equal(t, "svc_1", r.URL.Query().Get("serviceId"))
			assert.Equal(t, "2026-09-01", r.URL.Query().Get("date"))
			_ = json.NewEncoder(w).Encode(models.AvailabilityResponse{Date: "2026-09-01"})
		}))
		defer srv.Close()

		c := NewPublicClient(srv.URL, "tok_1", time.Second)
		resp, err := c.Availability(ctx, "svc_1", "2026-09-01")
		require.NoError(t, err)
		assert.Equal(t, "2026-09-01", resp.Date)
	})

	t.Run("CreatePixDefaultsIntent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/pix", r.URL.Path)
			var body PixPaymentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, models.PaymentIntentSignal, body.Intent)
			_ = json.NewEncoder(w).Encode(models.PixPayment{PaymentID: "pay_1"})
		}))
		defer srv.Close()

		c := NewPublicClient(srv.URL, "tok_1", time.Second)
		pix, err := c.CreatePixPayment(ctx, PixPaymentRequest{BookingID: "bkg_1"})
		require.NoError(t, err)
		assert.Equal(t, "pay_1", pix.PaymentID)
	})

	t.Run("ErrorDecoding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Link não encontrado"})
		}))
		defer srv.Close()

		c := NewPublicClient(srv.URL, "tok_1", time.Second)
		_, err := c.ListServices(ctx)
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "Link não encontrado", apiErr.Message)
		assert.True(t, IsLinkInvalid(err))
	})

	t.Run("TokenEscaped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotContains(t, r.URL.Path, "..")
			_ = json.NewEncoder(w).Encode([]models.Service{})
		}))
		defer srv.Close()

		c := NewPublicClient(srv.URL, "../admin", time.Second)
		_, err := c.ListServices(ctx)
		require.NoError(t, err)
	})
}

func TestAdminClient(t *testing.T) {
	ctx := context.Background()

	t.Run("BearerAttached", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer jwt_1", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(models.DashboardSummary{})
		}))
		defer srv.Close()

		c := NewAdminClient(srv.URL, time.Second).WithToken("jwt_1")
		_, err := c.Dashboard(ctx)
		require.NoError(t, err)
	})

	t.Run("WithTokenCopies", func(t *testing.T) {
		base := NewAdminClient("http://backend", time.Second)
		a := base.WithToken("jwt_a")
		b := base.WithToken("jwt_b")
		assert.NotSame(t, a, b)
	})

	t.Run("BookingsRange", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2026-09-01", r.URL.Query().Get("from"))
			assert.Equal(t, "2026-09-30", r.URL.Query().Get("to"))
			_ = json.NewEncoder(w).Encode([]models.Booking{{ID: "bkg_1"}})
		}))
		defer srv.Close()

		c := NewAdminClient(srv.URL, time.Second).WithToken("jwt_1")
		bookings, err := c.ListBookings(ctx, "2026-09-01", "2026-09-30")
		require.NoError(t, err)
		require.Len(t, bookings, 1)
	})

	t.Run("UpdateBusinessHoursWrapsItems", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			var body map[string][]models.BusinessHourItem
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body["items"], 1)
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		c := NewAdminClient(srv.URL, time.Second).WithToken("jwt_1")
		err := c.UpdateBusinessHours(ctx, []models.BusinessHourItem{{Weekday: 1, Enabled: true}})
		require.NoError(t, err)
	})
}
