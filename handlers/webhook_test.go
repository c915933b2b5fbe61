package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"consultme/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Process(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func postWebhook(p EventProcessor, body, sig string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/api/webhook/stripe", NewWebhookHandler(p, zap.NewNop()).StripeWebhookHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"processed", nil, http.StatusOK},
		{"bad signature", fmt.Errorf("%w: mismatch", payment.ErrInvalidSignature), http.StatusBadRequest},
		{"copy in flight", payment.ErrEventInFlight, http.StatusConflict},
		{"secret missing", payment.ErrWebhookSecretMissing, http.StatusInternalServerError},
		{"handler failure", errors.New("ledger down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := new(mockProcessor)
			p.On("Process", mock.Anything, []byte(`{"id":"evt_1"}`), "t=1,v1=abc").Return(tc.err)

			w := postWebhook(p, `{"id":"evt_1"}`, "t=1,v1=abc")

			assert.Equal(t, tc.status, w.Code)
			p.AssertExpectations(t)
		})
	}
}

func TestStripeWebhookHandlerAcknowledges(t *testing.T) {
	p := new(mockProcessor)
	p.On("Process", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := postWebhook(p, `{}`, "sig")

	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}
