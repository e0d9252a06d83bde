package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/StevenOyar/vibe-code/internal/model"
	"github.com/StevenOyar/vibe-code/internal/payment"
	"github.com/StevenOyar/vibe-code/internal/repository"
)

// PaymentHandler drives the hosted-checkout flow.  Checkout is nil when
// the provider is not configured; the routes then answer 503.
type PaymentHandler struct {
	Checkout *payment.Client
	Payments *repository.PaymentRepo
}

func NewPaymentHandler(checkout *payment.Client, payments *repository.PaymentRepo) *PaymentHandler {
	return &PaymentHandler{Checkout: checkout, Payments: payments}
}

type payReq struct {
	Amount      int            `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// Pay creates a checkout session and records the pending payment.
func (h *PaymentHandler) Pay(c echo.Context) error {
	if h.Checkout == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments not configured"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be greater than 0"})
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "KES"
	}
	if req.Description == "" {
		req.Description = fmt.Sprintf("Study Buddy - payment by user %d", uid)
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	req.Metadata["user_id"] = uid

	checkout, err := h.Checkout.CreateCheckout(c.Request().Context(), payment.CheckoutRequest{
		Amount:      req.Amount,
		Currency:    currency,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		log.Printf("payments: checkout create failed for user %d: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create checkout failed"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	raw, _ := json.Marshal(checkout.Raw)
	if _, err := h.Payments.Create(ctx, &model.Payment{
		UserID:   uid,
		Ref:      checkout.Ref,
		Amount:   req.Amount,
		Currency: currency,
		Status:   "created",
		Metadata: string(raw),
	}); err != nil {
		// The checkout already exists at the provider; log and return it
		// anyway so the user can still pay.
		log.Printf("payments: store record failed for ref %q: %v", checkout.Ref, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"checkout_url": checkout.URL})
}

// Callback receives provider webhooks.  Payments are upserted by
// reference: unknown refs insert a fresh row so an out-of-order webhook
// is not lost.
func (h *PaymentHandler) Callback(c echo.Context) error {
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ref := stringField(body, "ref", "reference", "invoice_id", "id")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing payment reference"})
	}
	status := stringField(body, "state", "status")
	if status == "" {
		status = "unknown"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	raw, _ := json.Marshal(body)
	if err := h.Payments.UpsertByRef(ctx, ref, status, string(raw), 0); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "process callback failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "callback processed"})
}

// History lists the user's payments newest first.
func (h *PaymentHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	payments, err := h.Payments.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list payments failed"})
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
