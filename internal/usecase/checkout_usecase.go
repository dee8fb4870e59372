package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/infrastructure/paytrail"
	"kaluste-backend/pkg/logger"

	"github.com/google/uuid"
)

// PaymentGateway is the slice of the payment provider the checkout flow uses.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req *paytrail.CreatePaymentRequest) (*paytrail.PaymentSession, error)
}

// CheckoutRequest is the storefront's create-session payload.
type CheckoutRequest struct {
	Products       []CartItem `json:"products" validate:"required,min=1,dive"`
	PostalCode     string     `json:"postal_code"`
	DeliveryMethod string     `json:"delivery_method" validate:"omitempty,oneof=pickup home_delivery"`
	CustomerEmail  string     `json:"customer_email" validate:"required,email"`
	CustomerName   string     `json:"customer_name"`
	CustomerPhone  string     `json:"customer_phone"`
}

// CheckoutSession is what the storefront renders: an embeddable payment
// snippet plus the priced totals.
type CheckoutSession struct {
	TransactionID   string  `json:"transaction_id"`
	HTMLSnippet     string  `json:"html_snippet"`
	PaymentURL      string  `json:"payment_url"`
	Subtotal        float64 `json:"subtotal"`
	ShippingCost    float64 `json:"shipping_cost"`
	TotalAmount     float64 `json:"total_amount"`
	ShippingWarning string  `json:"shipping_warning,omitempty"`
}

// CheckoutUsecase prices a cart, resolves shipping and opens a hosted payment
// session. Shipping failures abort checkout; there is no fallback fee.
type CheckoutUsecase struct {
	productRepo   domain.ProductRepository
	shipping      *ShippingUsecase
	gateway       PaymentGateway
	storefrontURL string
	currency      string
	maxQuantity   int
}

func NewCheckoutUsecase(
	productRepo domain.ProductRepository,
	shipping *ShippingUsecase,
	gateway PaymentGateway,
	storefrontURL, currency string,
	maxQuantity int,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		productRepo:   productRepo,
		shipping:      shipping,
		gateway:       gateway,
		storefrontURL: strings.TrimRight(storefrontURL, "/"),
		currency:      currency,
		maxQuantity:   maxQuantity,
	}
}

// CreateSession validates the cart, resolves the shipping quote and opens the
// payment session for subtotal + shipping.
func (uc *CheckoutUsecase) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if len(req.Products) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", domain.ErrInvalidInput)
	}
	for _, item := range req.Products {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("product %s: quantity must be >= 1: %w", item.ProductID, domain.ErrInvalidInput)
		}
		if uc.maxQuantity > 0 && item.Quantity > uc.maxQuantity {
			return nil, fmt.Errorf("product %s: quantity exceeds the limit of %d: %w", item.ProductID, uc.maxQuantity, domain.ErrInvalidInput)
		}
	}

	quoteItems, err := uc.shipping.loadQuoteItems(ctx, req.Products)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	method := req.DeliveryMethod
	if method == "" {
		method = domain.DeliveryMethodHomeDelivery
	}

	cfg, err := uc.shipping.ActiveConfig(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := ResolveQuote(cfg, domain.QuoteRequest{
		PostalCode:     req.PostalCode,
		DeliveryMethod: method,
		Items:          quoteItems,
	})
	if err != nil {
		// Checkout must not proceed with a made-up fee when shipping cannot
		// be priced.
		return nil, fmt.Errorf("resolve shipping for checkout: %w", err)
	}

	var subtotal float64
	items := make([]paytrail.Item, 0, len(quoteItems)+1)
	for _, qi := range quoteItems {
		subtotal += qi.UnitPrice * float64(qi.Quantity)
		items = append(items, paytrail.Item{
			UnitPrice:     paytrail.EuroCents(qi.UnitPrice),
			Units:         int64(qi.Quantity),
			VatPercentage: 24,
			ProductCode:   qi.ProductID,
		})
	}
	if quote.Cost > 0 {
		items = append(items, paytrail.Item{
			UnitPrice:     paytrail.EuroCents(quote.Cost),
			Units:         1,
			VatPercentage: 24,
			ProductCode:   "shipping",
			Description:   "Home delivery",
		})
	}

	total := subtotal + quote.Cost
	orderID := uuid.NewString()

	session, err := uc.gateway.CreatePayment(ctx, &paytrail.CreatePaymentRequest{
		Stamp:     orderID,
		Reference: orderID,
		Amount:    paytrail.EuroCents(total),
		Currency:  uc.currency,
		Language:  "FI",
		Items:     items,
		Customer: paytrail.Customer{
			Email:     req.CustomerEmail,
			FirstName: req.CustomerName,
			Phone:     req.CustomerPhone,
		},
		RedirectURLs: paytrail.CallbackURLs{
			Success: uc.storefrontURL + "/checkout/success",
			Cancel:  uc.storefrontURL + "/checkout/cancel",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	logger.WithContext(ctx).Info().
		Str("order_id", orderID).
		Str("transaction_id", session.TransactionID).
		Float64("total", total).
		Msg("checkout session created")

	return &CheckoutSession{
		TransactionID:   session.TransactionID,
		HTMLSnippet:     paymentSnippet(session),
		PaymentURL:      session.Href,
		Subtotal:        subtotal,
		ShippingCost:    quote.Cost,
		TotalAmount:     total,
		ShippingWarning: quote.Message,
	}, nil
}

// paymentSnippet renders the embeddable markup the storefront drops into its
// checkout page: one link per payment method, or a plain link to the hosted
// page when the provider list is empty.
func paymentSnippet(session *paytrail.PaymentSession) string {
	var b strings.Builder
	b.WriteString(`<div class="payment-providers">`)
	if len(session.Providers) == 0 {
		fmt.Fprintf(&b, `<a href="%s">Siirry maksamaan</a>`, html.EscapeString(session.Href))
	}
	for _, p := range session.Providers {
		fmt.Fprintf(&b, `<a href="%s" class="payment-provider">%s</a>`,
			html.EscapeString(p.URL), html.EscapeString(p.Name))
	}
	b.WriteString(`</div>`)
	return b.String()
}
