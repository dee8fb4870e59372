package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/infrastructure/paytrail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	lastReq *paytrail.CreatePaymentRequest
	err     error
}

func (g *fakeGateway) CreatePayment(_ context.Context, req *paytrail.CreatePaymentRequest) (*paytrail.PaymentSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastReq = req
	return &paytrail.PaymentSession{
		TransactionID: "tx-1",
		Href:          "https://pay.example.fi/tx-1",
		Reference:     req.Reference,
	}, nil
}

func newCheckoutFixture() (*CheckoutUsecase, *fakeShippingRepo, *fakeGateway) {
	shippingRepo := newFakeShippingRepo()
	productRepo := newFakeProductRepo(
		domain.Product{ID: "p-sofa", Name: "Sofa", Price: 120, Condition: domain.ConditionUsed, IsActive: true, CategoryIDs: []string{"cat-sofas"}},
		domain.Product{ID: "p-lamp", Name: "Lamp", Price: 30, Condition: domain.ConditionNew, IsActive: true, CategoryIDs: []string{"cat-lighting"}},
	)
	shippingUC := NewShippingUsecase(shippingRepo, productRepo, &fakeTxManager{}, newFakeCache(), time.Minute)
	gateway := &fakeGateway{}
	uc := NewCheckoutUsecase(productRepo, shippingUC, gateway, "https://shop.example.fi/", "EUR", 100)
	return uc, shippingRepo, gateway
}

func TestCheckout_CreateSession(t *testing.T) {
	assertions := assert.New(t)
	uc, repo, gateway := newCheckoutFixture()

	repo.zones = []domain.ShippingZone{{
		ID: 1, Name: "Helsinki Center", DistanceFromStoreKm: 5, IsActive: true,
		PostalCodes: []domain.PostalCodeRange{{Start: "00600", End: "00650"}},
	}}
	repo.rules = []domain.ShippingRule{{
		ID: 1, Name: "Home delivery", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 5, PricePerKm: 1, MaxDistanceKm: 100,
	}}

	session, err := uc.CreateSession(context.Background(), CheckoutRequest{
		Products:       []CartItem{{ProductID: "p-sofa", Quantity: 1}},
		PostalCode:     "00620",
		DeliveryMethod: domain.DeliveryMethodHomeDelivery,
		CustomerEmail:  "aino@example.fi",
	})
	require.NoError(t, err)

	assertions.Equal(120.0, session.Subtotal)
	assertions.Equal(10.0, session.ShippingCost)
	assertions.Equal(130.0, session.TotalAmount)
	assertions.Equal("tx-1", session.TransactionID)
	assertions.Contains(session.HTMLSnippet, "https://pay.example.fi/tx-1")
	assertions.Equal("https://pay.example.fi/tx-1", session.PaymentURL)

	// The gateway gets minor units and a shipping row
	require.NotNil(t, gateway.lastReq)
	assertions.Equal(int64(13000), gateway.lastReq.Amount)
	require.Len(t, gateway.lastReq.Items, 2)
	assertions.Equal("shipping", gateway.lastReq.Items[1].ProductCode)
	assertions.Equal(int64(1000), gateway.lastReq.Items[1].UnitPrice)
	assertions.Equal("EUR", gateway.lastReq.Currency)
	assertions.Equal("https://shop.example.fi/checkout/success", gateway.lastReq.RedirectURLs.Success)
}

func TestCheckout_PickupSkipsShippingRow(t *testing.T) {
	uc, _, gateway := newCheckoutFixture()

	session, err := uc.CreateSession(context.Background(), CheckoutRequest{
		Products:       []CartItem{{ProductID: "p-lamp", Quantity: 2}},
		DeliveryMethod: domain.DeliveryMethodPickup,
		CustomerEmail:  "aino@example.fi",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, session.ShippingCost)
	assert.Equal(t, 60.0, session.TotalAmount)
	require.Len(t, gateway.lastReq.Items, 1, "no shipping row for pickup")
}

func TestCheckout_UnavailableShippingAbortsCheckout(t *testing.T) {
	uc, repo, gateway := newCheckoutFixture()

	// One active rule that can never price this address: no zones exist
	repo.rules = []domain.ShippingRule{{
		ID: 1, Name: "By distance", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 5, PricePerKm: 1,
	}}

	_, err := uc.CreateSession(context.Background(), CheckoutRequest{
		Products:       []CartItem{{ProductID: "p-sofa", Quantity: 1}},
		PostalCode:     "96100",
		DeliveryMethod: domain.DeliveryMethodHomeDelivery,
		CustomerEmail:  "aino@example.fi",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShippingUnavailable)
	assert.Nil(t, gateway.lastReq, "no payment session is opened without a shipping price")
}

func TestCheckout_GatewayFailureSurfaces(t *testing.T) {
	uc, repo, gateway := newCheckoutFixture()
	gateway.err = fmt.Errorf("provider down")

	repo.rules = []domain.ShippingRule{{
		ID: 1, Name: "Flat", RuleType: domain.RuleTypeFlatRate,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		FlatRatePrice: 20,
	}}

	_, err := uc.CreateSession(context.Background(), CheckoutRequest{
		Products:       []CartItem{{ProductID: "p-sofa", Quantity: 1}},
		PostalCode:     "00100",
		DeliveryMethod: domain.DeliveryMethodHomeDelivery,
		CustomerEmail:  "aino@example.fi",
	})
	assert.Error(t, err)
}

func TestCheckout_QuantityLimit(t *testing.T) {
	uc, _, _ := newCheckoutFixture()

	_, err := uc.CreateSession(context.Background(), CheckoutRequest{
		Products:       []CartItem{{ProductID: "p-lamp", Quantity: 101}},
		DeliveryMethod: domain.DeliveryMethodPickup,
		CustomerEmail:  "aino@example.fi",
	})
	assert.Error(t, err)
}
