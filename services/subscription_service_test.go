package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"ditchAPI/internal/types/subscription"
)

type fakeCheckout struct {
	params *stripe.CheckoutSessionParams
}

func (f *fakeCheckout) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

func TestCheckoutParams(t *testing.T) {
	urls := CheckoutURLs{Success: "https://ditch.app/success", Cancel: "https://ditch.app/cancel"}

	monthly, ok := subscription.ProductByPriceID("price_1SEcYZB93uMzjmp2ir1NcTD0")
	require.True(t, ok)
	params := CheckoutParams(monthly, "user_1", urls)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *params.Mode)
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, monthly.PriceID, *params.LineItems[0].Price)
	assert.Equal(t, int64(1), *params.LineItems[0].Quantity)
	assert.Equal(t, "user_1", *params.ClientReferenceID)
	assert.Equal(t, "user_1", params.Metadata["clerk_id"])
	assert.Equal(t, urls.Success, *params.SuccessURL)

	yearly, ok := subscription.ProductByPriceID("price_1SEcYyB93uMzjmp2yTxgmpv1")
	require.True(t, ok)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *CheckoutParams(yearly, "user_1", urls).Mode)
}

func TestCreateCheckoutSessionRejectsBeforeStore(t *testing.T) {
	svc := NewSubscriptionService(nil, &fakeCheckout{}, CheckoutURLs{})
	_, err := svc.CreateCheckoutSession(context.Background(), "user_1", "price_unknown")
	assert.ErrorIs(t, err, ErrInvalidInput)

	off := NewSubscriptionService(nil, nil, CheckoutURLs{})
	_, err = off.CreateCheckoutSession(context.Background(), "user_1", "price_1SEcYZB93uMzjmp2ir1NcTD0")
	assert.ErrorIs(t, err, ErrPaymentsOff)
}

func TestRecordIAPPurchaseValidation(t *testing.T) {
	svc := NewSubscriptionService(nil, nil, CheckoutURLs{})
	_, err := svc.RecordIAPPurchase(context.Background(), "user_1", &subscription.IAPPurchaseRequest{ProductID: "com.other.app", TransactionID: "1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordIAPPurchase(context.Background(), "user_1", &subscription.IAPPurchaseRequest{ProductID: "com.ditch.app.premium.monthly", TransactionID: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
