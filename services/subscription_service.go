package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stripe/stripe-go/v76"

	"ditchAPI/internal/types/subscription"
)

const subscriptionColumns = `id, user_id, provider, product_id, external_id, status, current_period_end, created_at, updated_at`

// CheckoutCreator is satisfied by the stripe checkout session client.
type CheckoutCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type CheckoutURLs struct {
	Success string
	Cancel  string
}

type SubscriptionService struct {
	db       *pgxpool.Pool
	checkout CheckoutCreator
	urls     CheckoutURLs
	now      func() time.Time
}

// NewSubscriptionService builds the service. checkout may be nil when no
// Stripe key is configured; web checkout then fails with ErrPaymentsOff.
func NewSubscriptionService(db *pgxpool.Pool, checkout CheckoutCreator, urls CheckoutURLs) *SubscriptionService {
	return &SubscriptionService{db: db, checkout: checkout, urls: urls, now: time.Now}
}

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	sub := &subscription.Subscription{}
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Provider, &sub.ProductID, &sub.ExternalID,
		&sub.Status, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt,
	)
	return sub, err
}

// CheckoutParams builds the Stripe session for product. The yearly plan is a
// one-off payment; the monthly plan is a recurring subscription.
func CheckoutParams(product subscription.Product, clerkID string, urls CheckoutURLs) *stripe.CheckoutSessionParams {
	mode := stripe.CheckoutSessionModePayment
	if product.Mode == subscription.ModeSubscription {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(product.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(clerkID),
		SuccessURL:        stripe.String(urls.Success),
		CancelURL:         stripe.String(urls.Cancel),
	}
	params.AddMetadata("clerk_id", clerkID)
	params.AddMetadata("product_id", product.ID)
	return params
}

func (s *SubscriptionService) CreateCheckoutSession(ctx context.Context, clerkID, priceID string) (*subscription.CheckoutResponse, error) {
	product, ok := subscription.ProductByPriceID(priceID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown price %q", ErrInvalidInput, priceID)
	}
	if s.checkout == nil {
		return nil, ErrPaymentsOff
	}

	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	params := CheckoutParams(product, clerkID, s.urls)
	params.Context = ctx
	sess, err := s.checkout.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, provider, product_id, external_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (provider, external_id) DO NOTHING
	`, uuid.New(), userID, subscription.ProviderStripe, product.ID, sess.ID, subscription.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to record checkout: %w", err)
	}

	return &subscription.CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// RecordIAPPurchase activates premium after a native store purchase. A
// repeated transaction id only refreshes the existing row.
func (s *SubscriptionService) RecordIAPPurchase(ctx context.Context, clerkID string, req *subscription.IAPPurchaseRequest) (*subscription.Subscription, error) {
	product, ok := subscription.ProductByIAPID(req.ProductID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown product %q", ErrInvalidInput, req.ProductID)
	}
	txID := strings.TrimSpace(req.TransactionID)
	if txID == "" {
		return nil, fmt.Errorf("%w: transactionId is required", ErrInvalidInput)
	}

	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	periodEnd := s.now().Add(product.Period)
	sub, err := scanSubscription(s.db.QueryRow(ctx, `
		INSERT INTO subscriptions (id, user_id, provider, product_id, external_id, status, current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (provider, external_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING `+subscriptionColumns,
		uuid.New(), userID, subscription.ProviderIAP, product.ID, txID, subscription.StatusActive, periodEnd,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionService) GetStatus(ctx context.Context, clerkID string) (*subscription.StatusResponse, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.db.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1 AND status IN ('active', 'trialing')
		ORDER BY current_period_end DESC NULLS FIRST
		LIMIT 1
	`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &subscription.StatusResponse{}, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &subscription.StatusResponse{IsPremium: sub.Active(s.now()), Subscription: sub}, nil
}

func (s *SubscriptionService) IsPremium(ctx context.Context, clerkID string) (bool, error) {
	status, err := s.GetStatus(ctx, clerkID)
	if err != nil {
		return false, err
	}
	return status.IsPremium, nil
}
