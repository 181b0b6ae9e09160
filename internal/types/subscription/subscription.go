package subscription

import (
	"time"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderIAP    Provider = "iap"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusCanceled Status = "canceled"
	StatusPending  Status = "pending"
)

type Subscription struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"userId" db:"user_id"`
	Provider         Provider   `json:"provider" db:"provider"`
	ProductID        string     `json:"productId" db:"product_id"`
	ExternalID       string     `json:"externalId" db:"external_id"`
	Status           Status     `json:"status" db:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty" db:"current_period_end"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// Active reports whether the subscription grants premium at now. A nil
// period end never expires.
func (s *Subscription) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != StatusActive && s.Status != StatusTrialing {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
}

type CheckoutMode string

const (
	ModeSubscription CheckoutMode = "subscription"
	ModePayment      CheckoutMode = "payment"
)

type Product struct {
	ID           string        `json:"id"`
	PriceID      string        `json:"priceId"`
	IAPProductID string        `json:"iapProductId"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        float64       `json:"price"`
	Currency     string        `json:"currency"`
	Mode         CheckoutMode  `json:"mode"`
	Period       time.Duration `json:"-"`
}

var Products = []Product{
	{
		ID:           "prod_TAyVPBf4QrGsqo",
		PriceID:      "price_1SEcYZB93uMzjmp2ir1NcTD0",
		IAPProductID: "com.ditch.app.premium.monthly",
		Name:         "Ditch Plus",
		Description:  "Monthly subscription to Ditch Plus with premium features",
		Price:        2.99,
		Currency:     "usd",
		Mode:         ModeSubscription,
		Period:       30 * 24 * time.Hour,
	},
	{
		ID:           "prod_TAyWp1ygevVnfH",
		PriceID:      "price_1SEcYyB93uMzjmp2yTxgmpv1",
		IAPProductID: "com.ditch.app.premium.yearly",
		Name:         "Ditch Plus Yearly",
		Description:  "Annual subscription to Ditch Plus with full access to premium features",
		Price:        25.00,
		Currency:     "usd",
		Mode:         ModePayment,
		Period:       365 * 24 * time.Hour,
	},
}

func ProductByPriceID(priceID string) (Product, bool) {
	for _, p := range Products {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return Product{}, false
}

func ProductByIAPID(productID string) (Product, bool) {
	for _, p := range Products {
		if p.IAPProductID == productID {
			return p, true
		}
	}
	return Product{}, false
}

type CheckoutRequest struct {
	PriceID string `json:"priceId"`
}

type CheckoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type IAPPurchaseRequest struct {
	ProductID     string `json:"productId"`
	TransactionID string `json:"transactionId"`
}

type StatusResponse struct {
	IsPremium    bool          `json:"isPremium"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
