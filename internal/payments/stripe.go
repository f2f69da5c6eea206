// Package payments creates hosted checkout pages for lesson packages
package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/drivingschool/backend/internal/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeGateway creates Stripe Checkout Sessions
type StripeGateway struct {
	client     session.Client
	successURL string
	cancelURL  string
}

// NewStripeGateway creates a gateway using the default Stripe API backend
func NewStripeGateway(secretKey, successURL, cancelURL string) *StripeGateway {
	return NewStripeGatewayWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, successURL, cancelURL)
}

// NewStripeGatewayWithBackend creates a gateway on a specific Stripe backend
func NewStripeGatewayWithBackend(backend stripe.Backend, secretKey, successURL, cancelURL string) *StripeGateway {
	return &StripeGateway{
		client:     session.Client{B: backend, Key: secretKey},
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckoutSession opens a one-off payment session for a package and returns its URL
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID int, email string, pkg models.LessonPackage) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(strconv.Itoa(userID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(pkg.Currency),
					UnitAmount: stripe.Int64(pkg.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(pkg.Title),
					},
				},
			},
		},
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("package_id", pkg.ID)
	params.Context = ctx

	s, err := g.client.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return s.URL, nil
}
