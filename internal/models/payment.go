package models

// LessonPackage is a purchasable bundle of lessons
type LessonPackage struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Lessons     int    `json:"lessons"`
	PriceCents  int64  `json:"priceCents"`
	Currency    string `json:"currency"`
	PaymentLink string `json:"paymentLink"`
}

// CheckoutProvider tells the client how the checkout URL was produced
type CheckoutProvider string

const (
	CheckoutProviderStripe CheckoutProvider = "stripe"
	CheckoutProviderLink   CheckoutProvider = "link"
)

// CheckoutRequest represents a request to pay for a package
type CheckoutRequest struct {
	PackageID string `json:"packageId" validate:"required"`
}

// CheckoutResponse carries the hosted payment page URL
type CheckoutResponse struct {
	URL      string           `json:"url"`
	Provider CheckoutProvider `json:"provider"`
}
