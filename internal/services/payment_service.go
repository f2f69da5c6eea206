package services

import (
	"context"

	"github.com/drivingschool/backend/internal/models"
	"go.uber.org/zap"
)

// CheckoutGateway is the interface that wraps hosted checkout session creation
type CheckoutGateway interface {
	// Method CreateCheckoutSession opens a payment page for "pkg" and returns its URL.
	CreateCheckoutSession(ctx context.Context, userID int, email string, pkg models.LessonPackage) (string, error)
}

// lessonPackages is the priced catalogue of purchasable bundles
var lessonPackages = []models.LessonPackage{
	{ID: "single", Title: "Single lesson", Lessons: 1, PriceCents: 4500, Currency: "gbp"},
	{ID: "five-pack", Title: "5 lesson pack", Lessons: 5, PriceCents: 21000, Currency: "gbp"},
	{ID: "ten-pack", Title: "10 lesson pack", Lessons: 10, PriceCents: 40000, Currency: "gbp"},
	{ID: "test-day", Title: "Test day package", Lessons: 2, PriceCents: 12000, Currency: "gbp"},
}

type paymentService struct {
	gateway  CheckoutGateway
	links    map[string]string
	userRepo UserRepository
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service.
// A nil gateway makes Checkout answer with the static payment links.
func NewPaymentService(gateway CheckoutGateway, links map[string]string, userRepo UserRepository, logger *zap.Logger) *paymentService {
	return &paymentService{
		gateway:  gateway,
		links:    links,
		userRepo: userRepo,
		logger:   logger,
	}
}

// ListPackages returns the package catalogue with static payment links
func (s *paymentService) ListPackages() []models.LessonPackage {
	packages := make([]models.LessonPackage, len(lessonPackages))
	for i, p := range lessonPackages {
		p.PaymentLink = s.links[p.ID]
		packages[i] = p
	}
	return packages
}

// Checkout returns a URL where the user can pay for a package
func (s *paymentService) Checkout(ctx context.Context, userID int, packageID string) (*models.CheckoutResponse, error) {
	var pkg *models.LessonPackage
	for _, p := range s.ListPackages() {
		if p.ID == packageID {
			pkg = &p
			break
		}
	}
	if pkg == nil {
		return nil, models.ErrPackageNotFound
	}

	if s.gateway != nil {
		email := ""
		if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
			email = user.Email
		} else {
			s.logger.Warn("failed to load user for checkout", zap.Int("user_id", userID), zap.Error(err))
		}

		url, err := s.gateway.CreateCheckoutSession(ctx, userID, email, *pkg)
		if err == nil {
			return &models.CheckoutResponse{URL: url, Provider: models.CheckoutProviderStripe}, nil
		}
		s.logger.Error("checkout session failed", zap.String("package_id", packageID), zap.Error(err))
		if pkg.PaymentLink == "" {
			return nil, err
		}
	}

	if pkg.PaymentLink == "" {
		return nil, models.ErrPaymentsUnavailable
	}
	return &models.CheckoutResponse{URL: pkg.PaymentLink, Provider: models.CheckoutProviderLink}, nil
}
