// Package checkout turns a stored cart into a hosted payment session.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Lixing-Zhang/storefront-checkout/internal/apperr"
	"github.com/Lixing-Zhang/storefront-checkout/internal/identity"
	"github.com/Lixing-Zhang/storefront-checkout/internal/lease"
	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
	"github.com/Lixing-Zhang/storefront-checkout/internal/pricing"
	"github.com/Lixing-Zhang/storefront-checkout/internal/repository"
)

const (
	// sessionIDPlaceholder is substituted by the processor on redirect
	sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"
	anonymousUserID      = "-"
)

// CartStore is the read side of cart persistence used by checkout
type CartStore interface {
	GetCart(ctx context.Context, cartID string) (*models.Cart, error)
}

// Processor opens hosted payment sessions
type Processor interface {
	CreateCheckoutSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error)
}

// Settings are the session defaults that do not depend on the cart
type Settings struct {
	BaseURL          string
	ShippingName     string
	ShippingMajor    int64
	DeliveryMinDays  int64
	DeliveryMaxDays  int64
	AllowedCountries []string
	LeaseTTL         time.Duration
}

// Builder validates a cart, normalizes its prices and submits it to the processor.
// It reads carts but never writes them.
type Builder struct {
	carts     CartStore
	processor Processor
	locker    lease.Locker
	policy    pricing.Policy
	settings  Settings
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewBuilder(carts CartStore, processor Processor, locker lease.Locker, policy pricing.Policy, settings Settings, logger *slog.Logger) *Builder {
	return &Builder{
		carts:     carts,
		processor: processor,
		locker:    locker,
		policy:    policy,
		settings:  settings,
		logger:    logger,
		tracer:    otel.Tracer("github.com/Lixing-Zhang/storefront-checkout/internal/checkout"),
	}
}

// BuildSession creates a processor session for cartID and returns its redirect URL.
// Failures are *apperr.Error values; nothing is retried.
func (b *Builder) BuildSession(ctx context.Context, cartID string) (redirectURL string, err error) {
	ctx, span := b.tracer.Start(ctx, "checkout.BuildSession",
		trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer span.End()

	start := time.Now()
	att := &attempt{state: StateIdle}
	var totalMinor int64
	defer func() {
		b.record(ctx, span, att, cartID, totalMinor, err, time.Since(start))
	}()

	release, err := b.locker.Acquire(ctx, cartID, b.settings.LeaseTTL)
	if err != nil {
		if errors.Is(err, lease.ErrHeld) {
			return "", &apperr.Error{Kind: apperr.KindCheckoutInProgress, CartID: cartID}
		}
		return "", fmt.Errorf("acquire checkout lease: %w", err)
	}
	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			b.logger.Warn("failed to release checkout lease", "cart_id", cartID, "error", rerr)
		}
	}()

	att.advance(StateValidating)
	user := identity.FromContext(ctx)

	cart, err := b.carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return "", &apperr.Error{Kind: apperr.KindCartNotFound, CartID: cartID}
		}
		return "", fmt.Errorf("load cart %s: %w", cartID, err)
	}

	req, err := b.prepare(att, cart, user)
	if err != nil {
		return "", err
	}
	totalMinor = req.TotalMinor

	att.advance(StateSubmitting)
	session, err := b.processor.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", &apperr.Error{Kind: apperr.KindProcessorRejected, CartID: cartID, Cause: err}
	}
	if session == nil || session.URL == "" {
		return "", &apperr.Error{
			Kind:   apperr.KindProcessorRejected,
			CartID: cartID,
			Cause:  errors.New("processor returned no redirect URL"),
		}
	}

	att.advance(StateRedirected)
	return session.URL, nil
}

// Prepare validates cart and derives the session request without submitting it
func (b *Builder) Prepare(cart *models.Cart, user *models.User) (*models.SessionRequest, error) {
	return b.prepare(&attempt{state: StateValidating}, cart, user)
}

func (b *Builder) prepare(att *attempt, cart *models.Cart, user *models.User) (*models.SessionRequest, error) {
	if len(cart.Items) == 0 {
		return nil, &apperr.Error{Kind: apperr.KindEmptyCart, CartID: cart.ID}
	}

	// Free items (prizes, promos) are dropped rather than sent at zero
	paid := make([]int, 0, len(cart.Items))
	for i, item := range cart.Items {
		if item.Price > 0 {
			paid = append(paid, i)
		}
	}
	if len(paid) == 0 {
		return nil, &apperr.Error{Kind: apperr.KindAllItemsFree, CartID: cart.ID}
	}

	att.advance(StateNormalizing)

	lineItems := make([]models.SessionLineItem, 0, len(paid))
	var totalMinor int64
	for _, i := range paid {
		item := cart.Items[i]
		unit := b.policy.NormalizeUnit(item.Price)
		totalMinor += unit * int64(item.Quantity)

		if item.Quantity <= 0 {
			continue
		}
		li := models.SessionLineItem{
			Name:            item.Title,
			UnitAmountMinor: unit,
			Quantity:        int64(item.Quantity),
		}
		if item.Image != "" {
			li.Images = []string{item.Image}
		}
		lineItems = append(lineItems, li)
	}

	totalMajor := b.policy.FromMinorUnits(totalMinor)
	if !b.policy.MeetsMinimum(totalMajor) {
		return nil, &apperr.Error{
			Kind:         apperr.KindBelowTransactionMinimum,
			CartID:       cart.ID,
			Currency:     b.policy.Currency,
			AmountMajor:  totalMajor,
			MinimumMajor: b.policy.MinimumMajor,
		}
	}

	for n, li := range lineItems {
		if li.UnitAmountMinor < b.policy.SanityFloorMinor {
			return nil, &apperr.Error{
				Kind:        apperr.KindSuspiciousAmount,
				CartID:      cart.ID,
				Currency:    b.policy.Currency,
				AmountMinor: li.UnitAmountMinor,
				ItemIndexes: []int{paid[n]},
			}
		}
	}

	userID := anonymousUserID
	var email string
	if user != nil {
		if user.ID != "" {
			userID = user.ID
		}
		email = user.Email
	}

	return &models.SessionRequest{
		Currency:  b.policy.Currency,
		LineItems: lineItems,
		Shipping: models.ShippingOption{
			DisplayName:     b.settings.ShippingName,
			AmountMinor:     b.policy.ToMinorUnits(float64(b.settings.ShippingMajor)),
			Currency:        b.policy.Currency,
			DeliveryMinDays: b.settings.DeliveryMinDays,
			DeliveryMaxDays: b.settings.DeliveryMaxDays,
		},
		AllowedCountries: b.settings.AllowedCountries,
		CustomerEmail:    email,
		SuccessURL:       b.settings.BaseURL + "/checkout/success?session_id=" + sessionIDPlaceholder,
		CancelURL:        b.settings.BaseURL,
		Metadata: map[string]string{
			"cartId": cart.ID,
			"userId": userID,
		},
		TotalMinor: totalMinor,
	}, nil
}

// record emits the one structured event for an attempt and closes out the span
func (b *Builder) record(ctx context.Context, span trace.Span, att *attempt, cartID string, totalMinor int64, err error, elapsed time.Duration) {
	outcome := "redirected"
	level := slog.LevelInfo
	if err != nil {
		att.fail()
		level = slog.LevelWarn
		outcome = string(apperr.KindOf(err))
		if outcome == "" {
			outcome = "internal_error"
			level = slog.LevelError
		}
	}

	attrs := []any{
		"cart_id", cartID,
		"state", att.state.String(),
		"outcome", outcome,
		"total_minor", totalMinor,
		"duration_ms", elapsed.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "failed_at", att.failedAt.String(), "error", err)
	}
	b.logger.Log(ctx, level, "checkout attempt", attrs...)

	span.SetAttributes(
		attribute.String("checkout.state", att.state.String()),
		attribute.String("checkout.outcome", outcome),
		attribute.Int64("checkout.total_minor", totalMinor),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
}
