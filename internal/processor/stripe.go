package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
)

// StripeClient creates Stripe Checkout sessions in payment mode
type StripeClient struct {
	sessions *session.Client
	logger   *slog.Logger
}

// NewStripeClient builds a client over backend. The secret key is only handed
// to the Stripe SDK and never logged.
func NewStripeClient(secretKey string, backend stripe.Backend, logger *slog.Logger) *StripeClient {
	return &StripeClient{
		sessions: &session.Client{B: backend, Key: secretKey},
		logger:   logger,
	}
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, req *models.SessionRequest) (*models.Session, error) {
	params := buildSessionParams(req)
	params.Context = ctx

	s, err := c.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			c.logger.Error("stripe rejected checkout session",
				"status", stripeErr.HTTPStatusCode,
				"code", string(stripeErr.Code),
				"type", string(stripeErr.Type),
				"request_id", stripeErr.RequestID,
			)
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &models.Session{ID: s.ID, URL: s.URL}, nil
}

func buildSessionParams(req *models.SessionRequest) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if len(li.Images) > 0 {
			productData.Images = stripe.StringSlice(li.Images)
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(li.UnitAmountMinor),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(req.AllowedCountries),
		},
		ShippingOptions: []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRateData: shippingRateData(req.Shipping)},
		},
	}

	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	return params
}

func shippingRateData(opt models.ShippingOption) *stripe.CheckoutSessionShippingOptionShippingRateDataParams {
	return &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
		Type:        stripe.String("fixed_amount"),
		DisplayName: stripe.String(opt.DisplayName),
		FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
			Amount:   stripe.Int64(opt.AmountMinor),
			Currency: stripe.String(opt.Currency),
		},
		DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
			Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
				Unit:  stripe.String("day"),
				Value: stripe.Int64(opt.DeliveryMinDays),
			},
			Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
				Unit:  stripe.String("day"),
				Value: stripe.Int64(opt.DeliveryMaxDays),
			},
		},
	}
}
