package models

// SessionRequest is the payload submitted to the payment processor to open a
// hosted checkout page. All amounts are in processor minor units.
type SessionRequest struct {
	Currency         string
	LineItems        []SessionLineItem
	Shipping         ShippingOption
	AllowedCountries []string
	CustomerEmail    string
	SuccessURL       string
	CancelURL        string
	Metadata         map[string]string
	TotalMinor       int64
}

// SessionLineItem is one normalized, chargeable line of a session request
type SessionLineItem struct {
	Name            string
	Images          []string
	UnitAmountMinor int64
	Quantity        int64
}

// ShippingOption is a fixed-amount shipping rate with a delivery estimate in days
type ShippingOption struct {
	DisplayName     string
	AmountMinor     int64
	Currency        string
	DeliveryMinDays int64
	DeliveryMaxDays int64
}

// Session is the processor's answer to a session request
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutResponse is returned to the storefront after a session is created
type CheckoutResponse struct {
	URL string `json:"url"`
}
