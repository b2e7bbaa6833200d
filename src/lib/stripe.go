package lib

import (
	"context"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

type CheckoutInput struct {
	BookingID   uint
	StationName string
	Amount      float64
	Currency    string
}

// CreateBookingCheckoutSession opens a hosted checkout page for a pending
// booking. Amount is in major currency units and converted to the minor unit
// stripe expects. The booking id travels in the session metadata and, through
// PaymentIntentData, in the payment intent metadata, so both session and
// payment-intent webhook events can settle the right record.
func CreateBookingCheckoutSession(in *CheckoutInput) (*stripe.CheckoutSession, error) {
	sc := GetStripeClient()
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}
	successURL := os.Getenv("CHECKOUT_SUCCESS_URL")
	cancelURL := os.Getenv("CHECKOUT_CANCEL_URL")
	params := stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Charging session at %s", in.StationName)),
					},
					UnitAmount: stripe.Int64(int64(in.Amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata: map[string]string{
			"bookingId": fmt.Sprintf("%d", in.BookingID),
		},
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: map[string]string{
				"bookingId": fmt.Sprintf("%d", in.BookingID),
			},
		},
	}
	return sc.V1CheckoutSessions.Create(context.Background(), &params)
}
