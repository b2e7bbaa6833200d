package main

import (
	"io"
	"log"
	"net/http"
	"os"

	"staynearev/src/db"
	"staynearev/src/lib"
	"staynearev/src/models"
	"staynearev/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

func checkoutHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings/:id/checkout", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			var booking models.Booking
			db := db.GetDb()
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				Preload("Station").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			if booking.UserID != userId {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "not allowed to pay for this booking"})
				return
			}
			if booking.PaymentStatus == types.PAYMENT_PAID {
				ctx.JSON(http.StatusConflict, gin.H{"error": "booking is already paid"})
				return
			}
			cs, err := lib.CreateBookingCheckoutSession(&lib.CheckoutInput{
				BookingID:   booking.ID,
				StationName: booking.Station.Name,
				Amount:      booking.TotalCost,
			})
			if err != nil {
				log.Printf("Error creating checkout session for booking %d: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not start checkout"})
				return
			}
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: booking.ID}).
				Update("stripe_session_id", cs.ID).
				Error; err != nil {
				log.Printf("Error saving session id for booking %d: %s\n", booking.ID, err.Error())
			}
			ctx.JSON(http.StatusOK, gin.H{"url": cs.URL})
		})
	return g
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		processStripeEvent(event)
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}

// processStripeEvent maps stripe events to payment status. The booking id
// travels in the metadata of both the checkout session and its payment intent
// (propagated through PaymentIntentData at session creation); refunds arrive
// on the charge and resolve through the stored payment intent id.
func processStripeEvent(event stripe.Event) {
	switch event.Type {
	case "checkout.session.completed":
		bookingId := gjson.GetBytes(event.Data.Raw, "metadata.bookingId").Uint()
		if bookingId == 0 {
			log.Println("[Stripe] checkout session carries no booking id")
			return
		}
		paymentIntentId := gjson.GetBytes(event.Data.Raw, "payment_intent").String()
		settlePayment(uint(bookingId), types.PAYMENT_PAID, paymentIntentId)
	case "checkout.session.expired", "payment_intent.payment_failed":
		bookingId := gjson.GetBytes(event.Data.Raw, "metadata.bookingId").Uint()
		if bookingId == 0 {
			log.Printf("[Stripe] %s carries no booking id\n", event.Type)
			return
		}
		settlePayment(uint(bookingId), types.PAYMENT_FAILED, "")
	case "charge.refunded":
		paymentIntentId := gjson.GetBytes(event.Data.Raw, "payment_intent").String()
		if paymentIntentId == "" {
			log.Println("[Stripe] refunded charge carries no payment intent")
			return
		}
		refundByPaymentIntent(paymentIntentId)
	}
}

// settlePayment records the payment outcome and, on success, confirms the
// booking if it is still pending.
func settlePayment(bookingId uint, status types.PaymentStatus, paymentIntentId string) {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return err
		}
		updates := map[string]any{"payment_status": status}
		if paymentIntentId != "" {
			updates["stripe_payment_intent_id"] = paymentIntentId
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			Updates(updates).
			Error; err != nil {
			return err
		}
		if status == types.PAYMENT_PAID && booking.Status == types.BOOKING_PENDING {
			return tx.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: bookingId}).
				Update("status", types.BOOKING_CONFIRMED).
				Error
		}
		return nil
	})
	if err != nil {
		log.Printf("Error settling payment for booking %d: %s\n", bookingId, err.Error())
	}
}

func refundByPaymentIntent(paymentIntentId string) {
	db := db.GetDb()
	res := db.
		Model(&models.Booking{}).
		Where("stripe_payment_intent_id = ?", paymentIntentId).
		Update("payment_status", types.PAYMENT_REFUNDED)
	if res.Error != nil {
		log.Printf("Error recording refund for payment intent %s: %s\n", paymentIntentId, res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		log.Printf("No booking found for refunded payment intent %s\n", paymentIntentId)
	}
}
