package sms

import (
	"context"
	"fmt"

	"github.com/rezicom/vendd/pkg/vendd/payment"
	"gopkg.in/inconshreveable/log15.v2"
)

// PaymentNotifier texts customers about settled payments
type PaymentNotifier struct {
	sender Sender
	log    log15.Logger
}

// NewPaymentNotifier creates a notifier delivering through the given sender
func NewPaymentNotifier(sender Sender, log log15.Logger) *PaymentNotifier {
	return &PaymentNotifier{
		sender: sender,
		log:    log.New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/sms"}),
	}
}

// PaymentConfirmed sends the confirmation message for a settled payment
//
// Delivery is best effort. Failures are logged and swallowed; a payment is
// never rolled back because a text message could not be sent.
func (n *PaymentNotifier) PaymentConfirmed(ctx context.Context, p *payment.Payment) {
	msg := confirmationMessage(p)
	if err := n.sender.Send(ctx, p.Phone, msg); err != nil {
		n.log.Warn("error sending payment confirmation", log15.Ctx{
			"paymentId": p.ID,
			"err":       err,
		})
		return
	}
	n.log.Info("payment confirmation sent", log15.Ctx{"paymentId": p.ID})
}

func confirmationMessage(p *payment.Payment) string {
	receipt := p.ReceiptNumber.String
	reference := p.AccountReference.String
	return fmt.Sprintf(
		"PAYMENT CONFIRMATION\nAmount: KES %d\nReference: %s\nM-Pesa Receipt: %s\nDate: %s\nThank you.",
		p.Amount,
		reference,
		receipt,
		p.Created.Format("02/01/2006 15:04"),
	)
}
