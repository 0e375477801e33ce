// Package notification turns order events into customer emails.
package notification

import (
	"context"
	"fmt"
	"log"

	"kulit/internal/events"
	"kulit/internal/metrics"
)

// Mailer sends a rendered email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Handler processes order events consumed from the broker.
type Handler struct {
	mailer Mailer
}

// NewHandler creates a new notification handler.
func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

// HandleEvent sends the email matching routingKey. Undecodable messages are
// rejected; unknown routing keys are ignored.
func (h *Handler) HandleEvent(ctx context.Context, routingKey string, body []byte) error {
	event, err := events.Decode(body)
	if err != nil {
		log.Printf("[Notifier] Failed to unmarshal %s event: %v", routingKey, err)
		return err
	}
	if event.Email == "" {
		log.Printf("[Notifier] Order %s has no email address, skipping", event.OrderID)
		return nil
	}

	var subject, html string
	switch routingKey {
	case events.RoutingOrderCreated:
		subject = fmt.Sprintf("Order confirmation #%s", shortID(event.OrderID))
		html, err = BuildConfirmationBody(event)
	case events.RoutingOrderStatusChanged:
		subject = fmt.Sprintf("Your order #%s is %s", shortID(event.OrderID), event.Status)
		html, err = BuildStatusBody(event)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", routingKey, err)
	}

	if err := h.mailer.Send(event.Email, subject, html); err != nil {
		metrics.NotificationFailures.Inc()
		log.Printf("[Notifier] Failed to send email to %s: %v", event.Email, err)
		return err
	}

	log.Printf("[Notifier] %s email sent to %s for order %s", routingKey, event.Email, event.OrderID)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
