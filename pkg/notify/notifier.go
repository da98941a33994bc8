package notify

import (
	"github.com/sirupsen/logrus"
)

// Event carries everything a booking notification needs. Recipient fields
// come from the trip's driver or the affected passenger.
type Event struct {
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	RaceName       string
	DepartureDay   string
	DepartureHour  string
	DepartureCity  string
	TripURL        string
}

// Notifier delivers booking notifications. Implementations must be safe for
// concurrent use; callers treat failures as non-fatal.
type Notifier interface {
	TripCreated(event Event) error
	TripJoined(event Event) error
	TripLeft(event Event) error
	TripCancelled(event Event) error
}

// LogNotifier logs notifications instead of sending them. Used in dev mode
// and as the fallback when no gateway is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) log(kind string, event Event) error {
	n.logger.WithFields(logrus.Fields{
		"notification": kind,
		"recipient":    event.RecipientEmail,
		"race":         event.RaceName,
		"trip_url":     event.TripURL,
	}).Info("Notification (dev mode, not sent)")
	return nil
}

// TripCreated logs a trip creation notification
func (n *LogNotifier) TripCreated(event Event) error { return n.log("trip_created", event) }

// TripJoined logs a join notification
func (n *LogNotifier) TripJoined(event Event) error { return n.log("trip_joined", event) }

// TripLeft logs a leave notification
func (n *LogNotifier) TripLeft(event Event) error { return n.log("trip_left", event) }

// TripCancelled logs a cancellation notification
func (n *LogNotifier) TripCancelled(event Event) error { return n.log("trip_cancelled", event) }

// FanoutNotifier sends every notification through mail and, when the
// recipient has a phone number, WhatsApp. The first gateway error is
// returned but does not stop the remaining deliveries.
type FanoutNotifier struct {
	mail     *MailGateway
	whatsapp *WhatsAppGateway
}

// NewFanoutNotifier creates the production notifier
func NewFanoutNotifier(mail *MailGateway, whatsapp *WhatsAppGateway) *FanoutNotifier {
	return &FanoutNotifier{mail: mail, whatsapp: whatsapp}
}

func (n *FanoutNotifier) deliver(template string, event Event) error {
	var firstErr error
	if err := n.mail.Send(template, event); err != nil {
		firstErr = err
	}
	if event.RecipientPhone != "" {
		if err := n.whatsapp.Send(template, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TripCreated notifies a driver their trip is published
func (n *FanoutNotifier) TripCreated(event Event) error {
	return n.deliver(TemplateTripCreated, event)
}

// TripJoined notifies a driver a passenger took a seat
func (n *FanoutNotifier) TripJoined(event Event) error {
	return n.deliver(TemplateTripJoined, event)
}

// TripLeft notifies a driver a passenger gave up their seat
func (n *FanoutNotifier) TripLeft(event Event) error {
	return n.deliver(TemplateTripLeft, event)
}

// TripCancelled notifies a passenger their trip was cancelled
func (n *FanoutNotifier) TripCancelled(event Event) error {
	return n.deliver(TemplateTripCancelled, event)
}

// Notification template names shared by both gateways.
const (
	TemplateTripCreated   = "trip_created"
	TemplateTripJoined    = "trip_joined"
	TemplateTripLeft      = "trip_left"
	TemplateTripCancelled = "trip_cancelled"
)
