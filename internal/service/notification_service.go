package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/civictrack/internal/domain"
	"github.com/spec-kit/civictrack/internal/events"
	"github.com/spec-kit/civictrack/internal/mail"
)

// NotificationService turns ticket events into reporter email. Delivery is
// best-effort: failures are logged and swallowed, never surfaced to the
// request that triggered them.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_created", zap.String("ticket_id", event.TicketID))
		return nil
	}
	if !deliverable(payload.Reporter) {
		return nil
	}

	msg := mail.IssueReceived(payload.Reporter, payload.Title, payload.Category)
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send created notification",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return err
	}
	n.logger.Info("sent created notification",
		zap.String("ticket_id", event.TicketID), zap.String("to", payload.Reporter))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_status_changed", zap.String("ticket_id", event.TicketID))
		return nil
	}
	if !deliverable(payload.Reporter) {
		return nil
	}

	msg := mail.StatusUpdated(payload.Reporter, payload.Title, payload.NewStatus, time.Now())
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send status notification",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return err
	}
	n.logger.Info("sent status notification",
		zap.String("ticket_id", event.TicketID), zap.String("to", payload.Reporter))
	return nil
}

// deliverable filters out reporters that are not mailable addresses.
func deliverable(reporter string) bool {
	return reporter != "" && reporter != domain.AnonymousReporter
}
