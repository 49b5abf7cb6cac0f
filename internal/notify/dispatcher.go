/**
 * @description
 * The notification dispatcher renders templates and hands them to a mail
 * transport. Batch dispatch fans out with independent outcomes: one bounced
 * recipient never stops the rest of the batch, failures are logged and
 * counted.
 */
package notify

import (
	"context"
	"log/slog"
)

// Transport delivers a rendered message. Implemented by pkg/mailer.
type Transport interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}

// Recipient pairs an address with its template data.
type Recipient struct {
	To   string
	Data map[string]string
}

// BatchResult summarizes a batch dispatch.
type BatchResult struct {
	Sent   int
	Failed int
}

// Dispatcher renders and sends notifications.
type Dispatcher struct {
	transport Transport
	logger    *slog.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(transport Transport, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, logger: logger}
}

// Send renders the template and delivers it to a single recipient.
func (d *Dispatcher) Send(ctx context.Context, templateID string, recipient Recipient) error {
	msg, err := Render(templateID, recipient.To, recipient.Data)
	if err != nil {
		return err
	}
	messageID, err := d.transport.Send(ctx, msg)
	if err != nil {
		return err
	}
	d.logger.Info("notification sent", "template", templateID, "to", recipient.To, "message_id", messageID)
	return nil
}

// SendBatch delivers the template to every recipient, isolating failures.
func (d *Dispatcher) SendBatch(ctx context.Context, templateID string, recipients []Recipient) BatchResult {
	var result BatchResult
	for _, recipient := range recipients {
		if err := d.Send(ctx, templateID, recipient); err != nil {
			d.logger.Error("notification failed", "template", templateID, "to", recipient.To, "error", err)
			result.Failed++
			continue
		}
		result.Sent++
	}
	return result
}
