package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a new ResendSender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	p := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
	}
	if req.ReplyTo != "" {
		p.ReplyTo = req.ReplyTo
	}
	for _, a := range req.Attachments {
		p.Attachments = append(p.Attachments, &resend.Attachment{
			Content:     a.Content,
			Filename:    a.Filename,
			ContentType: a.ContentType,
		})
	}
	return p
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is accepted for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("email_event", "event", "resend_send_failed", "error", err, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("email_event", "event", "resend_sent", "message_id", sent.Id, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch sends several emails in one Resend batch call.
// The batch endpoint does not accept attachments, so requests carrying them go out one by one.
// POST: results are in request order; on error they cover the messages already sent
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	for _, r := range reqs {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if len(r.Attachments) > 0 {
			return s.sendEach(ctx, reqs)
		}
	}

	batch := make([]*resend.SendEmailRequest, 0, len(reqs))
	for _, r := range reqs {
		batch = append(batch, s.params(r))
	}
	resp, err := s.client.Batch.SendWithContext(ctx, batch)
	if err != nil {
		slog.Error("email_event", "event", "resend_batch_failed", "error", err, "batch_size", len(reqs))
		return nil, fmt.Errorf("resend batch send failed: %w", err)
	}

	results := make([]SendResult, 0, len(resp.Data))
	for _, item := range resp.Data {
		results = append(results, SendResult{MessageID: item.Id, SentAt: time.Now()})
	}
	slog.Info("email_event", "event", "resend_batch_sent", "count", len(results))
	return results, nil
}

func (s *ResendSender) sendEach(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, r := range reqs {
		res, err := s.Send(ctx, r)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
