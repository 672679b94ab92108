// Package mailer sends moderation outcome emails to listing owners through an
// external delivery API.
package mailer

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

// Notifier delivers moderation outcome messages. Implementations must be safe
// for concurrent use.
type Notifier interface {
	NotifyApproved(ctx context.Context, to, warehouseName string) error
	NotifyRejected(ctx context.Context, to, warehouseName, comment string) error
}

type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type deliveryResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client posts messages to the configured delivery endpoint.
type Client struct {
	httpClient *resty.Client
	from       string
	logg       *logger.Logger
}

// New builds a Notifier. When no endpoint is configured the returned Notifier
// is a no-op so moderation never fails on mail delivery setup.
func New(cfg config.MailerConfig, logg *logger.Logger) Notifier {
	if cfg.Endpoint == "" {
		return &noop{logg: logg}
	}

	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{httpClient: httpClient, from: cfg.DefaultFrom, logg: logg}
}

func (c *Client) NotifyApproved(ctx context.Context, to, warehouseName string) error {
	return c.send(ctx, message{
		From:    c.from,
		To:      to,
		Subject: "Your warehouse listing is live",
		Body:    fmt.Sprintf("Your listing %q has been approved and is now visible to the public.", warehouseName),
	})
}

func (c *Client) NotifyRejected(ctx context.Context, to, warehouseName, comment string) error {
	return c.send(ctx, message{
		From:    c.from,
		To:      to,
		Subject: "Your warehouse listing needs changes",
		Body: fmt.Sprintf("Your listing %q was not approved. Reviewer comment: %s",
			warehouseName, comment),
	})
}

func (c *Client) send(ctx context.Context, msg message) error {
	var out deliveryResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&out).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("posting mail message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail delivery failed with status %d", resp.StatusCode())
	}

	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "mail_id", out.ID), "moderation mail queued")
	}
	return nil
}

type noop struct {
	logg *logger.Logger
}

func (n *noop) NotifyApproved(ctx context.Context, to, warehouseName string) error {
	if n.logg != nil {
		n.logg.Warn(ctx, "mailer not configured, approval mail skipped")
	}
	return nil
}

func (n *noop) NotifyRejected(ctx context.Context, to, warehouseName, comment string) error {
	if n.logg != nil {
		n.logg.Warn(ctx, "mailer not configured, rejection mail skipped")
	}
	return nil
}
