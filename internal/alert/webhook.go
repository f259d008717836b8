package alert

import (
	"context"
	"fmt"

	"PolyWatch/internal/domain/models"
	xhttp "PolyWatch/pkg/http"
	"PolyWatch/pkg/util"
)

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title     string         `json:"title"`
	URL       string         `json:"url,omitempty"`
	Color     int            `json:"color"`
	Fields    []webhookField `json:"fields"`
	Timestamp string         `json:"timestamp"`
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// WebhookSink posts a Discord-compatible embed for each alert. Delivery
// is best-effort; the dispatcher logs and drops any error.
type WebhookSink struct {
	client *xhttp.Client
	url    string
}

// NewWebhookSink creates a webhook sink targeting url.
func NewWebhookSink(client *xhttp.Client, url string) *WebhookSink {
	return &WebhookSink{client: client, url: url}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Deliver posts the alert embed.
func (s *WebhookSink) Deliver(ctx context.Context, a *models.Alert) error {
	payload := webhookPayload{
		Embeds: []webhookEmbed{{
			Title:     fmt.Sprintf("%s | Insider-Pattern Trade", a.Severity),
			URL:       a.Trade.MarketURL(),
			Color:     a.Severity.Color(),
			Timestamp: a.At.Format("2006-01-02T15:04:05Z07:00"),
			Fields: []webhookField{
				{Name: "Market", Value: orDash(marketQuestion(a)), Inline: false},
				{Name: "Outcome", Value: orDash(a.Trade.Outcome), Inline: true},
				{Name: "Value", Value: fmt.Sprintf("$%.2f", a.Trade.ValueUSD), Inline: true},
				{Name: "Price", Value: fmt.Sprintf("%.3f", a.Trade.Price.Float64()), Inline: true},
				{Name: "Wallet", Value: util.MaskAddress(a.Wallet.Address), Inline: true},
				{Name: "Lifetime Markets", Value: fmt.Sprintf("%d", a.Wallet.UniqueMarkets), Inline: true},
				{Name: "Reason", Value: a.Reason, Inline: false},
			},
		}},
	}

	return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.url,
		Body:   payload,
	}, nil)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
