package alert

import (
	"context"
	"fmt"
	"html"
	"strings"

	"PolyWatch/internal/domain/models"
	xhttp "PolyWatch/pkg/http"
	"PolyWatch/pkg/util"
)

// TelegramSink sends each alert as a bot message. Like the webhook it is
// best-effort; the dispatcher logs and drops any error.
type TelegramSink struct {
	client  *xhttp.Client
	apiBase string
	token   string
	chatID  string
}

// NewTelegramSink creates a Telegram sink for the given bot and chat.
func NewTelegramSink(client *xhttp.Client, token, chatID string) *TelegramSink {
	return &TelegramSink{
		client:  client,
		apiBase: "https://api.telegram.org",
		token:   token,
		chatID:  chatID,
	}
}

func (s *TelegramSink) Name() string { return "telegram" }

// Deliver posts the alert via the sendMessage API.
func (s *TelegramSink) Deliver(ctx context.Context, a *models.Alert) error {
	return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token),
		Body: map[string]interface{}{
			"chat_id":                  s.chatID,
			"text":                     telegramText(a),
			"parse_mode":               "HTML",
			"disable_web_page_preview": true,
		},
	}, nil)
}

func telegramText(a *models.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s | Insider-Pattern Trade</b>\n", a.Severity)
	fmt.Fprintf(&b, "Market: %s\n", html.EscapeString(orDash(marketQuestion(a))))
	fmt.Fprintf(&b, "Outcome: %s | Value: $%.2f @ %.3f\n",
		html.EscapeString(orDash(a.Trade.Outcome)), a.Trade.ValueUSD, a.Trade.Price.Float64())
	fmt.Fprintf(&b, "Wallet: %s (%d lifetime markets)\n",
		util.MaskAddress(a.Wallet.Address), a.Wallet.UniqueMarkets)
	fmt.Fprintf(&b, "Reason: %s\n", html.EscapeString(a.Reason))
	b.WriteString(a.Trade.MarketURL())
	return b.String()
}
