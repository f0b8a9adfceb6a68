package advisory

//go:generate mockgen -source=advisory.go -destination=../mocks/mock_advisory.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/karthikdoguparthi/KisaanGrow/internal/i18n"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
)

const DefaultTimeout = 10 * time.Second

var ErrNoCredentials = errors.New("advisory: no api key configured")

// Gateway produces short guidance for a farmer's booking.
type Gateway interface {
	Advice(ctx context.Context, quantity float64, daysUntilSlot int, lang string) (string, error)
}

var fallbacks = map[string]string{
	i18n.English: "Harvest close to your slot date so the cane stays fresh, and reach the mill on time to avoid waiting.",
	i18n.Hindi:   "स्लॉट की तारीख के पास ही कटाई करें ताकि गन्ना ताज़ा रहे, और इंतज़ार से बचने के लिए समय पर मिल पहुँचें।",
}

// Fallback is the static advice used when the gateway is unavailable.
func Fallback(lang string) string {
	if s, ok := fallbacks[lang]; ok {
		return s
	}
	return fallbacks[i18n.English]
}

type Advice struct {
	Text     string `json:"text"`
	Lang     string `json:"lang"`
	Fallback bool   `json:"fallback"`
}

// Advisor bounds gateway calls with a timeout and never fails: any gateway
// error yields the static fallback.
type Advisor struct {
	gateway Gateway
	timeout time.Duration
	log     *slog.Logger
}

func NewAdvisor(gateway Gateway, timeout time.Duration, log *slog.Logger) *Advisor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Advisor{gateway: gateway, timeout: timeout, log: log}
}

func (a *Advisor) Advise(ctx context.Context, quantity float64, daysUntilSlot int, lang string) Advice {
	if !i18n.Supported(lang) {
		lang = i18n.English
	}
	if a.gateway == nil {
		return a.fallback(lang, ErrNoCredentials)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gateway.Advice(ctx, quantity, daysUntilSlot, lang)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("advisory: empty answer")
	}
	if err != nil {
		return a.fallback(lang, err)
	}

	metrics.AdviceRequests.WithLabelValues("model").Inc()
	return Advice{Text: strings.TrimSpace(text), Lang: lang}
}

func (a *Advisor) fallback(lang string, err error) Advice {
	metrics.AdviceRequests.WithLabelValues("fallback").Inc()
	if !errors.Is(err, ErrNoCredentials) {
		a.log.Warn("advice fallback", slog.String("lang", lang), slog.Any("error", err))
	}
	return Advice{Text: Fallback(lang), Lang: lang, Fallback: true}
}

// DaysUntil counts whole calendar days from today to date (YYYY-MM-DD).
func DaysUntil(date string, now time.Time) (int, error) {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return 0, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(today).Hours() / 24), nil
}
