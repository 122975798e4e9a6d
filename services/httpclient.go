package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"fair-audit/config"
	"fair-audit/normalize"
)

// CustomTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type CustomTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.UserAgent)
	return t.Transport.RoundTrip(req)
}

// pageClient wird für die Seitenabrufe der Link-Bewertung verwendet.
var pageClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &CustomTransport{
		Transport: http.DefaultTransport,
		UserAgent: "Mozilla/5.0 (FAIR Assessment Bot/1.0)",
	},
}

// downloadClient lädt PDF- und XML-Volltexte herunter.
var downloadClient = &http.Client{Timeout: 15 * time.Second}

// newThrottle liefert den Limiter für die feste Pause zwischen zwei
// Datensätzen. Das Start-Token wird sofort verbraucht, damit schon
// nach dem ersten Datensatz die volle Wartezeit greift.
func newThrottle(cfg *config.Config) *rate.Limiter {
	limiter := rate.NewLimiter(rate.Every(time.Duration(cfg.RateLimitDelaySeconds)*time.Second), 1)
	limiter.Allow()
	return limiter
}

// accessibilityForError übersetzt einen Abruf-Fehler in den
// Accessibility-Status der Ergebniszeile.
func accessibilityForError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Error: Request timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Error: Request timeout"
	}
	return "Error: " + normalize.Truncate(err.Error(), 100)
}

// parseErrorStatus übersetzt einen Parser-Fehler in den
// Accessibility-Status der Ergebniszeile.
func parseErrorStatus(err error) string {
	return "Parse Error: " + normalize.Truncate(err.Error(), 100)
}
