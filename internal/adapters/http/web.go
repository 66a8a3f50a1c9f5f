package web

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"clubdash/internal/adapters/email"
	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/adapters/http/perf"
	"clubdash/internal/adapters/ics"
	accountStore "clubdash/internal/adapters/storage/account"
	announcementStore "clubdash/internal/adapters/storage/announcement"
	calendarStore "clubdash/internal/adapters/storage/calendar"
	clubStore "clubdash/internal/adapters/storage/club"
	feedStore "clubdash/internal/adapters/storage/feed"
	financeStore "clubdash/internal/adapters/storage/finance"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/domain/calendar"
	"clubdash/internal/domain/funding"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	ClubStore         clubStore.Store
	EventStore        calendarStore.Store
	PurchaseStore     financeStore.Store
	AnnouncementStore announcementStore.Store
	FeedStore         feedStore.Store
}

// Options configures NewMux. Zero values fall back to development defaults.
type Options struct {
	// CSRFKey must be 32 bytes; a random key is generated when empty.
	CSRFKey []byte
	// Production enables Secure cookies and strict CSRF origin checks.
	Production bool
	// Location is the time zone calendar days are computed in.
	Location *time.Location
	// FeedTimeout bounds a manual feed refresh.
	FeedTimeout time.Duration
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender = email.NewNoopSender()

// Email configuration
var emailFromAddress string
var emailReplyTo string
var mailConfigured bool

// Calendar and feed collaborators (set by NewMux, replaceable in tests)
var (
	clock        calendar.Clock = calendar.SystemClock{}
	location                    = time.Local
	feedFetcher  orchestrators.FeedFetcher
	formAnalyzer funding.Analyzer = funding.RuleAnalyzer{}
	secureCookie bool
)

// SetEmailSender sets the global email sender for the application.
// configured reports whether real delivery is set up, for /health.
func SetEmailSender(sender email.Sender, from, replyTo string, configured bool) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
	mailConfigured = configured
}

// SetClock replaces the clock used for "today" in calendar views.
func SetClock(c calendar.Clock) {
	clock = c
}

// SetFeedFetcher replaces the fetcher used by manual feed refreshes.
func SetFeedFetcher(f orchestrators.FeedFetcher) {
	feedFetcher = f
}

// SetAnalyzer replaces the funding-form analyzer.
func SetAnalyzer(a funding.Analyzer) {
	formAnalyzer = a
}

// Sessions exposes the session store so the scheduler can sweep it.
func Sessions() *middleware.SessionStore {
	return sessions
}

// FeedDeps returns the dependencies the feed orchestrators run with, for the
// scheduled refresh in main.
func FeedDeps(fetcher orchestrators.FeedFetcher) orchestrators.FeedDeps {
	return orchestrators.FeedDeps{
		FeedStore:  stores.FeedStore,
		EventStore: stores.EventStore,
		Fetcher:    fetcher,
		Location:   location,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// csrfKeyOrRandom returns key, or a fresh random key for development.
func csrfKeyOrRandom(key []byte) []byte {
	if len(key) == 32 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	slog.Warn("csrf_event", "event", "random_key", "detail", "forms will not survive a restart; set csrf_key")
	return key
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	secureCookie = opts.Production
	if opts.Location != nil {
		location = opts.Location
		clock = calendar.SystemClock{Location: opts.Location}
	}
	if feedFetcher == nil {
		timeout := opts.FeedTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		feedFetcher = ics.NewFetcher(timeout)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost first: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Recover -> routes
	return middleware.Chain(withRoutePattern(mux),
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKeyOrRandom(opts.CSRFKey), middleware.CSRFOptions{Secure: opts.Production}),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}

// withRoutePattern reports the matched mux pattern back to Timing.
func withRoutePattern(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		middleware.SetRoutePattern(r.Context(), r.Pattern)
	})
}
