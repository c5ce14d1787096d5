package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/observability"
)

// EventPublisher fans successful mutations out to rendering collaborators
// (e.g. a topic exchange) so they know to refetch the state snapshot. The
// in-memory state stays authoritative; publish failures are logged, never
// surfaced to callers.
type EventPublisher interface {
	PublishBoothEvent(ctx context.Context, action string, payload map[string]interface{}) error
}

// AuditMirror receives a copy of every audit entry appended in memory.
type AuditMirror interface {
	MirrorAudit(ctx context.Context, entry domain.AuditLogEntry) error
}

// RivalConfig controls the demo bidder that answers real bids with a
// synthetic competing bid after a short delay.
type RivalConfig struct {
	Enabled bool
	Name    string
	Delay   time.Duration
}

type Config struct {
	CircuitUnitCost   float64
	ExtensionWindow   time.Duration
	ExtensionDuration time.Duration
	PaymentDelay      time.Duration
	RivalBidder       RivalConfig
}

func (c *Config) applyDefaults() {
	if c.CircuitUnitCost == 0 {
		c.CircuitUnitCost = 50
	}
	if c.ExtensionWindow == 0 {
		c.ExtensionWindow = 5 * time.Minute
	}
	if c.ExtensionDuration == 0 {
		c.ExtensionDuration = 5 * time.Minute
	}
	if c.RivalBidder.Name == "" {
		c.RivalBidder.Name = "Starlight Concessions"
	}
	if c.RivalBidder.Delay == 0 {
		c.RivalBidder.Delay = 8 * time.Second
	}
}

// Engine is the state coordinator for the booth auction. All state lives in
// process memory behind one mutex; every operation is applied as a single
// atomic step and derives its notification and audit side effects inline.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	log observability.Logger

	now   func() time.Time
	sched Scheduler

	booths     map[string]*domain.Booth
	boothOrder []string
	bids       map[string][]domain.Bid
	userBids   map[string]map[string]domain.BidDetails
	buyouts    map[string][]domain.BuyoutRequest

	notifications map[string][]domain.Notification
	broadcasts    []domain.Notification
	audit         []domain.AuditLogEntry
	watchlists    map[string]map[string]bool
	locations     []string
	vendors       map[string]bool

	eventStatus domain.EventStatus

	publisher EventPublisher
	mirror    AuditMirror
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithAuditMirror(m AuditMirror) Option {
	return func(e *Engine) { e.mirror = m }
}

func New(cfg Config, log observability.Logger, opts ...Option) *Engine {
	cfg.applyDefaults()
	e := &Engine{
		cfg:           cfg,
		log:           log,
		now:           time.Now,
		sched:         NewTimerScheduler(),
		booths:        make(map[string]*domain.Booth),
		bids:          make(map[string][]domain.Bid),
		userBids:      make(map[string]map[string]domain.BidDetails),
		buyouts:       make(map[string][]domain.BuyoutRequest),
		notifications: make(map[string][]domain.Notification),
		watchlists:    make(map[string]map[string]bool),
		vendors:       make(map[string]bool),
		eventStatus:   domain.EventActive,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ---- internal helpers; callers must hold e.mu ----

// lookupBooth resolves a booth id, treating archived booths as absent.
func (e *Engine) lookupBooth(id string) (*domain.Booth, bool) {
	b, ok := e.booths[id]
	if !ok || b.Archived {
		return nil, false
	}
	return b, true
}

func (e *Engine) registerVendor(name string) {
	if name != "" && name != domain.AdminRecipient {
		e.vendors[name] = true
	}
}

// currentLeader returns the vendor and amount of the highest ledger entry.
func (e *Engine) currentLeader(boothID string) (string, float64, bool) {
	var leader string
	var top float64
	found := false
	for _, bid := range e.bids[boothID] {
		if !found || bid.Amount > top {
			leader, top, found = bid.Vendor, bid.Amount, true
		}
	}
	return leader, top, found
}

// activeOpenBidCount counts distinct Open booths the vendor holds an active
// bid on. Closed, Sold and archived booths never count against the limit.
func (e *Engine) activeOpenBidCount(vendor string) int {
	n := 0
	for boothID := range e.userBids[vendor] {
		if b, ok := e.lookupBooth(boothID); ok && b.Status == domain.BoothOpen {
			n++
		}
	}
	return n
}

// recomputeCurrentBid resets booth.CurrentBid from the surviving ledger, or
// clears it when no bids remain.
func (e *Engine) recomputeCurrentBid(b *domain.Booth) {
	if _, top, ok := e.currentLeader(b.ID); ok {
		b.CurrentBid = &top
	} else {
		b.CurrentBid = nil
	}
}

func (e *Engine) upsertUserBid(vendor, boothID string, details domain.BidDetails) {
	if e.userBids[vendor] == nil {
		e.userBids[vendor] = make(map[string]domain.BidDetails)
	}
	e.userBids[vendor][boothID] = details
}

func (e *Engine) notify(recipient, title, message string, typ domain.NotificationType) {
	e.notifications[recipient] = append(e.notifications[recipient], domain.Notification{
		Title:   title,
		Message: message,
		Type:    typ,
		SentAt:  e.now(),
	})
	observability.NotificationsEmitted.Inc()
}

func (e *Engine) auditAppend(ctx context.Context, action, details string) {
	entry := domain.AuditLogEntry{
		ID:        uuid.NewString(),
		Timestamp: e.now(),
		Action:    action,
		Details:   details,
	}
	e.audit = append(e.audit, entry)
	if e.mirror != nil {
		if err := e.mirror.MirrorAudit(ctx, entry); err != nil {
			e.log.Error("audit mirror write failed", err)
		}
	}
}

func (e *Engine) publish(ctx context.Context, action string, payload map[string]interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishBoothEvent(ctx, action, payload); err != nil {
		e.log.Error("event publish failed", err)
	}
}

func (e *Engine) totalPayable(price float64, circuits int) float64 {
	return price + float64(circuits)*e.cfg.CircuitUnitCost
}

// ---- read operations ----

type Snapshot struct {
	EventStatus domain.EventStatus `json:"event_status"`
	Booths      []domain.Booth     `json:"booths"`
	Locations   []string           `json:"locations"`
}

// StateSnapshot returns the full renderable state. Archived booths are
// filtered out of every list-returning query.
func (e *Engine) StateSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		EventStatus: e.eventStatus,
		Booths:      e.listBoothsLocked(),
		Locations:   append([]string(nil), e.locations...),
	}
}

func (e *Engine) listBoothsLocked() []domain.Booth {
	out := make([]domain.Booth, 0, len(e.boothOrder))
	for _, id := range e.boothOrder {
		if b, ok := e.lookupBooth(id); ok {
			out = append(out, *b)
		}
	}
	return out
}

func (e *Engine) ListBooths() []domain.Booth {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listBoothsLocked()
}

func (e *Engine) GetBooth(id string) (domain.Booth, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.lookupBooth(id)
	if !ok {
		return domain.Booth{}, domain.ErrNotFound
	}
	return *b, nil
}

// BoothBids returns the booth's bid history sorted by amount descending.
// Equal amounts cannot win against each other, so the sort stays stable on
// insertion order for display purposes.
func (e *Engine) BoothBids(boothID string) []domain.Bid {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := append([]domain.Bid(nil), e.bids[boothID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

func (e *Engine) BoothBuyoutRequests(boothID string) []domain.BuyoutRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.BuyoutRequest(nil), e.buyouts[boothID]...)
}

func (e *Engine) VendorNotifications(vendor string) []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Notification(nil), e.notifications[vendor]...)
}

func (e *Engine) VendorWatchlist(vendor string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.watchlists[vendor]))
	for _, id := range e.boothOrder {
		if e.watchlists[vendor][id] {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) AuditLog() []domain.AuditLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.AuditLogEntry(nil), e.audit...)
}

func (e *Engine) BroadcastHistory() []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Notification(nil), e.broadcasts...)
}

func (e *Engine) EventStatus() domain.EventStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventStatus
}
