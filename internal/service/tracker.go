package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"opensite/api/internal/geo"
	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

const (
	// SubjectLocation carries crew GPS fixes from the API to the tracker.
	SubjectLocation = "site.uplink.LOCATION"
	// SubjectGeofenceAlert carries enter/exit alerts to dashboards.
	SubjectGeofenceAlert = "site.alert.GEOFENCE"

	// sessionIdle is how long a crew member can go silent before their
	// watch session (and its inside-set) is discarded.
	sessionIdle = 10 * time.Minute

	shadowTTL = time.Hour
)

// session is one crew member's live watch session. Each session owns its own
// evaluator; inside-sets are never shared between sessions.
type session struct {
	evaluator *geo.Evaluator
	lastSeen  time.Time
}

// CrewTracker consumes crew position updates, evaluates them against the
// active projects' site geofences and raises enter/exit alerts.
type CrewTracker struct {
	store  *store.Store
	redis  *redis.Client
	nats   *nats.Conn
	lg     *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[uint]*session
	sub      *nats.Subscription
}

// NewCrewTracker creates a new crew tracker.
func NewCrewTracker(s *store.Store, redisClient *redis.Client, natsConn *nats.Conn, lg *zap.SugaredLogger) *CrewTracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &CrewTracker{
		store:    s,
		redis:    redisClient,
		nats:     natsConn,
		lg:       lg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uint]*session),
	}
}

// Start subscribes to the uplink subject and begins evaluating fixes.
func (t *CrewTracker) Start() error {
	sub, err := t.nats.Subscribe(SubjectLocation, func(msg *nats.Msg) {
		var fix model.CrewPosition
		if err := json.Unmarshal(msg.Data, &fix); err != nil {
			t.lg.Warnw("tracker: bad location message", "error", err)
			return
		}
		if err := t.processFix(&fix); err != nil {
			t.lg.Warnw("tracker: failed to process fix", "user_id", fix.UserID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", SubjectLocation, err)
	}
	t.sub = sub

	go t.reapIdleSessions()

	t.lg.Infow("crew tracker started", "subject", SubjectLocation)
	return nil
}

// Stop unsubscribes and stops the tracker.
func (t *CrewTracker) Stop() {
	if t.sub != nil {
		_ = t.sub.Unsubscribe()
	}
	t.cancel()
	t.lg.Infow("crew tracker stopped")
}

// processFix runs one GPS fix through the user's session evaluator.
func (t *CrewTracker) processFix(fix *model.CrewPosition) error {
	user, err := t.store.UserByID(fix.UserID)
	if err != nil {
		// Unknown sender; drop the fix.
		return nil
	}

	fences := t.store.ActiveSiteGeofences(user.CompanyID)

	pos := model.Position{
		Lat:            fix.Lat,
		Lng:            fix.Lng,
		AccuracyMeters: fix.AccuracyMeters,
		Timestamp:      time.Unix(fix.Timestamp, 0),
	}

	t.mu.Lock()
	sess, ok := t.sessions[user.ID]
	if !ok {
		sess = &session{evaluator: geo.NewEvaluator()}
		t.sessions[user.ID] = sess
	}
	sess.lastSeen = time.Now()
	result := sess.evaluator.Evaluate(pos, fences)
	t.mu.Unlock()

	t.cacheShadow(user.ID, fix)

	for _, event := range result.Events {
		alert := model.SiteAlert{
			CompanyID:   user.CompanyID,
			UserID:      user.ID,
			UserName:    user.Name,
			ProjectID:   event.Geofence.ID,
			ProjectName: event.Geofence.Name,
			EventType:   event.Type,
			Lat:         fix.Lat,
			Lng:         fix.Lng,
			Timestamp:   fix.Timestamp,
		}
		if err := t.publishAlert(alert); err != nil {
			return err
		}
		t.lg.Infow("site alert",
			"event", event.Type,
			"project", event.Geofence.Name,
			"user", user.Name)
	}
	return nil
}

// publishAlert pushes an alert to NATS and caches it in redis.
func (t *CrewTracker) publishAlert(alert model.SiteAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	if err := t.nats.Publish(SubjectGeofenceAlert, data); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	// Also publish to a user-specific subject for filtered subscribers.
	_ = t.nats.Publish(fmt.Sprintf("%s.%d", SubjectGeofenceAlert, alert.UserID), data)

	key := fmt.Sprintf("site:geofence:alert:%d", alert.UserID)
	t.redis.Set(t.ctx, key, data, 24*time.Hour)

	// Alert lists are keyed per company; tenants never share a list.
	listKey := recentAlertsKey(alert.CompanyID)
	t.redis.LPush(t.ctx, listKey, data)
	t.redis.LTrim(t.ctx, listKey, 0, 99)

	return nil
}

func recentAlertsKey(companyID uint) string {
	return fmt.Sprintf("site:geofence:alerts:recent:%d", companyID)
}

// cacheShadow keeps the user's last known position in redis.
func (t *CrewTracker) cacheShadow(userID uint, fix *model.CrewPosition) {
	data, _ := json.Marshal(fix)
	t.redis.Set(t.ctx, fmt.Sprintf("site:shadow:%d", userID), data, shadowTTL)
}

// RecentAlerts returns a company's most recent geofence alerts, newest first.
func (t *CrewTracker) RecentAlerts(ctx context.Context, companyID uint, limit int64) ([]model.SiteAlert, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	raw, err := t.redis.LRange(ctx, recentAlertsKey(companyID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	alerts := make([]model.SiteAlert, 0, len(raw))
	for _, item := range raw {
		var alert model.SiteAlert
		if err := json.Unmarshal([]byte(item), &alert); err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// LastPosition returns a user's last known position from the redis shadow.
func (t *CrewTracker) LastPosition(ctx context.Context, userID uint) (*model.CrewPosition, error) {
	raw, err := t.redis.Get(ctx, fmt.Sprintf("site:shadow:%d", userID)).Result()
	if err != nil {
		return nil, err
	}
	var fix model.CrewPosition
	if err := json.Unmarshal([]byte(raw), &fix); err != nil {
		return nil, err
	}
	return &fix, nil
}

// EndSession discards a user's watch session so the next fix starts with an
// empty inside-set.
func (t *CrewTracker) EndSession(userID uint) {
	t.mu.Lock()
	delete(t.sessions, userID)
	t.mu.Unlock()
}

// reapIdleSessions drops sessions whose user has gone silent.
func (t *CrewTracker) reapIdleSessions() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-sessionIdle)
			t.mu.Lock()
			for id, sess := range t.sessions {
				if sess.lastSeen.Before(cutoff) {
					delete(t.sessions, id)
				}
			}
			t.mu.Unlock()
		}
	}
}
