package refresher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bishroute/internal/domain"
	"bishroute/internal/streets"
	"bishroute/internal/traffic"
)

type Broadcaster interface {
	Broadcast(msg []byte)
}

type Message struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

type Payload struct {
	Count     int                    `json:"count"`
	UpdatedAt time.Time              `json:"updated_at"`
	Streets   []domain.StreetTraffic `json:"streets"`
}

// Refresher periodically re-annotates the street dataset with current
// traffic estimates and pushes the full snapshot to websocket clients.
type Refresher struct {
	streets     *streets.Cache
	estimator   *traffic.Estimator
	broadcaster Broadcaster
	interval    time.Duration
	logger      *slog.Logger
	now         func() time.Time

	ready   bool
	readyMu sync.RWMutex

	snapshotMu sync.RWMutex
	snapshot   []byte
}

func New(streets *streets.Cache, estimator *traffic.Estimator, broadcaster Broadcaster, interval time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		streets:     streets,
		estimator:   estimator,
		broadcaster: broadcaster,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
	}
}

func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	dataset := r.streets.Get(ctx)
	now := r.now()
	annotated := r.estimator.Annotate(dataset.Segments, now)

	views := make([]domain.StreetTraffic, 0, len(annotated))
	for i := range annotated {
		views = append(views, domain.TrafficView(annotated[i]))
	}

	msg := Message{
		Type: "traffic",
		Payload: Payload{
			Count:     len(views),
			UpdatedAt: now.UTC(),
			Streets:   views,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("failed to encode traffic snapshot", "error", err)
		return
	}

	r.snapshotMu.Lock()
	r.snapshot = data
	r.snapshotMu.Unlock()

	if r.broadcaster != nil {
		r.broadcaster.Broadcast(data)
	}

	if !r.IsReady() {
		r.setReady(true)
		r.logger.Info("refresher ready", "streets", len(views))
	}

	r.logger.Debug("traffic snapshot refreshed", "streets", len(views), "bytes", len(data))
}

// Snapshot returns the most recent encoded traffic message, or nil when no
// tick has completed yet. Callers must not mutate the returned slice.
func (r *Refresher) Snapshot() []byte {
	r.snapshotMu.RLock()
	defer r.snapshotMu.RUnlock()
	return r.snapshot
}

func (r *Refresher) IsReady() bool {
	r.readyMu.RLock()
	defer r.readyMu.RUnlock()
	return r.ready
}

func (r *Refresher) setReady(ready bool) {
	r.readyMu.Lock()
	defer r.readyMu.Unlock()
	r.ready = ready
}
