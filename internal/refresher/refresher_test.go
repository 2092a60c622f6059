package refresher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"bishroute/internal/domain"
	"bishroute/internal/streets"
	"bishroute/internal/traffic"
)

var bishkek = domain.BoundingBox{MinLat: 42.80, MinLng: 74.50, MaxLat: 42.92, MaxLng: 74.70}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingFetcher struct{}

func (failingFetcher) FetchStreets(_ context.Context, _ domain.BoundingBox) ([]domain.StreetSegment, error) {
	return nil, errors.New("overpass down")
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages [][]byte
}

func (b *recordingBroadcaster) Broadcast(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func newTestRefresher(b Broadcaster) *Refresher {
	cache := streets.NewCache(failingFetcher{}, nil, bishkek, time.Hour, time.Second, testLogger())
	return New(cache, traffic.NewEstimator(1), b, time.Minute, testLogger())
}

func TestTickBroadcastsTrafficSnapshot(t *testing.T) {
	b := &recordingBroadcaster{}
	r := newTestRefresher(b)

	if r.IsReady() {
		t.Error("refresher should not be ready before the first tick")
	}

	r.tick(context.Background())

	if !r.IsReady() {
		t.Error("refresher should be ready after a tick")
	}
	if b.count() != 1 {
		t.Fatalf("broadcast count = %d, want 1", b.count())
	}

	var msg Message
	if err := json.Unmarshal(b.messages[0], &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "traffic" {
		t.Errorf("type = %q", msg.Type)
	}
	if msg.Payload.Count == 0 || msg.Payload.Count != len(msg.Payload.Streets) {
		t.Errorf("count = %d, streets = %d", msg.Payload.Count, len(msg.Payload.Streets))
	}
	for _, s := range msg.Payload.Streets {
		if s.Color == "" || s.Label == "" {
			t.Errorf("street %q missing traffic annotation", s.Name)
		}
	}
}

func TestSnapshotHoldsLastMessage(t *testing.T) {
	r := newTestRefresher(nil)

	if r.Snapshot() != nil {
		t.Error("snapshot should be nil before the first tick")
	}

	r.tick(context.Background())

	snap := r.Snapshot()
	if snap == nil {
		t.Fatal("snapshot missing after tick")
	}

	var msg Message
	if err := json.Unmarshal(snap, &msg); err != nil {
		t.Fatalf("snapshot is not valid json: %v", err)
	}
	if msg.Type != "traffic" {
		t.Errorf("type = %q", msg.Type)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	b := &recordingBroadcaster{}
	r := newTestRefresher(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// Run performs an immediate first tick
	deadline := time.Now().Add(2 * time.Second)
	for b.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.count() == 0 {
		t.Fatal("no initial tick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
