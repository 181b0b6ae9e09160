package workers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/notification"
)

type fakeLister struct {
	ids   []string
	calls int
}

func (f *fakeLister) ListQuitterClerkIDs(_ context.Context, after string, limit int) ([]string, error) {
	f.calls++
	i := sort.SearchStrings(f.ids, after)
	if i < len(f.ids) && f.ids[i] == after {
		i++
	}
	end := i + limit
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[i:end], nil
}

type fakeSyncer struct {
	mu     sync.Mutex
	synced []string
	fail   map[string]bool
}

func (f *fakeSyncer) SyncEvents(_ context.Context, clerkID string) ([]*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[clerkID] {
		return nil, errors.New("boom")
	}
	f.synced = append(f.synced, clerkID)
	return []*notification.Notification{{EventKey: "First 24 Hours"}}, nil
}

func TestSweepOncePagesThroughUsers(t *testing.T) {
	lister := &fakeLister{ids: []string{"user_a", "user_b", "user_c", "user_d", "user_e"}}
	syncer := &fakeSyncer{fail: map[string]bool{"user_c": true}}
	s := NewProgressSweeper(lister, syncer, logger.Nop(), time.Hour)
	s.pageSize = 2

	created := s.SweepOnce(context.Background())

	assert.Equal(t, 4, created)
	assert.Equal(t, []string{"user_a", "user_b", "user_d", "user_e"}, syncer.synced)
	assert.Equal(t, 3, lister.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	lister := &fakeLister{ids: []string{"user_a"}}
	syncer := &fakeSyncer{}
	s := NewProgressSweeper(lister, syncer, logger.Nop(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		syncer.mu.Lock()
		defer syncer.mu.Unlock()
		return len(syncer.synced) > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
