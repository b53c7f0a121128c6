package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestRegistry() (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := NewRegistry()
	r.now = clock.now
	return r, clock
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	s, err := r.Create("w1", "<html>", "ctx")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionRunning, s.Status)

	got, ok := r.Get("w1")
	require.True(t, ok)
	assert.Equal(t, "ctx", got.Context)
	assert.Equal(t, "<html>", got.Document)

	assert.True(t, r.Remove("w1"))
	assert.False(t, r.Remove("w1"))
	_, ok = r.Get("w1")
	assert.False(t, ok)
}

func TestRegistry_DuplicateActiveRejected(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	_, err := r.Create("w1", "a", "")
	require.NoError(t, err)

	_, err = r.Create("w1", "b", "")
	require.ErrorIs(t, err, ErrActive)

	require.NoError(t, r.Complete("w1", domain.SessionDone, ""))
	_, err = r.Create("w1", "b", "")
	require.NoError(t, err, "a finished session may be replaced")

	got, _ := r.Get("w1")
	assert.Equal(t, "b", got.Document)
	assert.True(t, got.Active())
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	_, err := r.Create("w1", "", "")
	require.NoError(t, err)

	got, _ := r.Get("w1")
	got.Status = domain.SessionFailed

	again, _ := r.Get("w1")
	assert.Equal(t, domain.SessionRunning, again.Status)
}

func TestRegistry_UpdateAndComplete(t *testing.T) {
	t.Parallel()

	r, clock := newTestRegistry()
	_, err := r.Create("w1", "", "")
	require.NoError(t, err)

	require.NoError(t, r.Update("w1", func(s *domain.Session) {
		s.Tags = []domain.TagRecord{{Key: "input_1"}}
	}))
	clock.advance(time.Minute)
	require.NoError(t, r.Complete("w1", domain.SessionFailed, "boom"))

	got, _ := r.Get("w1")
	assert.Len(t, got.Tags, 1)
	assert.Equal(t, domain.SessionFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, time.Minute, got.CompletedAt.Sub(got.CreatedAt))

	assert.ErrorIs(t, r.Update("missing", func(*domain.Session) {}), ErrNotFound)
	assert.ErrorIs(t, r.Complete("missing", domain.SessionDone, ""), ErrNotFound)
}

func TestRegistry_ListOrdered(t *testing.T) {
	t.Parallel()

	r, clock := newTestRegistry()
	for _, id := range []string{"b", "a"} {
		_, err := r.Create(id, "", "")
		require.NoError(t, err)
	}
	clock.advance(time.Second)
	_, err := r.Create("0", "", "")
	require.NoError(t, err)

	var ids []string
	for _, s := range r.List() {
		ids = append(ids, s.WorkID)
	}
	assert.Equal(t, []string{"a", "b", "0"}, ids)
}

func TestRegistry_Sweep(t *testing.T) {
	t.Parallel()

	r, clock := newTestRegistry()
	for _, id := range []string{"old", "recent", "running"} {
		_, err := r.Create(id, "", "")
		require.NoError(t, err)
	}
	require.NoError(t, r.Complete("old", domain.SessionDone, ""))
	clock.advance(50 * time.Minute)
	require.NoError(t, r.Complete("recent", domain.SessionFailed, "x"))
	clock.advance(20 * time.Minute)

	assert.Equal(t, 1, r.Sweep(time.Hour))
	_, ok := r.Get("old")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("w%d", i)
			_, _ = r.Create(id, "", "")
			_ = r.Update(id, func(s *domain.Session) { s.Actions = append(s.Actions, domain.Action{}) })
			_, _ = r.Get(id)
			_ = r.List()
			_ = r.Complete(id, domain.SessionDone, "")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
}

func TestSweeper_RunsOnSchedule(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Create("w1", "", "")
	require.NoError(t, err)
	require.NoError(t, r.Complete("w1", domain.SessionDone, ""))

	s, err := NewSweeper(r, "@every 1s", 0, infralogger.NewNop())
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, 3*time.Second, 20*time.Millisecond)
}

func TestNewSweeper_InvalidSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewSweeper(NewRegistry(), "not a schedule", time.Hour, infralogger.NewNop())
	require.Error(t, err)
}
