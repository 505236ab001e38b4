package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlayer records played chunks; Play can be gated so tests control when a
// chunk "finishes".
type fakePlayer struct {
	mu      sync.Mutex
	played  []Chunk
	stopped int
	gate    chan struct{} // nil means chunks finish instantly
}

func (p *fakePlayer) Play(ctx context.Context, c Chunk) error {
	p.mu.Lock()
	p.played = append(p.played, c)
	gate := p.gate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	p.stopped++
	p.mu.Unlock()
}

func (p *fakePlayer) playedTexts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.played))
	for i, c := range p.played {
		out[i] = c.Text
	}
	return out
}

type fakeListener struct {
	mu      sync.Mutex
	paused  int
	resumed int
}

func (l *fakeListener) Pause() {
	l.mu.Lock()
	l.paused++
	l.mu.Unlock()
}

func (l *fakeListener) Resume() {
	l.mu.Lock()
	l.resumed++
	l.mu.Unlock()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestQueue_PlaysInOrderThenFiresCallbackOnce(t *testing.T) {
	p := &fakePlayer{}
	q := &Queue{Player: p, Listener: &fakeListener{}}

	var mu sync.Mutex
	fired := 0

	q.Enqueue("A", Editor)
	q.Enqueue("B", Editor)
	q.Finalize(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired == 1
	})
	assert.Equal(t, []string{"A", "B"}, p.playedTexts())
	assert.False(t, q.Speaking())

	// finalize state was consumed; a later enqueue does not re-fire
	q.Enqueue("C", Editor)
	waitFor(t, func() bool { return len(p.playedTexts()) == 3 })
	mu.Lock()
	assert.Equal(t, 1, fired)
	mu.Unlock()
}

func TestQueue_StopDiscardsPendingAndCallback(t *testing.T) {
	gate := make(chan struct{})
	p := &fakePlayer{gate: gate}
	q := &Queue{Player: p, Listener: &fakeListener{}}

	fired := false
	q.Enqueue("A", Editor)
	q.Enqueue("B", Editor)
	q.Finalize(func() { fired = true })

	// A is mid-playback
	waitFor(t, func() bool { return len(p.playedTexts()) == 1 })

	q.Stop()
	close(gate) // let the stale drain loop's Play return

	// give the stale loop a moment; B must never play and the callback must
	// not fire
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"A"}, p.playedTexts())
	assert.False(t, fired)
	assert.False(t, q.Speaking())

	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	assert.Equal(t, 1, stopped)
}

func TestQueue_FinalizeAfterDrainFiresSynchronously(t *testing.T) {
	p := &fakePlayer{}
	q := &Queue{Player: p}

	q.Enqueue("A", Editor)
	waitFor(t, func() bool { return !q.Speaking() && len(p.playedTexts()) == 1 })

	fired := false
	q.Finalize(func() { fired = true })
	assert.True(t, fired, "callback should fire inline when nothing is pending")
}

func TestQueue_EmptyTextIgnored(t *testing.T) {
	p := &fakePlayer{}
	q := &Queue{Player: p}

	q.Enqueue("", Editor)
	assert.False(t, q.Speaking())
	assert.Empty(t, p.playedTexts())
}

func TestQueue_ReadAloudUsesNarratorAndStopsFirst(t *testing.T) {
	p := &fakePlayer{}
	q := &Queue{Player: p}

	var mu sync.Mutex
	fired := false
	q.ReadAloud("Once upon a time.", func() {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired
	})

	require.Len(t, p.played, 1)
	assert.Equal(t, Narrator, p.played[0].Voice)

	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	assert.Equal(t, 1, stopped)
}
