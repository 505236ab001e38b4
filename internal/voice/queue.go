// Package voice serializes speech playback: one chunk at a time, completion
// only after finalize, and a stop that resets everything.
package voice

import (
	"context"
	"sync"
)

// Voice identities. The conversational editor voice answers chat; the
// narrator voice reads manuscript content back.
type Voice string

const (
	Editor   Voice = "editor"
	Narrator Voice = "narrator"
)

type Chunk struct {
	Text  string
	Voice Voice
}

// Player produces audible output for one chunk. Play blocks until the chunk
// finished (or Stop cut it off).
type Player interface {
	Play(ctx context.Context, c Chunk) error
	Stop()
}

// Listener is the speech-recognition side. It is paused whenever playback is
// active — the two audio channels are mutually exclusive so the system never
// hears its own voice — and the caller resumes it explicitly afterwards.
type Listener interface {
	Pause()
	Resume()
}

// Queue owns all playback state explicitly: items, playing/finalized flags,
// and the pending completion callback. Safe for use from multiple goroutines;
// one drain loop runs at a time.
type Queue struct {
	Player   Player
	Listener Listener

	mu        sync.Mutex
	items     []Chunk
	playing   bool
	finalized bool
	done      func()
	gen       int // bumped by Stop; a stale drain loop exits quietly
}

// Enqueue appends a chunk and starts the drain loop when idle. Empty text is
// ignored.
func (q *Queue) Enqueue(text string, voice Voice) {
	if text == "" {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, Chunk{Text: text, Voice: voice})
	start := !q.playing
	if start {
		q.playing = true
	}
	gen := q.gen
	q.mu.Unlock()

	if start {
		go q.drain(gen)
	}
}

// Finalize signals that no more chunks are coming for this utterance. The
// callback fires exactly once, after the queue drains — immediately and
// synchronously when it already has.
func (q *Queue) Finalize(onDone func()) {
	q.mu.Lock()
	q.done = onDone
	q.finalized = true

	if len(q.items) == 0 && !q.playing {
		cb := q.done
		q.done = nil
		q.finalized = false
		q.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	start := !q.playing
	if start {
		q.playing = true
	}
	gen := q.gen
	q.mu.Unlock()

	if start {
		go q.drain(gen)
	}
}

// Stop empties the queue, halts in-flight audio, discards any pending
// completion callback, and resets the flags so later enqueues behave as if
// nothing was interrupted.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.items = nil
	q.finalized = false
	q.done = nil
	q.playing = false
	q.gen++
	q.mu.Unlock()

	q.Player.Stop()
}

// Speaking reports whether playback is in progress.
func (q *Queue) Speaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

func (q *Queue) drain(gen int) {
	if q.Listener != nil {
		q.Listener.Pause()
	}

	for {
		q.mu.Lock()
		if q.gen != gen {
			q.mu.Unlock()
			return
		}
		if len(q.items) == 0 {
			if q.finalized {
				cb := q.done
				q.done = nil
				q.finalized = false
				q.playing = false
				q.mu.Unlock()
				if cb != nil {
					cb()
				}
				return
			}
			q.playing = false
			q.mu.Unlock()
			return
		}
		c := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		// Play errors are swallowed: a failed chunk must not wedge the queue.
		_ = q.Player.Play(context.Background(), c)
	}
}

// ReadAloud stops anything in flight, chunks the text at sentence boundaries,
// and plays it with the narrator voice. onDone fires after the last chunk.
func (q *Queue) ReadAloud(text string, onDone func()) {
	if text == "" {
		return
	}
	q.Stop()
	for _, chunk := range SplitChunks(text) {
		q.Enqueue(chunk, Narrator)
	}
	q.Finalize(onDone)
}
