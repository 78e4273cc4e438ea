package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

// lookupRecorder collects the keys a coordinator actually fired, with a
// channel to wait on instead of sleeping past the debounce window.
type lookupRecorder struct {
	mu    sync.Mutex
	keys  []string
	fired chan string
}

func newLookupRecorder() *lookupRecorder {
	return &lookupRecorder{fired: make(chan string, 16)}
}

func (r *lookupRecorder) fn(ctx context.Context, key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	r.fired <- key
}

func (r *lookupRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *lookupRecorder) waitOne(t *testing.T) string {
	t.Helper()
	select {
	case key := <-r.fired:
		return key
	case <-time.After(2 * time.Second):
		t.Fatal("lookup never fired")
		return ""
	}
}

func (r *lookupRecorder) expectQuiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case key := <-r.fired:
		t.Fatalf("unexpected lookup for %q", key)
	case <-time.After(d):
	}
}

func TestDebouncedLookupCoalescesRapidInput(t *testing.T) {
	rec := newLookupRecorder()
	d := NewDebouncedLookup(30*time.Millisecond, time.Second, rec.fn)
	defer d.Stop()

	d.Trigger("12345")
	d.Trigger("123456")
	d.Trigger("1234567")

	if got := rec.waitOne(t); got != "1234567" {
		t.Errorf("fired key = %q, want only the last input", got)
	}
	rec.expectQuiet(t, 100*time.Millisecond)
	if got := rec.recorded(); len(got) != 1 {
		t.Errorf("lookups = %v, want exactly one", got)
	}
}

func TestDebouncedLookupSuppressesRepeatKey(t *testing.T) {
	rec := newLookupRecorder()
	d := NewDebouncedLookup(10*time.Millisecond, time.Second, rec.fn)
	defer d.Stop()

	d.Trigger("12345")
	rec.waitOne(t)

	// Same key again: the memo suppresses the fetch outright.
	d.Trigger("12345")
	rec.expectQuiet(t, 60*time.Millisecond)
}

func TestDebouncedLookupMemoIsLastKeyOnly(t *testing.T) {
	rec := newLookupRecorder()
	d := NewDebouncedLookup(10*time.Millisecond, time.Second, rec.fn)
	defer d.Stop()

	d.Trigger("11111")
	rec.waitOne(t)
	d.Trigger("22222")
	rec.waitOne(t)

	// Two triggers ago is not memoized; it fetches again.
	d.Trigger("11111")
	if got := rec.waitOne(t); got != "11111" {
		t.Errorf("fired key = %q, want re-fetch of earlier key", got)
	}
}

func TestDebouncedLookupResetClearsMemo(t *testing.T) {
	rec := newLookupRecorder()
	d := NewDebouncedLookup(10*time.Millisecond, time.Second, rec.fn)
	defer d.Stop()

	d.Trigger("12345")
	rec.waitOne(t)

	d.Reset()
	d.Trigger("12345")
	if got := rec.waitOne(t); got != "12345" {
		t.Errorf("fired key = %q, want re-fetch after reset", got)
	}
}

func TestDebouncedLookupIgnoresEmptyKey(t *testing.T) {
	rec := newLookupRecorder()
	d := NewDebouncedLookup(10*time.Millisecond, time.Second, rec.fn)
	defer d.Stop()

	d.Trigger("")
	rec.expectQuiet(t, 60*time.Millisecond)
}

func TestDebouncedLookupAbortsInFlightOnNewInput(t *testing.T) {
	started := make(chan struct{})
	aborted := make(chan struct{})
	second := make(chan string, 1)

	d := NewDebouncedLookup(10*time.Millisecond, time.Second, func(ctx context.Context, key string) {
		if key == "slow" {
			close(started)
			select {
			case <-ctx.Done():
				close(aborted)
			case <-time.After(2 * time.Second):
			}
			return
		}
		second <- key
	})
	defer d.Stop()

	d.Trigger("slow")
	<-started

	// New input while the first request is in flight cancels it.
	d.Trigger("fresh")

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight lookup was not cancelled by newer input")
	}
	select {
	case key := <-second:
		if key != "fresh" {
			t.Errorf("second lookup key = %q, want fresh", key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("newer lookup never fired")
	}
}

// Newer input arriving right at timer expiry, before the expired timer's
// callback has started the lookup, must still supersede it: the earlier
// lookup either never runs or observes cancellation.
func TestDebouncedLookupSupersedeAtTimerExpiry(t *testing.T) {
	const delay = 20 * time.Millisecond

	for i := 0; i < 25; i++ {
		firstStarted := make(chan struct{})
		firstCancelled := make(chan bool, 1)

		d := NewDebouncedLookup(delay, time.Second, func(ctx context.Context, key string) {
			if key != "first" {
				return
			}
			close(firstStarted)
			select {
			case <-ctx.Done():
				firstCancelled <- true
			case <-time.After(400 * time.Millisecond):
				firstCancelled <- false
			}
		})

		d.Trigger("first")
		// Land the second trigger as close to timer expiry as possible.
		time.Sleep(delay)
		d.Trigger("second")

		select {
		case <-firstStarted:
			select {
			case cancelled := <-firstCancelled:
				if !cancelled {
					t.Fatalf("iteration %d: superseded lookup ran to completion uncancelled", i)
				}
			case <-time.After(time.Second):
				t.Fatalf("iteration %d: superseded lookup never observed cancellation", i)
			}
		case <-time.After(50 * time.Millisecond):
			// Superseded before it ever ran; equally correct.
		}
		d.Stop()
	}
}

func TestDebouncedLookupStop(t *testing.T) {
	rec := newLookupRecorder()
	d := NewDebouncedLookup(10*time.Millisecond, time.Second, rec.fn)

	d.Stop()
	d.Trigger("12345")
	rec.expectQuiet(t, 60*time.Millisecond)
}
