package services

import (
	"context"
	"sync"
	"time"
)

// Default debounce delays and the hard per-request timeout. Cert lookups
// fire from barcode scanners and paste events and want a longer settle
// window than incremental product-search typing.
const (
	CertLookupDebounce    = 1200 * time.Millisecond
	ProductSearchDebounce = 400 * time.Millisecond
	LookupTimeout         = 30 * time.Second
)

// LookupFunc performs the actual lookup for a key. The context is
// cancelled when the request is superseded by newer input or exceeds the
// hard timeout, so implementations must pass it down to their HTTP call.
type LookupFunc func(ctx context.Context, key string)

// DebouncedLookup coordinates one logical lookup field. It is a small
// state machine: Idle -> Pending(timer) -> InFlight(cancel) ->
// Resolved/Aborted. Any new input cancels whatever timer or in-flight
// request is active, so a stale response can never land after a newer
// one (last-input-wins, not first-response-wins).
//
// The coordinator also keeps a last-key memo: re-triggering the key that
// was most recently fetched is suppressed. This is deliberately not a
// result cache; a key fetched two triggers ago is fetched again.
type DebouncedLookup struct {
	delay   time.Duration
	timeout time.Duration
	run     LookupFunc

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	gen     uint64
	lastKey string
	closed  bool
}

func NewDebouncedLookup(delay, timeout time.Duration, run LookupFunc) *DebouncedLookup {
	if timeout <= 0 {
		timeout = LookupTimeout
	}
	return &DebouncedLookup{
		delay:   delay,
		timeout: timeout,
		run:     run,
	}
}

// Trigger schedules a lookup for key after the debounce delay,
// cancelling any pending timer and aborting any in-flight request. A key
// equal to the most recently fetched one is suppressed entirely.
func (d *DebouncedLookup) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || key == "" || key == d.lastKey {
		return
	}

	d.gen++
	gen := d.gen
	d.cancelPendingLocked()

	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(key, gen)
	})
}

// fire runs the lookup for key unless newer input or a reset superseded
// this timer in the window between expiry and lock acquisition; the
// generation check closes that window, timer.Stop alone cannot.
func (d *DebouncedLookup) fire(key string, gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	d.cancel = cancel
	d.lastKey = key
	d.mu.Unlock()

	defer cancel()
	d.run(ctx, key)
}

// Reset clears the last-key memo and aborts any pending or in-flight
// work. Call when the owning session or form is cleared so the next
// trigger for the same key fetches again.
func (d *DebouncedLookup) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.cancelPendingLocked()
	d.lastKey = ""
}

// Stop permanently shuts the coordinator down.
func (d *DebouncedLookup) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelPendingLocked()
	d.closed = true
}

func (d *DebouncedLookup) cancelPendingLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// NewCertPrefetcher wires a debounced coordinator to the PSA client so
// scanning a cert while staging items warms the cert cache before the
// operator opens the identification form.
func NewCertPrefetcher(psa *PSAService) *DebouncedLookup {
	return NewDebouncedLookup(CertLookupDebounce, LookupTimeout, func(ctx context.Context, cert string) {
		// Result lands in the PSA cache; errors here are purely advisory.
		_, _ = psa.LookupCert(ctx, cert)
	})
}
