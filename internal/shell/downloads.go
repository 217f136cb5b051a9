// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shell

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

// maxSweepInterval caps how long an expired artifact can stay in memory.
const maxSweepInterval = time.Minute

// downloads holds converted artifacts until they are fetched once, expire,
// or are pushed out by newer ones. Entries are kept oldest first.
type downloads struct {
	mu    sync.Mutex
	ttl   time.Duration
	limit int
	now   func() time.Time
	order *list.List
	items map[string]*list.Element
}

type pending struct {
	token   string
	art     *types.Artifact
	expires time.Time
}

func newDownloads(ttl time.Duration, limit int) *downloads {
	if limit < 1 {
		limit = 1
	}
	return &downloads{
		ttl:   ttl,
		limit: limit,
		now:   time.Now,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

// put stores art and returns its single-use token. Expired entries are
// dropped, then the oldest ones until the store is within its limit.
func (d *downloads) put(art *types.Artifact) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweepLocked(now)
	for d.order.Len() >= d.limit {
		d.removeLocked(d.order.Front())
	}

	tok := uuid.NewString()
	d.items[tok] = d.order.PushBack(&pending{token: tok, art: art, expires: now.Add(d.ttl)})
	return tok
}

// take removes and returns the artifact for tok.
func (d *downloads) take(tok string) (*types.Artifact, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.items[tok]
	if !ok {
		return nil, false
	}
	d.removeLocked(el)
	p := el.Value.(*pending)
	if d.now().After(p.expires) {
		return nil, false
	}
	return p.art, true
}

// sweep drops every expired entry.
func (d *downloads) sweep() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked(d.now())
}

// sweepLocked relies on a fixed ttl: expiry follows insertion order.
func (d *downloads) sweepLocked(now time.Time) {
	for el := d.order.Front(); el != nil; el = d.order.Front() {
		if !now.After(el.Value.(*pending).expires) {
			return
		}
		d.removeLocked(el)
	}
}

func (d *downloads) removeLocked(el *list.Element) {
	d.order.Remove(el)
	delete(d.items, el.Value.(*pending).token)
}

// run sweeps on every tick until ctx is done.
func (d *downloads) run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.sweep()
		}
	}
}

// sweepInterval is a quarter of the ttl, bounded to [1s, maxSweepInterval].
func sweepInterval(ttl time.Duration) time.Duration {
	every := ttl / 4
	if every < time.Second {
		every = time.Second
	}
	if every > maxSweepInterval {
		every = maxSweepInterval
	}
	return every
}

func (d *downloads) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}
