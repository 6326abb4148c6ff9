package memory

import (
	"context"
	"sync"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/utils/logging"
)

const feedBufferSize = 64

// feed fans change events out to the subscribers of an establishment.
// Sends never block: a subscriber that falls feedBufferSize events behind
// misses events.
type feed struct {
	mu     sync.Mutex
	subs   map[string]map[chan *model.ChangeEvent]struct{}
	closed bool
	done   chan struct{}
}

func newFeed() *feed {
	return &feed{
		subs: make(map[string]map[chan *model.ChangeEvent]struct{}),
		done: make(chan struct{}),
	}
}

// subscribe registers a subscriber and queues initial before any later
// event. The caller must hold the repository lock so that no write slips
// between the snapshot and the registration.
func (f *feed) subscribe(ctx context.Context, establishmentID string, initial []*model.ChangeEvent) <-chan *model.ChangeEvent {
	ch := make(chan *model.ChangeEvent, len(initial)+feedBufferSize)
	for _, ev := range initial {
		ch <- ev
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		close(ch)
		return ch
	}
	if _, ok := f.subs[establishmentID]; !ok {
		f.subs[establishmentID] = make(map[chan *model.ChangeEvent]struct{})
	}
	f.subs[establishmentID][ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			f.unsubscribe(establishmentID, ch)
		case <-f.done:
		}
	}()

	return ch
}

func (f *feed) unsubscribe(establishmentID string, ch chan *model.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.subs[establishmentID][ch]; !ok {
		return
	}
	delete(f.subs[establishmentID], ch)
	close(ch)
}

func (f *feed) publish(establishmentID string, ev *model.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs[establishmentID] {
		select {
		case ch <- ev:
		default:
			logging.Default().Warn("dropping change event for slow subscriber",
				"collection", ev.Collection,
				"document_id", ev.DocumentID)
		}
	}
}

func (f *feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	close(f.done)
	for eid, chans := range f.subs {
		for ch := range chans {
			close(ch)
		}
		delete(f.subs, eid)
	}
}
