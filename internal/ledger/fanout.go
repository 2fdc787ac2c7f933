package ledger

import "sync"

// joinFanout routes join events to the subscribers of each room. Sends never
// block; a subscriber that falls behind misses events.
type joinFanout struct {
	mu   sync.Mutex
	subs map[string]map[chan PlayerJoined]struct{}
}

func newJoinFanout() *joinFanout {
	return &joinFanout{subs: make(map[string]map[chan PlayerJoined]struct{})}
}

func (f *joinFanout) add(code string) chan PlayerJoined {
	ch := make(chan PlayerJoined, 4)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[code] == nil {
		f.subs[code] = make(map[chan PlayerJoined]struct{})
	}
	f.subs[code][ch] = struct{}{}
	return ch
}

// remove closes ch unless closeAll already did.
func (f *joinFanout) remove(code string, ch chan PlayerJoined) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[code][ch]; !ok {
		return
	}
	delete(f.subs[code], ch)
	if len(f.subs[code]) == 0 {
		delete(f.subs, code)
	}
	close(ch)
}

func (f *joinFanout) publish(ev PlayerJoined) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[ev.RoomCode] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// closeAll ends every subscription, so subscribers see their feed drop.
func (f *joinFanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, set := range f.subs {
		for ch := range set {
			close(ch)
		}
		delete(f.subs, code)
	}
}

func (f *joinFanout) count(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[code])
}
