package viewer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	var pending []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped || t.fired:
		case t.at <= c.now:
			t.fired = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// fakeBackend serves slides from memory and records requests.
type fakeBackend struct {
	mu        sync.Mutex
	files     []string
	listErr   error
	slides    map[string]string
	fetchErr  map[string]error
	fetches   map[string]int
	saveErr   error
	saved     map[string]string
	saveGate  chan struct{}
	fetchGate chan struct{}

	active    int
	maxActive int
	events    []string
}

func newFakeBackend(n int) *fakeBackend {
	b := &fakeBackend{
		slides:   make(map[string]string),
		fetchErr: make(map[string]error),
		fetches:  make(map[string]int),
		saved:    make(map[string]string),
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%d.html", i+1)
		b.files = append(b.files, name)
		b.slides[name] = fmt.Sprintf("<html><head><title>%d</title></head><body>slide %d</body></html>", i+1, i+1)
	}
	return b
}

func (b *fakeBackend) ListFiles(ctx context.Context, project string) ([]string, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.files, nil
}

func (b *fakeBackend) FetchSlide(ctx context.Context, project, file string) (string, error) {
	b.mu.Lock()
	b.fetches[file]++
	b.active++
	b.maxActive = max(b.maxActive, b.active)
	b.events = append(b.events, "start "+file)
	gate := b.fetchGate
	b.mu.Unlock()

	if gate != nil {
		<-gate
	} else {
		time.Sleep(5 * time.Millisecond)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.active--
	b.events = append(b.events, "end "+file)
	if err := b.fetchErr[file]; err != nil {
		return "", err
	}
	return b.slides[file], nil
}

func (b *fakeBackend) SaveSlide(ctx context.Context, project, file, content string) error {
	b.mu.Lock()
	gate := b.saveGate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saved[file] = content
	return nil
}

func (b *fakeBackend) fetchCount(file string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetches[file]
}

func (b *fakeBackend) totalFetches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.fetches {
		n += c
	}
	return n
}

// recorder collects updates delivered to a listener.
type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) listen(u Update) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
}

func (r *recorder) ofKind(kind UpdateKind) []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Update
	for _, u := range r.updates {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

func (r *recorder) last(kind UpdateKind) (Update, bool) {
	all := r.ofKind(kind)
	if len(all) == 0 {
		return Update{}, false
	}
	return all[len(all)-1], true
}

// newTestSession builds an initialized session over n fake slides.
func newTestSession(t *testing.T, n int) (*Session, *fakeBackend, *fakeClock, *recorder) {
	t.Helper()
	b := newFakeBackend(n)
	clock := &fakeClock{}
	opts := DefaultOptions()
	opts.Clock = clock
	opts.Logf = t.Logf
	s := NewSession("deck", b, opts)
	t.Cleanup(s.Close)

	rec := &recorder{}
	s.Subscribe(rec.listen)
	if err := s.Init(t.Context()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, b, clock, rec
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
