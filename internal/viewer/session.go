package viewer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Backend is the subset of the backend client a session needs.
type Backend interface {
	ListFiles(ctx context.Context, project string) ([]string, error)
	FetchSlide(ctx context.Context, project, file string) (string, error)
	SaveSlide(ctx context.Context, project, file, content string) error
}

// SaveAttempt describes one save for a SaveRecorder.
type SaveAttempt struct {
	SessionID string
	Project   string
	File      string
	Bytes     int
	Err       error
}

// SaveRecorder receives every save attempt, successful or not.
type SaveRecorder interface {
	RecordSave(ctx context.Context, attempt SaveAttempt)
}

// ConfirmFunc asks whether unsaved edits may be discarded to navigate to
// target.
type ConfirmFunc func(target int) bool

// Options tune a session.
type Options struct {
	ID                    string
	PreloadCount          int
	MaxConcurrentPreloads int
	PrefetchDebounce      time.Duration
	SaveExitDelay         time.Duration
	WheelThrottle         time.Duration
	Clock                 Clock
	Recorder              SaveRecorder
	Logf                  func(format string, args ...any)
}

// DefaultOptions returns the standard viewer tuning.
func DefaultOptions() Options {
	return Options{
		PreloadCount:          2,
		MaxConcurrentPreloads: 3,
		PrefetchDebounce:      100 * time.Millisecond,
		SaveExitDelay:         1000 * time.Millisecond,
		WheelThrottle:         400 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrentPreloads < 1 {
		o.MaxConcurrentPreloads = 1
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Logf == nil {
		o.Logf = log.Printf
	}
	return o
}

// UpdateKind identifies what changed in an Update.
type UpdateKind string

const (
	UpdateFiles      UpdateKind = "files"
	UpdateEmpty      UpdateKind = "empty"
	UpdateInitFailed UpdateKind = "init_failed"
	UpdateLoading    UpdateKind = "loading"
	UpdateSlide      UpdateKind = "slide"
	UpdateEdit       UpdateKind = "edit"
	UpdateSaving     UpdateKind = "saving"
	UpdateSaved      UpdateKind = "saved"
	UpdateSaveFailed UpdateKind = "save_failed"
	UpdateSidebar    UpdateKind = "close_sidebar"
)

// Update is delivered to listeners whenever something visible changes.
// For UpdateSlide, Document holds the markup to render; when Err is set the
// renderer shows an error placeholder with a reload action instead.
type Update struct {
	Kind     UpdateKind
	State    State
	Files    []string
	File     string
	Document string
	Err      error
}

// Counter returns the "current / total" position text.
func (u Update) Counter() string {
	if u.State.Count == 0 || u.State.Index < 0 {
		return fmt.Sprintf("0 / %d", u.State.Count)
	}
	return fmt.Sprintf("%d / %d", u.State.Index+1, u.State.Count)
}

// Listener receives updates in the order they happen. Listeners run with
// the session locked, so they must neither block nor call back into the
// session.
type Listener func(Update)

// Session is one page load of the slide viewer for a single project. It
// owns the content cache, the in-flight set and the state machine.
type Session struct {
	project string
	backend Backend
	opts    Options
	cache   *Cache
	wheel   *Throttle

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	seq         Sequence
	state       State
	initialized bool
	closed      bool
	inflight    map[int]chan struct{}
	listeners   map[int]Listener
	nextID      int
	prefetch    Timer
	exit        Timer
}

// NewSession creates a session for project. Call Init to load its slides.
func NewSession(project string, b Backend, opts Options) *Session {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		project:   project,
		backend:   b,
		opts:      opts,
		cache:     NewCache(),
		wheel:     NewThrottle(opts.Clock, opts.WheelThrottle),
		ctx:       ctx,
		cancel:    cancel,
		state:     InitialState(),
		inflight:  make(map[int]chan struct{}),
		listeners: make(map[int]Listener),
	}
}

// ID returns the session identifier given in Options.
func (s *Session) ID() string { return s.opts.ID }

// Project returns the project name.
func (s *Session) Project() string { return s.project }

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Files returns the slide filenames.
func (s *Session) Files() []string {
	return s.sequence().Files()
}

// Cached returns the cached markup for the slide at index.
func (s *Session) Cached(index int) (string, bool) {
	return s.cache.Get(s.sequence().At(index))
}

func (s *Session) sequence() Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Init loads the slide list and displays the first slide. A failure to
// load the list is reported to listeners as UpdateInitFailed; an empty list
// as UpdateEmpty, after which editing stays disabled.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	s.mu.Unlock()

	files, err := s.backend.ListFiles(ctx, s.project)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.opts.Logf("viewer: loading slide list of %s failed: %v", s.project, err)
		s.emitLocked(Update{Kind: UpdateInitFailed, Err: err})
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInit, err)
	}

	s.seq = NewSequence(files)
	effects := s.dispatchLocked(Loaded{Count: s.seq.Len()})
	if s.seq.Len() == 0 {
		s.emitLocked(Update{Kind: UpdateEmpty})
		s.mu.Unlock()
		return nil
	}
	s.emitLocked(Update{Kind: UpdateFiles, Files: s.seq.Files()})
	fetch := s.applyLocked(effects)
	s.mu.Unlock()

	if fetch >= 0 {
		s.settle(ctx, fetch)
	}
	return nil
}

// Pending finishes an operation whose state transition has already been
// applied: it waits for the slide fetch or backend save the transition
// started. A nil Pending has nothing left to do.
type Pending func(ctx context.Context) error

// Wait runs p if it is non-nil.
func (p Pending) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p(ctx)
}

// Navigate displays the slide at target. Requests for the current slide or
// an index out of range are ignored. In edit mode confirm decides whether
// edits may be discarded; a nil confirm declines. While a save is running
// the request is refused with ErrSaveInFlight without asking confirm, even
// though the session is still in edit mode. A slide that cannot be fetched
// is still navigated to and reported with Update.Err set.
func (s *Session) Navigate(ctx context.Context, target int, confirm ConfirmFunc) error {
	p, err := s.BeginNavigate(target, confirm)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// BeginNavigate applies the transition of Navigate and returns the fetch
// that completes it. Callers that must keep input ordered apply
// transitions one at a time and run the returned Pending concurrently.
func (s *Session) BeginNavigate(target int, confirm ConfirmFunc) (Pending, error) {
	return s.begin(Navigate{Target: target}, confirm)
}

// Next advances one slide. It is ignored in edit mode.
func (s *Session) Next(ctx context.Context) error {
	p, err := s.begin(Advance{Delta: 1}, nil)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// Prev goes back one slide. It is ignored in edit mode.
func (s *Session) Prev(ctx context.Context) error {
	p, err := s.begin(Advance{Delta: -1}, nil)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

func (s *Session) begin(ev Event, confirm ConfirmFunc) (Pending, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	effects := s.dispatchLocked(ev)

	if eff, ok := find(effects, EffectConfirm); ok {
		s.mu.Unlock()
		if confirm == nil || !confirm(eff.Index) {
			return nil, ErrNavigationBlocked
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, ErrClosed
		}
		effects = s.dispatchLocked(Navigate{Target: eff.Index, Discard: true})
	}
	if eff, ok := find(effects, EffectReject); ok {
		s.mu.Unlock()
		return nil, eff.Err
	}
	fetch := s.applyLocked(effects)
	s.mu.Unlock()
	return s.settler(fetch), nil
}

// settler returns the Pending that loads index, or nil when index is -1.
func (s *Session) settler(index int) Pending {
	if index < 0 {
		return nil
	}
	return func(ctx context.Context) error {
		s.settle(ctx, index)
		return nil
	}
}

// settle loads index and completes the navigation that requested it.
func (s *Session) settle(ctx context.Context, index int) {
	err := s.load(ctx, index)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.applyLocked(s.dispatchLocked(ContentReady{Target: index, Err: err}))
}

// HandleKey maps a keyboard key to navigation. All keys are ignored in
// edit mode so that caret movement never changes slides.
func (s *Session) HandleKey(ctx context.Context, key string) error {
	p, err := s.BeginKey(key)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// BeginKey is the transition half of HandleKey.
func (s *Session) BeginKey(key string) (Pending, error) {
	s.mu.Lock()
	editing := s.state.InEditMode()
	s.mu.Unlock()
	if editing {
		return nil, nil
	}

	switch key {
	case "ArrowRight", "ArrowDown":
		return s.begin(Advance{Delta: 1}, nil)
	case "ArrowLeft", "ArrowUp":
		return s.begin(Advance{Delta: -1}, nil)
	case "Escape":
		s.mu.Lock()
		s.emitLocked(Update{Kind: UpdateSidebar})
		s.mu.Unlock()
	}
	return nil, nil
}

// HandleWheel maps a wheel gesture to navigation, at most one step per
// throttle window.
func (s *Session) HandleWheel(ctx context.Context, deltaY float64) error {
	p, err := s.BeginWheel(deltaY)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// BeginWheel is the transition half of HandleWheel.
func (s *Session) BeginWheel(deltaY float64) (Pending, error) {
	s.mu.Lock()
	editing := s.state.InEditMode()
	s.mu.Unlock()
	if editing || !s.wheel.Allow() {
		return nil, nil
	}
	switch {
	case deltaY > 0:
		return s.begin(Advance{Delta: 1}, nil)
	case deltaY < 0:
		return s.begin(Advance{Delta: -1}, nil)
	}
	return nil, nil
}

// ToggleEdit enters or leaves edit mode for the displayed slide. Leaving
// edit mode discards unsaved edits.
func (s *Session) ToggleEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	effects := s.dispatchLocked(ToggleEdit{})
	if eff, ok := find(effects, EffectReject); ok {
		return eff.Err
	}
	s.applyLocked(effects)
	return nil
}

// Save persists markup as the new content of the displayed slide. Only one
// save runs at a time. On success the cache is updated and edit mode ends
// after SaveExitDelay unless another save starts first; on failure the
// session stays in edit mode and the cache is untouched.
func (s *Session) Save(ctx context.Context, markup string) error {
	p, err := s.BeginSave(markup)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// BeginSave moves the session into the saving phase and returns the backend
// write. Rejections (not editing, save in flight, closed) are returned
// directly; the Pending returns the backend's error, which listeners have
// already seen as UpdateSaveFailed.
func (s *Session) BeginSave(markup string) (Pending, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	effects := s.dispatchLocked(SaveStarted{})
	if eff, ok := find(effects, EffectReject); ok {
		s.mu.Unlock()
		return nil, eff.Err
	}
	file := s.seq.At(s.state.Index)
	s.applyLocked(effects)
	s.mu.Unlock()

	return func(ctx context.Context) error {
		return s.finishSave(ctx, file, markup)
	}, nil
}

func (s *Session) finishSave(ctx context.Context, file, markup string) error {
	err := s.backend.SaveSlide(ctx, s.project, file, markup)
	if err == nil {
		s.cache.Put(file, markup)
	} else {
		s.opts.Logf("viewer: saving %s/%s failed: %v", s.project, file, err)
	}
	if s.opts.Recorder != nil {
		s.opts.Recorder.RecordSave(ctx, SaveAttempt{
			SessionID: s.opts.ID,
			Project:   s.project,
			File:      file,
			Bytes:     len(markup),
			Err:       err,
		})
	}

	s.mu.Lock()
	if !s.closed {
		s.applyLocked(s.dispatchLocked(SaveFinished{Err: err}))
	}
	s.mu.Unlock()
	return err
}

// Close stops pending timers and background fetches and drops listeners.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimersLocked()
	s.listeners = make(map[int]Listener)
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) dispatchLocked(ev Event) []Effect {
	next, effects := Step(s.state, ev)
	s.state = next
	return effects
}

// applyLocked performs effects and returns the index that still has to be
// fetched before its navigation can complete, or -1.
func (s *Session) applyLocked(effects []Effect) int {
	fetch := -1
	for _, eff := range effects {
		switch eff.Kind {
		case EffectFetch:
			file := s.seq.At(eff.Index)
			if _, ok := s.cache.Get(file); ok {
				if f := s.applyLocked(s.dispatchLocked(ContentReady{Target: eff.Index})); f >= 0 {
					fetch = f
				}
				continue
			}
			s.emitLocked(Update{Kind: UpdateLoading, File: file})
			fetch = eff.Index

		case EffectDisplay:
			file := s.seq.At(eff.Index)
			doc, ok := s.cache.Get(file)
			err := eff.Err
			if err == nil && !ok {
				err = ErrSlideUnavailable
			}
			s.emitLocked(Update{Kind: UpdateSlide, File: file, Document: doc, Err: err})

		case EffectPrefetch:
			s.schedulePrefetchLocked(eff.Index)

		case EffectEditMode:
			s.emitLocked(Update{Kind: UpdateEdit, File: s.seq.At(eff.Index)})

		case EffectSave:
			s.emitLocked(Update{Kind: UpdateSaving, File: s.seq.At(eff.Index)})

		case EffectSaved:
			s.emitLocked(Update{Kind: UpdateSaved, File: s.seq.At(eff.Index)})

		case EffectSaveFailed:
			s.emitLocked(Update{Kind: UpdateSaveFailed, File: s.seq.At(eff.Index), Err: eff.Err})

		case EffectScheduleExit:
			s.scheduleExitLocked(eff.Gen)

		case EffectCancelExit:
			if s.exit != nil {
				s.exit.Stop()
				s.exit = nil
			}
		}
	}
	return fetch
}

func (s *Session) emitLocked(u Update) {
	u.State = s.state
	for _, l := range s.listeners {
		l(u)
	}
}

// schedulePrefetchLocked restarts the prefetch debounce for center.
func (s *Session) schedulePrefetchLocked(center int) {
	if s.opts.PreloadCount <= 0 {
		return
	}
	if s.prefetch != nil {
		s.prefetch.Stop()
	}
	s.prefetch = s.opts.Clock.AfterFunc(s.opts.PrefetchDebounce, func() {
		if s.ctx.Err() != nil {
			return
		}
		s.PreloadAdjacent(s.ctx, center)
	})
}

func (s *Session) scheduleExitLocked(gen int) {
	if s.exit != nil {
		s.exit.Stop()
	}
	s.exit = s.opts.Clock.AfterFunc(s.opts.SaveExitDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.applyLocked(s.dispatchLocked(AutoExit{Gen: gen}))
	})
}

func (s *Session) stopTimersLocked() {
	if s.prefetch != nil {
		s.prefetch.Stop()
		s.prefetch = nil
	}
	if s.exit != nil {
		s.exit.Stop()
		s.exit = nil
	}
}
