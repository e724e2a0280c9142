package viewer

import "fmt"

// Phase is the display phase of a viewer session.
type Phase int

const (
	Idle Phase = iota
	Displaying
	Loading
	Editing
	Saving
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Displaying:
		return "displaying"
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is the viewer state. Index is -1 until the first slide is chosen
// and always addresses a slide afterwards. While Loading, Index is the
// slide being loaded.
type State struct {
	Phase   Phase
	Index   int
	Count   int
	SaveGen int
}

// InitialState is the state of a session that has not loaded its slides.
func InitialState() State {
	return State{Phase: Idle, Index: -1}
}

// InEditMode reports whether the displayed slide is editable.
func (s State) InEditMode() bool {
	return s.Phase == Editing || s.Phase == Saving
}

// Event is an input to Step.
type Event interface{ event() }

// Loaded reports the slide list size after initialization.
type Loaded struct{ Count int }

// Navigate requests a jump to Target. Discard confirms that unsaved edits
// may be thrown away.
type Navigate struct {
	Target  int
	Discard bool
}

// Advance moves relative to the current slide. It comes from keyboard and
// wheel input, which is ignored in edit mode.
type Advance struct{ Delta int }

// ContentReady reports that loading Target finished. Err is set when the
// markup could not be obtained.
type ContentReady struct {
	Target int
	Err    error
}

// ToggleEdit flips edit mode.
type ToggleEdit struct{}

// SaveStarted requests a save of the displayed slide.
type SaveStarted struct{}

// SaveFinished reports the save outcome; Err is nil on success.
type SaveFinished struct{ Err error }

// AutoExit leaves edit mode after a successful save, unless another save
// started since (Gen no longer matches).
type AutoExit struct{ Gen int }

func (Loaded) event()       {}
func (Navigate) event()     {}
func (Advance) event()      {}
func (ContentReady) event() {}
func (ToggleEdit) event()   {}
func (SaveStarted) event()  {}
func (SaveFinished) event() {}
func (AutoExit) event()     {}

// EffectKind names a side effect requested by Step.
type EffectKind int

const (
	EffectFetch EffectKind = iota
	EffectDisplay
	EffectPrefetch
	EffectConfirm
	EffectEditMode
	EffectSave
	EffectSaved
	EffectSaveFailed
	EffectScheduleExit
	EffectCancelExit
	EffectReject
)

// Effect is a side effect to be executed by the session.
type Effect struct {
	Kind  EffectKind
	Index int
	Gen   int
	On    bool
	Err   error
}

// Step is the transition function of the viewer. It is pure: every side
// effect is returned for the caller to perform.
func Step(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Loaded:
		if s.Phase != Idle || s.Count > 0 {
			return s, nil
		}
		s.Count = e.Count
		if e.Count == 0 {
			return s, nil
		}
		s.Phase, s.Index = Loading, 0
		return s, []Effect{{Kind: EffectFetch, Index: 0}}

	case Navigate:
		return navigate(s, e.Target, e.Discard)

	case Advance:
		if s.Phase == Idle || s.InEditMode() {
			return s, nil
		}
		return navigate(s, s.Index+e.Delta, false)

	case ContentReady:
		if s.Phase != Loading || s.Index != e.Target {
			return s, nil
		}
		s.Phase = Displaying
		return s, []Effect{
			{Kind: EffectDisplay, Index: e.Target, Err: e.Err},
			{Kind: EffectPrefetch, Index: e.Target},
		}

	case ToggleEdit:
		switch s.Phase {
		case Displaying:
			s.Phase = Editing
			return s, []Effect{{Kind: EffectEditMode, Index: s.Index, On: true}}
		case Editing:
			s.Phase = Displaying
			return s, []Effect{
				{Kind: EffectCancelExit},
				{Kind: EffectEditMode, Index: s.Index, On: false},
			}
		case Saving:
			return s, []Effect{{Kind: EffectReject, Err: ErrSaveInFlight}}
		}
		return s, []Effect{{Kind: EffectReject, Err: ErrNoSlide}}

	case SaveStarted:
		switch s.Phase {
		case Editing:
			s.Phase = Saving
			s.SaveGen++
			return s, []Effect{
				{Kind: EffectCancelExit},
				{Kind: EffectSave, Index: s.Index, Gen: s.SaveGen},
			}
		case Saving:
			return s, []Effect{{Kind: EffectReject, Err: ErrSaveInFlight}}
		}
		return s, []Effect{{Kind: EffectReject, Err: ErrNotEditing}}

	case SaveFinished:
		if s.Phase != Saving {
			return s, nil
		}
		s.Phase = Editing
		if e.Err != nil {
			return s, []Effect{{Kind: EffectSaveFailed, Index: s.Index, Err: e.Err}}
		}
		return s, []Effect{
			{Kind: EffectSaved, Index: s.Index},
			{Kind: EffectScheduleExit, Gen: s.SaveGen},
		}

	case AutoExit:
		if s.Phase != Editing || e.Gen != s.SaveGen {
			return s, nil
		}
		s.Phase = Displaying
		return s, []Effect{{Kind: EffectEditMode, Index: s.Index, On: false}}
	}
	return s, nil
}

func navigate(s State, target int, discard bool) (State, []Effect) {
	if s.Phase == Idle || target < 0 || target >= s.Count || target == s.Index {
		return s, nil
	}
	switch s.Phase {
	case Saving:
		return s, []Effect{{Kind: EffectReject, Err: ErrSaveInFlight}}
	case Editing:
		if !discard {
			return s, []Effect{{Kind: EffectConfirm, Index: target}}
		}
		prev := s.Index
		s.Phase, s.Index = Loading, target
		return s, []Effect{
			{Kind: EffectCancelExit},
			{Kind: EffectEditMode, Index: prev, On: false},
			{Kind: EffectFetch, Index: target},
		}
	}
	s.Phase, s.Index = Loading, target
	return s, []Effect{{Kind: EffectFetch, Index: target}}
}

// find returns the first effect of the given kind.
func find(effects []Effect, kind EffectKind) (Effect, bool) {
	for _, e := range effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}
