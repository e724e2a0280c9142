package viewer

import (
	"errors"
	"testing"
)

func kinds(effects []Effect) []EffectKind {
	var out []EffectKind
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func sameKinds(a, b []EffectKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStep(t *testing.T) {
	displaying := State{Phase: Displaying, Index: 2, Count: 5}
	editing := State{Phase: Editing, Index: 2, Count: 5, SaveGen: 1}
	saving := State{Phase: Saving, Index: 2, Count: 5, SaveGen: 2}

	tests := []struct {
		name    string
		from    State
		event   Event
		want    State
		effects []EffectKind
	}{
		{"loaded empty", InitialState(), Loaded{Count: 0}, State{Phase: Idle, Index: -1}, nil},
		{"loaded shows first", InitialState(), Loaded{Count: 3}, State{Phase: Loading, Index: 0, Count: 3}, []EffectKind{EffectFetch}},
		{"loaded twice ignored", displaying, Loaded{Count: 9}, displaying, nil},

		{"navigate", displaying, Navigate{Target: 4}, State{Phase: Loading, Index: 4, Count: 5}, []EffectKind{EffectFetch}},
		{"navigate to current ignored", displaying, Navigate{Target: 2}, displaying, nil},
		{"navigate below range ignored", displaying, Navigate{Target: -1}, displaying, nil},
		{"navigate above range ignored", displaying, Navigate{Target: 5}, displaying, nil},
		{"navigate idle ignored", InitialState(), Navigate{Target: 0}, InitialState(), nil},
		{"navigate while editing asks", editing, Navigate{Target: 3}, editing, []EffectKind{EffectConfirm}},
		{"navigate while editing discard", editing, Navigate{Target: 3, Discard: true},
			State{Phase: Loading, Index: 3, Count: 5, SaveGen: 1}, []EffectKind{EffectCancelExit, EffectEditMode, EffectFetch}},
		{"navigate editing current ignored", editing, Navigate{Target: 2}, editing, nil},
		{"navigate while saving rejected", saving, Navigate{Target: 3}, saving, []EffectKind{EffectReject}},
		{"navigate while loading retargets", State{Phase: Loading, Index: 4, Count: 5}, Navigate{Target: 1},
			State{Phase: Loading, Index: 1, Count: 5}, []EffectKind{EffectFetch}},

		{"advance", displaying, Advance{Delta: 1}, State{Phase: Loading, Index: 3, Count: 5}, []EffectKind{EffectFetch}},
		{"advance past end ignored", State{Phase: Displaying, Index: 4, Count: 5}, Advance{Delta: 1},
			State{Phase: Displaying, Index: 4, Count: 5}, nil},
		{"advance while editing ignored", editing, Advance{Delta: -1}, editing, nil},

		{"content ready", State{Phase: Loading, Index: 3, Count: 5}, ContentReady{Target: 3},
			State{Phase: Displaying, Index: 3, Count: 5}, []EffectKind{EffectDisplay, EffectPrefetch}},
		{"stale content ignored", State{Phase: Loading, Index: 3, Count: 5}, ContentReady{Target: 1},
			State{Phase: Loading, Index: 3, Count: 5}, nil},

		{"edit on", displaying, ToggleEdit{}, State{Phase: Editing, Index: 2, Count: 5}, []EffectKind{EffectEditMode}},
		{"edit off", editing, ToggleEdit{}, State{Phase: Displaying, Index: 2, Count: 5, SaveGen: 1}, []EffectKind{EffectCancelExit, EffectEditMode}},
		{"edit while saving rejected", saving, ToggleEdit{}, saving, []EffectKind{EffectReject}},
		{"edit idle rejected", InitialState(), ToggleEdit{}, InitialState(), []EffectKind{EffectReject}},

		{"save", editing, SaveStarted{}, State{Phase: Saving, Index: 2, Count: 5, SaveGen: 2}, []EffectKind{EffectCancelExit, EffectSave}},
		{"save twice rejected", saving, SaveStarted{}, saving, []EffectKind{EffectReject}},
		{"save not editing rejected", displaying, SaveStarted{}, displaying, []EffectKind{EffectReject}},
		{"save ok", saving, SaveFinished{}, State{Phase: Editing, Index: 2, Count: 5, SaveGen: 2}, []EffectKind{EffectSaved, EffectScheduleExit}},
		{"save failed", saving, SaveFinished{Err: errors.New("disk full")}, State{Phase: Editing, Index: 2, Count: 5, SaveGen: 2}, []EffectKind{EffectSaveFailed}},

		{"auto exit", editing, AutoExit{Gen: 1}, State{Phase: Displaying, Index: 2, Count: 5, SaveGen: 1}, []EffectKind{EffectEditMode}},
		{"stale auto exit ignored", editing, AutoExit{Gen: 0}, editing, nil},
		{"auto exit while saving ignored", saving, AutoExit{Gen: 2}, saving, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, effects := Step(tt.from, tt.event)
			if got != tt.want {
				t.Errorf("state = %+v, want %+v", got, tt.want)
			}
			if !sameKinds(kinds(effects), tt.effects) {
				t.Errorf("effects = %v, want %v", kinds(effects), tt.effects)
			}
		})
	}
}

func TestStepRejectReasons(t *testing.T) {
	_, effects := Step(State{Phase: Saving, Index: 0, Count: 2}, Navigate{Target: 1})
	if eff, _ := find(effects, EffectReject); !errors.Is(eff.Err, ErrSaveInFlight) {
		t.Errorf("navigate while saving: got %v", eff.Err)
	}
	_, effects = Step(State{Phase: Displaying, Index: 0, Count: 2}, SaveStarted{})
	if eff, _ := find(effects, EffectReject); !errors.Is(eff.Err, ErrNotEditing) {
		t.Errorf("save while displaying: got %v", eff.Err)
	}
	_, effects = Step(InitialState(), ToggleEdit{})
	if eff, _ := find(effects, EffectReject); !errors.Is(eff.Err, ErrNoSlide) {
		t.Errorf("edit while idle: got %v", eff.Err)
	}
}

func TestStepDiscardTurnsOffEditForPreviousSlide(t *testing.T) {
	_, effects := Step(State{Phase: Editing, Index: 1, Count: 4}, Navigate{Target: 3, Discard: true})
	eff, ok := find(effects, EffectEditMode)
	if !ok || eff.On || eff.Index != 1 {
		t.Errorf("expected edit-off effect for slide 1, got %+v", eff)
	}
	fetch, _ := find(effects, EffectFetch)
	if fetch.Index != 3 {
		t.Errorf("expected fetch of 3, got %d", fetch.Index)
	}
}

func TestPhaseString(t *testing.T) {
	if Saving.String() != "saving" || Phase(42).String() != "phase(42)" {
		t.Errorf("unexpected phase strings %q %q", Saving, Phase(42))
	}
}
