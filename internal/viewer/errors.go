package viewer

import (
	"errors"

	"github.com/ezppt/deckview/internal/backend"
)

var (
	// ErrNavigationBlocked is returned when the user declines to discard
	// unsaved edits.
	ErrNavigationBlocked = errors.New("viewer: navigation cancelled, unsaved edits kept")
	// ErrSaveInFlight is returned for requests that must wait for the
	// current save to finish.
	ErrSaveInFlight = errors.New("viewer: a save is already in progress")
	// ErrNotEditing is returned by Save outside edit mode.
	ErrNotEditing = errors.New("viewer: not in edit mode")
	// ErrNoSlide is returned for edit requests while no slide is displayed.
	ErrNoSlide = errors.New("viewer: no slide displayed")
	// ErrSlideUnavailable marks a slide whose markup could not be loaded.
	ErrSlideUnavailable = errors.New("viewer: slide unavailable")
	// ErrInit wraps failures to load the slide list.
	ErrInit = errors.New("viewer: initialization failed")
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("viewer: session already initialized")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("viewer: session closed")
)

// ErrorText returns the message shown to the user for err. Backend replies
// contribute their body text rather than the wrapped chain.
func ErrorText(err error) string {
	return backend.Message(err)
}
