package preview

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ezppt/deckview/internal/viewer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type    string  `json:"type"` // navigate, key, wheel, toggle_edit, save
	Index   int     `json:"index"`
	Discard bool    `json:"discard"`
	Key     string  `json:"key"`
	DeltaY  float64 `json:"delta_y"`
	Content string  `json:"content"`
}

// serverMessage is the outgoing WebSocket message format. Type is a
// viewer.UpdateKind or one of "session", "confirm_discard", "notice" and
// "error".
type serverMessage struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id,omitempty"`
	Phase     string   `json:"phase,omitempty"`
	Index     int      `json:"index"`
	Count     int      `json:"count"`
	Counter   string   `json:"counter,omitempty"`
	Editing   bool     `json:"editing"`
	File      string   `json:"file,omitempty"`
	Files     []string `json:"files,omitempty"`
	Document  string   `json:"document,omitempty"`
	Failed    bool     `json:"failed,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// sendQueue bounds the messages waiting for a slow client. A client that
// falls this far behind is disconnected.
const sendQueue = 64

// socket owns the writing side of one connection. send never blocks: it
// queues for writeLoop, which is the only goroutine writing to conn.
type socket struct {
	conn *websocket.Conn
	out  chan serverMessage
	done chan struct{}
	once sync.Once
}

func newSocket(conn *websocket.Conn) *socket {
	return &socket{
		conn: conn,
		out:  make(chan serverMessage, sendQueue),
		done: make(chan struct{}),
	}
}

func (s *socket) send(msg serverMessage) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- msg:
	default:
		log.Printf("preview: client stopped reading, closing connection")
		s.close()
	}
}

func (s *socket) sendError(message string) {
	s.send(serverMessage{Type: "error", Message: message})
}

// close stops writeLoop and closes the connection, which also ends the
// read loop.
func (s *socket) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *socket) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteJSON(msg); err != nil {
				log.Printf("preview: websocket write: %v", err)
				s.close()
				return
			}
		}
	}
}

// handleWebSocket runs one viewer session for the lifetime of the
// connection. The session is created on connect and torn down on
// disconnect; nothing about it outlives the page.
//
// Messages are applied to the session in the order they arrive. Only the
// fetches and saves they start run concurrently, so a slow slide never
// delays the next keypress.
func (p *Preview) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project is required"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("preview: websocket upgrade: %v", err)
		return
	}
	out := newSocket(conn)
	defer out.close()

	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		out.writeLoop()
	}()

	// The connection outlives request middleware deadlines.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	opts := p.cfg.Viewer
	opts.ID = uuid.NewString()
	if p.recorder != nil {
		opts.Recorder = p.recorder
	}
	sess := viewer.NewSession(project, p.backend, opts)
	sess.Subscribe(func(u viewer.Update) {
		out.send(toMessage(project, u))
	})
	p.sessions.Add(sess)
	defer p.sessions.Remove(sess.ID())

	out.send(serverMessage{Type: "session", SessionID: sess.ID(), Phase: viewer.Idle.String(), Index: -1})

	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.Init(ctx)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("preview: websocket read: %v", err)
			}
			// Stop timers and fetches before waiting for pending work.
			sess.Close()
			cancel()
			out.close()
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			out.sendError("invalid message format")
			continue
		}

		pending, err := p.dispatch(sess, out, msg)
		reportError(out, err)
		if pending == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Save failures reach the page as a save_failed update.
			pending.Wait(ctx)
		}()
	}
}

// dispatch applies msg to the session and returns the work it left
// running, if any.
func (p *Preview) dispatch(sess *viewer.Session, out *socket, msg clientMessage) (viewer.Pending, error) {
	switch msg.Type {
	case "navigate":
		confirm := func(target int) bool {
			out.send(serverMessage{Type: "confirm_discard", Index: target})
			return false
		}
		if msg.Discard {
			confirm = func(int) bool { return true }
		}
		return sess.BeginNavigate(msg.Index, confirm)
	case "key":
		return sess.BeginKey(msg.Key)
	case "wheel":
		return sess.BeginWheel(msg.DeltaY)
	case "toggle_edit":
		return nil, sess.ToggleEdit()
	case "save":
		return sess.BeginSave(msg.Content)
	}
	out.sendError("unknown message type: " + msg.Type)
	return nil, nil
}

func reportError(out *socket, err error) {
	switch {
	case err == nil, errors.Is(err, viewer.ErrNavigationBlocked), errors.Is(err, viewer.ErrClosed):
	case errors.Is(err, viewer.ErrSaveInFlight):
		out.send(serverMessage{Type: "notice", Message: "a save is in progress"})
	default:
		out.sendError(err.Error())
	}
}

// toMessage converts a session update to its wire form. Placeholder
// documents are filled in for failures and empty projects.
func toMessage(project string, u viewer.Update) serverMessage {
	m := serverMessage{
		Type:    string(u.Kind),
		Phase:   u.State.Phase.String(),
		Index:   u.State.Index,
		Count:   u.State.Count,
		Editing: u.State.InEditMode(),
		File:    u.File,
	}
	// The counter changes only once a slide, or its placeholder, is shown.
	switch u.Kind {
	case viewer.UpdateSlide, viewer.UpdateEmpty, viewer.UpdateInitFailed:
		m.Counter = u.Counter()
	}
	switch u.Kind {
	case viewer.UpdateFiles:
		m.Files = u.Files
	case viewer.UpdateSlide:
		if u.Err != nil {
			m.Failed = true
			m.Message = viewer.ErrorText(u.Err)
			m.Document = renderPlaceholder("slide-error", placeholderData{File: u.File, Message: m.Message})
		} else {
			m.Document = u.Document
		}
	case viewer.UpdateEmpty:
		m.Document = renderPlaceholder("empty", placeholderData{Project: project})
	case viewer.UpdateInitFailed:
		m.Message = viewer.ErrorText(u.Err)
		m.Document = renderPlaceholder("init-failed", placeholderData{Message: m.Message})
	case viewer.UpdateSaveFailed:
		m.Message = viewer.ErrorText(u.Err)
	}
	return m
}
