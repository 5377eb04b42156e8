// Package session holds the conversation state of the chat panel: the
// transcript, the interaction mode and the single in-flight request.
//
// Sending is split into Begin, Do and Complete so an event loop can run the
// synchronous parts itself and push only Do onto a background goroutine.
// Send chains all three for callers that may block.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wakili-cli/internal/api"
	"wakili-cli/internal/slot"
)

// Backend is the subset of the API client the session needs.
type Backend interface {
	Chat(ctx context.Context, message string) (string, error)
	Draft(ctx context.Context, instruction string) (string, error)
}

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript entry. Messages are values; the store never
// mutates one after appending it.
type Message struct {
	Role   Role
	Text   string
	Failed bool
	At     time.Time
}

// User-facing reply texts for failed requests.
const (
	ErrorContactingServer = "Error contacting server."
	EmptyReply            = "The server returned an empty reply."
	serverFailurePrefix   = "The server could not answer: "
)

// DefaultGreeting opens every new transcript.
const DefaultGreeting = "Habari! I'm your legal assistant. Ask me about Kenyan law or request a document draft."

// Reply is the outcome of one request. Text is always what the user sees;
// Err is set when Text describes a failure.
type Reply struct {
	Text string
	Err  error
}

// Failed reports whether the reply describes an error.
func (r Reply) Failed() bool { return r.Err != nil }

// Request is an accepted send that has not completed yet.
type Request struct {
	ID   string
	Mode Mode
	Text string

	ticket *slot.Ticket
	done   atomic.Bool
}

// Store is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	transcript []Message
	mode       Mode
	greeting   string

	slot    *slot.Slot
	backend Backend
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithGreeting seeds the transcript with a bot greeting. An empty string
// disables it.
func WithGreeting(text string) Option {
	return func(s *Store) { s.greeting = strings.TrimSpace(text) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an idle store in chat mode.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		mode:     ModeChat,
		greeting: DefaultGreeting,
		slot:     slot.New(),
		backend:  backend,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transcript = s.initialTranscript()
	return s
}

func (s *Store) initialTranscript() []Message {
	if s.greeting == "" {
		return nil
	}
	return []Message{{Role: RoleBot, Text: s.greeting, At: s.now()}}
}

// Begin accepts text for sending. It returns false, changing nothing, when
// text is blank or a request is already pending. Otherwise the user message
// is appended before Begin returns.
func (s *Store) Begin(text string) (*Request, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	// The slot is taken under mu so Clear cannot slip in between the claim
	// and the user message.
	s.mu.Lock()
	ticket, ok := s.slot.TryAcquire()
	if !ok {
		s.mu.Unlock()
		s.log.Debug("send ignored, request pending")
		return nil, false
	}
	req := &Request{ID: uuid.NewString(), Mode: s.mode, Text: text, ticket: ticket}
	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: text, At: s.now()})
	s.mu.Unlock()

	s.log.Debug("send accepted", zap.String("request", req.ID), zap.Stringer("mode", req.Mode))
	return req, true
}

// Do performs the network call for req. It never returns an error; failures
// are folded into the Reply.
func (s *Store) Do(ctx context.Context, req *Request) Reply {
	var (
		text string
		err  error
	)
	start := time.Now()
	switch req.Mode {
	case ModeDraft:
		text, err = s.backend.Draft(ctx, req.Text)
	default:
		text, err = s.backend.Chat(ctx, req.Text)
	}
	if err != nil {
		s.log.Warn("request failed",
			zap.String("request", req.ID),
			zap.Stringer("mode", req.Mode),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return Reply{Text: failureText(err), Err: err}
	}
	s.log.Debug("request completed",
		zap.String("request", req.ID),
		zap.Duration("duration", time.Since(start)),
	)
	return Reply{Text: text}
}

// Complete appends the bot message for req and frees the request slot. Only
// the first call per request has an effect.
func (s *Store) Complete(req *Request, reply Reply) (Message, bool) {
	if req == nil || !req.done.CompareAndSwap(false, true) {
		return Message{}, false
	}
	defer req.ticket.Release()

	msg := Message{Role: RoleBot, Text: reply.Text, Failed: reply.Failed(), At: s.now()}
	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.mu.Unlock()
	return msg, true
}

// Send runs Begin, Do and Complete in sequence. The bool is false when the
// input was ignored.
func (s *Store) Send(ctx context.Context, text string) (Reply, bool) {
	req, ok := s.Begin(text)
	if !ok {
		return Reply{}, false
	}
	reply := s.Do(ctx, req)
	s.Complete(req, reply)
	return reply, true
}

// SetMode switches between chat and draft. It is allowed while a request is
// pending; that request keeps the mode it was sent with.
func (s *Store) SetMode(m Mode) {
	if !m.Valid() {
		return
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// ToggleMode flips between chat and draft and returns the new mode.
func (s *Store) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeChat {
		s.mode = ModeDraft
	} else {
		s.mode = ModeChat
	}
	return s.mode
}

// Mode returns the current interaction mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Pending reports whether a request is in flight.
func (s *Store) Pending() bool { return s.slot.Busy() }

// Transcript returns a copy of the messages in chronological order.
func (s *Store) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the number of messages in the transcript.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// LastReply returns the newest successful bot message that is not the greeting.
func (s *Store) LastReply() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.transcript) - 1; i >= 0; i-- {
		m := s.transcript[i]
		if m.Role != RoleBot || m.Failed {
			continue
		}
		if i == 0 && s.greeting != "" && m.Text == s.greeting {
			break
		}
		return m, true
	}
	return Message{}, false
}

// Clear resets the transcript to its initial state. It refuses while a
// request is pending so the pending reply still has a user turn to follow.
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot.Busy() {
		return false
	}
	s.transcript = s.initialTranscript()
	return true
}

func failureText(err error) string {
	switch {
	case api.IsServer(err):
		if d := api.DetailOf(err); d != "" {
			return serverFailurePrefix + d
		}
		return serverFailurePrefix + "unknown error"
	case api.IsMalformed(err):
		return EmptyReply
	default:
		return ErrorContactingServer
	}
}

// String renders a message the way plain-text output shows it.
func (m Message) String() string {
	label := "You"
	if m.Role == RoleBot {
		label = "Assistant"
	}
	return fmt.Sprintf("%s: %s", label, m.Text)
}
