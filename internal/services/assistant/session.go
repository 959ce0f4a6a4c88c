package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/office671/nawader/internal/domain/assistant/models"
	"github.com/office671/nawader/internal/services/attachment"
	"github.com/office671/nawader/internal/services/credential"
	"github.com/office671/nawader/internal/services/notify"
	"github.com/office671/nawader/internal/services/prompt"
	"github.com/office671/nawader/internal/services/recovery"
	"github.com/office671/nawader/pkg/logger"
)

var (
	ErrInputMissing = errors.New("prompt text or attachment required")
	ErrBusy         = errors.New("a request is already in progress")
	ErrClosed       = errors.New("session closed")
)

const credentialCheckTimeout = 5 * time.Second

// Dispatcher is the completion call the pipeline ends in
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.CompiledRequest) (string, error)
}

// Deps are shared by every session
type Deps struct {
	Validator       *attachment.Validator
	Compiler        *prompt.Compiler
	Dispatcher      Dispatcher
	Classifier      *recovery.Classifier
	Catalog         []models.ReferenceItem
	Host            credential.Host
	NotifyTTL       time.Duration
	DispatchTimeout time.Duration
}

// Submission is one collaborator request
type Submission struct {
	Action models.ActionKind
	Text   string
}

// Snapshot is everything the collaborator renders
type Snapshot struct {
	ID            string                `json:"id"`
	State         State                 `json:"state"`
	Loading       bool                  `json:"loading"`
	Attachment    *models.Attachment    `json:"attachment,omitempty"`
	Notifications []models.Notification `json:"notifications"`
}

// Session owns one user's request state, attachment selection and notifications.
// At most one submission runs at a time.
type Session struct {
	ID string

	mu        sync.Mutex
	state     State
	selection *models.Attachment
	closed    bool

	obsMu     sync.Mutex
	observers map[int]func(Snapshot)
	nextObs   int

	deps     *Deps
	messages prompt.Messages
	queue    *notify.Queue
	runs     sync.WaitGroup
	log      zerolog.Logger
}

// NewSession starts a session and checks the host credential in the background
func NewSession(ctx context.Context, id string, deps *Deps) *Session {
	s := &Session{
		ID:        id,
		state:     State{Phase: PhaseIdle},
		observers: make(map[int]func(Snapshot)),
		deps:      deps,
		messages:  deps.Compiler.Messages(),
		queue:     notify.NewQueue(deps.NotifyTTL),
		log:       logger.For(logger.ASSISTANT).With().Str("session_id", id).Logger(),
	}
	s.queue.Subscribe(func(notify.Event) { s.publish() })

	if deps.Host != nil {
		go s.checkCredential(context.WithoutCancel(ctx))
	}

	s.log.Debug().Msg("Assistant session started")
	return s
}

func (s *Session) checkCredential(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, credentialCheckTimeout)
	defer cancel()

	ok, err := s.deps.Host.HasSelectedCredential(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Error checking credential selection")
		return
	}
	if !ok {
		s.queue.Enqueue(models.NotificationInfo, s.messages.CredentialMissing)
	}
}

// Submit validates the submission and, when accepted, runs the pipeline in the
// background. The returned channel is closed once the run has settled.
func (s *Session) Submit(ctx context.Context, sub Submission) (<-chan struct{}, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	att := s.selection
	if missingInput(sub, att) {
		s.mu.Unlock()
		s.queue.Enqueue(models.NotificationError, s.messages.InputMissing)
		return nil, ErrInputMissing
	}

	next, ok := Transition(s.state, Event{Kind: EventSubmit})
	if !ok {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.state = next
	s.runs.Add(1)
	s.mu.Unlock()

	s.publish()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer s.runs.Done()
		s.run(ctx, sub, att)
	}()

	return done, nil
}

func missingInput(sub Submission, att *models.Attachment) bool {
	text := strings.TrimSpace(sub.Text)
	if sub.Action.RequiresText() {
		return text == ""
	}
	return text == "" && att == nil
}

// run executes encode, compile and dispatch strictly in that order
func (s *Session) run(ctx context.Context, sub Submission, att *models.Attachment) {
	if s.deps.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.DispatchTimeout)
		defer cancel()
	}

	started := time.Now()
	log := s.log.With().Str("action", string(sub.Action)).Logger()

	var payload *models.EncodedPayload
	if att != nil {
		encoded, err := attachment.Encode(att)
		if err != nil {
			log.Error().Err(err).Str("file", att.Name).Msg("Failed to encode attachment")
			s.settle(Event{Kind: EventFail, Text: s.messages.EncodingFailed}, nil)
			return
		}
		payload = &encoded
	}

	instruction := s.deps.Compiler.Compile(sub.Action, sub.Text, s.deps.Catalog, att != nil)
	req := models.NewCompiledRequest(instruction, payload)

	text, err := s.deps.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		outcome := s.deps.Classifier.Classify(ctx, err)
		log.Warn().
			Err(err).
			Str("outcome", string(outcome.Kind)).
			Dur("elapsed", time.Since(started)).
			Msg("Submission failed")
		s.settle(Event{Kind: EventFail, Text: outcome.Message}, nil)
		return
	}

	log.Info().Dur("elapsed", time.Since(started)).Msg("Submission succeeded")
	s.settle(Event{Kind: EventSucceed, Text: text}, att)
}

// settle applies the terminal event. On success the attachment that was sent is
// released, unless the user already picked another one.
func (s *Session) settle(ev Event, sent *models.Attachment) {
	s.mu.Lock()
	next, ok := Transition(s.state, ev)
	if !ok {
		s.mu.Unlock()
		s.log.Error().Str("phase", string(s.state.Phase)).Str("event", string(ev.Kind)).Msg("Unexpected state transition")
		return
	}
	s.state = next
	if ev.Kind == EventSucceed && sent != nil && s.selection == sent {
		s.selection = nil
	}
	s.mu.Unlock()

	if ev.Kind == EventSucceed {
		s.queue.Enqueue(models.NotificationSuccess, s.messages.Success)
	} else {
		s.queue.Enqueue(models.NotificationError, ev.Text)
	}
	s.publish()
}

// Select validates file and holds it for the next submission
func (s *Session) Select(file models.File) (*models.Attachment, error) {
	att, err := s.deps.Validator.Validate(file)
	if err != nil {
		s.Reject(err)
		return nil, err
	}

	s.mu.Lock()
	s.selection = att
	s.mu.Unlock()

	s.queue.Enqueue(models.NotificationInfo, fmt.Sprintf(s.messages.FileSelected, att.Name))
	return att, nil
}

// Reject drops the current selection after a failed upload and reports why.
// Uploads refused before a File exists (body over the transport limit) end here too.
func (s *Session) Reject(err error) {
	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()

	var tooLarge *attachment.FileTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		s.queue.Enqueue(models.NotificationError, fmt.Sprintf(s.messages.FileTooLarge, tooLarge.LimitMB))
	case errors.Is(err, attachment.ErrUnsupportedType):
		s.queue.Enqueue(models.NotificationError, s.messages.UnsupportedType)
	default:
		s.queue.Enqueue(models.NotificationError, s.messages.EncodingFailed)
	}
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()

	s.queue.Enqueue(models.NotificationInfo, s.messages.NoFileSelected)
}

// Reset returns a settled session to idle
func (s *Session) Reset() bool {
	s.mu.Lock()
	next, ok := Transition(s.state, Event{Kind: EventReset})
	s.state = next
	s.mu.Unlock()

	if ok {
		s.publish()
	}
	return ok
}

func (s *Session) Dismiss(id string) bool {
	return s.queue.Dismiss(id)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Selection() *models.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	state := s.state
	selection := s.selection
	s.mu.Unlock()

	return Snapshot{
		ID:            s.ID,
		State:         state,
		Loading:       state.Loading(),
		Attachment:    selection,
		Notifications: s.queue.List(),
	}
}

// Subscribe registers fn to receive a snapshot after every change.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Session) publish() {
	s.obsMu.Lock()
	if len(s.observers) == 0 {
		s.obsMu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// Wait blocks until every accepted submission has settled
func (s *Session) Wait() {
	s.runs.Wait()
}

// Close cancels notification timers and drops observers. In-flight runs still
// settle but their notifications are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.selection = nil
	s.mu.Unlock()

	s.queue.Close()

	s.obsMu.Lock()
	s.observers = make(map[int]func(Snapshot))
	s.obsMu.Unlock()

	s.log.Debug().Msg("Assistant session closed")
}
