package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/greek-portfolio/internal/clock"
)

// State is the submission lifecycle position.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "error"
	}
	return "idle"
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	DefaultSuccessWindow = 5 * time.Second
	DefaultErrorWindow   = 8 * time.Second

	// GeneralError is shown for any failed delivery.
	GeneralError = "Sorry, there was an error sending your message. Please try again later."
)

var (
	ErrSubmitting = errors.New("contact: submission in progress")
	ErrSendFailed = errors.New("contact: delivery failed")
	ErrClosed     = errors.New("contact: form closed")
)

// ValidationError blocks a submission. Focus is the first invalid field.
type ValidationError struct {
	Errors Errors
	Focus  Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("contact: %d invalid field(s), first %s", len(e.Errors), e.Focus)
}

// Snapshot is everything the form UI renders.
type Snapshot struct {
	Values  Values         `json:"values"`
	Errors  Errors         `json:"errors"`
	Touched map[Field]bool `json:"touched"`
	State   State          `json:"state"`
	General string         `json:"general,omitempty"`
}

// Form is one contact form instance.
type Form struct {
	mu            sync.Mutex
	clock         clock.Clock
	sender        Sender
	successWindow time.Duration
	errorWindow   time.Duration

	values  Values
	errors  Errors
	touched map[Field]bool
	state   State
	general string
	revert  clock.Timer
	closed  bool
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithClock replaces the wall clock used for the display windows.
func WithClock(c clock.Clock) FormOption {
	return func(f *Form) { f.clock = c }
}

// WithWindows overrides how long success and error results stay visible.
// Non-positive values keep the defaults.
func WithWindows(success, failure time.Duration) FormOption {
	return func(f *Form) {
		if success > 0 {
			f.successWindow = success
		}
		if failure > 0 {
			f.errorWindow = failure
		}
	}
}

// NewForm returns an empty, idle form delivering through sender.
func NewForm(sender Sender, opts ...FormOption) *Form {
	f := &Form{
		clock:         clock.Real{},
		sender:        sender,
		successWindow: DefaultSuccessWindow,
		errorWindow:   DefaultErrorWindow,
		errors:        Errors{},
		touched:       map[Field]bool{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Set updates a field. Touched fields are revalidated immediately.
func (f *Form) Set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = f.values.With(field, value)
	if f.touched[field] {
		f.validateLocked(field)
	}
}

// Fill sets every field at once without touching them.
func (f *Form) Fill(v Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = v
}

// Blur marks a field as touched and validates it.
func (f *Form) Blur(field Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[field] = true
	f.validateLocked(field)
}

func (f *Form) validateLocked(field Field) {
	if msg := ValidateField(field, f.values.Get(field)); msg != "" {
		f.errors[field] = msg
		return
	}
	delete(f.errors, field)
}

// Submit validates every field and, when all pass, delivers the message.
// It blocks for the duration of the send. A *ValidationError means
// nothing was sent; an error wrapping ErrSendFailed means delivery failed
// and the form shows GeneralError until the error window elapses.
func (f *Form) Submit(ctx context.Context) (Message, error) {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return Message{}, ErrClosed
	case f.state == Submitting:
		f.mu.Unlock()
		return Message{}, ErrSubmitting
	}
	f.stopRevertLocked()
	f.state = Idle
	f.general = ""

	for _, field := range Fields {
		f.touched[field] = true
	}
	f.errors = Validate(f.values)
	if focus, ok := f.errors.First(); ok {
		verr := &ValidationError{Errors: copyErrors(f.errors), Focus: focus}
		f.mu.Unlock()
		return Message{}, verr
	}

	msg := Message{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(f.values.Name),
		Email:       strings.TrimSpace(f.values.Email),
		Body:        strings.TrimSpace(f.values.Message),
		SubmittedAt: f.clock.Now(),
	}
	f.state = Submitting
	f.mu.Unlock()

	sendErr := f.sender.Send(ctx, msg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if sendErr != nil {
		sendErr = fmt.Errorf("%w: %w", ErrSendFailed, sendErr)
	}
	if f.closed {
		return msg, sendErr
	}
	if sendErr != nil {
		f.state = Failed
		f.general = GeneralError
		f.revert = f.clock.AfterFunc(f.errorWindow, f.revertAfterError)
		return msg, sendErr
	}
	f.state = Success
	f.values = Values{}
	f.errors = Errors{}
	f.touched = map[Field]bool{}
	f.revert = f.clock.AfterFunc(f.successWindow, f.revertAfterSuccess)
	return msg, nil
}

func (f *Form) revertAfterSuccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.state != Success {
		return
	}
	f.state = Idle
	f.revert = nil
}

func (f *Form) revertAfterError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.state != Failed {
		return
	}
	f.state = Idle
	f.general = ""
	f.errors = Errors{}
	f.revert = nil
}

func (f *Form) stopRevertLocked() {
	if f.revert != nil {
		f.revert.Stop()
		f.revert = nil
	}
}

// Clear resets values, errors and touched flags and returns to idle.
// It is refused while a submission is in flight.
func (f *Form) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Submitting {
		return ErrSubmitting
	}
	f.stopRevertLocked()
	f.values = Values{}
	f.errors = Errors{}
	f.touched = map[Field]bool{}
	f.state = Idle
	f.general = ""
	return nil
}

// Snapshot copies the current form state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	touched := make(map[Field]bool, len(f.touched))
	for k, v := range f.touched {
		touched[k] = v
	}
	return Snapshot{
		Values:  f.values,
		Errors:  copyErrors(f.errors),
		Touched: touched,
		State:   f.state,
		General: f.general,
	}
}

// Close cancels the pending display-window timer. A send still in
// flight completes but no longer changes the form.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopRevertLocked()
}

func copyErrors(e Errors) Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
