// Package wizard implements the conversational step machine: an ordered
// step table, the answer accumulator, the append-only transcript, and
// back-navigation. The engine holds no per-user state; every operation
// takes the Session value and mutates it in place.
package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/directory"
	"go.uber.org/zap"
)

// DefaultMaxRoster caps how many co-signatories the roster sub-flow
// accepts.
const DefaultMaxRoster = 5

// Engine drives sessions through the step table.
type Engine struct {
	steps     []Step
	branch    *BranchResolver
	maxRoster int
	logger    *zap.Logger
}

// NewEngine builds an engine over the faculty directory. now feeds the
// date-window checks; pass time.Now outside tests.
func NewEngine(dir *directory.Directory, now func() time.Time, maxRoster int, logger *zap.Logger) *Engine {
	if maxRoster <= 0 {
		maxRoster = DefaultMaxRoster
	}
	return &Engine{
		steps:     steps(),
		branch:    NewBranchResolver(dir, now),
		maxRoster: maxRoster,
		logger:    logger,
	}
}

// StepCount returns N, the number of configured steps.
func (e *Engine) StepCount() int {
	return len(e.steps)
}

// Complete reports whether the session has answered every step.
func (e *Engine) Complete(s *Session) bool {
	return s.Step >= len(e.steps)
}

// NewSession returns an empty session with the first prompt issued.
func (e *Engine) NewSession(id string) *Session {
	s := &Session{ID: id, Request: NewLeaveRequest()}
	s.appendPrompt(e.steps[0].Prompt)
	return s
}

// CurrentStep returns the descriptor for the session's pending step.
func (e *Engine) CurrentStep(s *Session) (Step, bool) {
	if e.Complete(s) {
		return Step{}, false
	}
	return e.steps[s.Step], true
}

// Options returns the option set for the pending step, nil for free
// input.
func (e *Engine) Options(s *Session) []string {
	step, ok := e.CurrentStep(s)
	if !ok || step.Options == nil {
		return nil
	}
	return step.Options(e.branch, &s.Request)
}

// Submit validates the answer for the pending step. On failure the
// transcript gains only an error notice and nothing else changes. On
// success the field is written, the answer recorded, the pointer
// advanced, and the next prompt issued.
func (e *Engine) Submit(s *Session, ans Answer) error {
	if e.Complete(s) {
		return ErrWizardComplete
	}
	step := e.steps[s.Step]

	if step.Kind == KindSubCollection {
		return e.submitRoster(s, step, ans)
	}

	value, verr := step.Validate(e.branch, &s.Request, ans.Text)
	if verr != nil {
		s.appendNotice(verr.Message)
		e.logger.Debug("Answer rejected",
			zap.String("session_id", s.ID),
			zap.String("field", string(step.Field)),
			zap.String("reason", verr.Message))
		return verr
	}

	s.Request.Fields[step.Field] = value
	s.appendAnswer(value)
	s.Step++
	if !e.Complete(s) {
		s.appendPrompt(e.steps[s.Step].Prompt)
	}

	e.logger.Debug("Answer accepted",
		zap.String("session_id", s.ID),
		zap.String("field", string(step.Field)),
		zap.Int("step", s.Step))
	return nil
}

// submitRoster runs the sub-collection step. Entries missing a name or a
// valid year selection are dropped; an empty result is simply "no
// roster". The step advances regardless of roster content.
func (e *Engine) submitRoster(s *Session, step Step, ans Answer) error {
	if len(ans.Roster) > e.maxRoster {
		verr := &ValidationError{
			Field:   FieldRoster,
			Message: fmt.Sprintf("at most %d additional students are allowed", e.maxRoster),
		}
		s.appendNotice(verr.Message)
		return verr
	}

	years := e.branch.YearOptions(&s.Request)
	var kept []RosterEntry
	for _, entry := range ans.Roster {
		name, ok := RequiredText(entry.Name)
		if !ok || !contains(years, entry.YearOfStudy) {
			continue
		}
		kept = append(kept, RosterEntry{Name: name, YearOfStudy: entry.YearOfStudy})
	}
	s.Request.Roster = kept

	if len(kept) == 0 {
		s.appendAnswer("No additional students")
	} else {
		names := make([]string, len(kept))
		for i, entry := range kept {
			names[i] = entry.Name
		}
		s.appendAnswer(fmt.Sprintf("%d additional student(s): %s", len(kept), strings.Join(names, ", ")))
	}
	s.Step++
	if !e.Complete(s) {
		s.appendPrompt(e.steps[s.Step].Prompt)
	}

	e.logger.Debug("Roster recorded",
		zap.String("session_id", s.ID),
		zap.Int("entries", len(kept)))
	return nil
}

// GoBack undoes exactly one step: the pending prompt and the previous
// answer leave the transcript, the undone step's field leaves the
// request, and the pointer decrements. The tail of the transcript is
// always the prompt for the now-current step afterwards.
func (e *Engine) GoBack(s *Session) error {
	if s.Step == 0 {
		return ErrAtFirstStep
	}

	// Error notices issued after the pending prompt go first.
	for {
		last, ok := s.lastEntry()
		if !ok || last.Kind != KindNotice {
			break
		}
		s.dropLast()
	}

	// Drop the unanswered prompt, if one is pending. At the terminal
	// boundary (step == N) there is none and only the answer goes.
	if last, ok := s.lastEntry(); ok && last.Kind == KindPrompt {
		s.dropLast()
	}
	if last, ok := s.lastEntry(); ok && last.Kind == KindAnswer {
		s.dropLast()
	}

	s.Step--
	undone := e.steps[s.Step]
	if undone.Field == FieldRoster {
		s.Request.Roster = nil
	} else {
		delete(s.Request.Fields, undone.Field)
	}

	// The entry now at the tail is the undone step's original prompt;
	// re-issue it only if it is not there.
	if last, ok := s.lastEntry(); !ok || last.Kind != KindPrompt {
		s.appendPrompt(undone.Prompt)
	}

	e.logger.Debug("Step undone",
		zap.String("session_id", s.ID),
		zap.String("field", string(undone.Field)),
		zap.Int("step", s.Step))
	return nil
}

// SetContentStrategy records the completion-screen choice. strategy is a
// template name or StrategyGenerated; the generated path requires a
// non-empty reason.
func (e *Engine) SetContentStrategy(s *Session, strategy, reason, extraDetails string) error {
	if !e.Complete(s) {
		return ErrWizardIncomplete
	}
	if strategy == StrategyGenerated {
		trimmed, ok := RequiredText(reason)
		if !ok {
			return &ValidationError{Field: "reason", Message: "describe your reason for leave"}
		}
		s.Request.Reason = trimmed
		s.Request.ExtraDetails = strings.TrimSpace(extraDetails)
	}
	s.Request.ContentStrategy = strategy
	return nil
}

// AttachSignature stores an uploaded signature image for the named
// signatory. The name must be the primary submitter or a roster member.
func (e *Engine) AttachSignature(s *Session, signatory string, image []byte) error {
	if !e.Complete(s) {
		return ErrWizardIncomplete
	}
	if signatory != s.Request.Get(FieldUser) {
		found := false
		for _, entry := range s.Request.Roster {
			if entry.Name == signatory {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Field: "signatory", Message: fmt.Sprintf("unknown signatory %q", signatory)}
		}
	}
	s.Request.Signatures[signatory] = image
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
