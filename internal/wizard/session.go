package wizard

import "time"

// Speaker identifies who authored a transcript entry.
type Speaker string

const (
	SpeakerAssistant Speaker = "assistant"
	SpeakerUser      Speaker = "user"
)

// EntryKind distinguishes the three transcript entry shapes. Prompts and
// notices are assistant-authored; answers are user-authored.
type EntryKind string

const (
	KindPrompt EntryKind = "prompt"
	KindAnswer EntryKind = "answer"
	KindNotice EntryKind = "notice"
)

// Entry is one line of the question/answer transcript.
type Entry struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	Kind    EntryKind `json:"kind"`
}

// Artifact is the generated document cached on the session. GeneratedAt
// is written once per session; regeneration replaces Data but keeps the
// original timestamp so the validity window never extends.
type Artifact struct {
	Data        []byte
	Filename    string
	GeneratedAt time.Time

	// Snapshot is the request the document was built from.
	Snapshot LeaveRequest

	// GenerationFailed marks an artifact whose body is a narrative
	// service failure notice rather than a real letter.
	GenerationFailed bool
	FailureReason    string
}

// Session is the full per-user interaction state. It is mutated only
// through Engine operations until the wizard completes, then by the
// compose/render/lifecycle layers.
type Session struct {
	ID         string       `json:"id"`
	Step       int          `json:"step"`
	Transcript []Entry      `json:"transcript"`
	Request    LeaveRequest `json:"request"`
	Artifact   *Artifact    `json:"-"`
}

func (s *Session) appendPrompt(text string) {
	s.Transcript = append(s.Transcript, Entry{Speaker: SpeakerAssistant, Text: text, Kind: KindPrompt})
}

func (s *Session) appendAnswer(text string) {
	s.Transcript = append(s.Transcript, Entry{Speaker: SpeakerUser, Text: text, Kind: KindAnswer})
}

func (s *Session) appendNotice(text string) {
	s.Transcript = append(s.Transcript, Entry{Speaker: SpeakerAssistant, Text: text, Kind: KindNotice})
}

func (s *Session) lastEntry() (Entry, bool) {
	if len(s.Transcript) == 0 {
		return Entry{}, false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

func (s *Session) dropLast() {
	if len(s.Transcript) > 0 {
		s.Transcript = s.Transcript[:len(s.Transcript)-1]
	}
}
