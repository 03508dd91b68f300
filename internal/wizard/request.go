package wizard

import "strings"

// Field names the slot a wizard step writes into the accumulating
// LeaveRequest. Each step owns exactly one field.
type Field string

const (
	FieldUser          Field = "user"
	FieldProgramme     Field = "programme"
	FieldDepartment    Field = "department"
	FieldRecipient     Field = "recipient"
	FieldYearOfStudy   Field = "year_of_study"
	FieldStartDate     Field = "start_date"
	FieldEndDate       Field = "end_date"
	FieldContactNumber Field = "contact_number"
	FieldRoster        Field = "roster"
)

// Programme options offered at the programme step.
const (
	ProgrammeBTech = "B.Tech"
	ProgrammeMTech = "M.Tech"
)

// RecipientPrincipal is the fixed recipient value that short-circuits
// faculty selection.
const RecipientPrincipal = "Principal"

// StrategyGenerated selects the narrative-generation path. Any other
// content strategy value is a template name from the catalog.
const StrategyGenerated = "generated"

// RosterEntry is one co-signatory beyond the primary submitter.
type RosterEntry struct {
	Name        string `json:"name"`
	YearOfStudy string `json:"year_of_study"`
}

// LeaveRequest accumulates the answers collected by the wizard plus the
// completion-screen choices made after the last step.
type LeaveRequest struct {
	// Fields holds the scalar answers, one per completed step.
	Fields map[Field]string `json:"fields"`

	// Roster holds the co-signatories in input order. nil and empty are
	// the same state: no roster.
	Roster []RosterEntry `json:"roster,omitempty"`

	// ContentStrategy is either a template name or StrategyGenerated.
	// Set on the completion screen, not by a step.
	ContentStrategy string `json:"content_strategy,omitempty"`

	// Reason and ExtraDetails feed the generated-narrative instruction.
	Reason       string `json:"reason,omitempty"`
	ExtraDetails string `json:"extra_details,omitempty"`

	// Signatures maps signatory name to an uploaded image. Sparse: not
	// every signatory supplies one.
	Signatures map[string][]byte `json:"-"`
}

// NewLeaveRequest returns an empty accumulator.
func NewLeaveRequest() LeaveRequest {
	return LeaveRequest{
		Fields:     make(map[Field]string),
		Signatures: make(map[string][]byte),
	}
}

// Get returns the stored value for a field, or "".
func (r *LeaveRequest) Get(f Field) string {
	return r.Fields[f]
}

// HasRoster reports whether any co-signatories were retained.
func (r *LeaveRequest) HasRoster() bool {
	return len(r.Roster) > 0
}

// AddressedToPrincipal reports whether the letter goes to the principal
// rather than a named faculty member.
func (r *LeaveRequest) AddressedToPrincipal() bool {
	return r.Get(FieldRecipient) == RecipientPrincipal
}

// Generated reports whether the narrative-generation strategy was chosen.
func (r *LeaveRequest) Generated() bool {
	return r.ContentStrategy == StrategyGenerated
}

// Clone returns a deep copy of the request. The session lifecycle stores
// a snapshot alongside the generated artifact so regeneration works on
// exactly the data the document was built from.
func (r *LeaveRequest) Clone() LeaveRequest {
	out := *r
	out.Fields = make(map[Field]string, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	out.Roster = append([]RosterEntry(nil), r.Roster...)
	out.Signatures = make(map[string][]byte, len(r.Signatures))
	for k, v := range r.Signatures {
		out.Signatures[k] = append([]byte(nil), v...)
	}
	return out
}

// SuggestedFilename derives the artifact filename from the submitter's
// name with whitespace collapsed to underscores.
func (r *LeaveRequest) SuggestedFilename() string {
	name := strings.Join(strings.Fields(r.Get(FieldUser)), "_")
	if name == "" {
		name = "student"
	}
	return name + "_leave_letter.pdf"
}
