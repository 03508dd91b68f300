package wizard

import "fmt"

// FieldKind classifies how a step's input is collected and checked.
type FieldKind string

const (
	KindFreeText        FieldKind = "free-text"
	KindSingleChoice    FieldKind = "single-choice"
	KindDependentChoice FieldKind = "dependent-choice"
	KindDate            FieldKind = "date"
	KindSubCollection   FieldKind = "sub-collection"
)

// Answer is the payload submitted for one step. Text carries scalar
// answers; Roster carries the sub-collection step's entries.
type Answer struct {
	Text   string        `json:"text"`
	Roster []RosterEntry `json:"roster,omitempty"`
}

// Step describes one question/answer unit: the field it writes, how its
// input is gathered, the prompt shown, an options provider over prior
// answers, and a validator returning the normalized value.
type Step struct {
	Field   Field
	Kind    FieldKind
	Prompt  string
	Options func(b *BranchResolver, r *LeaveRequest) []string
	// Validate returns the normalized value to store, or a
	// *ValidationError. nil for the sub-collection step, which is
	// handled by the engine.
	Validate func(b *BranchResolver, r *LeaveRequest, text string) (string, *ValidationError)
}

// steps builds the ordered step table. The table replaces per-field
// conditionals: engine behavior is driven entirely by these descriptors.
func steps() []Step {
	return []Step{
		{
			Field:  FieldUser,
			Kind:   KindFreeText,
			Prompt: "What's your name?",
			Validate: func(_ *BranchResolver, _ *LeaveRequest, text string) (string, *ValidationError) {
				trimmed, ok := RequiredText(text)
				if !ok {
					return "", &ValidationError{Field: FieldUser, Message: "please enter your name"}
				}
				return trimmed, nil
			},
		},
		{
			Field:  FieldProgramme,
			Kind:   KindSingleChoice,
			Prompt: "Select your programme:",
			Options: func(b *BranchResolver, _ *LeaveRequest) []string {
				return b.ProgrammeOptions()
			},
			Validate: choiceValidator(FieldProgramme, func(b *BranchResolver, r *LeaveRequest) []string {
				return b.ProgrammeOptions()
			}),
		},
		{
			Field:  FieldDepartment,
			Kind:   KindDependentChoice,
			Prompt: "Select your department:",
			Options: func(b *BranchResolver, r *LeaveRequest) []string {
				return b.DepartmentOptions(r)
			},
			Validate: choiceValidator(FieldDepartment, func(b *BranchResolver, r *LeaveRequest) []string {
				return b.DepartmentOptions(r)
			}),
		},
		{
			Field:  FieldRecipient,
			Kind:   KindDependentChoice,
			Prompt: "To whom is this letter addressed?",
			Options: func(b *BranchResolver, r *LeaveRequest) []string {
				return b.RecipientOptions(r)
			},
			Validate: choiceValidator(FieldRecipient, func(b *BranchResolver, r *LeaveRequest) []string {
				return b.RecipientOptions(r)
			}),
		},
		{
			Field:  FieldYearOfStudy,
			Kind:   KindDependentChoice,
			Prompt: "Which year do you study?",
			Options: func(b *BranchResolver, r *LeaveRequest) []string {
				return b.YearOptions(r)
			},
			Validate: choiceValidator(FieldYearOfStudy, func(b *BranchResolver, r *LeaveRequest) []string {
				return b.YearOptions(r)
			}),
		},
		{
			Field:  FieldStartDate,
			Kind:   KindDate,
			Prompt: "Enter the start date of your leave (DD-MM-YYYY):",
			Validate: func(b *BranchResolver, _ *LeaveRequest, text string) (string, *ValidationError) {
				d, err := ParseDate(text)
				if err != nil {
					return "", &ValidationError{Field: FieldStartDate, Message: "invalid date format, use DD-MM-YYYY"}
				}
				min, max := b.StartDateBounds()
				if d.Before(min) || d.After(max) {
					return "", &ValidationError{
						Field: FieldStartDate,
						Message: fmt.Sprintf("start date must fall between %s and %s",
							min.Format(DateLayout), max.Format(DateLayout)),
					}
				}
				return d.Format(DateLayout), nil
			},
		},
		{
			Field:  FieldEndDate,
			Kind:   KindDate,
			Prompt: "Enter the end date of your leave (DD-MM-YYYY):",
			Validate: func(b *BranchResolver, r *LeaveRequest, text string) (string, *ValidationError) {
				d, err := ParseDate(text)
				if err != nil {
					return "", &ValidationError{Field: FieldEndDate, Message: "invalid date format, use DD-MM-YYYY"}
				}
				min, max := b.EndDateBounds(r)
				if d.Before(min) || d.After(max) {
					return "", &ValidationError{
						Field: FieldEndDate,
						Message: fmt.Sprintf("end date must fall between %s and %s",
							min.Format(DateLayout), max.Format(DateLayout)),
					}
				}
				return d.Format(DateLayout), nil
			},
		},
		{
			Field:  FieldContactNumber,
			Kind:   KindFreeText,
			Prompt: "Enter your contact number:",
			Validate: func(_ *BranchResolver, _ *LeaveRequest, text string) (string, *ValidationError) {
				if !ValidPhone(text) {
					return "", &ValidationError{Field: FieldContactNumber, Message: "invalid phone number, enter 10 to 12 digits"}
				}
				return text, nil
			},
		},
		{
			Field:  FieldRoster,
			Kind:   KindSubCollection,
			Prompt: "Are other students joining this leave? Add their details, or continue without any:",
		},
	}
}

// choiceValidator builds a validator accepting only members of the
// step's option set.
func choiceValidator(field Field, options func(*BranchResolver, *LeaveRequest) []string) func(*BranchResolver, *LeaveRequest, string) (string, *ValidationError) {
	return func(b *BranchResolver, r *LeaveRequest, text string) (string, *ValidationError) {
		for _, opt := range options(b, r) {
			if opt == text {
				return text, nil
			}
		}
		return "", &ValidationError{Field: field, Message: "please choose one of the offered options"}
	}
}
