package wizard

import "errors"

var (
	// ErrWizardComplete is returned when a step operation is attempted
	// after the last step was answered.
	ErrWizardComplete = errors.New("wizard already complete")

	// ErrWizardIncomplete is returned when a completion-screen action is
	// attempted before all steps were answered.
	ErrWizardIncomplete = errors.New("wizard not yet complete")

	// ErrAtFirstStep is returned when GoBack is attempted at step 0.
	ErrAtFirstStep = errors.New("already at the first step")
)
