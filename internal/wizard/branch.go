package wizard

import (
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/directory"
)

// BranchResolver computes the option sets and date bounds that depend on
// answers already stored in the request. All methods are pure functions
// of the request snapshot and the immutable directory.
type BranchResolver struct {
	dir *directory.Directory
	now func() time.Time
}

// NewBranchResolver builds a resolver over the faculty directory. now is
// the clock used for date windows; pass time.Now outside tests.
func NewBranchResolver(dir *directory.Directory, now func() time.Time) *BranchResolver {
	return &BranchResolver{dir: dir, now: now}
}

// ProgrammeOptions returns the programmes offered at the programme step.
func (b *BranchResolver) ProgrammeOptions() []string {
	return []string{ProgrammeBTech, ProgrammeMTech}
}

// DepartmentOptions returns the distinct departments for the chosen
// programme, order-stable.
func (b *BranchResolver) DepartmentOptions(r *LeaveRequest) []string {
	return b.dir.DepartmentsFor(r.Get(FieldProgramme))
}

// RecipientOptions returns the fixed Principal choice followed by the
// faculty of the chosen department. Choosing Principal short-circuits
// faculty selection entirely.
func (b *BranchResolver) RecipientOptions(r *LeaveRequest) []string {
	return append([]string{RecipientPrincipal}, b.dir.FacultyFor(r.Get(FieldDepartment))...)
}

// YearOptions returns four years of study for B.Tech and two for M.Tech.
func (b *BranchResolver) YearOptions(r *LeaveRequest) []string {
	if r.Get(FieldProgramme) == ProgrammeBTech {
		return []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}
	}
	return []string{"1st Year", "2nd Year"}
}

// StartDateBounds returns the inclusive calendar window for the start
// date: 30 days back to one year ahead of today.
func (b *BranchResolver) StartDateBounds() (time.Time, time.Time) {
	today := dateOnly(b.now())
	return today.Add(-StartDateLookback), today.Add(StartDateHorizon)
}

// EndDateBounds returns the inclusive window for the end date: the
// stored start date to one year after it.
func (b *BranchResolver) EndDateBounds(r *LeaveRequest) (time.Time, time.Time) {
	start, err := ParseDate(r.Get(FieldStartDate))
	if err != nil {
		// No valid start stored yet; fall back to the start window.
		return b.StartDateBounds()
	}
	start = dateOnly(start)
	return start, start.Add(EndDateHorizon)
}
