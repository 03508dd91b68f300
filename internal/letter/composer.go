// Package letter renders the final letter text, either by placeholder
// substitution over the template catalog or by delegating to the
// narrative-generation collaborator.
package letter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/ai"
	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/directory"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"go.uber.org/zap"
)

// Institution identifies the college named in both address blocks.
type Institution struct {
	Name  string
	Place string
}

// Narrative is the generation collaborator contract.
type Narrative interface {
	Generate(ctx context.Context, instruction string) ai.Result
}

// Letter is the composed body text. The literal signature marker stays
// embedded in Body; the renderer replaces it with the signature image.
// GenerationFailed marks a body that is a service failure notice rather
// than real letter content.
type Letter struct {
	Body             string
	GenerationFailed bool
	FailureReason    string
}

// Composer builds letter text from a complete LeaveRequest.
type Composer struct {
	catalog *catalog.Catalog
	dir     *directory.Directory
	gen     Narrative
	inst    Institution
	now     func() time.Time
	logger  *zap.Logger
}

// NewComposer wires the composer. now feeds the computed current date;
// pass time.Now outside tests.
func NewComposer(cat *catalog.Catalog, dir *directory.Directory, gen Narrative, inst Institution, now func() time.Time, logger *zap.Logger) *Composer {
	return &Composer{catalog: cat, dir: dir, gen: gen, inst: inst, now: now, logger: logger}
}

// Compose dispatches on the request's content strategy.
func (c *Composer) Compose(ctx context.Context, r *wizard.LeaveRequest) (Letter, error) {
	if r.Generated() {
		return c.composeGenerated(ctx, r), nil
	}
	return c.composeTemplate(r)
}

func (c *Composer) composeTemplate(r *wizard.LeaveRequest) (Letter, error) {
	values := map[string]string{
		"user":            r.Get(wizard.FieldUser),
		"programme":       r.Get(wizard.FieldProgramme),
		"department":      r.Get(wizard.FieldDepartment),
		"year_of_study":   r.Get(wizard.FieldYearOfStudy),
		"start_date":      r.Get(wizard.FieldStartDate),
		"end_date":        r.Get(wizard.FieldEndDate),
		"contact_number":  r.Get(wizard.FieldContactNumber),
		"current_date":    c.now().Format(wizard.DateLayout),
		"recipient_block": c.RecipientBlock(r),
		"roster_block":    rosterBlock(r),
	}
	// Placeholders with no stored value are a hard failure inside
	// Render, not a silent default; drop empties so Render sees them as
	// missing.
	for key, value := range values {
		if value == "" && key != "roster_block" {
			delete(values, key)
		}
	}

	body, err := c.catalog.Render(r.ContentStrategy, values)
	if err != nil {
		c.logger.Error("Template rendering failed",
			zap.String("template", r.ContentStrategy),
			zap.Error(err))
		return Letter{}, err
	}
	return Letter{Body: body}, nil
}

func (c *Composer) composeGenerated(ctx context.Context, r *wizard.LeaveRequest) Letter {
	instruction := c.BuildInstruction(r)
	result := c.gen.Generate(ctx, instruction)
	return Letter{
		Body:             result.Text,
		GenerationFailed: result.Failed,
		FailureReason:    result.Reason,
	}
}

// rosterBlock renders the optional template block listing the
// co-signatories. Empty (not an error) when there is no roster.
func rosterBlock(r *wizard.LeaveRequest) string {
	if !r.HasRoster() {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nThe following students are also covered by this request:\n")
	for _, entry := range r.Roster {
		fmt.Fprintf(&b, "- %s (%s)\n", entry.Name, entry.YearOfStudy)
	}
	return b.String()
}

// RecipientBlock computes the address block for the chosen recipient:
// the fixed institutional block for the principal, otherwise the
// resolved faculty's designation and department interpolated in.
func (c *Composer) RecipientBlock(r *wizard.LeaveRequest) string {
	lines := []string{}
	if r.AddressedToPrincipal() {
		lines = append(lines, "The Principal")
	} else {
		name := r.Get(wizard.FieldRecipient)
		lines = append(lines, name)
		if entry, ok := c.dir.Find(name); ok {
			if entry.Designation != "" {
				lines = append(lines, entry.Designation)
			}
			if entry.Department != "" {
				lines = append(lines, entry.Department)
			}
		}
	}
	lines = append(lines, c.inst.Name, c.inst.Place)
	return strings.Join(lines, "\n")
}

// BuildInstruction constructs the natural-language instruction for the
// narrative service. When the roster carries more than two entries the
// instruction directs the generator to leave co-signatories out of the
// prose; they appear only in the rendered table.
func (c *Composer) BuildInstruction(r *wizard.LeaveRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a formal leave letter using the following format:\n\n")
	fmt.Fprintf(&b, "From:\n%s\n%s %s (%s)\n%s\n%s\n\n",
		r.Get(wizard.FieldUser),
		r.Get(wizard.FieldYearOfStudy),
		r.Get(wizard.FieldProgramme),
		r.Get(wizard.FieldDepartment),
		c.inst.Name,
		c.inst.Place)
	fmt.Fprintf(&b, "To:\n%s\n\n", c.RecipientBlock(r))
	fmt.Fprintf(&b, "Date: %s\nSubject:\nRespected Sir/Madam,\n\n", c.now().Format(wizard.DateLayout))
	fmt.Fprintf(&b, "Request leave from %s to %s.\n",
		r.Get(wizard.FieldStartDate),
		r.Get(wizard.FieldEndDate))
	fmt.Fprintf(&b, "Reason: %s\n", r.Reason)
	if r.ExtraDetails != "" {
		fmt.Fprintf(&b, "Additional details: %s\n", r.ExtraDetails)
	}
	fmt.Fprintf(&b, "My contact number: %s\n", r.Get(wizard.FieldContactNumber))

	switch n := len(r.Roster); {
	case n > 2:
		fmt.Fprintf(&b, "\nThe leave also covers %d other students. Do not name any of them in the letter body; they are listed in an attached table. Close the letter naming only %s.\n",
			n, r.Get(wizard.FieldUser))
	case n > 0:
		names := make([]string, n)
		for i, entry := range r.Roster {
			names[i] = entry.Name
		}
		fmt.Fprintf(&b, "\nThe leave also covers: %s.\n", strings.Join(names, ", "))
	}

	fmt.Fprintf(&b, "\nFormat it professionally with a polite tone as it is given to a college, and include a proper closing with Thanking you and Yours faithfully.\n")
	return b.String()
}
