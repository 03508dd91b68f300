package letter

import (
	"context"
	"testing"
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/ai"
	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/directory"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, time.February, 20, 10, 0, 0, 0, time.UTC)

type fakeNarrative struct {
	instruction string
	result      ai.Result
}

func (f *fakeNarrative) Generate(_ context.Context, instruction string) ai.Result {
	f.instruction = instruction
	return f.result
}

func testComposer(gen Narrative) *Composer {
	dir := directory.FromEntries([]directory.Entry{
		{Faculty: "Dr. Anil Kumar", Designation: "Professor", Department: "CSE", Programme: "B.Tech"},
	}, zap.NewNop())
	cat := catalog.FromMap(map[string]string{
		"Medical Leave": "To:\n{recipient_block}\n\nRespected Sir/Madam,\n\nI request leave from {start_date} to {end_date}.\nContact: {contact_number}\nDate: {current_date}\n{roster_block}\nYours faithfully,\n{user}\n[Student Signature]",
	}, zap.NewNop())
	inst := Institution{Name: "St. Joseph's College of Engineering and Technology", Place: "Palai"}
	return NewComposer(cat, dir, gen, inst, func() time.Time { return testNow }, zap.NewNop())
}

func scenarioRequest() wizard.LeaveRequest {
	r := wizard.NewLeaveRequest()
	r.Fields[wizard.FieldUser] = "Asha Rao"
	r.Fields[wizard.FieldProgramme] = "B.Tech"
	r.Fields[wizard.FieldDepartment] = "CSE"
	r.Fields[wizard.FieldRecipient] = "Principal"
	r.Fields[wizard.FieldYearOfStudy] = "2nd Year"
	r.Fields[wizard.FieldStartDate] = "01-03-2025"
	r.Fields[wizard.FieldEndDate] = "03-03-2025"
	r.Fields[wizard.FieldContactNumber] = "9876543210"
	return r
}

func TestComposeTemplatePrincipal(t *testing.T) {
	c := testComposer(&fakeNarrative{})
	r := scenarioRequest()
	r.ContentStrategy = "Medical Leave"

	l, err := c.Compose(context.Background(), &r)
	require.NoError(t, err)
	assert.Contains(t, l.Body, "The Principal")
	assert.Contains(t, l.Body, "01-03-2025 to 03-03-2025")
	assert.Contains(t, l.Body, "20-02-2025")
	assert.Contains(t, l.Body, catalog.SignatureMarker)
	assert.False(t, l.GenerationFailed)
}

func TestComposeTemplateMissingFieldFails(t *testing.T) {
	c := testComposer(&fakeNarrative{})
	r := scenarioRequest()
	r.ContentStrategy = "Medical Leave"
	delete(r.Fields, wizard.FieldContactNumber)

	_, err := c.Compose(context.Background(), &r)
	var rerr *catalog.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "contact_number", rerr.Field)
}

func TestRecipientBlockFaculty(t *testing.T) {
	c := testComposer(&fakeNarrative{})
	r := scenarioRequest()
	r.Fields[wizard.FieldRecipient] = "Dr. Anil Kumar"

	block := c.RecipientBlock(&r)
	assert.Equal(t, "Dr. Anil Kumar\nProfessor\nCSE\nSt. Joseph's College of Engineering and Technology\nPalai", block)
}

func TestRecipientBlockPrincipal(t *testing.T) {
	c := testComposer(&fakeNarrative{})
	r := scenarioRequest()

	block := c.RecipientBlock(&r)
	assert.Equal(t, "The Principal\nSt. Joseph's College of Engineering and Technology\nPalai", block)
}

func TestComposeGenerated(t *testing.T) {
	gen := &fakeNarrative{result: ai.Result{Text: "Respected Sir, kindly grant me leave."}}
	c := testComposer(gen)
	r := scenarioRequest()
	r.ContentStrategy = wizard.StrategyGenerated
	r.Reason = "fever and rest advised"

	l, err := c.Compose(context.Background(), &r)
	require.NoError(t, err)
	assert.Equal(t, "Respected Sir, kindly grant me leave.", l.Body)
	assert.False(t, l.GenerationFailed)

	assert.Contains(t, gen.instruction, "Asha Rao")
	assert.Contains(t, gen.instruction, "Request leave from 01-03-2025 to 03-03-2025.")
	assert.Contains(t, gen.instruction, "Reason: fever and rest advised")
	assert.Contains(t, gen.instruction, "My contact number: 9876543210")
}

func TestComposeGeneratedFailureIsTyped(t *testing.T) {
	gen := &fakeNarrative{result: ai.Result{Text: "Error: could not generate the letter (no key)", Failed: true, Reason: "no key"}}
	c := testComposer(gen)
	r := scenarioRequest()
	r.ContentStrategy = wizard.StrategyGenerated
	r.Reason = "fever"

	l, err := c.Compose(context.Background(), &r)
	require.NoError(t, err, "soft-fail still produces letter content")
	assert.True(t, l.GenerationFailed)
	assert.Equal(t, "no key", l.FailureReason)
	assert.Contains(t, l.Body, "Error:")
}

func TestInstructionSuppressesLargeRosterNames(t *testing.T) {
	gen := &fakeNarrative{result: ai.Result{Text: "letter"}}
	c := testComposer(gen)
	r := scenarioRequest()
	r.ContentStrategy = wizard.StrategyGenerated
	r.Reason = "industrial visit"
	r.Roster = []wizard.RosterEntry{
		{Name: "Rahul Nair", YearOfStudy: "2nd Year"},
		{Name: "Sneha Jose", YearOfStudy: "2nd Year"},
		{Name: "Divya Pillai", YearOfStudy: "2nd Year"},
	}

	_, err := c.Compose(context.Background(), &r)
	require.NoError(t, err)
	assert.Contains(t, gen.instruction, "Do not name any of them")
	assert.Contains(t, gen.instruction, "Close the letter naming only Asha Rao")
	assert.NotContains(t, gen.instruction, "Rahul Nair")
	assert.NotContains(t, gen.instruction, "Sneha Jose")
}

func TestInstructionNamesSmallRoster(t *testing.T) {
	gen := &fakeNarrative{result: ai.Result{Text: "letter"}}
	c := testComposer(gen)
	r := scenarioRequest()
	r.ContentStrategy = wizard.StrategyGenerated
	r.Reason = "family function"
	r.Roster = []wizard.RosterEntry{
		{Name: "Rahul Nair", YearOfStudy: "2nd Year"},
		{Name: "Sneha Jose", YearOfStudy: "2nd Year"},
	}

	_, err := c.Compose(context.Background(), &r)
	require.NoError(t, err)
	assert.Contains(t, gen.instruction, "Rahul Nair, Sneha Jose")
	assert.NotContains(t, gen.instruction, "Do not name any of them")
}

func TestRosterBlockInTemplate(t *testing.T) {
	c := testComposer(&fakeNarrative{})
	r := scenarioRequest()
	r.ContentStrategy = "Medical Leave"
	r.Roster = []wizard.RosterEntry{{Name: "Rahul Nair", YearOfStudy: "2nd Year"}}

	l, err := c.Compose(context.Background(), &r)
	require.NoError(t, err)
	assert.Contains(t, l.Body, "Rahul Nair (2nd Year)")
}
