package session

import (
	"context"
	"testing"
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/ai"
	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/directory"
	"github.com/abinmathew/leave-letter-assistant/internal/document"
	"github.com/abinmathew/leave-letter-assistant/internal/letter"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

type fakeNarrative struct {
	calls int
	text  string
}

func (f *fakeNarrative) Generate(_ context.Context, _ string) ai.Result {
	f.calls++
	return ai.Result{Text: f.text}
}

type testEnv struct {
	store     *Store
	lifecycle *Lifecycle
	engine    *wizard.Engine
	clock     *testClock
	narrative *fakeNarrative
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{current: time.Date(2025, time.February, 20, 10, 0, 0, 0, time.UTC)}
	logger := zap.NewNop()

	dir := directory.FromEntries([]directory.Entry{
		{Faculty: "Dr. Anil Kumar", Designation: "Professor", Department: "CSE", Programme: "B.Tech"},
	}, logger)
	cat := catalog.FromMap(map[string]string{
		"Medical Leave": "Leave for {user} from {start_date} to {end_date}. Contact {contact_number}.",
	}, logger)

	engine := wizard.NewEngine(dir, clock.now, wizard.DefaultMaxRoster, logger)
	narrative := &fakeNarrative{text: "Respected Sir, kindly grant me leave."}
	composer := letter.NewComposer(cat, dir, narrative, letter.Institution{Name: "SJCET", Place: "Palai"}, clock.now, logger)
	renderer := document.NewRenderer(logger)

	store := NewStore(engine, DefaultTTL, clock.now, logger)
	return &testEnv{
		store:     store,
		lifecycle: NewLifecycle(store, composer, renderer, logger),
		engine:    engine,
		clock:     clock,
		narrative: narrative,
	}
}

func (env *testEnv) completedSession(t *testing.T) *wizard.Session {
	t.Helper()
	s := env.store.Create()
	answers := []wizard.Answer{
		{Text: "Asha Rao"},
		{Text: "B.Tech"},
		{Text: "CSE"},
		{Text: "Principal"},
		{Text: "2nd Year"},
		{Text: "01-03-2025"},
		{Text: "03-03-2025"},
		{Text: "9876543210"},
		{},
	}
	for _, ans := range answers {
		require.NoError(t, env.engine.Submit(s, ans))
	}
	env.store.Save(s)
	return s
}

func userEntries(s *wizard.Session) int {
	n := 0
	for _, entry := range s.Transcript {
		if entry.Speaker == wizard.SpeakerUser {
			n++
		}
	}
	return n
}

func TestGenerateCachesArtifact(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, "Medical Leave", "", ""))

	artifact, err := env.lifecycle.Generate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Asha_Rao_leave_letter.pdf", artifact.Filename)
	assert.NotEmpty(t, artifact.Data)
	assert.Equal(t, env.clock.current, artifact.GeneratedAt)
	assert.False(t, artifact.GenerationFailed)
	assert.Same(t, artifact, s.Artifact)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, "Medical Leave", "", ""))
	_, err := env.lifecycle.Generate(context.Background(), s)
	require.NoError(t, err)

	// Still valid just inside the window.
	env.clock.advance(DefaultTTL - time.Second)
	got, found := env.store.Get(s.ID)
	require.True(t, found)
	assert.NotNil(t, got.Artifact)
	assert.Positive(t, env.store.Remaining(got))

	// At the boundary the whole session is discarded; the wizard
	// restarts at step 0 with no answers and the artifact is lost.
	env.clock.advance(time.Second)
	got, found = env.store.Get(s.ID)
	require.True(t, found)
	assert.Equal(t, 0, got.Step)
	assert.Equal(t, 0, userEntries(got))
	assert.Nil(t, got.Artifact)
}

func TestRegenerateKeepsGeneratedAt(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, wizard.StrategyGenerated, "industrial visit", ""))

	first, err := env.lifecycle.Generate(context.Background(), s)
	require.NoError(t, err)
	generatedAt := first.GeneratedAt

	env.clock.advance(30 * time.Second)
	env.narrative.text = "A different narrative."

	second, err := env.lifecycle.Regenerate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, generatedAt, second.GeneratedAt, "regenerate must not reset the TTL")
	assert.Equal(t, 2, env.narrative.calls)
	assert.NotEqual(t, first.Data, second.Data)
}

func TestRegenerateTemplateStrategyRejected(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, "Medical Leave", "", ""))
	_, err := env.lifecycle.Generate(context.Background(), s)
	require.NoError(t, err)

	_, err = env.lifecycle.Regenerate(context.Background(), s)
	assert.ErrorIs(t, err, ErrNotRegenerable)
}

func TestRegenerateWithoutArtifact(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)

	_, err := env.lifecycle.Regenerate(context.Background(), s)
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestGenerateFailureLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, "Medical Leave", "", ""))
	// Undo the contact number so the template contract cannot be
	// satisfied.
	delete(s.Request.Fields, wizard.FieldContactNumber)

	_, err := env.lifecycle.Generate(context.Background(), s)
	var rerr *catalog.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "contact_number", rerr.Field)
	assert.Nil(t, s.Artifact)

	// Correcting the input allows a retry on the same session.
	s.Request.Fields[wizard.FieldContactNumber] = "9876543210"
	_, err = env.lifecycle.Generate(context.Background(), s)
	require.NoError(t, err)
}

func TestResetDiscardsEverything(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, "Medical Leave", "", ""))
	_, err := env.lifecycle.Generate(context.Background(), s)
	require.NoError(t, err)

	fresh := env.store.Reset(s.ID)
	assert.Equal(t, s.ID, fresh.ID)
	assert.Equal(t, 0, fresh.Step)
	assert.Nil(t, fresh.Artifact)

	got, found := env.store.Get(s.ID)
	require.True(t, found)
	assert.Equal(t, 0, got.Step)
}

func TestGenerationFailureStillProducesArtifact(t *testing.T) {
	env := newTestEnv(t)
	s := env.completedSession(t)
	require.NoError(t, env.engine.SetContentStrategy(s, wizard.StrategyGenerated, "fever", ""))

	// A narrative failure degrades to error text as letter content,
	// tagged so the caller can tell it apart from a real letter.
	failing := ai.NewGenerator(ai.Config{}, zap.NewNop())
	dir := directory.FromEntries([]directory.Entry{{Faculty: "X", Department: "CSE", Programme: "B.Tech"}}, zap.NewNop())
	cat := catalog.FromMap(map[string]string{"T": "t"}, zap.NewNop())
	composer := letter.NewComposer(cat, dir, failing, letter.Institution{Name: "SJCET", Place: "Palai"}, env.clock.now, zap.NewNop())
	lc := NewLifecycle(env.store, composer, document.NewRenderer(zap.NewNop()), zap.NewNop())

	artifact, err := lc.Generate(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, artifact.GenerationFailed)
	assert.NotEmpty(t, artifact.FailureReason)
	assert.NotEmpty(t, artifact.Data)
}
