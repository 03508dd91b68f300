package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/abinmathew/leave-letter-assistant/internal/document"
	"github.com/abinmathew/leave-letter-assistant/internal/letter"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"go.uber.org/zap"
)

var (
	// ErrNoArtifact is returned when download, send or regenerate is
	// attempted before a document was generated.
	ErrNoArtifact = errors.New("no document has been generated")

	// ErrNotRegenerable is returned when regenerate is attempted on a
	// template-strategy artifact.
	ErrNotRegenerable = errors.New("only generated letters can be regenerated")
)

// Lifecycle runs the compose-and-render pipeline and maintains the
// cached artifact on the session.
type Lifecycle struct {
	store    *Store
	composer *letter.Composer
	renderer *document.Renderer
	logger   *zap.Logger
}

// NewLifecycle wires the document pipeline to the session store.
func NewLifecycle(store *Store, composer *letter.Composer, renderer *document.Renderer, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{store: store, composer: composer, renderer: renderer, logger: logger}
}

// Store exposes the underlying session store.
func (lc *Lifecycle) Store() *Store {
	return lc.store
}

// Generate composes and renders the document for the session's request
// and caches the artifact with the generation timestamp. Prior session
// state is left untouched on failure so the user can correct input and
// retry.
func (lc *Lifecycle) Generate(ctx context.Context, s *wizard.Session) (*wizard.Artifact, error) {
	snapshot := s.Request.Clone()

	artifact, err := lc.build(ctx, &snapshot)
	if err != nil {
		return nil, err
	}

	artifact.GeneratedAt = lc.store.now()
	artifact.Snapshot = snapshot
	s.Artifact = artifact
	lc.store.Save(s)

	lc.logger.Info("Artifact cached",
		zap.String("session_id", s.ID),
		zap.String("filename", artifact.Filename),
		zap.Bool("generation_failed", artifact.GenerationFailed))
	return artifact, nil
}

// Regenerate re-runs the pipeline over the stored snapshot, replacing
// the cached artifact in place. Valid for the generated strategy only,
// and it does not reset the TTL: the original generation timestamp is
// kept.
func (lc *Lifecycle) Regenerate(ctx context.Context, s *wizard.Session) (*wizard.Artifact, error) {
	if s.Artifact == nil {
		return nil, ErrNoArtifact
	}
	if !s.Artifact.Snapshot.Generated() {
		return nil, ErrNotRegenerable
	}

	snapshot := s.Artifact.Snapshot
	generatedAt := s.Artifact.GeneratedAt

	artifact, err := lc.build(ctx, &snapshot)
	if err != nil {
		return nil, err
	}

	artifact.GeneratedAt = generatedAt
	artifact.Snapshot = snapshot
	s.Artifact = artifact
	lc.store.Save(s)

	lc.logger.Info("Artifact regenerated",
		zap.String("session_id", s.ID),
		zap.Bool("generation_failed", artifact.GenerationFailed))
	return artifact, nil
}

func (lc *Lifecycle) build(ctx context.Context, r *wizard.LeaveRequest) (*wizard.Artifact, error) {
	composed, err := lc.composer.Compose(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to compose letter: %w", err)
	}

	data, filename, err := lc.renderer.Render(composed, r)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	return &wizard.Artifact{
		Data:             data,
		Filename:         filename,
		GenerationFailed: composed.GenerationFailed,
		FailureReason:    composed.FailureReason,
	}, nil
}
