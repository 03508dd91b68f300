package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/session"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/abinmathew/leave-letter-assistant/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxSignatureUpload caps signature image uploads at 2 MiB.
const maxSignatureUpload = 2 << 20

type answerRequest struct {
	Text   string               `json:"text"`
	Roster []wizard.RosterEntry `json:"roster"`
}

type composeRequest struct {
	Strategy     string `json:"strategy"`
	Reason       string `json:"reason"`
	ExtraDetails string `json:"extra_details"`
}

// state is the wizard view returned after every mutation.
func (s *Server) state(sess *wizard.Session) gin.H {
	out := gin.H{
		"id":         sess.ID,
		"step":       sess.Step,
		"complete":   s.engine.Complete(sess),
		"transcript": sess.Transcript,
	}
	if opts := s.engine.Options(sess); opts != nil {
		out["options"] = opts
	}
	if s.engine.Complete(sess) {
		out["templates"] = s.catalog.Names()
		actions := []string{"download", "send-to-recipient"}
		if sess.Artifact != nil && sess.Artifact.Snapshot.Generated() {
			actions = append(actions, "regenerate")
		}
		out["actions"] = actions
	}
	if sess.Artifact != nil {
		out["document_ready"] = true
		out["generation_failed"] = sess.Artifact.GenerationFailed
		out["ttl_remaining_seconds"] = int(s.lifecycle.Store().Remaining(sess).Seconds())
	}
	return out
}

// session resolves the session from the path, answering 404 for unknown
// ids. Expired sessions come back already restarted at step 0.
func (s *Server) session(c *gin.Context) (*wizard.Session, bool) {
	sess, found := s.lifecycle.Store().Get(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return nil, false
	}
	return sess, true
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.lifecycle.Store().Create()
	c.JSON(http.StatusCreated, s.state(sess))
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.state(sess))
}

func (s *Server) submitAnswer(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	answer := wizard.Answer{Text: utils.SanitizeString(req.Text), Roster: req.Roster}
	for i := range answer.Roster {
		answer.Roster[i].Name = utils.SanitizeString(answer.Roster[i].Name)
	}
	err := s.engine.Submit(sess, answer)
	s.lifecycle.Store().Save(sess)

	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		out := s.state(sess)
		out["error"] = verr.Message
		c.JSON(http.StatusUnprocessableEntity, out)
	case errors.Is(err, wizard.ErrWizardComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, s.state(sess))
	}
}

func (s *Server) goBack(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}

	if err := s.engine.GoBack(sess); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	s.lifecycle.Store().Save(sess)
	c.JSON(http.StatusOK, s.state(sess))
}

func (s *Server) uploadSignature(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}

	signatory := c.PostForm("signatory")
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature image is required"})
		return
	}
	if file.Size > maxSignatureUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read signature image"})
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read signature image"})
		return
	}

	if signatory == "" {
		signatory = sess.Request.Get(wizard.FieldUser)
	}
	if err := s.engine.AttachSignature(sess, signatory, raw); err != nil {
		s.respondWizardError(c, err)
		return
	}
	s.lifecycle.Store().Save(sess)
	c.JSON(http.StatusOK, s.state(sess))
}

func (s *Server) compose(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}

	var req composeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Strategy != wizard.StrategyGenerated && !s.catalog.Has(req.Strategy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template"})
		return
	}

	if err := s.engine.SetContentStrategy(sess, req.Strategy, req.Reason, req.ExtraDetails); err != nil {
		s.respondWizardError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.aiTimeout)
	defer cancel()

	artifact, err := s.lifecycle.Generate(ctx, sess)
	if err != nil {
		var rerr *catalog.RenderError
		if errors.As(err, &rerr) {
			// Prior session state is untouched; the user corrects input
			// and retries.
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":         "template rendering failed",
				"missing_field": rerr.Field,
			})
			return
		}
		s.logger.Error("Document generation failed",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := s.state(sess)
	out["filename"] = artifact.Filename
	c.JSON(http.StatusOK, out)
}

func (s *Server) download(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}
	if sess.Artifact == nil {
		c.JSON(http.StatusConflict, gin.H{"error": session.ErrNoArtifact.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+sess.Artifact.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", sess.Artifact.Data)
}

func (s *Server) send(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}
	if sess.Artifact == nil {
		c.JSON(http.StatusConflict, gin.H{"error": session.ErrNoArtifact.Error()})
		return
	}

	err := s.dispatcher.Send(
		sess.Artifact.Data,
		sess.Artifact.Filename,
		sess.Artifact.Snapshot.Get(wizard.FieldUser),
		sess.Artifact.Snapshot.Get(wizard.FieldDepartment),
	)
	if err != nil {
		// Delivery failure does not invalidate the cached artifact.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (s *Server) regenerate(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess, ok := s.session(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.aiTimeout)
	defer cancel()

	artifact, err := s.lifecycle.Regenerate(ctx, sess)
	switch {
	case errors.Is(err, session.ErrNoArtifact), errors.Is(err, session.ErrNotRegenerable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		out := s.state(sess)
		out["filename"] = artifact.Filename
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) reset(c *gin.Context) {
	unlock := s.lock(c.Param("id"))
	defer unlock()

	sess := s.lifecycle.Store().Reset(c.Param("id"))
	c.JSON(http.StatusOK, s.state(sess))
}

func (s *Server) respondWizardError(c *gin.Context, err error) {
	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message})
	case errors.Is(err, wizard.ErrWizardIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
