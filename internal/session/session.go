// Package session implements the classification session state machine: image
// submission, prediction under a daily quota, clarification and refinement.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/imaging"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/google/uuid"
)

// Messages shown to the user for each error kind.
const (
	msgReadFile       = "Failed to read the image file."
	msgQuotaExceeded  = "You have reached today's prediction limit. Try again tomorrow or log in for a higher limit."
	msgOverloaded     = "The classification service is busy right now. Please try again in a moment."
	msgPredictFailed  = "An unknown error occurred."
	msgRefineFailed   = "An unknown error occurred during refinement."
	msgOptionRejected = "Please choose one of the offered options."
)

// Config holds the collaborators and initial preferences of a Session.
type Config struct {
	Inference Inferencer
	Quota     QuotaGuard // nil disables quota enforcement
	Logger    *slog.Logger
	Now       func() time.Time
	Identity  model.IdentityClass
	Language  model.Language
}

// Session owns the lifecycle of one image from upload to a confirmed HS code.
// At most one prediction or refinement is in flight at a time.
type Session struct {
	inference  Inferencer
	quota      QuotaGuard
	state      State
	logger     *slog.Logger
	now        func() time.Time
	identity   model.IdentityClass
	language   model.Language
	id         string
	generation uint64
	mu         sync.Mutex
}

// New creates an empty session.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Identity == "" {
		cfg.Identity = model.IdentityGuest
	}
	if cfg.Language == "" {
		cfg.Language = model.LanguageEnglish
	}

	return &Session{
		inference: cfg.Inference,
		quota:     cfg.Quota,
		logger:    cfg.Logger,
		now:       cfg.Now,
		identity:  cfg.Identity,
		language:  cfg.Language,
		state:     Empty{},
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// ID identifies the current image submission; empty when no image is held.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Identity returns the identity class used for quota checks.
func (s *Session) Identity() model.IdentityClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Language returns the language requested from the inference service.
func (s *Session) Language() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SubmitImage decodes data and starts a new attempt with it, discarding any
// previous session data. An undecodable image leaves the session unchanged.
func (s *Session) SubmitImage(data []byte, mediaType string) error {
	img, err := imaging.Decode(data, mediaType)
	if err != nil {
		return common.NewUserError(msgReadFile, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.id = uuid.NewString()
	s.state = ImageReady{Image: img}
	s.logger.Info("image submitted",
		"session", s.id,
		"media_type", img.MediaType,
		"bytes", len(img.Data))
	return nil
}

// Predict requests candidates for the submitted image. It is accepted from
// ImageReady and, as a retry, from a failed prediction. A quota denial leaves
// the state unchanged and makes no inference call.
func (s *Session) Predict(ctx context.Context) error {
	s.mu.Lock()

	var img model.Image
	switch st := s.state.(type) {
	case ImageReady:
		img = st.Image
	case Failed:
		if st.Stage != StagePredict {
			s.mu.Unlock()
			return invalidTransition("predict", st)
		}
		img = st.Image
	case Predicting, Refining:
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot predict while %s", common.ErrOperationInProgress, st.Name())
	default:
		s.mu.Unlock()
		return invalidTransition("predict", st)
	}

	class, lang, gen, id := s.identity, s.language, s.generation, s.id
	logger := s.logger.With("session", id)

	if s.quota != nil {
		if err := s.quota.CheckAndReserve(ctx, class); err != nil {
			s.mu.Unlock()
			logger.Info("prediction denied", "identity", class, "error", err)
			return toUserError(StagePredict, err)
		}
	}

	s.state = Predicting{Image: img}
	s.mu.Unlock()

	logger.Debug("prediction started", "language", lang)
	prediction, err := s.inference.Predict(ctx, img, lang)
	if err == nil && len(prediction.Candidates) == 0 {
		err = fmt.Errorf("%w: no candidates returned", common.ErrInferenceFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debug("discarding prediction for reset session")
		return fmt.Errorf("%w: prediction discarded", common.ErrSessionReset)
	}

	if err != nil {
		uerr := toUserError(StagePredict, err)
		s.state = Failed{Stage: StagePredict, Err: uerr, Image: img}
		logger.Warn("prediction failed", "error", err)
		return uerr
	}

	if s.quota != nil {
		if err := s.quota.Commit(context.WithoutCancel(ctx), class); err != nil {
			logger.Warn("failed to record quota usage", "identity", class, "error", err)
		}
	}

	candidates := model.CloneRecords(prediction.Candidates)
	clar := prediction.Clarification
	switch {
	case clar != nil && clar.Valid():
		s.state = AwaitingClarification{Image: img, Candidates: candidates, Clarification: clar.Clone()}
	default:
		if clar != nil {
			logger.Warn("ignoring malformed clarification", "options", len(clar.Options))
		}
		s.state = CandidatesReady{Image: img, Candidates: candidates}
	}

	_, asked := s.state.(AwaitingClarification)
	logger.Info("prediction completed", "candidates", len(candidates), "clarification", asked)
	return nil
}

// SelectOption answers the pending clarification with option and refines the
// candidates into one record. A failed refinement can be answered again.
func (s *Session) SelectOption(ctx context.Context, option string) error {
	s.mu.Lock()

	var (
		img        model.Image
		candidates []model.ClassificationRecord
		clar       model.ClarificationRequest
	)
	switch st := s.state.(type) {
	case AwaitingClarification:
		img, candidates, clar = st.Image, st.Candidates, st.Clarification
	case Failed:
		if !st.Recoverable() {
			s.mu.Unlock()
			return invalidTransition("select an option", st)
		}
		img, candidates, clar = st.Image, st.Candidates, *st.Clarification
	case Predicting, Refining:
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot select an option while %s", common.ErrOperationInProgress, st.Name())
	default:
		s.mu.Unlock()
		return invalidTransition("select an option", st)
	}

	if !clar.HasOption(option) {
		s.mu.Unlock()
		return common.NewUserError(msgOptionRejected, fmt.Errorf("%w: %q", common.ErrInvalidOption, option))
	}

	lang, gen := s.language, s.generation
	logger := s.logger.With("session", s.id)
	s.state = Refining{Image: img, Candidates: candidates, Clarification: clar, Answer: option}
	s.mu.Unlock()

	logger.Debug("refinement started", "answer", option)
	record, err := s.inference.Refine(ctx, img, model.CloneRecords(candidates), clar.Clone(), option, lang)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		logger.Debug("discarding refinement for reset session")
		return fmt.Errorf("%w: refinement discarded", common.ErrSessionReset)
	}

	if err != nil {
		uerr := toUserError(StageRefine, err)
		s.state = Failed{
			Stage:         StageRefine,
			Err:           uerr,
			Image:         img,
			Candidates:    candidates,
			Clarification: &clar,
			Answer:        option,
		}
		logger.Warn("refinement failed", "error", err)
		return uerr
	}

	s.state = Refined{
		Image:         img,
		Candidates:    candidates,
		Clarification: clar,
		Answer:        option,
		Final:         record,
	}
	logger.Info("refinement completed", "hs_code", record.Code)
	return nil
}

// Reset discards all session data. A prediction or refinement still in
// flight completes with ErrSessionReset and its result is dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	if _, empty := s.state.(Empty); !empty {
		s.logger.Debug("session reset", "session", s.id, "from", s.state.Name())
	}
	s.state = Empty{}
	s.id = ""
	s.generation++
}

// SetIdentity switches the identity class. A change resets the session; the
// new class's ceiling applies from the next prediction.
func (s *Session) SetIdentity(class model.IdentityClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if class == s.identity {
		return
	}
	s.logger.Info("identity changed", "from", s.identity, "to", class)
	s.identity = class
	s.resetLocked()
}

// SetLanguage sets the language for subsequent inference calls.
func (s *Session) SetLanguage(lang model.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

// Export returns the records currently on display. A refined session exports
// its confirmed record; otherwise any visible candidates are exported as a
// ranked list. It reports false when nothing is on display.
func (s *Session) Export() (report.Input, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := report.Input{Language: s.language, GeneratedAt: s.now()}
	switch st := s.state.(type) {
	case Refined:
		in.Records = []model.ClassificationRecord{st.Final}
		in.Confirmed = true
		in.Answer = st.Answer
	case CandidatesReady:
		in.Records = model.CloneRecords(st.Candidates)
	case AwaitingClarification:
		in.Records = model.CloneRecords(st.Candidates)
	case Failed:
		in.Records = model.CloneRecords(st.Candidates)
	}
	return in, len(in.Records) > 0
}

func invalidTransition(op string, st State) error {
	return fmt.Errorf("%w: cannot %s from %s", common.ErrInvalidTransition, op, st.Name())
}

// toUserError converts a collaborator failure into a UserError of one of the
// workflow error kinds.
func toUserError(stage Stage, err error) error {
	switch common.KindOf(err) {
	case common.KindQuotaExceeded:
		return common.NewUserError(msgQuotaExceeded, err)
	case common.KindServiceOverloaded:
		return common.NewUserError(msgOverloaded, err)
	case common.KindInputInvalid:
		return common.NewUserError(msgReadFile, err)
	}

	if !errors.Is(err, common.ErrInferenceFailed) {
		err = fmt.Errorf("%w: %w", common.ErrInferenceFailed, err)
	}
	if stage == StageRefine {
		return common.NewUserError(msgRefineFailed, err)
	}
	return common.NewUserError(msgPredictFailed, err)
}

func cloneState(st State) State {
	switch v := st.(type) {
	case CandidatesReady:
		v.Candidates = model.CloneRecords(v.Candidates)
		return v
	case AwaitingClarification:
		v.Candidates = model.CloneRecords(v.Candidates)
		v.Clarification = v.Clarification.Clone()
		return v
	case Refining:
		v.Candidates = model.CloneRecords(v.Candidates)
		v.Clarification = v.Clarification.Clone()
		return v
	case Refined:
		v.Candidates = model.CloneRecords(v.Candidates)
		v.Clarification = v.Clarification.Clone()
		return v
	case Failed:
		v.Candidates = model.CloneRecords(v.Candidates)
		if v.Clarification != nil {
			clar := v.Clarification.Clone()
			v.Clarification = &clar
		}
		return v
	default:
		return st
	}
}
