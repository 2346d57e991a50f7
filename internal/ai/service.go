// Package ai implements the LLM-backed resume operations: summary and
// bullet enhancement, and tailoring the default profile to a job posting.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/llm"
	"github.com/jonathan/flower-resume/internal/logging"
	"github.com/jonathan/flower-resume/internal/prompts"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/schemas"
	"github.com/jonathan/flower-resume/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Operation names used in logs and errors.
const (
	OpEnhanceSummary    = "enhance-summary"
	OpEnhanceExperience = "enhance-experience"
	OpTailorResume      = "tailor-resume"
)

// DefaultConcurrency bounds parallel LLM calls for one request.
const DefaultConcurrency = 4

// JobFetcher retrieves posting text from a URL.
type JobFetcher interface {
	JobDescription(ctx context.Context, url string) (string, error)
}

// Config tunes the service.
type Config struct {
	MaxAttempts int
	Concurrency int
	Timeout     time.Duration
}

// Service runs AI operations and writes their results into documents.
type Service struct {
	llm     llm.Client
	docs    *resumes.Service
	fetcher JobFetcher
	cfg     Config
	logger  *zap.Logger
}

// NewService creates a Service. fetcher may be nil, in which case
// FetchJobDescription is unavailable.
func NewService(client llm.Client, docs *resumes.Service, fetcher JobFetcher, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	logger = logging.OrNop(logger)
	return &Service{llm: client, docs: docs, fetcher: fetcher, cfg: cfg, logger: logger}
}

// generate renders a prompt, calls the model and decodes the reply into out.
// Replies that fail schema validation or decoding are retried up to
// MaxAttempts; provider failures are returned immediately.
func (s *Service) generate(ctx context.Context, op string, tier llm.ModelTier, schema string, data map[string]string, out any) error {
	prompt, err := prompts.Render(op, data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	model := s.llm.GetModel(tier)
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		start := time.Now()
		raw, err := s.llm.GenerateJSON(ctx, prompt, tier)
		latency := time.Since(start)
		if err != nil {
			s.logger.Error("llm request failed",
				zap.String("operation", op),
				zap.String("model", model),
				zap.Int("attempt", attempt),
				zap.Duration("latency", latency),
				zap.Error(err),
			)
			return &ProviderError{Operation: op, Model: model, Cause: err}
		}

		reply := llm.CleanJSONBlock(raw)
		if err := schemas.Validate(schema, reply); err != nil {
			lastErr = err
		} else if err := json.Unmarshal([]byte(reply), out); err != nil {
			lastErr = fmt.Errorf("failed to decode reply: %w", err)
		} else {
			s.logger.Info("llm request completed",
				zap.String("operation", op),
				zap.String("model", model),
				zap.Int("attempt", attempt),
				zap.Duration("latency", latency),
			)
			return nil
		}

		s.logger.Warn("llm reply rejected",
			zap.String("operation", op),
			zap.String("model", model),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}
	return &OutputError{Operation: op, Attempts: s.cfg.MaxAttempts, Cause: lastErr}
}

func (s *Service) loadTarget(ctx context.Context, userID uuid.UUID, target types.Target, rawResumeID string) (*resumes.Document, error) {
	resumeID := uuid.Nil
	if target == types.TargetResume {
		id, err := resumes.ParseResumeID(rawResumeID)
		if err != nil {
			return nil, err
		}
		resumeID = id
	}
	return s.docs.LoadDocument(ctx, userID, target, resumeID)
}

type summaryReply struct {
	Summary string `json:"summary"`
}

// EnhanceSummary rewrites the summary of the target document.
func (s *Service) EnhanceSummary(ctx context.Context, userID uuid.UUID, req *types.EnhanceSummaryRequest) (*types.EnhanceSummaryResponse, error) {
	doc, err := s.loadTarget(ctx, userID, req.Target, req.ResumeID)
	if err != nil {
		return nil, err
	}
	content := doc.Content()

	var reply summaryReply
	err = s.generate(ctx, OpEnhanceSummary, llm.TierStandard, schemas.SummaryReply, map[string]string{
		"PersonalInfo":   formatPersonalInfo(content.PersonalInfo),
		"Summary":        orNone(content.Summary),
		"Experience":     formatExperience(content.Experience),
		"Skills":         formatSkills(content.Skills),
		"JobDescription": jobDescription(req.JobDescription),
	}, &reply)
	if err != nil {
		return nil, err
	}

	content.Summary = reply.Summary
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	return &types.EnhanceSummaryResponse{Summary: reply.Summary}, nil
}

type experienceReply struct {
	Description string `json:"description"`
}

func (s *Service) enhanceEntry(ctx context.Context, e types.Experience, jd string) (string, error) {
	var reply experienceReply
	err := s.generate(ctx, OpEnhanceExperience, llm.TierStandard, schemas.ExperienceReply, map[string]string{
		"JobTitle":       orNone(e.JobTitle),
		"Company":        orNone(e.Company),
		"Dates":          orNone(formatDates(e)),
		"Description":    orNone(e.Description),
		"JobDescription": jobDescription(jd),
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Description, nil
}

// EnhanceExperience rewrites the description of one experience entry,
// addressed by its ID, in the target document.
func (s *Service) EnhanceExperience(ctx context.Context, userID uuid.UUID, req *types.EnhanceExperienceRequest) (*types.EnhanceExperienceResponse, error) {
	doc, err := s.loadTarget(ctx, userID, req.Target, req.ResumeID)
	if err != nil {
		return nil, err
	}
	content := doc.Content()

	idx := content.FindExperience(req.ExperienceID)
	if idx < 0 {
		return nil, &resumes.ErrNotFound{Resource: "experience", ID: req.ExperienceID}
	}

	description, err := s.enhanceEntry(ctx, content.Experience[idx], req.JobDescription)
	if err != nil {
		return nil, err
	}

	content.Experience[idx].Description = description
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}
	return &types.EnhanceExperienceResponse{Experience: content.Experience[idx]}, nil
}

// EnhanceAllExperience rewrites every experience entry of a resume
// concurrently and saves the resume once. Nothing is saved if any entry fails.
func (s *Service) EnhanceAllExperience(ctx context.Context, userID, resumeID uuid.UUID, req *types.EnhanceAllRequest) (*types.Resume, error) {
	r, err := s.docs.Get(ctx, userID, resumeID)
	if err != nil {
		return nil, err
	}
	if len(r.Content.Experience) == 0 {
		return r, nil
	}

	descriptions := make([]string, len(r.Content.Experience))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, entry := range r.Content.Experience {
		g.Go(func() error {
			d, err := s.enhanceEntry(gctx, entry, req.JobDescription)
			if err != nil {
				return err
			}
			descriptions[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range r.Content.Experience {
		r.Content.Experience[i].Description = descriptions[i]
	}
	if err := s.docs.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Tailor builds a new resume from the user's default profile, selected and
// reworded for a job description.
func (s *Service) Tailor(ctx context.Context, userID uuid.UUID, req *types.TailorRequest) (*types.Resume, error) {
	if req.Template != "" && !req.Template.Valid() {
		return nil, &resumes.ErrValidation{Field: "template", Message: fmt.Sprintf("unknown template %q", req.Template)}
	}

	profile, err := s.docs.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil || (len(profile.Content.Experience) == 0 && profile.Content.Summary == "") {
		return nil, &resumes.ErrValidation{Field: "profile", Message: "add experience or a summary to your profile before tailoring"}
	}

	profileJSON, err := json.MarshalIndent(profile.Content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	var tailored types.ResumeContent
	err = s.generate(ctx, OpTailorResume, llm.TierAdvanced, schemas.ResumeContent, map[string]string{
		"Profile":        string(profileJSON),
		"JobDescription": jobDescription(req.JobDescription),
	}, &tailored)
	if err != nil {
		return nil, err
	}

	tailored.PersonalInfo = profile.Content.PersonalInfo
	return s.docs.CreateFromContent(ctx, userID, req.Title, req.Template, tailored)
}

// FetchJobDescription downloads a posting and returns its text.
func (s *Service) FetchJobDescription(ctx context.Context, req *types.FetchJobDescriptionRequest) (*types.FetchJobDescriptionResponse, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("job description fetching: %w", ErrUnavailable)
	}
	text, err := s.fetcher.JobDescription(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	return &types.FetchJobDescriptionResponse{
		URL:            req.URL,
		JobDescription: truncate(text, MaxJobDescriptionChars),
	}, nil
}
