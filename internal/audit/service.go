// Package audit runs the meal plan audit pipeline: extract dishes, fetch the
// client profile and ingredients, classify, then highlight conflicts in the
// original slot markup.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/extract"
	"github.com/Veraticus/plate-audit/internal/highlight"
	"github.com/Veraticus/plate-audit/internal/model"
)

// ProfileFetcher loads a client profile by user ID.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (model.ClientProfile, error)
}

// Enricher looks up likely ingredients for dish names. It never fails; names
// it cannot resolve are absent from the result.
type Enricher interface {
	Enrich(ctx context.Context, names []string) map[string][]string
}

// Classifier decides which dishes conflict with a profile.
type Classifier interface {
	Classify(ctx context.Context, profile model.ClientProfile, dishes []model.EnrichedDish) ([]model.Conflict, error)
}

// Request is one audit. Profile, when set, is used instead of fetching by
// UserID.
type Request struct {
	Profile  *model.ClientProfile
	Override *model.ProfileOverride
	UserID   string
	Slots    []model.MealSlot
}

// Service runs audits. It holds no per-audit state and is safe for concurrent use.
type Service struct {
	profiles   ProfileFetcher
	enricher   Enricher
	classifier Classifier
	injector   *highlight.Injector
	logger     *slog.Logger
	newID      func() string
}

// NewService wires the pipeline. enricher may be nil to skip ingredient lookup.
func NewService(profiles ProfileFetcher, enricher Enricher, classifier Classifier, logger *slog.Logger) *Service {
	logger = common.LoggerOrDefault(logger)
	return &Service{
		profiles:   profiles,
		enricher:   enricher,
		classifier: classifier,
		injector:   highlight.NewInjector(logger),
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Run audits the slots in req. Upstream, validation and classification
// failures abort the audit. Enrichment failures never do.
func (s *Service) Run(ctx context.Context, req Request) (model.AuditResult, error) {
	start := time.Now()
	result := model.AuditResult{
		AuditID:   s.newID(),
		Conflicts: []model.Conflict{},
		Slots:     model.CloneSlots(req.Slots),
	}
	if result.Slots == nil {
		result.Slots = []model.MealSlot{}
	}
	logger := s.logger.With("audit_id", result.AuditID)

	if len(req.Slots) == 0 {
		logger.Info("nothing to audit", "reason", common.ErrNoSlots)
		return result, nil
	}

	entries := extract.Slots(req.Slots)
	if len(entries) == 0 {
		logger.Info("nothing to audit", "reason", common.ErrNoDishes)
		return result, nil
	}
	names := extract.UniqueNames(entries)

	logger.Info("audit started",
		"slots", len(req.Slots),
		"dishes", len(entries),
		"unique_dishes", len(names))

	profile, ingredients, err := s.gather(ctx, req, names)
	if err != nil {
		return result, err
	}
	profile = req.Override.Apply(profile)

	dishes := make([]model.EnrichedDish, len(names))
	for i, name := range names {
		dishes[i] = model.EnrichedDish{Name: name, Ingredients: ingredients[name]}
	}

	if s.classifier == nil {
		return result, fmt.Errorf("%w: classifier", common.ErrMissingConfig)
	}
	conflicts, err := s.classifier.Classify(ctx, profile, dishes)
	if err != nil {
		return result, err
	}

	result.Conflicts = conflicts
	result.ConflictCount = len(conflicts)
	result.Slots, result.Traces = s.injector.Apply(req.Slots, conflicts)

	logger.Info("audit complete",
		"conflicts", result.ConflictCount,
		"highlighted", len(result.Traces),
		"duration", time.Since(start))

	return result, nil
}

// gather fetches the profile and the ingredients concurrently.
func (s *Service) gather(ctx context.Context, req Request, names []string) (model.ClientProfile, map[string][]string, error) {
	var (
		profile     model.ClientProfile
		ingredients map[string][]string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if req.Profile != nil {
			profile = *req.Profile
			return nil
		}
		if s.profiles == nil {
			return fmt.Errorf("%w: profile service", common.ErrMissingConfig)
		}
		p, err := s.profiles.FetchProfile(gctx, req.UserID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		if s.enricher != nil {
			ingredients = s.enricher.Enrich(gctx, names)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.ClientProfile{}, nil, err
	}
	return profile, ingredients, nil
}
