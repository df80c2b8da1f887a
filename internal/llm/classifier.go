package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

// Classifier asks a language model which dishes conflict with a client profile.
type Classifier struct {
	client  Client
	prompts *PromptBuilder
	logger  *slog.Logger
}

// NewClassifier wraps client with the audit prompts.
func NewClassifier(client Client, logger *slog.Logger) (*Classifier, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client", common.ErrMissingConfig)
	}

	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	return &Classifier{
		client:  client,
		prompts: prompts,
		logger:  common.LoggerOrDefault(logger),
	}, nil
}

// Classify returns the conflicts the model found among dishes. A reply that
// cannot be parsed, or that names an unknown conflict type, is an error.
func (c *Classifier) Classify(ctx context.Context, profile model.ClientProfile, dishes []model.EnrichedDish) ([]model.Conflict, error) {
	if len(dishes) == 0 {
		return []model.Conflict{}, nil
	}

	system, user, err := c.prompts.BuildAuditPrompts(profile, dishes)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompts: %w", err)
	}

	c.logger.Debug("classifying dishes",
		"dishes", len(dishes),
		"system_prompt", system,
		"user_prompt", user)

	reply, err := c.client.Analyze(ctx, user, system)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrClassificationFailed, err)
	}

	conflicts, err := parseConflicts(reply)
	if err != nil {
		c.logger.Error("unusable classifier reply",
			"error", err,
			"reply", reply)
		return nil, err
	}

	for _, conflict := range conflicts {
		c.logger.Info("conflict found",
			"dish", conflict.DishName,
			"ingredient", conflict.ConflictingIngredient,
			"type", conflict.Type,
			"reason", conflict.Reason)
	}

	return conflicts, nil
}
