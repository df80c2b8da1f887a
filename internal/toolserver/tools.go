package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/Veraticus/plate-audit/internal/audit"
	"github.com/Veraticus/plate-audit/internal/extract"
	"github.com/Veraticus/plate-audit/internal/model"
)

var errInvalidParams = errors.New("invalid parameters")

// AuditParams are the arguments of audit_meal_plan. Either Slots or
// TemplateID supplies the plan.
type AuditParams struct {
	Profile    *model.ClientProfile   `json:"profile,omitempty" description:"Inline client profile, skips the profile lookup"`
	Override   *model.ProfileOverride `json:"override,omitempty" description:"Manual corrections applied to the profile"`
	UserID     string                 `json:"user_id,omitempty" description:"Client user ID to fetch the profile for"`
	TemplateID string                 `json:"template_id,omitempty" description:"Diet template to audit when slots are not given"`
	Slots      []model.MealSlot       `json:"slots,omitempty" description:"Meal slots with title and html"`
}

// ExtractParams are the arguments of extract_dishes.
type ExtractParams struct {
	Slots []model.MealSlot `json:"slots" description:"Meal slots with title and html"`
}

// HighlightParams are the arguments of highlight_conflicts.
type HighlightParams struct {
	Slots     []model.MealSlot `json:"slots" description:"Meal slots with title and html"`
	Conflicts []model.Conflict `json:"conflicts" description:"Conflicts to mark in the slot markup"`
}

// extractParams converts the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// handleAudit runs a full audit. Audit failures are reported as an error
// result carrying the structured response, not as a transport error.
func (s *Server) handleAudit(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AuditParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.UserID == "" && params.Profile == nil {
		return nil, fmt.Errorf("%w: user_id or profile is required", errInvalidParams)
	}

	slots := params.Slots
	if len(slots) == 0 && params.TemplateID != "" {
		if s.templates == nil {
			return nil, fmt.Errorf("%w: template lookup is not configured", errInvalidParams)
		}
		tmpl, err := s.templates.FindTemplate(ctx, params.TemplateID)
		if err != nil {
			return createJSONResponse(audit.NewResponse(model.AuditResult{}, err), true)
		}
		slots = tmpl.Slots
	}

	result, err := s.auditor.Run(ctx, audit.Request{
		UserID:   params.UserID,
		Slots:    slots,
		Override: params.Override,
		Profile:  params.Profile,
	})
	return createJSONResponse(audit.NewResponse(result, err), err != nil)
}

type extractResult struct {
	Dishes []model.DishEntry `json:"dishes"`
	Names  []string          `json:"unique_names"`
}

func (s *Server) handleExtract(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ExtractParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	entries := extract.Slots(params.Slots)
	if entries == nil {
		entries = []model.DishEntry{}
	}
	return createJSONResponse(extractResult{
		Dishes: entries,
		Names:  extract.UniqueNames(entries),
	}, false)
}

type highlightResult struct {
	Slots  []model.MealSlot `json:"slots"`
	Traces []model.Trace    `json:"traces"`
}

func (s *Server) handleHighlight(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params HighlightParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	for _, c := range params.Conflicts {
		if !c.Type.IsValid() {
			return nil, fmt.Errorf("%w: unknown conflict type %q", errInvalidParams, c.Type)
		}
	}

	slots, traces := s.injector.Apply(params.Slots, params.Conflicts)
	if slots == nil {
		slots = []model.MealSlot{}
	}
	if traces == nil {
		traces = []model.Trace{}
	}
	return createJSONResponse(highlightResult{Slots: slots, Traces: traces}, false)
}
