package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

// Field aliases seen across profile service versions.
var (
	allergyKeys  = []string{"allergies", "allergy_list", "allergy"}
	medicalKeys  = []string{"medical_issues", "medical_conditions", "medicalIssues", "conditions", "medical_history"}
	aversionKeys = []string{"aversions", "food_aversions", "foodAversions", "dislikes"}
	dietKeys     = []string{"eating_habit", "food_preference", "diet_preference", "foodPreference", "diet_type", "preference", "diet", "food_type"}
)

// FetchProfile fetches and maps the client profile for userID.
func (c *Client) FetchProfile(ctx context.Context, userID string) (model.ClientProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.ClientProfile{}, common.NewValidationError("userId", fmt.Errorf("user ID is required"))
	}
	if c.cfg.ClientURL == "" {
		return model.ClientProfile{}, fmt.Errorf("%w: upstream.client_url", common.ErrMissingConfig)
	}

	endpoint, err := url.Parse(c.cfg.ClientURL)
	if err != nil {
		return model.ClientProfile{}, fmt.Errorf("%w: upstream.client_url: %v", common.ErrInvalidConfig, err)
	}
	query := endpoint.Query()
	query.Set("user_id", userID)
	endpoint.RawQuery = query.Encode()

	var payload any
	if err := c.do(ctx, http.MethodGet, endpoint.String(), c.cfg.ClientSource, nil, &payload); err != nil {
		return model.ClientProfile{}, err
	}

	raw := unwrapClient(payload)
	if raw == nil {
		return model.ClientProfile{}, &common.UpstreamError{
			Endpoint:   endpoint.String(),
			StatusCode: http.StatusOK,
			Body:       truncate(asString(payload), maxErrorBody),
			Err:        common.ErrEmptyPayload,
		}
	}

	profile, err := mapProfile(raw, userID)
	if err != nil {
		return model.ClientProfile{}, err
	}

	c.logger.Debug("client profile fetched",
		"user_id", profile.UserID,
		"allergies", len(profile.Allergies),
		"medical_conditions", len(profile.MedicalConditions),
		"aversions", len(profile.FoodAversions),
		"diet", profile.DietPreference)

	return profile, nil
}

// unwrapClient digs the client object out of the service envelope. Weight
// and program details live beside client_details and are merged into it.
func unwrapClient(payload any) map[string]any {
	var raw any = payload

	switch t := payload.(type) {
	case []any:
		raw = nil
		if len(t) > 0 {
			raw = t[0]
		}
	case map[string]any:
		switch data := t["data"].(type) {
		case []any:
			raw = nil
			if len(data) > 0 {
				raw = data[0]
			}
		default:
			if truthy(data) {
				raw = data
			}
		}
	}

	obj := asObject(raw)
	if obj == nil {
		return nil
	}

	weight := asObject(obj["weight"])
	program := asObject(obj["program_details"])

	if client := asObject(obj["client"]); client != nil {
		obj = client
	}
	if details := asObject(obj["client_details"]); details != nil {
		merged := make(map[string]any, len(details)+len(weight)+len(program))
		for _, part := range []map[string]any{details, weight, program} {
			for k, v := range part {
				merged[k] = v
			}
		}
		obj = merged
	}
	if result := asObject(obj["result"]); result != nil {
		obj = result
	}

	return obj
}

func mapProfile(raw map[string]any, requestedID string) (model.ClientProfile, error) {
	fullName := strings.Fields(asString(raw["name"]))
	firstName := asString(firstValue(raw, "first_name", "firstName"))
	lastName := asString(firstValue(raw, "last_name", "lastName"))
	if firstName == "" && len(fullName) > 0 {
		firstName = fullName[0]
	}
	if lastName == "" && len(fullName) > 1 {
		lastName = strings.Join(fullName[1:], " ")
	}

	profile := model.ClientProfile{
		UserID:                asString(firstValue(raw, "user_id", "userId", "id")),
		FirstName:             firstName,
		LastName:              lastName,
		Email:                 asString(firstValue(raw, "email", "emailAddress")),
		MobileNumber:          asString(firstValue(raw, "mobile_number", "mobileNumber", "phone")),
		Age:                   int(asNumber(raw["age"])),
		Gender:                asString(raw["gender"]),
		DietPreference:        model.ParseDietPreference(asString(firstValue(raw, dietKeys...))),
		CurrentWeight:         asNumber(firstValue(raw, "current_weight", "currentWeight")),
		TargetWeight:          asNumber(firstValue(raw, "target_weight", "targetWeight", "weight_goal")),
		ProgramStartWeight:    asNumber(firstValue(raw, "program_start_weight", "programStartWeight")),
		AssessmentStartWeight: asNumber(firstValue(raw, "assessment_start_weight", "assessmentStartWeight")),
	}
	if profile.UserID == "" {
		profile.UserID = requestedID
	}
	if profile.Gender == "" {
		profile.Gender = "Unknown"
	}

	lists := []struct {
		dst   *[]string
		field string
		keys  []string
	}{
		{dst: &profile.Allergies, field: "allergies", keys: allergyKeys},
		{dst: &profile.MedicalConditions, field: "medical_conditions", keys: medicalKeys},
		{dst: &profile.FoodAversions, field: "food_aversions", keys: aversionKeys},
	}
	for _, l := range lists {
		values, err := parseList(firstValue(raw, l.keys...))
		if err != nil {
			return model.ClientProfile{}, common.NewValidationError(l.field, err)
		}
		*l.dst = values
	}

	return profile, nil
}
