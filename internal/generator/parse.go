package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/learnpath/internal/model"
)

// stripFences removes markdown code fences the model sometimes adds around
// JSON.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func decodePlan(text string) (model.Plan, error) {
	var plan model.Plan
	if err := json.Unmarshal([]byte(stripFences(text)), &plan); err != nil {
		return model.Plan{}, fmt.Errorf("%w: decode plan: %v", ErrService, err)
	}
	if err := plan.Validate(); err != nil {
		return model.Plan{}, fmt.Errorf("%w: invalid plan: %v", ErrService, err)
	}
	return plan, nil
}

func decodePathways(text string) ([]model.Pathway, error) {
	var pathways []model.Pathway
	if err := json.Unmarshal([]byte(stripFences(text)), &pathways); err != nil {
		return nil, fmt.Errorf("%w: decode pathways: %v", ErrService, err)
	}
	if err := model.ValidatePathways(pathways); err != nil {
		return nil, fmt.Errorf("%w: invalid pathways: %v", ErrService, err)
	}
	return pathways, nil
}
