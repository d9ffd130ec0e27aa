package nutrition

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/internal/service/feeds"
)

// FeedSelection pairs a feed identifier with its dry-matter amount in the
// proposed diet.
type FeedSelection struct {
	FeedID     string  `json:"feed_id" binding:"required"`
	AmountKgDM float64 `json:"amount_kg_dm"`
}

// EvaluationRequest is the full inbound payload for one diet evaluation.
type EvaluationRequest struct {
	Animal models.AnimalRequest `json:"animal"`
	Diet   []FeedSelection      `json:"diet" binding:"required"`
}

// Evaluator runs the full pipeline: load feeds, compute requirements,
// aggregate supply, predict milk support. One forward pass, no shared state
// across invocations.
type Evaluator struct {
	loader *feeds.Loader
	calc   *Calculator
	logger *zap.Logger
}

// NewEvaluator wires an evaluator instance.
func NewEvaluator(loader *feeds.Loader, calc *Calculator, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{loader: loader, calc: calc, logger: logger}
}

// Evaluate computes the merged requirement, supply and milk-support result
// for one request. Errors from any stage propagate with the stage name
// wrapped in; no partial result is ever returned.
func (e *Evaluator) Evaluate(ctx context.Context, orgID string, req EvaluationRequest) (*models.EvaluationResponse, error) {
	if len(req.Diet) == 0 {
		return nil, &models.ValidationError{Field: "diet", Reason: "at least one feed must be selected"}
	}

	ids := make([]string, len(req.Diet))
	amounts := make([]float64, len(req.Diet))
	for i, sel := range req.Diet {
		if sel.FeedID == "" {
			return nil, &models.ValidationError{Field: "diet", Reason: "feed_id must not be empty"}
		}
		ids[i] = sel.FeedID
		amounts[i] = sel.AmountKgDM
	}

	profile := req.Animal.Profile()

	feedRecords, err := e.loader.LoadByOrder(ctx, orgID, ids)
	if err != nil {
		return nil, fmt.Errorf("feed loading: %w", err)
	}

	requirements, err := e.calc.Requirements(profile)
	if err != nil {
		return nil, fmt.Errorf("requirement calculation: %w", err)
	}

	supply, err := Supply(amounts, feedRecords, requirements)
	if err != nil {
		return nil, fmt.Errorf("supply calculation: %w", err)
	}

	evaluation := PredictMilkSupport(supply, requirements)

	e.logger.Info("diet evaluated",
		zap.String("org_id", orgID),
		zap.String("state", string(profile.State)),
		zap.Int("feeds", len(feedRecords)),
		zap.Float64("dmi_supplied", supply.DMIn),
		zap.String("limiting", evaluation.LimitingNutrient))

	resp := models.BuildResponse(requirements, supply, evaluation)
	return &resp, nil
}
