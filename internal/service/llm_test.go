package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"opensite/api/internal/model"
)

func testAssistant(gen Generator) *Assistant {
	return NewAssistant(gen, zap.NewNop().Sugar())
}

func TestEstimateCostParsesValidReply(t *testing.T) {
	gen := &MockGenerator{
		Default: `{"low_gbp": 12000, "high_gbp": 18000, "assumption": "standard groundwork rates", "line_items": ["excavation", "shuttering", "concrete"]}`,
	}
	a := testAssistant(gen)

	est, err := a.EstimateCost(context.Background(), "foundation slab, 40 square meters")
	require.NoError(t, err)
	assert.Equal(t, 12000.0, est.LowGBP)
	assert.Equal(t, 18000.0, est.HighGBP)
	assert.Len(t, est.LineItems, 3)
}

func TestEstimateCostStripsCodeFence(t *testing.T) {
	gen := &MockGenerator{
		Default: "```json\n{\"low_gbp\": 500, \"high_gbp\": 900, \"assumption\": \"day rate\", \"line_items\": [\"labour\"]}\n```",
	}
	a := testAssistant(gen)

	est, err := a.EstimateCost(context.Background(), "patch repair")
	require.NoError(t, err)
	assert.Equal(t, 500.0, est.LowGBP)
}

func TestMalformedReplyIsBadResponse(t *testing.T) {
	gen := &MockGenerator{Default: "Sure! The cost would be around twelve grand."}
	a := testAssistant(gen)

	_, err := a.EstimateCost(context.Background(), "foundation slab")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

// A reply that parses but violates the schema is still a bad response.
func TestSchemaViolationIsBadResponse(t *testing.T) {
	gen := &MockGenerator{
		Default: `{"low_gbp": 900, "high_gbp": 500, "assumption": "inverted range", "line_items": ["labour"]}`,
	}
	a := testAssistant(gen)

	_, err := a.EstimateCost(context.Background(), "patch repair")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestAnalyzeIncident(t *testing.T) {
	gen := &MockGenerator{
		Default: `{"severity": "HIGH", "root_causes": ["missing edge protection"], "recommendation": "install guardrails before resuming work at height"}`,
	}
	a := testAssistant(gen)

	analysis, err := a.AnalyzeIncident(context.Background(), &model.SafetyIncident{
		Severity:    model.SeverityHigh,
		Description: "operative slipped near an unguarded edge on level 3",
	})
	require.NoError(t, err)
	assert.Equal(t, "HIGH", analysis.Severity)
	require.Len(t, analysis.RootCauses, 1)
}

func TestProjectRisksRejectsUnknownLikelihood(t *testing.T) {
	gen := &MockGenerator{
		Default: `[{"title": "weather delay", "likelihood": "MAYBE", "impact": "HIGH", "mitigation": "buffer the schedule"}]`,
	}
	a := testAssistant(gen)

	_, err := a.ProjectRisks(context.Background(), &model.Project{Name: "Riverside Plaza", Status: model.ProjectActive})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestDisabledAssistant(t *testing.T) {
	a := testAssistant(nil)
	assert.False(t, a.Enabled())

	_, err := a.EstimateCost(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrAssistantDisabled)
}
