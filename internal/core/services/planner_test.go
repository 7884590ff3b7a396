package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

func TestPlannerParsesJSONReply(t *testing.T) {
	chat := newFakeChat(`{"plan": "1. Size the market\n2. Identify buyers", "queries": ["cybersecurity market France", "French cybersecurity vendors"]}`)
	planner := NewStrategyPlanner(chat, logger.NewNop())

	plan, err := planner.Plan(context.Background(), "Marché de la cybersécurité en France")
	require.NoError(t, err)

	assert.Equal(t, "1. Size the market\n2. Identify buyers", plan.StrategyText)
	assert.Equal(t, []string{"cybersecurity market France", "French cybersecurity vendors"}, plan.SearchQueries)
}

func TestPlannerStripsCodeFence(t *testing.T) {
	chat := newFakeChat("```json\n{\"plan\": \"outline\", \"queries\": [\"q1\"]}\n```")
	planner := NewStrategyPlanner(chat, logger.NewNop())

	plan, err := planner.Plan(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, "outline", plan.StrategyText)
	assert.Equal(t, []string{"q1"}, plan.SearchQueries)
}

func TestPlannerCapsJSONQueriesAtTwo(t *testing.T) {
	chat := newFakeChat(`{"plan": "p", "queries": ["a", "b", "c", "d"]}`)
	planner := NewStrategyPlanner(chat, logger.NewNop())

	plan, err := planner.Plan(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, plan.SearchQueries)
}

func TestPlannerFallsBackToSearchMarkers(t *testing.T) {
	chat := newFakeChat("1. Research the market\n2. Find players\nSEARCH: cybersecurity market France\nSEARCH: French SMB security spend\nSEARCH: extra query ignored")
	planner := NewStrategyPlanner(chat, logger.NewNop())

	plan, err := planner.Plan(context.Background(), "Marché de la cybersécurité en France")
	require.NoError(t, err)

	// Three marked lines, only the first two kept
	assert.Equal(t, []string{"cybersecurity market France", "French SMB security spend"}, plan.SearchQueries)
	assert.Equal(t, "1. Research the market\n2. Find players", plan.StrategyText)
}

func TestPlannerMarkerAnywhereInLine(t *testing.T) {
	chat := newFakeChat("plan text\n- SEARCH:   padded query  ")
	planner := NewStrategyPlanner(chat, logger.NewNop())

	plan, err := planner.Plan(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, []string{"padded query"}, plan.SearchQueries)
}

func TestPlannerZeroQueriesIsSoft(t *testing.T) {
	chat := newFakeChat("just a plan with no searches suggested")
	planner := NewStrategyPlanner(chat, logger.NewNop())

	plan, err := planner.Plan(context.Background(), "query")
	require.NoError(t, err)

	assert.Empty(t, plan.SearchQueries)
	assert.Equal(t, "just a plan with no searches suggested", plan.StrategyText)
}

func TestPlannerUnconfiguredBackend(t *testing.T) {
	chat := &fakeChat{configured: false}
	planner := NewStrategyPlanner(chat, logger.NewNop())

	_, err := planner.Plan(context.Background(), "query")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	// Fails before any completion call is made
	assert.Equal(t, 0, chat.calls())
}

func TestPlannerBackendError(t *testing.T) {
	chat := newFakeChat("")
	chat.err = errors.New("upstream timeout")
	planner := NewStrategyPlanner(chat, logger.NewNop())

	_, err := planner.Plan(context.Background(), "query")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
}
