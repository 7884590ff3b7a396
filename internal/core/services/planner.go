package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealdesk/backend/internal/core/ports"
	"github.com/dealdesk/backend/internal/infrastructure/logger"
)

// maxSearchQueries bounds how many of the planner's suggested searches the
// gatherer will run, regardless of how many the model produces.
const maxSearchQueries = 2

const plannerSystemPrompt = `You are a research strategist for an M&A advisory firm.
Given a market-research request, reply with a JSON object and nothing else:
{"plan": "<short numbered research plan>", "queries": ["<web search query>", "<web search query>"]}
Suggest at most 3 focused web search queries.
If you cannot produce JSON, write the plan as plain text and put each suggested
search on its own line prefixed with SEARCH:`

// StrategyPlan is the planner's output: the research outline plus the web
// searches to run, already capped at maxSearchQueries.
type StrategyPlan struct {
	StrategyText  string
	SearchQueries []string
}

// StrategyPlanner turns a free-text query into a research plan using the
// fast chat backend.
type StrategyPlanner struct {
	chat ports.ChatCompleter
	log  *logger.Logger
}

func NewStrategyPlanner(chat ports.ChatCompleter, log *logger.Logger) *StrategyPlanner {
	return &StrategyPlanner{chat: chat, log: log}
}

func (p *StrategyPlanner) Plan(ctx context.Context, query string) (*StrategyPlan, error) {
	if !p.chat.Configured() {
		return nil, fmt.Errorf("planner: %w (fast)", ErrBackendUnavailable)
	}

	raw, err := p.chat.Complete(ctx, plannerSystemPrompt, query)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	plan := parsePlan(raw)
	p.log.Infow("research_plan_ready",
		"query", query,
		"search_queries", len(plan.SearchQueries),
		"strategy_chars", len(plan.StrategyText),
	)
	return plan, nil
}

// parsePlan prefers the structured JSON contract and falls back to scanning
// for SEARCH:-marked lines when the model did not honor it. Zero queries is
// not an error; the pipeline proceeds on strategy text alone.
func parsePlan(raw string) *StrategyPlan {
	if plan, ok := parseJSONPlan(raw); ok {
		return plan
	}
	return parseMarkedPlan(raw)
}

type jsonPlan struct {
	Plan    string   `json:"plan"`
	Queries []string `json:"queries"`
}

func parseJSONPlan(raw string) (*StrategyPlan, bool) {
	text := stripCodeFence(raw)

	var parsed jsonPlan
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false
	}
	if parsed.Plan == "" {
		return nil, false
	}

	plan := &StrategyPlan{StrategyText: strings.TrimSpace(parsed.Plan)}
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		plan.SearchQueries = append(plan.SearchQueries, q)
		if len(plan.SearchQueries) >= maxSearchQueries {
			break
		}
	}
	return plan, true
}

func parseMarkedPlan(raw string) *StrategyPlan {
	const marker = "SEARCH:"

	plan := &StrategyPlan{}
	var strategyLines []string
	for _, line := range strings.Split(raw, "\n") {
		if idx := strings.Index(line, marker); idx >= 0 {
			q := strings.TrimSpace(line[idx+len(marker):])
			if q != "" && len(plan.SearchQueries) < maxSearchQueries {
				plan.SearchQueries = append(plan.SearchQueries, q)
			}
			continue
		}
		strategyLines = append(strategyLines, line)
	}
	plan.StrategyText = strings.TrimSpace(strings.Join(strategyLines, "\n"))
	return plan
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
