package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"opensite/api/internal/config"
	"opensite/api/internal/model"
)

// ErrBadResponse wraps any assistant reply that cannot be parsed or fails
// schema validation. Callers can branch on it with errors.Is.
var ErrBadResponse = errors.New("assistant returned an unusable response")

// ErrAssistantDisabled is returned when no LLM backend is configured.
var ErrAssistantDisabled = errors.New("assistant is not configured")

// Generator produces a completion for a prompt. Implementations must honor
// the context deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatGenerator calls an OpenAI-compatible chat completions endpoint.
type ChatGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewChatGenerator creates a generator from config. Returns nil when no base
// URL is configured.
func NewChatGenerator(cfg *config.Config) *ChatGenerator {
	if cfg.LLMBaseURL == "" {
		return nil
	}
	return &ChatGenerator{
		baseURL: strings.TrimRight(cfg.LLMBaseURL, "/"),
		apiKey:  cfg.LLMAPIKey,
		model:   cfg.LLMModel,
		client:  &http.Client{Timeout: cfg.LLMTimeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt and returns the raw completion text.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant request failed with status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrBadResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

// CostEstimate is the assistant's structured answer to a cost question.
type CostEstimate struct {
	LowGBP     float64  `json:"low_gbp" validate:"gte=0"`
	HighGBP    float64  `json:"high_gbp" validate:"gtefield=LowGBP"`
	Assumption string   `json:"assumption" validate:"required"`
	LineItems  []string `json:"line_items" validate:"required,min=1"`
}

// IncidentAnalysis is the assistant's structured read of a safety incident.
type IncidentAnalysis struct {
	Severity       string   `json:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	RootCauses     []string `json:"root_causes" validate:"required,min=1"`
	Recommendation string   `json:"recommendation" validate:"required"`
}

// ProjectRisk is one entry in the assistant's risk list for a project.
type ProjectRisk struct {
	Title      string `json:"title" validate:"required"`
	Likelihood string `json:"likelihood" validate:"required,oneof=LOW MEDIUM HIGH"`
	Impact     string `json:"impact" validate:"required,oneof=LOW MEDIUM HIGH"`
	Mitigation string `json:"mitigation" validate:"required"`
}

// Assistant wraps a Generator with typed, validated prompts for the
// construction domain.
type Assistant struct {
	gen      Generator
	validate *validator.Validate
	lg       *zap.SugaredLogger
}

// NewAssistant creates an assistant. gen may be nil when no backend is
// configured; every call then returns ErrAssistantDisabled.
func NewAssistant(gen Generator, lg *zap.SugaredLogger) *Assistant {
	return &Assistant{
		gen:      gen,
		validate: validator.New(),
		lg:       lg,
	}
}

// Enabled reports whether a backend is configured.
func (a *Assistant) Enabled() bool {
	return a.gen != nil
}

// EstimateCost asks for a rough cost range for a described piece of work.
func (a *Assistant) EstimateCost(ctx context.Context, description string) (*CostEstimate, error) {
	prompt := fmt.Sprintf(`You are a construction quantity surveyor. Estimate a cost range in GBP for the following work. Respond with JSON only, no prose, matching:
{"low_gbp": number, "high_gbp": number, "assumption": string, "line_items": [string]}

Work: %s`, description)

	var est CostEstimate
	if err := a.ask(ctx, prompt, &est); err != nil {
		return nil, err
	}
	return &est, nil
}

// AnalyzeIncident asks for a structured read of a safety incident report.
func (a *Assistant) AnalyzeIncident(ctx context.Context, incident *model.SafetyIncident) (*IncidentAnalysis, error) {
	prompt := fmt.Sprintf(`You are a construction site safety officer. Analyze this incident. Respond with JSON only, no prose, matching:
{"severity": "LOW"|"MEDIUM"|"HIGH"|"CRITICAL", "root_causes": [string], "recommendation": string}

Reported severity: %s
Description: %s`, incident.Severity, incident.Description)

	var analysis IncidentAnalysis
	if err := a.ask(ctx, prompt, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ProjectRisks asks for the top risks for a project.
func (a *Assistant) ProjectRisks(ctx context.Context, project *model.Project) ([]ProjectRisk, error) {
	prompt := fmt.Sprintf(`You are a construction project risk analyst. List the top risks for this project. Respond with a JSON array only, no prose, of:
{"title": string, "likelihood": "LOW"|"MEDIUM"|"HIGH", "impact": "LOW"|"MEDIUM"|"HIGH", "mitigation": string}

Project: %s (status %s)
Description: %s`, project.Name, project.Status, project.Description)

	if a.gen == nil {
		return nil, ErrAssistantDisabled
	}
	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var risks []ProjectRisk
	if err := json.Unmarshal([]byte(extractJSON(raw)), &risks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(risks) == 0 {
		return nil, fmt.Errorf("%w: empty risk list", ErrBadResponse)
	}
	for i := range risks {
		if err := a.validate.Struct(&risks[i]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
	}
	return risks, nil
}

// ask runs the prompt and decodes the reply into out, validating the result.
func (a *Assistant) ask(ctx context.Context, prompt string, out any) error {
	if a.gen == nil {
		return ErrAssistantDisabled
	}
	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), out); err != nil {
		a.lg.Warnw("assistant reply failed to parse", "error", err)
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if err := a.validate.Struct(out); err != nil {
		a.lg.Warnw("assistant reply failed validation", "error", err)
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// extractJSON strips markdown code fences that chat models wrap JSON in.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// MockGenerator returns canned replies, keyed by a substring of the prompt.
// Used in tests and local runs without an LLM backend.
type MockGenerator struct {
	Replies map[string]string
	// Default is returned when no key matches.
	Default string
	// Err, if set, is returned for every call.
	Err error
}

// Generate returns the first reply whose key appears in the prompt.
func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	for key, reply := range m.Replies {
		if strings.Contains(prompt, key) {
			return reply, nil
		}
	}
	return m.Default, nil
}
