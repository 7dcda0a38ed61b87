package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// HecticTaskCount is the number of tasks at which a day counts as hectic.
	HecticTaskCount = 8
	// maxSentimentInput bounds how much text is sent for classification.
	maxSentimentInput = 500

	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"

	EmotionStressed = "Stressed"
	EmotionBalanced = "Balanced"

	MessageHectic   = "Day looks hectic. I’ve suggested some breaks below."
	MessageBalanced = "Your plan seems balanced. Here are some gentle wellness suggestions."

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIPlanner plans in-process: tasks are extracted from the text by
// pattern, while sentiment and wellness suggestions come from the LLM.
type OpenAIPlanner struct {
	client    openai.Client
	model     string
	limiter   *rate.Limiter
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIPlanner creates a planner backed by an OpenAI-compatible API.
func NewOpenAIPlanner(cfg BackendConfig) (*OpenAIPlanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	)

	return &OpenAIPlanner{
		client:    client,
		model:     model,
		limiter:   newLimiter(cfg.RatePerSecond),
		logger:    logger,
		debugMode: cfg.Debug,
	}, nil
}

// Plan extracts tasks, classifies sentiment and asks for break suggestions.
// Only a sentiment failure fails the plan; suggestions are best effort.
func (p *OpenAIPlanner) Plan(ctx context.Context, text string) (*PlanResponse, error) {
	drafts := ExtractTaskDrafts(text)

	sentiment, score, err := p.classifySentiment(ctx, text)
	if err != nil {
		return nil, err
	}

	hectic := len(drafts) >= HecticTaskCount
	emotion := EmotionBalanced
	if sentiment == SentimentNegative || hectic {
		emotion = EmotionStressed
	}
	message := MessageBalanced
	if hectic {
		message = MessageHectic
	}

	suggestions := p.suggestBreaks(ctx, drafts, emotion)

	if drafts == nil {
		drafts = []models.TaskDraft{}
	}
	return &PlanResponse{
		Tasks:           drafts,
		Suggestions:     suggestions,
		Sentiment:       sentiment,
		DetectedEmotion: emotion,
		Score:           &score,
		TaskCount:       len(drafts),
		Message:         message,
	}, nil
}

func (p *OpenAIPlanner) classifySentiment(ctx context.Context, text string) (string, float64, error) {
	if len(text) > maxSentimentInput {
		text = strings.ToValidUTF8(text[:maxSentimentInput], "")
	}
	content, err := p.complete(ctx, "classify_sentiment",
		"You are a sentiment classifier. Respond with valid JSON only.",
		buildSentimentPrompt(text),
		true,
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to classify sentiment: %w", err)
	}
	return parseSentimentResponse(content)
}

func buildSentimentPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Classify the overall sentiment of the following planning note as POSITIVE or NEGATIVE.\n")
	b.WriteString(`Respond with JSON: {"label": "POSITIVE" or "NEGATIVE", "score": confidence between 0 and 1}.`)
	b.WriteString("\n\nNote:\n")
	b.WriteString(text)
	return b.String()
}

func parseSentimentResponse(content string) (string, float64, error) {
	var out struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	raw := extractJSONObject(content)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", 0, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	label := strings.ToUpper(strings.TrimSpace(out.Label))
	switch label {
	case SentimentPositive, SentimentNegative:
	default:
		return "", 0, fmt.Errorf("unexpected sentiment label %q", out.Label)
	}
	if out.Score < 0 {
		out.Score = 0
	}
	if out.Score > 1 {
		out.Score = 1
	}
	return label, out.Score, nil
}

func (p *OpenAIPlanner) suggestBreaks(ctx context.Context, drafts []models.TaskDraft, emotion string) []models.TaskDraft {
	suggestions := []models.TaskDraft{}
	if len(drafts) == 0 {
		return suggestions
	}
	content, err := p.complete(ctx, "suggest_breaks", "", buildSuggestionPrompt(drafts, emotion), false)
	if err != nil {
		p.logger.Warn("wellness_suggestions_failed", zap.Error(err))
		return suggestions
	}
	parsed, err := parseSuggestions(content)
	if err != nil {
		p.logger.Warn("wellness_suggestions_unparseable",
			zap.Error(err),
			zap.String("response_preview", SanitizeResponse(content, false)),
		)
		return suggestions
	}
	return parsed
}

func buildSuggestionPrompt(drafts []models.TaskDraft, emotion string) string {
	var b strings.Builder
	b.WriteString("You are a mindful productivity assistant.\nThe user has this schedule:\n")
	for _, d := range drafts {
		end := d.End
		if end == "" {
			end = "?"
		}
		fmt.Fprintf(&b, "- %s (%s - %s)\n", d.Title, d.Start, end)
	}
	fmt.Fprintf(&b, "\nThe user's emotional state is: %s.\n\n", emotion)
	b.WriteString("Generate 3 short, time-specific wellness or rest activities that fit between tasks.\n")
	b.WriteString("Each suggestion must include:\n")
	b.WriteString(`- "title": short label (e.g., "Tea break", "Stretch", "Quick walk")` + "\n")
	b.WriteString(`- "start": start time (HH:MM 24h or 12h with am/pm)` + "\n")
	b.WriteString(`- "end": end time (HH:MM 24h or 12h with am/pm)` + "\n\n")
	b.WriteString("Respond only with a JSON array, no extra text.\n\nExample:\n")
	b.WriteString(`[{"title": "Stretch break", "start": "10:45", "end": "10:55"}]`)
	return b.String()
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

func parseSuggestions(content string) ([]models.TaskDraft, error) {
	block := jsonArrayPattern.FindString(content)
	if block == "" {
		return nil, errors.New("no JSON array in response")
	}
	var out []models.TaskDraft
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	kept := make([]models.TaskDraft, 0, len(out))
	for _, s := range out {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		kept = append(kept, s)
	}
	return kept, nil
}

// extractJSONObject trims any prose around the first {...} block.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		return content[start : end+1]
	}
	return content
}

func (p *OpenAIPlanner) complete(ctx context.Context, operation, system, prompt string, jsonObject bool) (string, error) {
	if err := waitLimiter(ctx, p.limiter); err != nil {
		return "", err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if jsonObject {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	requestID := ExtractRequestID(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}
