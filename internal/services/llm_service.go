package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/logger"
	"github.com/emojilens/backend/internal/models"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"golang.org/x/crypto/blake2b"
)

const (
	maxTrackedCalls = 100
	callTypeAnalyze = "analyze"
)

// Key sources, in resolution order.
const (
	KeySourceRequest = "request"
	KeySourceServer  = "server"
	KeySourceProject = "project"
)

type LLMService struct {
	apiKey     string
	projectKey string
	model      string
	baseURL    string
	httpClient *http.Client
	normalizer *SentimentNormalizer
	apiCalls   []LLMAPICall
	callMutex  sync.RWMutex
}

// LLMAPICall is one tracked provider call. Keys are never stored, only their
// fingerprint.
type LLMAPICall struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	RequestID      string        `json:"requestId,omitempty"`
	Model          string        `json:"model"`
	CallType       string        `json:"callType"`
	KeySource      string        `json:"keySource"`
	KeyFingerprint string        `json:"keyFingerprint"`
	PromptLength   int           `json:"promptLength"`
	Status         int           `json:"status"`
	Duration       time.Duration `json:"duration"`
	ResponseLength int           `json:"responseLength"`
	Error          string        `json:"error,omitempty"`
}

// analysisPayload is the provider reply before validation. Pointer fields
// distinguish absent values from empty ones.
type analysisPayload struct {
	Summary    *string            `json:"summary"`
	Sentiment  *string            `json:"sentiment"`
	Highlights []highlightPayload `json:"highlights"`
}

type highlightPayload struct {
	Sentence *string `json:"sentence"`
	Emoji    *string `json:"emoji"`
}

func NewLLMService(cfg config.OpenAIConfig) *LLMService {
	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}

	return &LLMService{
		apiKey:     cfg.APIKey,
		projectKey: cfg.ProjectKey,
		model:      model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		normalizer: NewSentimentNormalizer(),
		apiCalls:   make([]LLMAPICall, 0),
	}
}

// Model returns the chat model used for analysis.
func (ls *LLMService) Model() string {
	return ls.model
}

// GetAPICalls returns all tracked LLM API calls
func (ls *LLMService) GetAPICalls() []LLMAPICall {
	ls.callMutex.RLock()
	defer ls.callMutex.RUnlock()

	calls := make([]LLMAPICall, len(ls.apiCalls))
	copy(calls, ls.apiCalls)
	return calls
}

// ClearAPICalls clears the API call history
func (ls *LLMService) ClearAPICalls() {
	ls.callMutex.Lock()
	defer ls.callMutex.Unlock()
	ls.apiCalls = make([]LLMAPICall, 0)
}

func (ls *LLMService) addAPICall(call LLMAPICall) {
	ls.callMutex.Lock()
	defer ls.callMutex.Unlock()

	if len(ls.apiCalls) >= maxTrackedCalls {
		ls.apiCalls = ls.apiCalls[1:]
	}
	ls.apiCalls = append(ls.apiCalls, call)
}

// resolveKey picks the request key, then the server key, then the project key.
func (ls *LLMService) resolveKey(requestKey string) (string, string, error) {
	if key := strings.TrimSpace(requestKey); key != "" {
		return key, KeySourceRequest, nil
	}
	if ls.apiKey != "" {
		return ls.apiKey, KeySourceServer, nil
	}
	if ls.projectKey != "" {
		return ls.projectKey, KeySourceProject, nil
	}
	return "", "", newAnalysisError(ErrKindConfig, "", ErrNoAPIKey)
}

// newClient builds a client bound to one key. SDK retries are disabled:
// callers own retry policy.
func (ls *LLMService) newClient(key string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(ls.httpClient),
		option.WithMaxRetries(0),
	}
	if ls.baseURL != "" {
		opts = append(opts, option.WithBaseURL(ls.baseURL))
	}
	return openai.NewClient(opts...)
}

// Analyze summarizes text and classifies its sentiment with one chat
// completion. requestKey, when non-empty, overrides the server keys.
func (ls *LLMService) Analyze(ctx context.Context, text, requestKey string) (*models.AnalysisResult, error) {
	requestID := logger.RequestIDFromContext(ctx)
	logEntry := logger.WithLLM(requestID, callTypeAnalyze)

	key, source, err := ls.resolveKey(requestKey)
	if err != nil {
		logEntry.Warn("No API key available, skipping provider call")
		return nil, err
	}

	call := LLMAPICall{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		RequestID:      requestID,
		Model:          ls.model,
		CallType:       callTypeAnalyze,
		KeySource:      source,
		KeyFingerprint: KeyFingerprint(key),
		PromptLength:   len(text),
	}

	logEntry.WithFields(map[string]interface{}{
		"model":           ls.model,
		"key_source":      source,
		"key_fingerprint": call.KeyFingerprint,
		"text_length":     len(text),
	}).Info("Making LLM analysis request")

	client := ls.newClient(key)
	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(ls.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ANALYSIS_SYSTEM_PROMPT),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(ANALYSIS_TEMPERATURE),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	call.Duration = time.Since(call.Timestamp)

	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			call.Status = apiErr.StatusCode
		}
		call.Error = err.Error()
		ls.addAPICall(call)
		logEntry.WithField("duration", call.Duration.String()).WithError(err).Error("LLM request failed")
		return nil, newAnalysisError(ErrKindProvider, "OpenAI request failed", err)
	}
	call.Status = http.StatusOK

	if len(completion.Choices) == 0 {
		call.Error = "no choices in completion"
		ls.addAPICall(call)
		return nil, newAnalysisError(ErrKindContent, "OpenAI returned no choices", nil)
	}

	content := completion.Choices[0].Message.Content
	call.ResponseLength = len(content)
	ls.addAPICall(call)

	logEntry.WithFields(map[string]interface{}{
		"duration":        call.Duration.String(),
		"response_length": call.ResponseLength,
		"finish_reason":   completion.Choices[0].FinishReason,
	}).Info("LLM request completed")

	result, err := parseAnalysis(content)
	if err != nil {
		logEntry.WithError(err).Warn("LLM response rejected")
		return nil, err
	}

	sentiment, usedFallback := ls.normalizer.Normalize(result.Sentiment, text)
	if usedFallback {
		logEntry.WithFields(map[string]interface{}{
			"provider_label": string(result.Sentiment),
			"fallback_label": string(sentiment),
		}).Warn("Provider sentiment outside allowed labels, using VADER")
	}
	result.Sentiment = sentiment

	return result, nil
}

// parseAnalysis decodes and validates the provider's JSON reply.
func parseAnalysis(content string) (*models.AnalysisResult, error) {
	if content == "" {
		content = "{}"
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, newAnalysisError(ErrKindContent, "failed to parse OpenAI response as JSON", err)
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, newAnalysisError(ErrKindSchema, "OpenAI response does not match the analysis schema", err)
	}

	return payload.toResult()
}

func (p analysisPayload) toResult() (*models.AnalysisResult, error) {
	missing := make(map[string]struct{})
	if p.Summary == nil {
		missing["summary"] = struct{}{}
	}
	if p.Sentiment == nil {
		missing["sentiment"] = struct{}{}
	}

	highlights := make([]models.Highlight, 0, len(p.Highlights))
	for _, h := range p.Highlights {
		if h.Sentence == nil {
			missing["highlights.sentence"] = struct{}{}
			continue
		}
		if h.Emoji == nil {
			missing["highlights.emoji"] = struct{}{}
			continue
		}
		highlights = append(highlights, models.Highlight{Sentence: *h.Sentence, Emoji: *h.Emoji})
	}

	if len(missing) > 0 {
		fields := make([]string, 0, len(missing))
		for field := range missing {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return nil, newAnalysisError(ErrKindSchema,
			"OpenAI response does not match the analysis schema: missing field(s) "+strings.Join(fields, ", "), nil)
	}

	return &models.AnalysisResult{
		Summary:    *p.Summary,
		Sentiment:  models.Sentiment(*p.Sentiment),
		Highlights: highlights,
	}, nil
}

// KeyFingerprint identifies a key in logs without revealing it.
func KeyFingerprint(key string) string {
	if key == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(key))
	return "b2:" + hex.EncodeToString(sum[:6])
}
