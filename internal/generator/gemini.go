package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rcliao/learnpath/internal/chat"
	"github.com/rcliao/learnpath/internal/logger"
	"github.com/rcliao/learnpath/internal/model"
)

// DefaultGeminiURL is the Generative Language API base.
const DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	baseURL      string
	apiKey       string
	model        string
	customSearch bool
	client       *http.Client
	log          *logger.Logger
}

// GeminiOption customizes a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL overrides the API base. Empty keeps the default.
func WithBaseURL(u string) GeminiOption {
	return func(c *GeminiClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithCustomSearch tells the client that URLs are filled in by a separate
// search step, so the model is asked for empty URLs and no grounding tool is
// attached.
func WithCustomSearch(on bool) GeminiOption {
	return func(c *GeminiClient) { c.customSearch = on }
}

// WithLogger sets the client logger.
func WithLogger(log *logger.Logger) GeminiOption {
	return func(c *GeminiClient) {
		if log != nil {
			c.log = log
		}
	}
}

// NewGeminiClient creates a client for model.
func NewGeminiClient(apiKey, model string, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		baseURL: DefaultGeminiURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Tools    []geminiTool    `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) generate(ctx context.Context, contents []geminiContent, grounded bool) (string, error) {
	reqBody := geminiRequest{Contents: contents}
	if grounded && !c.customSearch {
		reqBody.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrService, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: gemini request failed: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(b))
		var ge geminiError
		if json.Unmarshal(b, &ge) == nil && ge.Error.Message != "" {
			msg = ge.Error.Message
		}
		return "", fmt.Errorf("%w: gemini error %d: %s", ErrService, resp.StatusCode, msg)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrService, err)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrService)
	}
	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	c.log.Debug("gemini call", "model", c.model, "grounded", reqBody.Tools != nil, "elapsed_ms", time.Since(start).Milliseconds())
	return text.String(), nil
}

func userText(s string) []geminiContent {
	return []geminiContent{{Role: "user", Parts: []geminiPart{{Text: s}}}}
}

func (c *GeminiClient) GeneratePathways(ctx context.Context, profile model.UserProfile) ([]model.Pathway, error) {
	text, err := c.generate(ctx, userText(pathwaysPrompt(profile)), false)
	if err != nil {
		return nil, err
	}
	return decodePathways(text)
}

func (c *GeminiClient) GeneratePlan(ctx context.Context, profile model.UserProfile, pathwayTitles []string) (model.Plan, error) {
	text, err := c.generate(ctx, userText(planPrompt(profile, pathwayTitles, c.customSearch)), true)
	if err != nil {
		return model.Plan{}, err
	}
	return decodePlan(text)
}

func (c *GeminiClient) RevisePlan(ctx context.Context, plan model.Plan, profile model.UserProfile, feedback string) (model.Plan, error) {
	text, err := c.generate(ctx, userText(revisePrompt(plan, profile, feedback, c.customSearch)), true)
	if err != nil {
		return model.Plan{}, err
	}
	return decodePlan(text)
}

// Chat answers message in the context of the conversation so far. History
// before the first user message is dropped and the plan, when given, is
// prepended to the first user turn.
func (c *GeminiClient) Chat(ctx context.Context, history []chat.Message, message string, planContext *model.Plan) (string, error) {
	return c.generate(ctx, chatContents(history, message, planContext), false)
}

func chatContents(history []chat.Message, message string, planContext *model.Plan) []geminiContent {
	valid := chat.SinceFirstUser(history)
	contents := make([]geminiContent, 0, len(valid)+1)
	for _, m := range valid {
		role := "model"
		if m.Role == chat.RoleUser {
			role = "user"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: message}}})
	if prefix := planContextPrefix(planContext); prefix != "" {
		contents[0].Parts[0].Text = prefix + contents[0].Parts[0].Text
	}
	return contents
}
