package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"llm_api/logger"
)

// GeminiCompletionService implements [completion.Service] against the
// Gemini generateContent REST API.
type GeminiCompletionService struct {
	client   *http.Client
	endpoint string
	model    string
	apiKey   string
}

func New(endpoint string, model string, apiKey string) *GeminiCompletionService {
	return &GeminiCompletionService{
		client:   &http.Client{Timeout: time.Second * 30},
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
	}
}

// Generate implements [completion.Service]. It performs a single
// non-streaming generateContent call and returns the candidate text.
func (s *GeminiCompletionService) Generate(ctx context.Context, prompt string) (string, error) {
	upstreamReq, err := s.buildUpstreamRequest(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("fail to build upstream request: %w", err)
	}

	resp, err := s.client.Do(upstreamReq)
	if err != nil {
		return "", fmt.Errorf("fail to call upstream api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upstream api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp GenerateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("fail to unmarshal upstream response: %w", err)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("upstream api error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("upstream api returned no candidates")
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func (s *GeminiCompletionService) buildUpstreamRequest(ctx context.Context, prompt string) (*http.Request, error) {
	genReq := GenerateContentRequest{
		Contents: []Content{
			{
				Parts: []Part{{Text: prompt}},
			},
		},
	}

	reqBodyBytes, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("fail to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.endpoint, s.model)
	logger.Debug("sending to gemini %s: %s", url, string(reqBodyBytes))

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fail to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	return req, nil
}
