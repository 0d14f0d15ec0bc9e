package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrTimeout means the model did not answer within the client timeout.
	ErrTimeout = errors.New("llm request timed out")
	// ErrUnavailable means the model host could not be reached.
	ErrUnavailable = errors.New("llm host unreachable")
)

// Fixed answers used when a 200 response cannot be decoded.
const (
	EmptyResponseAnswer   = "Failed to generate response from the model."
	UnparsableAnswer      = "Error processing model response."
	defaultRequestTimeout = 10 * time.Minute
)

// StatusError reports a non-200 answer from the generate endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm returned status %d", e.Code)
}

// OllamaOptions are the sampling settings sent with every request.
type OllamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

// Ollama calls a local Ollama server's /api/generate endpoint.
type Ollama struct {
	baseURL string
	model   string
	options OllamaOptions
	client  *http.Client
	logger  *zap.Logger
}

type generateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options OllamaOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func NewOllama(baseURL, model string, options OllamaOptions, timeout time.Duration, logger *zap.Logger) *Ollama {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		options: options,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (o *Ollama) ModelName() string {
	return o.model
}

// Ping sends HEAD to the server root.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, o.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return classify(err)
	}
	resp.Body.Close()
	o.logger.Info("ollama ping", zap.Int("status", resp.StatusCode))
	return nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	data, err := json.Marshal(generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  false,
		Options: o.options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := o.baseURL + "/api/generate"
	o.logger.Info("calling ollama", zap.String("url", endpoint), zap.String("model", o.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(err)
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Error("error calling LLM API",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return ParseGenerateResponse(body, o.logger), nil
}

// ParseGenerateResponse extracts the answer from a generate reply. A body
// that is not one JSON document is retried as its first line, which covers
// servers that stream newline-delimited objects despite stream=false.
func ParseGenerateResponse(body []byte, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	var gr generateResponse
	err := json.Unmarshal(body, &gr)
	if err == nil {
		return gr.Response
	}
	logger.Error("error parsing JSON response", zap.Error(err))

	text := strings.TrimSpace(string(body))
	if text == "" {
		return EmptyResponseAnswer
	}
	first, _, _ := strings.Cut(text, "\n")
	if err := json.Unmarshal([]byte(first), &gr); err != nil {
		logger.Error("error extracting response from text", zap.Error(err))
		return UnparsableAnswer
	}
	return gr.Response
}

// classify maps transport failures onto ErrTimeout and ErrUnavailable.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
