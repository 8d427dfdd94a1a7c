package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/asynkron/tpo/internal/config"
)

const (
	// FreeEndpoint serves API keys ending in ":fx".
	FreeEndpoint = "https://api-free.deepl.com"
	// ProEndpoint serves paid API keys.
	ProEndpoint = "https://api.deepl.com"

	// maxTextsPerRequest is the DeepL limit on texts in one call.
	maxTextsPerRequest = 50
)

// ErrMissingAPIKey is returned when no DeepL key is configured.
var ErrMissingAPIKey = errors.New("missing DEEPL_API_KEY")

// DeepL is a Provider backed by the DeepL v2 REST API.
type DeepL struct {
	client   *retryablehttp.Client
	endpoint string
	apiKey   string
}

// NewDeepL creates a DeepL provider. Transient failures (429, 5xx) are
// retried with backoff.
func NewDeepL(cfg config.DeepLConfig, log *slog.Logger) (*DeepL, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = ProEndpoint
		if strings.HasSuffix(cfg.APIKey, ":fx") {
			endpoint = FreeEndpoint
		}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil
	if log != nil {
		// *slog.Logger satisfies retryablehttp.LeveledLogger.
		client.Logger = log
	}

	return &DeepL{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   cfg.APIKey,
	}, nil
}

// Name implements Provider.
func (d *DeepL) Name() string {
	return "deepl"
}

type deeplRequest struct {
	Text               []string `json:"text"`
	SourceLang         string   `json:"source_lang,omitempty"`
	TargetLang         string   `json:"target_lang"`
	Formality          string   `json:"formality,omitempty"`
	TagHandling        string   `json:"tag_handling"`
	IgnoreTags         []string `json:"ignore_tags"`
	PreserveFormatting bool     `json:"preserve_formatting"`
}

type deeplTranslation struct {
	DetectedSourceLanguage string `json:"detected_source_language"`
	Text                   string `json:"text"`
}

type deeplResponse struct {
	Translations []deeplTranslation `json:"translations"`
}

type deeplError struct {
	Message string `json:"message"`
}

// TranslateBatch implements Provider. Texts are sent in chunks of at most
// fifty; any failing chunk fails the whole batch.
func (d *DeepL) TranslateBatch(ctx context.Context, texts []string, source, target string, opts Options) ([]string, error) {
	out := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += maxTextsPerRequest {
		end := min(start+maxTextsPerRequest, len(texts))
		chunk, err := d.translate(ctx, texts[start:end], source, target, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (d *DeepL) translate(ctx context.Context, texts []string, source, target string, opts Options) ([]string, error) {
	body := deeplRequest{
		Text:               texts,
		SourceLang:         source,
		TargetLang:         target,
		TagHandling:        "xml",
		IgnoreTags:         []string{KeepTag},
		PreserveFormatting: true,
	}
	if opts.Formality != "" && opts.Formality != "default" {
		body.Formality = opts.Formality
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"/v2/translate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepl request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading deepl response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr deeplError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("deepl: %s: %s", resp.Status, apiErr.Message)
		}
		return nil, fmt.Errorf("deepl: %s", resp.Status)
	}

	var parsed deeplResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decoding deepl response: %w", err)
	}
	if len(parsed.Translations) != len(texts) {
		return nil, fmt.Errorf("deepl returned %d translations for %d texts", len(parsed.Translations), len(texts))
	}

	out := make([]string, len(texts))
	for i, t := range parsed.Translations {
		out[i] = t.Text
	}
	return out, nil
}
