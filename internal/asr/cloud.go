package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"subweave/internal/config"
	"subweave/internal/hotwords"
	langpkg "subweave/internal/language"
	"subweave/internal/segmenter"
	"subweave/internal/services"
)

const defaultCloudTimeout = 60 * time.Second

// vadMaxSentenceSilenceMS widens the vendor's sentence-break silence window
// (default 800ms) when VAD-driven sentencing is requested.
const vadMaxSentenceSilenceMS = 1300

// CloudBackend talks to a hosted recognition vendor. It implements
// Recognizer (realtime chunks), OfflineBackend (async jobs), and
// VocabularyManager (hotword registration).
type CloudBackend struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewCloudBackend builds a vendor client from the ASR config.
func NewCloudBackend(cfg config.ASR) (*CloudBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "asr_call", "cloud backend", "asr.api_key is required", nil)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "asr_call", "cloud backend", "asr.base_url is required", nil)
	}
	timeout := defaultCloudTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &CloudBackend{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// WithHTTPClient overrides the default HTTP client (for testing).
func (c *CloudBackend) WithHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// Name identifies the backend in logs and failure records.
func (c *CloudBackend) Name() string { return "cloud" }

// vendorSentence is the wire form of one recognized sentence.
type vendorSentence struct {
	Text      string `json:"text"`
	BeginTime int64  `json:"begin_time"`
	EndTime   int64  `json:"end_time"`
	Words     []struct {
		Text      string `json:"text"`
		BeginTime int64  `json:"begin_time"`
		EndTime   int64  `json:"end_time"`
	} `json:"words"`
}

// envelope is the vendor response wrapper. A non-zero code is a failure
// even on HTTP 200.
type envelope struct {
	Code      int              `json:"code"`
	Message   string           `json:"message"`
	TaskID    string           `json:"task_id"`
	Status    string           `json:"status"`
	Sentences []vendorSentence `json:"sentences"`
	ResultURL string           `json:"result_url"`
	VocabID   string           `json:"vocabulary_id"`
}

// Recognize sends one WAV chunk to the streaming-recognition endpoint.
func (c *CloudBackend) Recognize(ctx context.Context, wavPath string, opts Options) ([]segmenter.Sentence, error) {
	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read chunk: %w", err)
	}
	endpoint := c.baseURL + "/v1/recognition/realtime?" + c.recognitionQuery(opts).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("build realtime request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")

	env, err := c.do(req, "realtime")
	if err != nil {
		return nil, err
	}
	return fromVendorSentences(env.Sentences), nil
}

// Submit starts an offline transcription job for a published audio URL.
func (c *CloudBackend) Submit(ctx context.Context, audioURL string, opts Options) (string, error) {
	payload := map[string]any{
		"file_url": audioURL,
		"model":    c.model,
	}
	if lang := langpkg.ToISO2(opts.Language); lang != "" && opts.Language != langpkg.Auto {
		payload["language"] = lang
	}
	if opts.VocabularyID != "" {
		payload["vocabulary_id"] = opts.VocabularyID
	} else if len(opts.Hotwords) > 0 {
		payload["hotwords"] = hotwordPayload(opts.Hotwords)
	}
	env, err := c.postJSON(ctx, "/v1/recognition/offline", payload, "submit")
	if err != nil {
		return "", err
	}
	if env.TaskID == "" {
		return "", services.Wrap(services.ErrExternalTool, "asr_call", "submit", "vendor returned no task id", nil)
	}
	return env.TaskID, nil
}

// Fetch polls an offline job. A done result carries sentences inline or at
// a result URL.
func (c *CloudBackend) Fetch(ctx context.Context, jobID string) (*OfflineResult, error) {
	endpoint := c.baseURL + "/v1/recognition/offline/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	env, err := c.do(req, "poll")
	if err != nil {
		return nil, err
	}
	switch env.Status {
	case "succeeded":
		sentences := env.Sentences
		if len(sentences) == 0 && env.ResultURL != "" {
			sentences, err = c.fetchResult(ctx, env.ResultURL)
			if err != nil {
				return nil, err
			}
		}
		return &OfflineResult{Done: true, Sentences: fromVendorSentences(sentences)}, nil
	case "failed":
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", "poll",
			fmt.Sprintf("offline job %s failed: %s", jobID, env.Message), nil)
	default:
		return &OfflineResult{Done: false}, nil
	}
}

// CreateVocabulary registers a hotword list and returns the vendor id.
func (c *CloudBackend) CreateVocabulary(ctx context.Context, items []hotwords.Entry, targetModel string) (string, error) {
	if targetModel == "" {
		targetModel = c.model
	}
	payload := map[string]any{
		"items":        hotwordPayload(items),
		"target_model": targetModel,
	}
	env, err := c.postJSON(ctx, "/v1/vocabularies", payload, "create vocabulary")
	if err != nil {
		return "", err
	}
	if env.VocabID == "" {
		return "", services.Wrap(services.ErrExternalTool, "asr_call", "create vocabulary", "vendor returned no vocabulary id", nil)
	}
	return env.VocabID, nil
}

// DeleteVocabulary removes a registered hotword list.
func (c *CloudBackend) DeleteVocabulary(ctx context.Context, id string) error {
	endpoint := c.baseURL + "/v1/vocabularies/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	_, err = c.do(req, "delete vocabulary")
	return err
}

func (c *CloudBackend) recognitionQuery(opts Options) url.Values {
	values := url.Values{}
	if c.model != "" {
		values.Set("model", c.model)
	}
	if lang := langpkg.ToISO2(opts.Language); lang != "" && opts.Language != langpkg.Auto {
		values.Set("language", lang)
	}
	if opts.SampleRate > 0 {
		values.Set("sample_rate", fmt.Sprintf("%d", opts.SampleRate))
	}
	if opts.VocabularyID != "" {
		values.Set("vocabulary_id", opts.VocabularyID)
	}
	if opts.VADSentencing {
		values.Set("semantic_punctuation_enabled", "false")
		values.Set("max_sentence_silence", fmt.Sprintf("%d", vadMaxSentenceSilenceMS))
		values.Set("multi_threshold_mode_enabled", "true")
	}
	return values
}

func (c *CloudBackend) postJSON(ctx context.Context, path string, payload any, op string) (*envelope, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op)
}

func (c *CloudBackend) do(req *http.Request, op string) (*envelope, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "asr_call", op, "vendor request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "asr_call", op, "read vendor response", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, services.Wrap(services.ErrTransient, "asr_call", op,
			fmt.Sprintf("vendor http %d: %s", resp.StatusCode, firstLine(body)), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", op,
			fmt.Sprintf("vendor http %d: %s", resp.StatusCode, firstLine(body)), nil)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", op, "unparseable vendor response", err)
	}
	if env.Code != 0 {
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", op,
			fmt.Sprintf("vendor error %d: %s", env.Code, env.Message), nil)
	}
	return &env, nil
}

func (c *CloudBackend) fetchResult(ctx context.Context, resultURL string) ([]vendorSentence, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build result request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "asr_call", "fetch result", "result download failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "asr_call", "fetch result",
			fmt.Sprintf("result http %d", resp.StatusCode), nil)
	}
	var payload struct {
		Sentences []vendorSentence `json:"sentences"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr_call", "fetch result", "unparseable result payload", err)
	}
	return payload.Sentences, nil
}

func fromVendorSentences(in []vendorSentence) []segmenter.Sentence {
	out := make([]segmenter.Sentence, 0, len(in))
	for _, vs := range in {
		text := strings.TrimSpace(vs.Text)
		if text == "" {
			continue
		}
		sentence := segmenter.Sentence{StartMS: vs.BeginTime, EndMS: vs.EndTime, Text: text}
		for _, w := range vs.Words {
			word := strings.TrimSpace(w.Text)
			if word == "" {
				continue
			}
			sentence.Words = append(sentence.Words, segmenter.Word{
				StartMS: w.BeginTime,
				EndMS:   w.EndTime,
				Text:    word,
			})
		}
		out = append(out, sentence)
	}
	return out
}

func hotwordPayload(entries []hotwords.Entry) []map[string]any {
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		items = append(items, map[string]any{"text": entry.Text, "weight": entry.Weight})
	}
	return items
}

func firstLine(body []byte) string {
	text := strings.TrimSpace(string(body))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	const limit = 200
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
