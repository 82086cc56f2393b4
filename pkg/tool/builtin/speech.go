package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/baoman007/ai-weather-agent/pkg/tool"
)

// SpeechArgs is the argument shape of text_to_speech.
type SpeechArgs struct {
	Text  string `json:"text" jsonschema:"required,description=Text to synthesize"`
	Voice string `json:"voice,omitempty" jsonschema:"enum=zh,enum=en,enum=ja,description=Voice language; defaults to zh"`
}

// SpeechResult is the tool's result shape. AudioURL is a serving path, not
// inline audio bytes.
type SpeechResult struct {
	Success  bool   `json:"success"`
	AudioURL string `json:"audioUrl"`
	Text     string `json:"text"`
	Duration int    `json:"duration"` // rough estimate in seconds
}

var voiceMap = map[string]string{
	"zh": "zhixiaoboyun",
	"en": "anna",
	"ja": "xiaoyun",
}

type speechBackend struct {
	apiKey   string
	baseURL  string
	model    string
	audioDir string
	client   *http.Client
}

// NewSpeech builds the text_to_speech tool on the DashScope synthesis API.
// Audio is written under the audio directory and returned as a reference.
func NewSpeech(cfg Config) tool.Tool {
	b := &speechBackend{
		apiKey:   cfg.TTSAPIKey,
		baseURL:  cfg.TTSBaseURL,
		model:    cfg.TTSModel,
		audioDir: cfg.AudioDir,
		client:   cfg.httpClient(),
	}
	return tool.NewTyped("text_to_speech",
		"Convert text to spoken audio, for example to read out a weather or stock report.",
		b.run)
}

type ttsRequest struct {
	Model string `json:"model"`
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Parameters struct {
		TextType string `json:"text_type"`
		Voice    string `json:"voice"`
	} `json:"parameters"`
}

func (b *speechBackend) run(ctx context.Context, args SpeechArgs) (any, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("speech synthesis is not configured: missing api key")
	}

	voice, ok := voiceMap[args.Voice]
	if !ok {
		voice = voiceMap["zh"]
	}

	var reqBody ttsRequest
	reqBody.Model = b.model
	reqBody.Input.Text = args.Text
	reqBody.Parameters.TextType = "PlainText"
	reqBody.Parameters.Voice = voice

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/api/v1/services/audio/tts/generation", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech synthesis failed with status %d: %s", resp.StatusCode, truncate(audio, 200))
	}

	if err := os.MkdirAll(b.audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	filename := "tts-" + uuid.NewString() + ".mp3"
	if err := os.WriteFile(filepath.Join(b.audioDir, filename), audio, 0o644); err != nil {
		return nil, fmt.Errorf("write audio file: %w", err)
	}

	return SpeechResult{
		Success:  true,
		AudioURL: "/audio/" + filename,
		Text:     args.Text,
		Duration: (len(args.Text) + 3) / 4,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
