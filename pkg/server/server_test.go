package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/baoman007/ai-weather-agent/pkg/agent"
	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/provider/script"
	"github.com/baoman007/ai-weather-agent/pkg/tool"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

type promptArgs struct {
	Prompt string `json:"prompt" jsonschema:"required"`
	Size   string `json:"size,omitempty"`
}

type textArgs struct {
	Text  string `json:"text" jsonschema:"required"`
	Voice string `json:"voice,omitempty"`
}

type visionArgs struct {
	ImagePath string `json:"image_path" jsonschema:"required"`
	Question  string `json:"question,omitempty"`
}

func newTestServer(t *testing.T, model provider.ChatModel) *Server {
	t.Helper()

	image := tool.NewTyped("generate_image", "image generation", func(ctx context.Context, args promptArgs) (any, error) {
		return map[string]any{"success": true, "imageUrl": "https://example.com/" + args.Prompt + ".png"}, nil
	})
	speech := tool.NewTyped("text_to_speech", "speech synthesis", func(ctx context.Context, args textArgs) (any, error) {
		return map[string]any{"success": true, "audioUrl": "/audio/out.mp3", "text": args.Text}, nil
	})
	vision := tool.NewTyped("analyze_image", "image analysis", func(ctx context.Context, args visionArgs) (any, error) {
		if _, err := os.Stat(args.ImagePath); err != nil {
			return nil, err
		}
		return map[string]any{"success": true, "analysis": "a red square", "question": args.Question}, nil
	})

	reg, err := tool.NewRegistry(image, speech, vision)
	require.NoError(t, err)
	exec := tool.NewExecutor(reg, time.Second)

	ag, err := agent.New(agent.Config{Provider: model, Registry: reg, Executor: exec})
	require.NoError(t, err)

	return New(Config{
		Addr:           ":0",
		Agent:          ag,
		Registry:       reg,
		Executor:       exec,
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 10 << 20,
	})
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat_PlainAnswer(t *testing.T) {
	model := script.New("stub", &types.ChatResponse{
		Message:      types.Message{Role: types.RoleAssistant, Content: "Hi there"},
		FinishReason: "stop",
	})
	srv := newTestServer(t, model)

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{"message": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "Hi there", body["response"])
	require.NotContains(t, body, "toolCalls")
}

func TestChat_ToolRoundTrip(t *testing.T) {
	model := script.New("stub",
		&types.ChatResponse{
			Message: types.Message{
				Role: types.RoleAssistant,
				ToolCalls: []types.ToolCall{{
					ID:   "call_1",
					Type: "function",
					Function: types.FunctionCall{
						Name:      "generate_image",
						Arguments: `{"prompt":"cat"}`,
					},
				}},
			},
			FinishReason: "tool_calls",
		},
		&types.ChatResponse{
			Message:      types.Message{Role: types.RoleAssistant, Content: "Here is your cat."},
			FinishReason: "stop",
		},
	)
	srv := newTestServer(t, model)

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{"message": "draw a cat"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "Here is your cat.", body["response"])

	calls, ok := body["toolCalls"].([]any)
	require.True(t, ok)
	require.Len(t, calls, 1)
	first := calls[0].(map[string]any)
	require.Equal(t, "generate_image", first["name"])
	require.JSONEq(t, `{"prompt":"cat"}`, first["arguments"].(string))
}

func TestChat_MissingMessage(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "missing message parameter", decode(t, rec)["error"])
}

type failingModel struct{}

func (failingModel) Name() string { return "failing" }

func (failingModel) Chat(ctx context.Context, messages []types.Message, opts ...provider.Option) (*types.ChatResponse, error) {
	return nil, &provider.GatewayError{Provider: "failing", StatusCode: 503, Message: "upstream down"}
}

func TestChat_GatewayErrorMapsToBadGateway(t *testing.T) {
	srv := newTestServer(t, failingModel{})

	rec := postJSON(t, srv.Handler(), "/chat", map[string]any{"message": "hello"})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "chat failed", decode(t, rec)["error"])
}

func TestGenerateImage(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	rec := postJSON(t, srv.Handler(), "/generate-image", map[string]any{"prompt": "cat"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://example.com/cat.png", decode(t, rec)["imageUrl"])

	rec = postJSON(t, srv.Handler(), "/generate-image", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTextToSpeech(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	rec := postJSON(t, srv.Handler(), "/text-to-speech", map[string]any{"text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/audio/out.mp3", decode(t, rec)["audioUrl"])

	rec = postJSON(t, srv.Handler(), "/text-to-speech", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, filename, question string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if question != "" {
		require.NoError(t, mw.WriteField("question", question))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeImage(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	body, contentType := multipartUpload(t, "photo.png", "what is this?", []byte("not really a png"))
	req := httptest.NewRequest(http.MethodPost, "/analyze-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, "a red square", out["analysis"])
	require.Equal(t, "what is this?", out["question"])

	imagePath, _ := out["imagePath"].(string)
	require.True(t, strings.HasPrefix(imagePath, "/uploads/"))
	require.True(t, strings.HasSuffix(imagePath, ".png"))

	// The upload landed on disk under the generated name.
	saved := filepath.Join(srv.cfg.UploadDir, strings.TrimPrefix(imagePath, "/uploads/"))
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	require.Equal(t, []byte("not really a png"), data)
}

func TestAnalyzeImage_RejectsUnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	body, contentType := multipartUpload(t, "payload.exe", "", []byte("nope"))
	req := httptest.NewRequest(http.MethodPost, "/analyze-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeImage_MissingFile(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("question", "anything?"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "OK", body["status"])
	require.Equal(t, []any{"generate_image", "text_to_speech", "analyze_image"}, body["tools"])
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, serviceName, decode(t, rec)["name"])
}

func TestStaticUploads(t *testing.T) {
	srv := newTestServer(t, script.New("stub"))
	require.NoError(t, os.WriteFile(filepath.Join(srv.cfg.UploadDir, "pic.png"), []byte("bytes"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/uploads/pic.png", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "bytes", rec.Body.String())
}
