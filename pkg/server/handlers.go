package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baoman007/ai-weather-agent/pkg/agent"
	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

const serviceName = "AI Multimodal Agent"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type chatRequest struct {
	Message string          `json:"message"`
	History []types.Message `json:"conversationHistory"`
}

type chatResponse struct {
	Response  string                  `json:"response"`
	ToolCalls []types.ToolCallSummary `json:"toolCalls,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing message parameter", "")
		return
	}

	reply, err := s.cfg.Agent.Respond(r.Context(), agent.Turn{
		Message: req.Message,
		History: req.History,
	})
	if err != nil {
		slog.Error("chat turn failed", "error", err)
		writeError(w, statusFor(err), "chat failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply.Text,
		ToolCalls: reply.ToolCalls,
	})
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "missing prompt parameter", "")
		return
	}
	s.runTool(w, r, "generate_image", req)
}

type textToSpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func (s *Server) handleTextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req textToSpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "missing text parameter", "")
		return
	}
	s.runTool(w, r, "text_to_speech", req)
}

func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image upload", "")
		return
	}
	defer file.Close()

	name, path, err := s.saveUpload(file, header)
	if err != nil {
		slog.Error("upload rejected", "error", err)
		writeError(w, http.StatusBadRequest, "unsupported file", err.Error())
		return
	}

	question := r.FormValue("question")
	if question == "" {
		question = "Describe the contents of this image."
	}

	result, err := s.execute(r, "analyze_image", map[string]any{
		"image_path": path,
		"question":   question,
	})
	if err != nil {
		slog.Error("image analysis failed", "error", err)
		writeError(w, statusFor(err), "image analysis failed", err.Error())
		return
	}

	// Rewrite the local file path to the serving URL before responding.
	var body map[string]any
	if err := json.Unmarshal([]byte(result.Content), &body); err != nil {
		writeError(w, http.StatusInternalServerError, "image analysis failed", err.Error())
		return
	}
	body["imagePath"] = "/uploads/" + name
	writeJSON(w, http.StatusOK, body)
}

var allowedUploadExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true,
}

// saveUpload writes the uploaded file under the uploads dir with a fresh
// name and returns that name plus the full path.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (name, path string, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		return "", "", fmt.Errorf("file type %q is not supported", ext)
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", "", err
	}

	name = uuid.NewString() + ext
	path = filepath.Join(s.cfg.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", "", err
	}
	return name, path, nil
}

// runTool executes one named tool with the given arguments and writes its
// raw JSON result as the response.
func (s *Server) runTool(w http.ResponseWriter, r *http.Request, name string, args any) {
	result, err := s.execute(r, name, args)
	if err != nil {
		slog.Error("tool endpoint failed", "tool", name, "error", err)
		writeError(w, statusFor(err), name+" failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Content))
}

// execute funnels a direct endpoint through the executor, so direct calls
// get the same argument validation and timeouts as model-requested ones.
func (s *Server) execute(r *http.Request, name string, args any) (types.ToolResult, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return types.ToolResult{}, err
	}
	call := types.ToolCall{
		ID:   "direct_" + uuid.NewString()[:8],
		Type: "function",
		Function: types.FunctionCall{
			Name:      name,
			Arguments: string(encoded),
		},
	}
	return s.cfg.Executor.Run(r.Context(), call)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"tools":     s.cfg.Registry.Names(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        serviceName,
		"version":     "1.0.0",
		"description": "A multimodal assistant for text, image and speech",
		"endpoints": map[string]string{
			"chat":         "POST /chat",
			"health":       "GET /health",
			"analyzeImage": "POST /analyze-image",
			"generateImage": "POST /generate-image",
			"textToSpeech": "POST /text-to-speech",
		},
	})
}

// statusFor maps orchestration errors to HTTP status codes. Upstream model
// failures surface as bad gateway; everything else is internal.
func statusFor(err error) int {
	var gw *provider.GatewayError
	if errors.As(err, &gw) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, label, detail string) {
	writeJSON(w, status, errorResponse{Error: label, Message: detail})
}
