package builtin

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/tool"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

const defaultVisionQuestion = "Describe the contents of this image."

// VisionArgs is the argument shape of analyze_image.
type VisionArgs struct {
	ImagePath string `json:"image_path" jsonschema:"required,description=Path of the image file to analyze"`
	Question  string `json:"question,omitempty" jsonschema:"description=Question about the image"`
}

// VisionResult is the tool's result shape.
type VisionResult struct {
	Success   bool   `json:"success"`
	Analysis  string `json:"analysis"`
	ImagePath string `json:"imagePath"`
	Question  string `json:"question"`
}

type visionBackend struct {
	model     provider.ChatModel
	modelName string
}

// NewVision builds the analyze_image tool on a vision-language chat model.
// The image file is inlined as a base64 data URL; the model gets one shot at
// answering the question.
func NewVision(cfg Config) tool.Tool {
	b := &visionBackend{model: cfg.Vision, modelName: cfg.VisionModel}
	return tool.NewTyped("analyze_image",
		"Analyze an image file and describe objects, scenes or text in it, or answer a question about it.",
		b.run)
}

func (b *visionBackend) run(ctx context.Context, args VisionArgs) (any, error) {
	if b.model == nil {
		return nil, fmt.Errorf("image analysis is not configured: missing vision model")
	}

	question := args.Question
	if question == "" {
		question = defaultVisionQuestion
	}

	data, err := os.ReadFile(args.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeForExt(args.ImagePath), base64.StdEncoding.EncodeToString(data))

	var opts []provider.Option
	if b.modelName != "" {
		opts = append(opts, provider.WithModel(b.modelName))
	}
	resp, err := b.model.Chat(ctx, []types.Message{types.UserImage(dataURL, question)}, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision model: %w", err)
	}

	return VisionResult{
		Success:   true,
		Analysis:  resp.Message.Content,
		ImagePath: args.ImagePath,
		Question:  question,
	}, nil
}

func mimeForExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
