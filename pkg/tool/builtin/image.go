package builtin

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/baoman007/ai-weather-agent/pkg/tool"
)

const (
	pollinationsBaseURL = "https://image.pollinations.ai"
	defaultImageSize    = "512x512"
)

// ImageArgs is the argument shape of generate_image.
type ImageArgs struct {
	Prompt string `json:"prompt" jsonschema:"required,description=Description of the image to generate"`
	Size   string `json:"size,omitempty" jsonschema:"enum=256x256,enum=512x512,enum=1024x1024,description=Image size; defaults to 512x512"`
}

// ImageResult is the tool's result shape. The image is a URL reference; bytes
// are never inlined.
type ImageResult struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	Provider string `json:"provider"`
}

// NewImage builds the generate_image tool backed by the keyless Pollinations
// endpoint. The URL itself is the artifact: Pollinations renders on fetch, so
// no request happens here.
func NewImage() tool.Tool {
	return tool.NewTyped("generate_image",
		"Generate an image from a text description, for example a weather illustration or a chart mockup.",
		runImage)
}

func runImage(ctx context.Context, args ImageArgs) (any, error) {
	size := args.Size
	if size == "" {
		size = defaultImageSize
	}
	width, height, err := splitSize(size)
	if err != nil {
		return nil, err
	}

	imageURL := fmt.Sprintf("%s/prompt/%s?width=%s&height=%s&nologo=true&seed=%d",
		pollinationsBaseURL, url.PathEscape(args.Prompt), width, height, rand.Intn(1000))

	return ImageResult{
		Success:  true,
		ImageURL: imageURL,
		Prompt:   args.Prompt,
		Provider: "Pollinations AI",
	}, nil
}

func splitSize(size string) (width, height string, err error) {
	parts := strings.SplitN(size, "x", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", size)
	}
	return parts[0], parts[1], nil
}
