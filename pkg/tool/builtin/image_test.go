package builtin

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImage_BuildsURL(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]any
		wantWidth  string
		wantHeight string
	}{
		{
			name:       "Default Size",
			args:       map[string]any{"prompt": "sunny Beijing, blue sky"},
			wantWidth:  "512",
			wantHeight: "512",
		},
		{
			name:       "Explicit Size",
			args:       map[string]any{"prompt": "stock chart", "size": "1024x1024"},
			wantWidth:  "1024",
			wantHeight: "1024",
		},
	}

	img := NewImage()
	require.Equal(t, "generate_image", img.Name())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := img.Execute(context.Background(), tt.args)
			require.NoError(t, err)

			res, ok := out.(ImageResult)
			require.True(t, ok)
			require.True(t, res.Success)
			require.Equal(t, tt.args["prompt"], res.Prompt)

			u, err := url.Parse(res.ImageURL)
			require.NoError(t, err)
			require.Equal(t, "image.pollinations.ai", u.Host)
			require.True(t, strings.HasPrefix(u.Path, "/prompt/"))
			require.Equal(t, tt.wantWidth, u.Query().Get("width"))
			require.Equal(t, tt.wantHeight, u.Query().Get("height"))
			require.Equal(t, "true", u.Query().Get("nologo"))
		})
	}
}

func TestImage_InvalidSize(t *testing.T) {
	img := NewImage()
	_, err := img.Execute(context.Background(), map[string]any{"prompt": "x", "size": "huge"})
	require.Error(t, err)
}
