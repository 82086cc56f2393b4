package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		text string
		vars map[string]any
		want string
	}{
		{
			name: "single placeholder",
			text: "Today is {{date}}.",
			vars: map[string]any{"date": "2026-08-28"},
			want: "Today is 2026-08-28.",
		},
		{
			name: "repeated placeholder",
			text: "{{who}} and {{who}} again",
			vars: map[string]any{"who": "me"},
			want: "me and me again",
		},
		{
			name: "missing key stays untouched",
			text: "Hello {{name}}",
			vars: map[string]any{"date": "2026-08-28"},
			want: "Hello {{name}}",
		},
		{
			name: "non-string value",
			text: "retries={{n}}",
			vars: map[string]any{"n": 3},
			want: "retries=3",
		},
		{
			name: "nil vars",
			text: "plain text",
			vars: nil,
			want: "plain text",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NewTemplate(tc.text).Render(tc.vars))
		})
	}
}
