package mcputils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockArgumentGetter implements ArgumentGetter for testing
type mockArgumentGetter struct {
	args map[string]any
}

func (m *mockArgumentGetter) GetArguments() map[string]any {
	return m.args
}

type analyzeArgs struct {
	FilePath string `json:"file_path" validate:"required"`
	Language string `json:"language,omitempty"`
	Mode     string `json:"mode,omitempty" validate:"omitempty,oneof=batched single"`
}

func TestCoerceBindArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]any
		want analyzeArgs
	}{
		{
			name: "all arguments",
			args: map[string]any{"file_path": "/src/a.cpp", "language": "cpp", "mode": "single"},
			want: analyzeArgs{FilePath: "/src/a.cpp", Language: "cpp", Mode: "single"},
		},
		{
			name: "whitespace trimmed",
			args: map[string]any{"file_path": " /src/a.cpp\n", "mode": " batched "},
			want: analyzeArgs{FilePath: "/src/a.cpp", Mode: "batched"},
		},
		{
			name: "number for a string argument",
			args: map[string]any{"file_path": "a.py", "language": 3},
			want: analyzeArgs{FilePath: "a.py", Language: "3"},
		},
		{
			name: "unknown keys ignored",
			args: map[string]any{"file_path": "a.js", "verbose": "yes"},
			want: analyzeArgs{FilePath: "a.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got analyzeArgs
			require.NoError(t, CoerceBindArguments(&mockArgumentGetter{args: tt.args}, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceBindArguments_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    map[string]any
		wantMsg string
	}{
		{"missing required", map[string]any{}, `file_path failed "required"`},
		{"blank required", map[string]any{"file_path": "   "}, `file_path failed "required"`},
		{"mode out of set", map[string]any{"file_path": "a", "mode": "parallel"}, `mode failed "oneof"`},
		{"object for a string", map[string]any{"file_path": map[string]any{"p": 1}}, "invalid arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got analyzeArgs
			err := CoerceBindArguments(&mockArgumentGetter{args: tt.args}, &got)
			require.ErrorIs(t, err, ErrInvalidArguments)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
