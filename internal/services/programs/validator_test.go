package programs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValidator(t *testing.T) {
	v, err := NewFormValidator(4)
	require.NoError(t, err)

	tests := []struct {
		name    string
		answers map[string]any
		wantErr string
	}{
		{name: "valid", answers: map[string]any{"essay": "long enough text", "age": 18}},
		{name: "missing field", answers: map[string]any{"essay": "long enough text"}, wantErr: "age"},
		{name: "wrong type", answers: map[string]any{"essay": "long enough text", "age": "eighteen"}, wantErr: "$.age"},
		{name: "below minimum", answers: map[string]any{"essay": "long enough text", "age": 12}, wantErr: "$.age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(essaySchema, tt.answers)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidAnswers)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Equal(t, 1, v.Len(), "one compiled schema shared across calls")

	require.NoError(t, v.Validate(nil, map[string]any{"anything": true}))
	assert.ErrorIs(t, v.Check(map[string]any{"type": "no-such-type"}), ErrInvalidSchema)
}
