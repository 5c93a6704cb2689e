package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
)

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    contracts.Judgment
		wantErr bool
	}{
		{
			name:    "plain JSON",
			content: `{"direction":-1,"severity":3,"confidence":0.8,"horizon":"short","rationale":"recall hurts near-term sales"}`,
			want: contracts.Judgment{
				Direction: -1, Severity: 3, Confidence: 0.8,
				Horizon: contracts.HorizonShort, Rationale: "recall hurts near-term sales",
			},
		},
		{
			name: "json code fence",
			content: "```json\n" +
				`{"direction":1,"severity":2,"confidence":0.6,"horizon":"medium","rationale":"order book expands"}` +
				"\n```",
			want: contracts.Judgment{
				Direction: 1, Severity: 2, Confidence: 0.6,
				Horizon: contracts.HorizonMedium, Rationale: "order book expands",
			},
		},
		{
			name: "bare code fence",
			content: "```\n" +
				`{"direction":0,"severity":1,"confidence":0.3,"horizon":"short","rationale":"no market impact"}` +
				"\n```",
			want: contracts.Judgment{
				Direction: 0, Severity: 1, Confidence: 0.3,
				Horizon: contracts.HorizonShort, Rationale: "no market impact",
			},
		},
		{
			name:    "out-of-range fields are clamped",
			content: `{"direction":4,"severity":11,"confidence":1.9,"horizon":"eventually","rationale":"x"}`,
			want: contracts.Judgment{
				Direction: 1, Severity: 5, Confidence: 1.0,
				Horizon: contracts.HorizonShort, Rationale: "x",
			},
		},
		{name: "prose instead of JSON", content: "The impact is clearly negative.", wantErr: true},
		{name: "empty content", content: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJudgment(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Available(t *testing.T) {
	log := logger.NewNop()
	httpClient := httputil.New(nil, log)

	withKey := NewClient(httpClient, log, config.OpenAIConfig{APIKey: "sk-test"})
	assert.True(t, withKey.Available())

	withoutKey := NewClient(httpClient, log, config.OpenAIConfig{})
	assert.False(t, withoutKey.Available())
}
