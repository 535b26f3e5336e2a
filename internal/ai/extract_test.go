package ai

import (
	"testing"

	"resumeforge/internal/errors"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		A int `json:"a"`
	}

	tests := []struct {
		name    string
		raw     string
		wantA   int
		wantErr bool
	}{
		{
			name:  "bare JSON",
			raw:   `{"a":1}`,
			wantA: 1,
		},
		{
			name:  "code fence with prose",
			raw:   "Sure! ```json\n{\"a\":1}\n```",
			wantA: 1,
		},
		{
			name:  "leading and trailing commentary",
			raw:   "Here you go: {\"a\": 7} hope that helps!",
			wantA: 7,
		},
		{
			name:    "no braces at all",
			raw:     "I could not produce any JSON, sorry.",
			wantErr: true,
		},
		{
			name:    "empty reply",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "braces but invalid JSON",
			raw:     "{this is not json}",
			wantErr: true,
		},
		{
			name:    "closing brace before opening",
			raw:     "} nothing here {",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON[payload](tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ExtractJSON() expected error, got nil")
				}
				appErr, ok := err.(*errors.AppError)
				if !ok || appErr.Code != errors.ErrCodeMalformedModelOutput {
					t.Errorf("error = %v, want code %s", err, errors.ErrCodeMalformedModelOutput)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON() error = %v", err)
			}
			if got.A != tt.wantA {
				t.Errorf("got.A = %d, want %d", got.A, tt.wantA)
			}
		})
	}
}
