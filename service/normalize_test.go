package service

import (
	"encoding/json"
	"testing"

	"stream-sync/constant"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want constant.StreamStatus
	}{
		{"nested ready phase", `{"phase":"ready"}`, constant.StreamStatusReady},
		{"nested failed phase", `{"phase":"failed"}`, constant.StreamStatusFailed},
		{"nested unknown phase", `{"phase":"unknown-value"}`, constant.StreamStatusProcessing},
		{"bare ready", `"ready"`, constant.StreamStatusReady},
		{"bare failed", `"failed"`, constant.StreamStatusFailed},
		{"bare empty string", `""`, constant.StreamStatusProcessing},
		{"bare unknown", `"transcoding"`, constant.StreamStatusProcessing},
		{"object without phase", `{"progress":0.4}`, constant.StreamStatusProcessing},
		{"empty payload", ``, constant.StreamStatusProcessing},
		{"unparseable payload", `[1,2]`, constant.StreamStatusProcessing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(json.RawMessage(tc.raw))
			if got != tc.want {
				t.Fatalf("Normalize(%s) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestPlaybackIdFrom(t *testing.T) {
	t.Parallel()

	if got := playbackIdFrom(json.RawMessage(`{"phase":"ready","playbackId":"pb1"}`)); got != "pb1" {
		t.Fatalf("expected pb1, got %q", got)
	}
	if got := playbackIdFrom(json.RawMessage(`{"phase":"ready"}`)); got != "" {
		t.Fatalf("expected empty handle, got %q", got)
	}
	if got := playbackIdFrom(json.RawMessage(`"ready"`)); got != "" {
		t.Fatalf("expected empty handle for bare string, got %q", got)
	}
}
