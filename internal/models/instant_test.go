package models

import (
	"testing"
	"time"
)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string // canonical rendering, empty means error expected
		wantErr bool
	}{
		{name: "rfc3339 zulu", text: "2024-12-31T18:30:00Z", want: "2024-12-31T18:30:00.000Z"},
		{name: "rfc3339 millis", text: "2024-12-31T18:30:00.250Z", want: "2024-12-31T18:30:00.250Z"},
		{name: "rfc3339 offset", text: "2024-12-31T19:30:00+01:00", want: "2024-12-31T18:30:00.000Z"},
		{name: "no zone", text: "2024-12-31T18:30:00", want: "2024-12-31T18:30:00.000Z"},
		{name: "date only", text: "2024-12-31", want: "2024-12-31T00:00:00.000Z"},
		{name: "garbage", text: "not-a-date", wantErr: true},
		{name: "empty", text: "", wantErr: true},
		{name: "bad month", text: "2024-13-01T00:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseInstant(%q) succeeded, want error", tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInstant(%q) failed: %v", tt.text, err)
			}
			if rendered := FormatInstant(got); rendered != tt.want {
				t.Errorf("FormatInstant = %q, want %q", rendered, tt.want)
			}
		})
	}
}

func TestFormatInstantIsUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	local := time.Date(2024, 6, 1, 12, 0, 0, 0, loc)
	if got := FormatInstant(local); got != "2024-06-01T10:00:00.000Z" {
		t.Errorf("FormatInstant = %q, want UTC rendering", got)
	}
}
