package har

import (
	"testing"
	"time"
)

func TestParseHARDateTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "milliseconds in UTC",
			input: "2024-05-01T10:00:00.250Z",
			want:  time.Date(2024, 5, 1, 10, 0, 0, 250e6, time.UTC),
		},
		{
			name:  "no fraction",
			input: "2024-05-01T10:00:00Z",
			want:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "offset with colon",
			input: "2024-05-01T12:00:00.5+02:00",
			want:  time.Date(2024, 5, 1, 10, 0, 0, 500e6, time.UTC),
		},
		{
			name:  "offset without colon",
			input: "2024-05-01T03:00:00.000-0700",
			want:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "microseconds",
			input: "2024-05-01T10:00:00.123456Z",
			want:  time.Date(2024, 5, 1, 10, 0, 0, 123456e3, time.UTC),
		},
		{
			name:  "no zone is read as UTC",
			input: "2024-05-01T10:00:00.100",
			want:  time.Date(2024, 5, 1, 10, 0, 0, 100e6, time.UTC),
		},
		{name: "date only", input: "2024-05-01", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHARDateTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHARDateTime(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHARDateTime(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseHARDateTime(%q) = %v, want %v", tt.input, got.UTC(), tt.want)
			}
		})
	}
}

func TestParseHARDateTime_Ordering(t *testing.T) {
	// The same instant written with different offsets must compare equal
	a, err := ParseHARDateTime("2024-05-01T10:00:01.000Z")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseHARDateTime("2024-05-01T12:00:00.900+02:00")
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Sub(b); got != 100*time.Millisecond {
		t.Errorf("a - b = %v, want 100ms", got)
	}
}

func BenchmarkParseHARDateTime(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ParseHARDateTime("2024-05-01T10:00:00.250Z"); err != nil {
			b.Fatal(err)
		}
	}
}
