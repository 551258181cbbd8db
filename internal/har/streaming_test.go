package har

import (
	"strings"
	"testing"
)

func TestStreamingLoader_Load(t *testing.T) {
	input := `{"log": {"version": "1.2", "creator": {"name": "x"}, "entries": [
		{"time": 1, "request": {"url": "https://a.example"}},
		{"time": 2, "request": {"url": "https://b.example"}}
	]}, "extra": [1, 2, 3]}`

	sl := NewStreamingLoader()
	var added []int
	lastProgress := -1
	sl.SetCallbacks(
		func(entry HAREntry, index int) { added = append(added, index) },
		nil,
		nil,
		func(count int) { lastProgress = count },
	)

	if err := sl.Load(strings.NewReader(input)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(added) != 2 || added[0] != 0 || added[1] != 1 {
		t.Errorf("onEntryAdded indices = %v, want [0 1]", added)
	}
	if lastProgress != 2 {
		t.Errorf("final progress = %d, want 2", lastProgress)
	}

	doc := sl.Document()
	if doc.Log.Version != "1.2" {
		t.Errorf("Version = %q, want 1.2", doc.Log.Version)
	}
	if len(doc.Log.Entries) != 2 || doc.Log.Entries[1].Time != 2 {
		t.Errorf("Document entries = %+v", doc.Log.Entries)
	}
}

func TestStreamingLoader_MissingEntries(t *testing.T) {
	sl := NewStreamingLoader()
	if err := sl.Load(strings.NewReader(`{"log": {"version": "1.2"}}`)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if doc := sl.Document(); doc.Log.Entries != nil {
		t.Errorf("Entries = %v, want nil for a missing container", doc.Log.Entries)
	}
}

func TestStreamingLoader_EmptyEntries(t *testing.T) {
	sl := NewStreamingLoader()
	if err := sl.Load(strings.NewReader(`{"log": {"entries": []}}`)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	doc := sl.Document()
	if doc.Log.Entries == nil || len(doc.Log.Entries) != 0 {
		t.Errorf("Entries = %v, want empty non-nil slice", doc.Log.Entries)
	}
}

func TestStreamingLoader_RejectsNonObject(t *testing.T) {
	sl := NewStreamingLoader()
	if err := sl.Load(strings.NewReader(`[1, 2]`)); err == nil {
		t.Error("Load() expected error for a top-level array")
	}
}
