package playground

import (
	"fmt"
	"testing"

	"github.com/studiowebux/sttplay/internal/types"
)

func TestLog_EvictsOldest(t *testing.T) {
	l := NewLog(MaxLogEntries)

	for i := 1; i <= MaxLogEntries+1; i++ {
		l.Append(types.LogEntry{Kind: types.KindInfo, Content: fmt.Sprintf("entry %d", i)})
	}

	if l.Len() != MaxLogEntries {
		t.Fatalf("Expected %d entries, got %d", MaxLogEntries, l.Len())
	}
	entries := l.Entries()
	if entries[0].Content != "entry 2" {
		t.Errorf("Expected oldest entry evicted, first is %q", entries[0].Content)
	}
	last, ok := l.Last()
	if !ok || last.Content != fmt.Sprintf("entry %d", MaxLogEntries+1) {
		t.Errorf("Unexpected last entry: %+v", last)
	}
}

func TestLog_NeverExceedsLimit(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 100; i++ {
		l.Append(types.LogEntry{Content: fmt.Sprint(i)})
		if l.Len() > 3 {
			t.Fatalf("Log grew to %d entries", l.Len())
		}
	}
	entries := l.Entries()
	for i, want := range []string{"97", "98", "99"} {
		if entries[i].Content != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Content, want)
		}
	}
}

func TestLog_EntriesIsCopy(t *testing.T) {
	l := NewLog(0)
	l.Append(types.LogEntry{Content: "a"})

	entries := l.Entries()
	entries[0].Content = "changed"

	if l.Entries()[0].Content != "a" {
		t.Error("Entries must return a copy")
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog(5)
	l.Append(types.LogEntry{Content: "a"})
	l.Clear()

	if l.Len() != 0 {
		t.Errorf("Expected empty log, got %d", l.Len())
	}
	if _, ok := l.Last(); ok {
		t.Error("Expected no last entry")
	}
}
