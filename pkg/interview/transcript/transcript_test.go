package transcript

import (
	"fmt"
	"testing"
)

func makeEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Speaker: SpeakerUser, Text: fmt.Sprintf("utterance %d", i)}
	}
	return entries
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		max       int
		wantLen   int
		wantFirst string
	}{
		{name: "shorter than window", total: 5, max: 10, wantLen: 5, wantFirst: "utterance 0"},
		{name: "exactly window", total: 10, max: 10, wantLen: 10, wantFirst: "utterance 0"},
		{name: "longer than window keeps suffix", total: 25, max: 10, wantLen: 10, wantFirst: "utterance 15"},
		{name: "zero window", total: 5, max: 0, wantLen: 0},
		{name: "empty transcript", total: 0, max: 10, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(makeEntries(tt.total), tt.max)
			if len(got) != tt.wantLen {
				t.Fatalf("Window len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].Text != tt.wantFirst {
				t.Errorf("Window first = %q, want %q", got[0].Text, tt.wantFirst)
			}
		})
	}
}

func TestHash(t *testing.T) {
	a := []Entry{
		{Speaker: SpeakerUser, Text: "hello"},
		{Speaker: SpeakerAssistant, Text: "hi there"},
	}
	b := []Entry{
		{Speaker: SpeakerUser, Text: "hello"},
		{Speaker: SpeakerAssistant, Text: "hi there"},
	}

	if Hash(a) != Hash(b) {
		t.Error("identical content should hash identically")
	}

	c := append(append([]Entry(nil), a...), Entry{Speaker: SpeakerUser, Text: "one more"})
	if Hash(a) == Hash(c) {
		t.Error("appending an entry should change the hash")
	}

	// Speaker is part of the fingerprint, not just text.
	d := []Entry{
		{Speaker: SpeakerAssistant, Text: "hello"},
		{Speaker: SpeakerAssistant, Text: "hi there"},
	}
	if Hash(a) == Hash(d) {
		t.Error("changing a speaker should change the hash")
	}
}

func TestHashIgnoresTimestamps(t *testing.T) {
	a := []Entry{{Speaker: SpeakerUser, Text: "same words"}}
	b := []Entry{{Speaker: SpeakerUser, Text: "same words", Final: true}}
	if Hash(a) != Hash(b) {
		t.Error("hash should depend only on speaker and text")
	}
}
