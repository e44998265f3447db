package transcript

import (
	"crypto/md5"
	"fmt"
	"time"
)

// Speaker roles on the live channel.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Entry is a single utterance in the append-only interview transcript.
type Entry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Final     bool      `json:"final"`
}

// Window returns the most recent maxEntries entries. It never copies or
// mutates; callers treat the returned slice as read-only.
func Window(entries []Entry, maxEntries int) []Entry {
	if maxEntries <= 0 {
		return nil
	}
	if len(entries) <= maxEntries {
		return entries
	}
	return entries[len(entries)-maxEntries:]
}

// Hash fingerprints a window so a cycle can detect "nothing new was said".
func Hash(entries []Entry) string {
	h := md5.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%s\n", e.Speaker, e.Text)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
