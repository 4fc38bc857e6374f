// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// History tests

package history_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sony-level/fourteen/internal/history"
)

func conversation() *history.History {
	h := history.New("prompt")
	h.Add(history.RoleUser, "q1")
	h.Add(history.RoleAssistant, "a1")
	h.AddFile("main.go", "package main")
	h.Add(history.RoleUser, "q2")
	h.Add(history.RoleAssistant, "a2")
	return h
}

func TestNew(t *testing.T) {
	h := history.New("be helpful")

	want := []history.Message{{Role: history.RoleSystem, Content: "be helpful"}}
	if diff := cmp.Diff(want, h.Messages()); diff != "" {
		t.Errorf("Messages() mismatch (-want +got):\n%s", diff)
	}
}

func TestRevert(t *testing.T) {
	tests := []struct {
		rounds int
		want   int
	}{
		{rounds: 0, want: 6},
		{rounds: 1, want: 4},
		{rounds: 2, want: 2},
		{rounds: 10, want: 1},
		{rounds: -1, want: 6},
	}

	for _, tt := range tests {
		h := conversation()
		h.Revert(tt.rounds)
		if got := h.Len(); got != tt.want {
			t.Errorf("Revert(%d) left %d messages, want %d", tt.rounds, got, tt.want)
		}
		if h.Messages()[0].Content != "prompt" {
			t.Errorf("Revert(%d) dropped the system prompt", tt.rounds)
		}
	}
}

func TestClearWithPrefixAndFiles(t *testing.T) {
	h := conversation()
	h.AddFile("util.go", "package util")

	if diff := cmp.Diff([]string{"main.go", "util.go"}, h.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}

	if removed := h.ClearWithPrefix(history.FilePrefix); removed != 2 {
		t.Errorf("ClearWithPrefix() removed %d, want 2", removed)
	}
	if len(h.Files()) != 0 {
		t.Errorf("Files() = %v after clear", h.Files())
	}
	if h.Len() != 5 {
		t.Errorf("Len() = %d, want 5", h.Len())
	}
}

func TestClear(t *testing.T) {
	h := conversation()
	h.Clear()

	if h.Len() != 1 || h.Messages()[0].Content != "prompt" {
		t.Errorf("Clear() left %v", h.Messages())
	}
}

func TestStats(t *testing.T) {
	h := conversation()
	h.Add(history.RoleUser, "unanswered")

	want := history.Stats{Total: 7, User: 3, Assistant: 2, System: 2, Rounds: 2}
	if diff := cmp.Diff(want, h.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestRewind(t *testing.T) {
	h := conversation()

	q, err := h.Rewind(-1)
	if err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	if q != "q2" {
		t.Errorf("Rewind(-1) = %q, want q2", q)
	}
	if h.Len() != 4 {
		t.Errorf("Len() = %d after rewind, want 4", h.Len())
	}

	if _, err := h.Rewind(5); !errors.Is(err, history.ErrRoundOutOfRange) {
		t.Errorf("Rewind(5) error = %v, want ErrRoundOutOfRange", err)
	}
	if _, err := history.New("p").Rewind(0); !errors.Is(err, history.ErrNoRounds) {
		t.Errorf("Rewind() on empty error = %v, want ErrNoRounds", err)
	}
}

func TestSnapshot(t *testing.T) {
	h := conversation()
	data, err := h.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	restored := history.New("new prompt")
	if err := restored.Unmarshal(data, true); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := h.Messages()
	want[0].Content = "new prompt"
	if diff := cmp.Diff(want, restored.Messages()); diff != "" {
		t.Errorf("restored mismatch (-want +got):\n%s", diff)
	}

	replaced := history.New("other")
	if err := replaced.Unmarshal(data, false); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if replaced.SystemPrompt() != "prompt" {
		t.Errorf("SystemPrompt() = %q, want snapshot prompt", replaced.SystemPrompt())
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":    "::: [",
		"old version": "version: 0\nmessages: []\n",
		"bad role":    "version: 1\nmessages:\n  - role: robot\n    content: hi\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			h := conversation()
			if err := h.Unmarshal([]byte(input), true); !errors.Is(err, history.ErrBadSnapshot) {
				t.Errorf("Unmarshal() error = %v, want ErrBadSnapshot", err)
			}
			if h.Len() != 6 {
				t.Error("failed Unmarshal() modified the history")
			}
		})
	}
}
