// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Conversation history with revert, stats and snapshots

package history

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Role of a message author
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FilePrefix marks system messages carrying file content
const FilePrefix = "FILE "

// snapshotVersion is bumped when the snapshot layout changes
const snapshotVersion = 1

var (
	ErrNoRounds        = errors.New("no conversation rounds")
	ErrRoundOutOfRange = errors.New("round index out of range")
	ErrBadSnapshot     = errors.New("invalid history snapshot")
)

// Message is one conversation entry
type Message struct {
	Role    Role   `yaml:"role"`
	Content string `yaml:"content"`
}

// Stats summarizes a conversation
type Stats struct {
	Total     int
	User      int
	Assistant int
	System    int
	Rounds    int
}

// History is the ordered conversation. The first message is always the system prompt.
type History struct {
	mu       sync.Mutex
	prompt   string
	messages []Message
}

// New creates a history seeded with the system prompt
func New(systemPrompt string) *History {
	return &History{
		prompt:   systemPrompt,
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Add appends a message
func (h *History) Add(role Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, Message{Role: role, Content: content})
}

// AddSystem appends a system note
func (h *History) AddSystem(content string) {
	h.Add(RoleSystem, content)
}

// AddFile appends a file's content as a system message
func (h *History) AddFile(path, content string) {
	h.AddSystem(FilePrefix + path + "\n" + content)
}

// Messages returns a copy of the conversation
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages, including the system prompt
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// SystemPrompt returns the current system prompt
func (h *History) SystemPrompt() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prompt
}

// SetSystemPrompt replaces the leading system message
func (h *History) SetSystemPrompt(content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompt = content
	h.messages[0] = Message{Role: RoleSystem, Content: content}
}

// Clear drops everything but the system prompt
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = []Message{{Role: RoleSystem, Content: h.prompt}}
}

// ClearWithPrefix drops every message whose content starts with prefix.
// The system prompt is kept. Returns the number removed.
func (h *History) ClearWithPrefix(prefix string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.messages[:1]
	for _, m := range h.messages[1:] {
		if !strings.HasPrefix(m.Content, prefix) {
			kept = append(kept, m)
		}
	}
	removed := len(h.messages) - len(kept)
	h.messages = kept
	return removed
}

// Files lists the paths of file messages, in the order they were added
func (h *History) Files() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var files []string
	for _, m := range h.messages[1:] {
		if m.Role != RoleSystem || !strings.HasPrefix(m.Content, FilePrefix) {
			continue
		}
		header, _, _ := strings.Cut(strings.TrimPrefix(m.Content, FilePrefix), "\n")
		files = append(files, header)
	}
	return files
}

// Revert drops the last rounds question/answer pairs
func (h *History) Revert(rounds int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rounds <= 0 || len(h.messages) <= 1 {
		return
	}
	keep := max(1, len(h.messages)-rounds*2)
	h.messages = h.messages[:keep]
}

// Rewind truncates the history before the index-th user message and
// returns that question so it can be asked again. Negative indexes count
// from the end.
func (h *History) Rewind(index int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var users []int
	for i, m := range h.messages {
		if m.Role == RoleUser {
			users = append(users, i)
		}
	}
	if len(users) == 0 {
		return "", ErrNoRounds
	}
	if index < 0 {
		index += len(users)
	}
	if index < 0 || index >= len(users) {
		return "", fmt.Errorf("%w: 0-%d", ErrRoundOutOfRange, len(users)-1)
	}

	at := users[index]
	question := h.messages[at].Content
	h.messages = h.messages[:at]
	return question, nil
}

// Stats counts messages by role
func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{Total: len(h.messages)}
	for _, m := range h.messages {
		switch m.Role {
		case RoleUser:
			s.User++
		case RoleAssistant:
			s.Assistant++
		case RoleSystem:
			s.System++
		}
	}
	s.Rounds = min(s.User, s.Assistant)
	return s
}

type snapshot struct {
	Version      int       `yaml:"version"`
	SystemPrompt string    `yaml:"system_prompt"`
	Messages     []Message `yaml:"messages"`
}

// Marshal encodes the conversation as a YAML snapshot
func (h *History) Marshal() ([]byte, error) {
	h.mu.Lock()
	snap := snapshot{
		Version:      snapshotVersion,
		SystemPrompt: h.prompt,
		Messages:     append([]Message(nil), h.messages[1:]...),
	}
	h.mu.Unlock()

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}

// Unmarshal replaces the conversation with a snapshot. The current system
// prompt is kept unless keepPrompt is false.
func (h *History) Unmarshal(data []byte, keepPrompt bool) error {
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, snap.Version)
	}
	for i, m := range snap.Messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("%w: message %d has role %q", ErrBadSnapshot, i, m.Role)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !keepPrompt {
		h.prompt = snap.SystemPrompt
	}
	h.messages = append([]Message{{Role: RoleSystem, Content: h.prompt}}, snap.Messages...)
	return nil
}
