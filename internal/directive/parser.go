// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Directive markup parser

package directive

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var optionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=.*$`)

const (
	tagFenceOpen  = "[file_start"
	tagFenceClose = "[file_end]"
	backtickFence = "```"
)

type fence int

const (
	fenceNone fence = iota
	fenceTag
	fenceBacktick
)

// capture tracks an %%edit or %%create block waiting for its content
type capture struct {
	verb  string
	path  string
	fence fence
	lines []string
}

func (c *capture) emit() Operation {
	content := strings.ReplaceAll(strings.Join(c.lines, "\n"), "\\`", "`")
	if c.verb == VerbEdit {
		return Edit{Path: c.path, Content: content}
	}
	return Create{Path: c.path, Content: content}
}

// Parser turns assistant text into an ordered list of items
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser that reports dropped directives at debug level
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse is shorthand for NewParser(nil).Parse(text)
func Parse(text string) []Item {
	return NewParser(nil).Parse(text)
}

// Parse extracts operations and prose from text
func (p *Parser) Parse(text string) []Item {
	var items []Item
	var cur *capture

	for _, raw := range strings.Split(text, "\n") {
		// CR is ignored for markers and fences but kept in captured content.
		line := strings.TrimSuffix(raw, "\r")

		if cur != nil {
			if cur.fence != fenceNone {
				if closesFence(cur.fence, line) {
					items = append(items, cur.emit())
					cur = nil
				} else {
					cur.lines = append(cur.lines, raw)
				}
				continue
			}

			if strings.TrimSpace(line) == "" {
				continue
			}
			if f := opensFence(line); f != fenceNone {
				cur.fence = f
				continue
			}
			p.logger.Debug("capture abandoned, no content fence",
				zap.String("verb", cur.verb),
				zap.String("path", cur.path),
				zap.String("line", line))
			cur = nil
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasPrefix(line, MarkerPrefix) {
			items = append(items, ProseLine{Text: line})
			continue
		}

		item, next, known := p.parseMarker(line)
		switch {
		case !known:
			items = append(items, ProseLine{Text: line})
		case next != nil:
			cur = next
		case item != nil:
			items = append(items, item)
		}
	}

	if cur != nil {
		p.logger.Debug("capture never closed",
			zap.String("verb", cur.verb),
			zap.String("path", cur.path))
	}

	return items
}

// parseMarker handles a %% line. known is false for unrecognized keywords.
// For %%edit and %%create it returns a capture instead of an item.
func (p *Parser) parseMarker(line string) (Item, *capture, bool) {
	fields := strings.Fields(line)
	verb := strings.TrimPrefix(fields[0], MarkerPrefix)
	args := fields[1:]

	gap := func(need int) bool {
		if len(args) >= need {
			return false
		}
		p.logger.Debug("directive missing arguments",
			zap.String("verb", verb),
			zap.Int("want", need),
			zap.Int("got", len(args)))
		return true
	}

	switch verb {
	case VerbRun:
		run, ok := parseRun(args)
		if !ok {
			p.logger.Debug("run directive without command", zap.String("line", line))
			return nil, nil, true
		}
		return run, nil, true
	case VerbRead:
		if gap(1) {
			return nil, nil, true
		}
		return Read{Path: args[0]}, nil, true
	case VerbDelete:
		if gap(1) {
			return nil, nil, true
		}
		return Delete{Path: args[0]}, nil, true
	case VerbNewDir:
		if gap(1) {
			return nil, nil, true
		}
		return NewDir{Path: args[0]}, nil, true
	case VerbRename:
		if gap(2) {
			return nil, nil, true
		}
		return Rename{Path: args[0], NewName: args[1]}, nil, true
	case VerbEdit, VerbCreate:
		if gap(1) {
			return nil, nil, true
		}
		return nil, &capture{verb: verb, path: args[0]}, true
	default:
		return nil, nil, false
	}
}

// parseRun splits trailing key=value options off the command vector
func parseRun(args []string) (Run, bool) {
	options := make(map[string]any)
	end := len(args)

	for end > 0 {
		tok := args[end-1]
		if tok == "[" || tok == "]" {
			end--
			continue
		}
		tok = strings.TrimPrefix(tok, "[")
		tok = strings.TrimSuffix(tok, ",")
		tok = strings.TrimSuffix(tok, "]")
		tok = strings.TrimSuffix(tok, ",")
		if !optionPattern.MatchString(tok) {
			break
		}
		key, value, _ := strings.Cut(tok, "=")
		if _, seen := options[key]; !seen {
			options[key] = convertOption(value)
		}
		end--
	}

	if end == 0 {
		return Run{}, false
	}

	command := make([]string, end)
	copy(command, args[:end])
	return Run{Command: command, Options: options}, true
}

func convertOption(value string) any {
	switch value {
	case "True":
		return true
	case "False":
		return false
	}
	if value != "" && strings.Trim(value, "0123456789") == "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}

func opensFence(line string) fence {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, tagFenceOpen) && strings.HasSuffix(trimmed, "]"):
		return fenceTag
	case strings.HasPrefix(trimmed, backtickFence):
		return fenceBacktick
	default:
		return fenceNone
	}
}

func closesFence(f fence, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch f {
	case fenceTag:
		return trimmed == tagFenceClose
	case fenceBacktick:
		return trimmed == backtickFence
	default:
		return false
	}
}
