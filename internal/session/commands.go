// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Slash commands

package session

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/exec"
	"github.com/sony-level/fourteen/internal/history"
	"github.com/sony-level/fourteen/internal/vcwd"
)

func (s *Session) command(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	s.logger.Debug("command", zap.String("line", line))

	if vcwd.IsCd(line) {
		if err := s.cwd.Navigate(line); err != nil {
			s.r.Failure("%v", err)
		}
		return nil
	}

	switch name, args := fields[0], fields[1:]; name {
	case "readfiles":
		s.readFiles()
	case "readfile":
		if len(args) != 1 {
			s.usage(line, "/readfile <file>")
			return nil
		}
		s.addFile(args[0], true)
	case "files":
		s.listFiles()
	case "clearfiles":
		s.hist.ClearWithPrefix(history.FilePrefix)
		s.r.Success("All files cleared.")
	case "cls", "clear", "clearscreen":
		s.r.Clear()
	case "exit":
		s.r.Note("Exiting...")
		return ErrExit
	case "rule":
		s.setRule(line, args)
	case "revert":
		s.revert(line, args)
	case "reask":
		return s.reask(ctx, line, args)
	case "stats":
		st := s.hist.Stats()
		s.r.Note("Messages: %d (user %d, assistant %d, system %d), rounds: %d",
			st.Total, st.User, st.Assistant, st.System, st.Rounds)
	case "save":
		if len(args) != 1 {
			s.usage(line, "/save <file>")
			return nil
		}
		s.save(args[0])
	case "load":
		if len(args) != 1 {
			s.usage(line, "/load <file>")
			return nil
		}
		s.load(args[0])
	default:
		s.shell(ctx, line)
	}
	return nil
}

func (s *Session) usage(line, usage string) {
	s.r.Failure("Wrong syntax: %s", strings.TrimSpace(line))
	s.r.Note("Usage: %s", usage)
}

func (s *Session) readFiles() {
	paths, err := s.files.ListFiles(s.cwd.Path())
	if err != nil {
		s.r.Failure("%v", err)
		return
	}
	for _, p := range paths {
		content, err := s.files.Read(p)
		if err != nil {
			s.r.Failure("%v", err)
			continue
		}
		name := filepath.Base(p)
		s.hist.AddFile(name, content)
		s.r.Success("FILE %s added.", name)
	}
}

func (s *Session) listFiles() {
	files := s.hist.Files()
	if len(files) == 0 {
		s.r.Note("No files in the conversation.")
		return
	}
	for _, f := range files {
		s.r.Note("FILE %s", f)
	}
}

func (s *Session) setRule(line string, args []string) {
	if len(args) != 2 {
		s.usage(line, "/rule <rulename> <true|false>")
		return
	}
	rule, value := args[0], strings.ToLower(args[1])
	if _, ok := s.rules[rule]; !ok {
		s.r.Failure("Unknown rule: %s", rule)
		s.r.Note("Available rules: %s", RuleCommand)
		return
	}
	var on bool
	switch value {
	case "true", "1":
		on = true
	case "false", "0":
	default:
		s.r.Failure("Wrong value: %s", args[1])
		s.r.Note("Usage: /rule <rulename> <true|false>")
		return
	}
	s.rules[rule] = on
	s.r.Success("Rule %s set to %t", rule, on)
}

func (s *Session) revert(line string, args []string) {
	rounds := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			s.usage(line, "/revert [rounds]")
			return
		}
		rounds = n
	}
	before := s.hist.Len()
	s.hist.Revert(rounds)
	s.r.Success("Reverted %d message(s).", before-s.hist.Len())
}

func (s *Session) reask(ctx context.Context, line string, args []string) error {
	index := -1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			s.usage(line, "/reask [round]")
			return nil
		}
		index = n
	}
	reply, err := s.asker.Reask(ctx, s.hist, index)
	if errors.Is(err, history.ErrNoRounds) || errors.Is(err, history.ErrRoundOutOfRange) {
		s.r.Failure("%v", err)
		return nil
	}
	return s.review(ctx, reply, err)
}

func (s *Session) save(path string) {
	data, err := s.hist.Marshal()
	if err != nil {
		s.r.Failure("%v", err)
		return
	}
	target := s.committer.Resolve(path)
	if err := s.files.Write(target, string(data)); err != nil {
		s.r.Failure("%v", err)
		return
	}
	s.r.Success("History saved to %s", target)
}

func (s *Session) load(path string) {
	target := s.committer.Resolve(path)
	if !s.files.Exists(target) {
		s.r.Failure("File not found: %s", path)
		return
	}
	data, err := s.files.Read(target)
	if err == nil {
		err = s.hist.Unmarshal([]byte(data), true)
	}
	if err != nil {
		s.r.Failure("%v", err)
		return
	}
	s.r.Success("History loaded from %s (%d messages)", target, s.hist.Len())
}

// shell runs an unrecognized command as a shell line in the current directory
func (s *Session) shell(ctx context.Context, line string) {
	res := s.runner.Run(ctx, exec.Request{Line: line, Dir: s.cwd.Path(), Shell: exec.Bool(true)})
	if res.Success {
		out := strings.TrimRight(res.Stdout, "\n")
		if out == "" {
			out = "Done"
		}
		s.r.Success("%s", out)
		return
	}
	s.r.Failure("%s", strings.TrimRight(res.Output(), "\n"))
}
