/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/sony-level/fourteen/internal/approval"
	"github.com/sony-level/fourteen/internal/exec"
	"github.com/sony-level/fourteen/internal/fileops"
	"github.com/sony-level/fourteen/internal/history"
	"github.com/sony-level/fourteen/internal/llm"
	_ "github.com/sony-level/fourteen/internal/llm/provider"
	"github.com/sony-level/fourteen/internal/session"
	"github.com/sony-level/fourteen/internal/staging"
	"github.com/sony-level/fourteen/internal/ui"
	"github.com/sony-level/fourteen/internal/vcwd"
)

// newSession wires a session rooted at the process working directory
func newSession(r *ui.Renderer) (*session.Session, error) {
	start, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	config, info := llm.ResolveProviderConfig(providerSettings())
	prov := llm.NewProvider(config)
	logger.Info("provider selected",
		zap.String("provider", prov.Name()),
		zap.String("selection", llm.SelectionDescription(info)),
		zap.String("model", config.Model))
	r.Note("Provider: %s (%s)", prov.Name(), llm.SelectionDescription(info))

	ws, err := staging.NewWorkspace(&staging.WorkspaceConfig{BaseDir: start})
	if err != nil {
		return nil, err
	}

	runner := exec.NewRunner(&exec.RunnerConfig{DefaultTimeout: commandTimeout()}, logger)
	files := fileops.New(afero.NewOsFs())

	return session.New(session.Config{
		Asker:       llm.NewClient(prov, config, logger),
		History:     history.New(llm.SystemPrompt),
		Cwd:         vcwd.New(start),
		Files:       files,
		Runner:      runner,
		Workspace:   ws,
		Console:     newConsole(r),
		Renderer:    r,
		Logger:      logger,
		TreeDepth:   viper.GetInt(keyTreeDepth),
		CommandMode: viper.GetBool(keyCommandMode),
	}), nil
}

// newConsole uses interactive selects on a terminal and line prompts otherwise
func newConsole(r *ui.Renderer) session.Console {
	if viper.GetBool(keyPlain) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return approval.NewLinePrompter(os.Stdin, r.Writer())
	}
	return ui.NewSurveyPrompter(os.Stdin, os.Stdout, os.Stderr)
}

func runInteractive(ctx context.Context) error {
	r := ui.NewRenderer(os.Stdout)
	sess, err := newSession(r)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to clean up holding area", zap.Error(err))
		}
	}()
	return sess.Run(ctx)
}
