/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sony-level/fourteen/internal/llm"
	"github.com/sony-level/fourteen/internal/staging"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func resetConfig(t *testing.T) *pflag.FlagSet {
	t.Helper()
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs)
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
		bindKeys(rootCmd.PersistentFlags())
	})
	return fs
}

func TestConfigPrecedence(t *testing.T) {
	fs := resetConfig(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "provider: openai\nmodel: from-file\nendpoint: http://file.example\nmax_tokens: 100\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgFile = path
	t.Setenv("FOURTEEN_MODEL", "from-env")
	if err := fs.Set("provider", "mistral"); err != nil {
		t.Fatal(err)
	}

	if err := initConfig(); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}

	got := providerSettings()
	if got.Provider != "mistral" {
		t.Errorf("Provider = %q, want flag value", got.Provider)
	}
	if got.Model != "from-env" {
		t.Errorf("Model = %q, want env value", got.Model)
	}
	if got.Endpoint != "http://file.example" || got.MaxTokens != 100 {
		t.Errorf("file values not applied: %+v", got)
	}
	if got.Timeout != llm.DefaultTimeout {
		t.Errorf("Timeout = %v, want default", got.Timeout)
	}
}

func TestConfigMissingFileIsFine(t *testing.T) {
	resetConfig(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	if err := initConfig(); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	if got := commandTimeout(); got <= 0 {
		t.Errorf("commandTimeout() = %v", got)
	}
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	held := filepath.Join(dir, staging.HoldingDirName, "fs-20260101-0000-abc")
	if err := os.MkdirAll(held, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(held, "tempfilea.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cleanCmd.SetOut(&out)
	staleHours = 0
	if err := cleanCmd.RunE(cleanCmd, nil); err != nil {
		t.Fatalf("clean error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, staging.HoldingDirName)); !os.IsNotExist(err) {
		t.Errorf("holding directory still present: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Holding area removed")) {
		t.Errorf("output = %q", out.String())
	}
}
