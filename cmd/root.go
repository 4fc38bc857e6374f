/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sony-level/fourteen/internal/exec"
	"github.com/sony-level/fourteen/internal/llm"
	"github.com/sony-level/fourteen/internal/logging"
	"github.com/sony-level/fourteen/internal/projectctx"
)

// Config keys
const (
	keyProvider       = "provider"
	keyModel          = "model"
	keyEndpoint       = "endpoint"
	keyToken          = "token"
	keyTimeout        = "timeout"
	keyMaxTokens      = "max_tokens"
	keyTemperature    = "temperature"
	keyCommandTimeout = "command_timeout"
	keyTreeDepth      = "tree_depth"
	keyCommandMode    = "command_mode"
	keyVerbose        = "verbose"
	keyLogFile        = "log_file"
	keyPlain          = "plain"
)

// localConfigName is picked up from the working directory before the user config
const localConfigName = ".fourteen.yaml"

var (
	cfgFile string
	logger  = zap.NewNop()
)

// rootCmd starts the interactive loop
var rootCmd = &cobra.Command{
	Use:   "fourteen",
	Short: "Terminal assistant that proposes changes and applies only what you approve",
	Long: `fourteen is an interactive terminal assistant. The language model answers
with directives (%%run, %%create, %%edit, %%delete, %%new_dir, %%rename, %%read)
inside its reply; every proposed file change is staged first and nothing
touches the project until you accept it.

Input starting with / is a command (/cd, /readfile, /readfiles, /files,
/clearfiles, /clear, /rule, /revert, /reask, /stats, /save, /load, /exit);
anything else is sent to the model together with a summary of the current
directory.

Examples:
  fourteen
  fourteen --provider ollama --model llama3.2
  fourteen ask "add a Makefile with a test target"
  fourteen clean --stale-hours 24`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C cancels the running command and ends the session.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+localConfigName+" or $XDG_CONFIG_HOME/fourteen/config.yaml)")
	bindFlags(rootCmd.PersistentFlags())
}

// bindFlags declares the persistent flags and binds each to its viper key
func bindFlags(fs *pflag.FlagSet) {
	fs.StringP(keyProvider, "p", "", "LLM provider: "+providerList()+" (default: auto-select)")
	fs.StringP(keyModel, "m", "", "model name (default depends on the provider)")
	fs.String(keyEndpoint, "", "base URL of an OpenAI-compatible API")
	fs.String(keyToken, "", "API token (or env: FOURTEEN_TOKEN, API_KEY, OPENAI_API_KEY, MISTRAL_API_KEY)")
	fs.Duration(keyTimeout, llm.DefaultTimeout, "completion request timeout")
	fs.Int(flagName(keyMaxTokens), llm.DefaultMaxTokens, "completion token cap")
	fs.Float64(keyTemperature, llm.DefaultTemperature, "sampling temperature")
	fs.Duration(flagName(keyCommandTimeout), exec.DefaultCommandTimeout, "default timeout for commands")
	fs.Int(flagName(keyTreeDepth), projectctx.DefaultMaxDepth, "depth of the project tree sent with each question")
	fs.Bool(flagName(keyCommandMode), false, "start with the command rule on (every input is a command)")
	fs.BoolP(keyVerbose, "v", false, "enable debug logging")
	fs.String(flagName(keyLogFile), "", "write logs to this file instead of stderr")
	fs.Bool(keyPlain, false, "use plain line prompts instead of interactive selects")
	bindKeys(fs)
}

// bindKeys binds every config key to its flag in fs
func bindKeys(fs *pflag.FlagSet) {
	for _, key := range []string{
		keyProvider, keyModel, keyEndpoint, keyToken, keyTimeout, keyMaxTokens,
		keyTemperature, keyCommandTimeout, keyTreeDepth, keyCommandMode,
		keyVerbose, keyLogFile, keyPlain,
	} {
		_ = viper.BindPFlag(key, fs.Lookup(flagName(key)))
	}
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func providerList() string {
	names := make([]string, 0, len(llm.SupportedProviders))
	for _, p := range llm.SupportedProviders {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// setup loads the configuration and builds the logger.
// Precedence: flags > environment > config file > defaults.
func setup(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	var err error
	logger, err = logging.New(logging.Options{
		Verbose: viper.GetBool(keyVerbose),
		File:    viper.GetString(keyLogFile),
	})
	if err != nil {
		return err
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", zap.String("file", used))
	}
	llm.DefaultRegistry.SetLogger(logger)
	return nil
}

func initConfig() error {
	viper.SetEnvPrefix("FOURTEEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists(localConfigName):
		viper.SetConfigFile(localConfigName)
	default:
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "fourteen"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fourteen"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// providerSettings collects the merged LLM settings
func providerSettings() llm.Settings {
	return llm.Settings{
		Provider:    viper.GetString(keyProvider),
		Model:       viper.GetString(keyModel),
		Endpoint:    viper.GetString(keyEndpoint),
		Token:       viper.GetString(keyToken),
		Timeout:     viper.GetDuration(keyTimeout),
		MaxTokens:   viper.GetInt(keyMaxTokens),
		Temperature: viper.GetFloat64(keyTemperature),
	}
}

func commandTimeout() time.Duration {
	return exec.EffectiveTimeout(viper.GetDuration(keyCommandTimeout), exec.DefaultCommandTimeout)
}
