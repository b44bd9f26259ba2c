package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/puppyjudge/internal/app"
	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/logging"
	"github.com/ppiankov/puppyjudge/internal/model"
)

// Set with -ldflags "-X github.com/ppiankov/puppyjudge/internal/cli.Version=..."
var Version = "v0.3.0"

var (
	cfgFile string
	verbose bool
)

var envReplacer = strings.NewReplacer(".", "_")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "puppyjudge",
	Short: "Puppy Judge - an AI court for couples' arguments",
	Long: `Puppy Judge settles couples' arguments.

Describe what happened, optionally give both sides and screenshots, and a
judge (cute or toxic) issues a verdict: the core conflict, an analysis, a
responsibility split that sums to 100%, and advice.

Unhappy? Appeal to the intermediate and then the high court within the
appeal window. Share verdicts to the town square where others vote and
comment.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Puppy Judge.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("puppyjudge %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.puppyjudge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("provider", "", "verdict provider (gemini, openai, anthropic, ollama)")
	rootCmd.PersistentFlags().String("model", "", "model name")
	rootCmd.PersistentFlags().String("storage", "", "storage backend (memory, disk, layered, redis, sqlite)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// configDir is ~/.puppyjudge
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".puppyjudge"), nil
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), *model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PUPPYJUDGE_*, e.g. PUPPYJUDGE_LLM_PROVIDER
	viper.SetEnvPrefix("PUPPYJUDGE")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg model.Config) {
	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)
	v.SetDefault("llm.http_proxy", cfg.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", cfg.LLM.HTTPSProxy)

	v.SetDefault("court.appeal_window", cfg.Court.AppealWindow)
	v.SetDefault("court.transition_delay", cfg.Court.TransitionDelay)
	v.SetDefault("court.normalize_verdicts", cfg.Court.NormalizeVerdict)
	v.SetDefault("court.default_persona", string(cfg.Court.DefaultPersona))

	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.redis_url", cfg.Storage.RedisURL)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.memory_ttl", cfg.Storage.MemoryTTL)
	v.SetDefault("storage.seed_square", cfg.Storage.SeedSquare)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.requests_per_second", cfg.Server.RequestsPerSecond)
	v.SetDefault("server.burst_size", cfg.Server.BurstSize)
	v.SetDefault("server.session_ttl", cfg.Server.SessionTTL)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)

	v.SetDefault("batch.workers", cfg.Batch.Workers)
	v.SetDefault("batch.requests_per_second", cfg.Batch.RequestsPerSecond)
	v.SetDefault("batch.burst_size", cfg.Batch.BurstSize)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// loadConfig resolves flags > env > file > defaults into a Config
func loadConfig(v *viper.Viper) (model.Config, error) {
	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error reading configuration: %w", err)
	}
	if p, ok := model.ParsePersona(string(cfg.Court.DefaultPersona)); ok {
		cfg.Court.DefaultPersona = p
	}
	return cfg, nil
}

// newApp builds the application for a one-shot command. Info logs are
// suppressed unless asked for so they do not drown the command output.
func newApp(ctx context.Context) (*app.App, error) {
	return buildApp(ctx, true)
}

func buildApp(ctx context.Context, quiet bool) (*app.App, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if quiet && !verbose && !viper.InConfig("logging") && os.Getenv("PUPPYJUDGE_LOGGING_LEVEL") == "" {
		cfg.Logging.Level = "warn"
	}
	cfg.Logging = logging.Verbose(cfg.Logging, verbose)
	return app.New(ctx, cfg)
}

// stderrNotifier prints failure notices for the terminal user
type stderrNotifier struct{}

func (stderrNotifier) Notify(n court.Notice) {
	fmt.Fprintf(os.Stderr, "\n⚠️  %s\n", n.Message)
	if verbose && n.Err != "" {
		fmt.Fprintf(os.Stderr, "    %s\n", n.Err)
	}
}
