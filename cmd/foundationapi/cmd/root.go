package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayopaul/ejidike-foundation-sub002/cmd/foundationapi/cmd/users"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/config"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
)

// version is stamped at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "foundationapi",
	Short: "Foundation portal API server",
	Long: `Foundation portal API server. Serves the role-gated portal API for
applicants, mentors, partners and admins, and manages its database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = logging.New(os.Stderr, cfg.Debug, cfg.LogFormat)
		slog.SetDefault(logger)
		users.Configure(cfg, logger)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("db-url", "", "Database connection URL (env: FOUNDATION_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: FOUNDATION_SERVER_ADDR)")
	flags.String("server-url", "", "Public base URL (env: FOUNDATION_SERVER_URL)")
	flags.Bool("debug", false, "Enable debug logging (env: FOUNDATION_DEBUG)")

	_ = viper.BindPFlag("database_url", flags.Lookup("db-url"))
	_ = viper.BindPFlag("server_addr", flags.Lookup("server-addr"))
	_ = viper.BindPFlag("server_url", flags.Lookup("server-url"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
