// Package commands implements the CLI commands for recipescrape.
package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "recipescrape",
	Short: "Harvest structured recipe records from recipe web pages",
	Long: `recipescrape turns recipe pages into JSON records: title, overview,
photo, yield, nutrition per serving, ingredients, steps, allergy badges
and tags.

Examples:
  # Harvest every page listed in a links file into ./recipes
  recipescrape scrape --links links.txt --out recipes

  # Expand a category page into recipe links first
  recipescrape scrape -u "https://example.com/breakfast/" \
      --follow "a.recipe-card" --next "a.next" --max-pages 3

  # Run extraction on saved pages without fetching
  recipescrape extract saved/*.html --format yaml`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.recipescrape.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	bindFlags(rootCmd.PersistentFlags(), "config", "debug", "quiet", "log-json")
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".recipescrape")
		viper.SetConfigType("yaml")
	}

	// RECIPESCRAPE_FETCH_MODE etc.
	viper.SetEnvPrefix("RECIPESCRAPE")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("command failed", "error", err)
	}
	return err
}

// bindFlags exposes flags to viper under snake_case keys so they can also
// come from the config file or RECIPESCRAPE_* variables.
func bindFlags(flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
}
