// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the movie-recommender CLI.
// Subcommands serve the web UI, print recommendations, list catalog
// titles, and pack catalog artifacts into a SQLite bundle.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/movie-recommender/internal/logging"
	"github.com/pdiddy/movie-recommender/internal/secrets"
	"github.com/pdiddy/movie-recommender/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the movie-recommender CLI.
var rootCmd = &cobra.Command{
	Use:   "movie-recommender",
	Short: "Content-based movie recommendations with TMDb metadata",
	Long: `movie-recommender ranks movies by a precomputed similarity matrix and
decorates the results with posters, overviews, release dates, ratings and
trailers from TMDb.

The catalog is a movie list plus an N x N similarity matrix, or a SQLite
bundle made from them with the pack command. Use serve for the web UI and
recommend for the same results on the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
		if used := viper.ConfigFileUsed(); used != "" {
			logging.Debug().Str("file", used).Msg("using config file")
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logging.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./movie-recommender.yaml or ~/.config/movie-recommender/movie-recommender.yaml)")
	pf.String("secrets-dir", ".secrets", "directory of secret files (tmdb-api-key)")
	pf.String("movies", "", "movie list artifact (.json, .yaml, optionally .gz)")
	pf.String("matrix", "", "similarity matrix artifact (.simx or .json, optionally .gz)")
	pf.String("bundle", "", "SQLite catalog bundle (overrides --movies and --matrix)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	bindFlag("secrets_dir", pf.Lookup("secrets-dir"))
	bindFlag("catalog.movies_path", pf.Lookup("movies"))
	bindFlag("catalog.matrix_path", pf.Lookup("matrix"))
	bindFlag("catalog.bundle_path", pf.Lookup("bundle"))
	bindFlag("log.level", pf.Lookup("log-level"))
	bindFlag("log.format", pf.Lookup("log-format"))

	setDefaults()
}

// setDefaults registers every config key so environment variables and
// Unmarshal see them even when no config file exists.
func setDefaults() {
	viper.SetDefault("catalog.movies_path", filepath.Join("data", "movies.json"))
	viper.SetDefault("catalog.matrix_path", filepath.Join("data", "similarity.simx"))
	viper.SetDefault("catalog.bundle_path", "")

	viper.SetDefault("tmdb.api_key", "")
	viper.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	viper.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	viper.SetDefault("tmdb.language", "en-US")
	viper.SetDefault("tmdb.requests_per_second", 20.0)
	viper.SetDefault("tmdb.max_retries", 3)
	viper.SetDefault("tmdb.workers", 4)
	viper.SetDefault("tmdb.timeout", "10s")
	viper.SetDefault("tmdb.user_agent", "movie-recommender/"+version)

	viper.SetDefault("recommend.k", 10)
	viper.SetDefault("recommend.min_rating", 5.0)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.rate_limit", 120)
	viper.SetDefault("server.trust_proxy", false)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("movie-recommender")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "movie-recommender"))
		}
	}

	viper.SetEnvPrefix("MOVIE_RECOMMENDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
}

// appConfig decodes the merged flag, env, file and default settings.
func appConfig() (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.TMDB.APIKey = secrets.TMDBKey(cfg.TMDB.APIKey, loadedSecrets)
	return cfg, nil
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
