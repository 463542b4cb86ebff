package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %s\n", err)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	var overrides config.Overrides
	var quiet bool

	rootCmd := &cobra.Command{
		Use:   "authclient",
		Short: "Bearer token client for the auth service",
		Long: `Logs in against the auth service, keeps the token pair in a credential store
scoped to the service origin, and sends requests with the stored bearer token.

A 401 from the service clears the stored credentials and redirects to the login page.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c := config.NewWithOverrides(overrides)
			setupLogging(c)
			if !quiet && c.GetEnv() == "DEV" {
				displayAppname(c.GetAppName())
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&overrides.BaseURL, "base-url", "", "auth service origin (env BASE_URL)")
	flags.StringVar(&overrides.StoreType, "store", "", "credential store: file or redis (env STORE)")
	flags.StringVar(&overrides.StoreDir, "store-dir", "", "directory for the file store (env STORE_DIR)")
	flags.StringVar(&overrides.RedisURL, "redis-url", "", "Redis URL for the redis store (env REDIS_URL)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "do not print the banner")

	rootCmd.AddCommand(
		newLoginCommand(&overrides),
		newLogoutCommand(&overrides),
		newRefreshCommand(&overrides),
		newWhoamiCommand(&overrides),
		newFetchCommand(&overrides),
		newOpenCommand(&overrides),
	)
	return rootCmd
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
