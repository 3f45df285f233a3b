package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/openmined/docsync/internal/config"
	"github.com/openmined/docsync/internal/logging"
	"github.com/openmined/docsync/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by every subcommand once the root pre-run hook has
// loaded the config and installed the logger.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	closeLog func() error
}

func newApp() *app {
	return &app{v: viper.New()}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "docsync",
		Short:             "Mirror local documents into a searchable remote store",
		Version:           version.Detailed(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.SortFlags = false
	pf.StringP("store", "s", "", "Store label (default: name of the working directory)")
	pf.StringP("backend", "b", "", "Remote backend: gemini or s3 (default: gemini)")
	pf.StringP("config", "c", "", "docsync config file")
	pf.BoolP("verbose", "v", false, "Debug logging on the console")

	_ = a.v.BindPFlag("store", pf.Lookup("store"))
	_ = a.v.BindPFlag("backend", pf.Lookup("backend"))
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))

	rootCmd.AddCommand(newUpsertCmd(a))
	rootCmd.AddCommand(newAskCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newPurgeCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red.Render("ERROR"), err)
		os.Exit(1)
	}
}

// setup loads .env, the config file, the environment and flags, then
// installs the default logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(a.v, cmd.Flag("config").Value.String())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Console: cmd.ErrOrStderr(),
		Verbose: cfg.Verbose,
		LogFile: cfg.LogFile,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.closeLog = closeLog
	slog.Debug("config loaded", "path", cfg.Path, "store", cfg.Store, "backend", cfg.Backend)
	return nil
}

func (a *app) close() {
	if a.closeLog == nil {
		return
	}
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "close log: %s\n", err)
	}
	a.closeLog = nil
}
