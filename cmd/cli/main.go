package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"minimalistnotes/internal/client"
	apperrors "minimalistnotes/internal/errors"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Command line client for the MinimalistNotes API",
	Long: `notes signs in to a MinimalistNotes server, keeps the session between runs
and lists or adds notes, todos and timers for the signed-in user.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(describe(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "http://localhost:3000", "Base URL of the API server")
	flags.String("credential-file", "", "Where the session is stored (defaults to the user config dir)")
	flags.Bool("reverify", true, "Re-verify a stored Google sign-in with the server on restore")
	flags.String("google-client-id", "", "OAuth client id for browser sign-in with Google")
	flags.String("google-client-secret", "", "OAuth client secret for browser sign-in with Google")
	flags.String("google-token-file", "", "File holding a Google ID token")

	rootCmd.AddCommand(signinCmd, googleCmd, restoreCmd, signoutCmd, notesCmd, todosCmd, timersCmd)
}

func initConfig() {
	viper.SetEnvPrefix("MINIMALISTNOTES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		pterm.Warning.Printfln("bind flags: %v", err)
	}
}

func newController(opts ...client.Option) (*client.Controller, error) {
	path := viper.GetString("credential-file")
	if path == "" {
		var err error
		if path, err = client.DefaultCredentialPath(); err != nil {
			return nil, err
		}
	}
	api := client.NewAPIClient(viper.GetString("api-url"), nil)
	opts = append([]client.Option{client.WithReverifyFederated(viper.GetBool("reverify"))}, opts...)
	return client.NewController(api, client.NewFileCredentialStore(path), opts...), nil
}

// restored brings back the stored session or fails with a hint to sign in.
func restored(ctx context.Context, c *client.Controller) (client.Snapshot, error) {
	snap, err := c.Restore(ctx)
	if err != nil {
		return snap, err
	}
	if snap.State != client.Restored {
		if snap.Err != nil {
			return snap, fmt.Errorf("not signed in: %w", snap.Err)
		}
		return snap, errors.New("not signed in, run `notes signin` or `notes google`")
	}
	return snap, nil
}

func describe(err error) string {
	var wrong *apperrors.WrongMethodError
	var transport *client.TransportError
	switch {
	case errors.As(err, &wrong):
		return wrong.Error()
	case errors.As(err, &transport):
		return "cannot reach the server: " + transport.Err.Error()
	default:
		return err.Error()
	}
}
