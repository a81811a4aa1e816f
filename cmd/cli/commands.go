package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"minimalistnotes/internal/client"
	"minimalistnotes/internal/model"
)

var signinCmd = &cobra.Command{
	Use:   "signin <email>",
	Short: "Sign in with email and password, creating the account on first use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return err
			}
		}
		res, err := c.SignIn(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if res.IsNewUser {
			pterm.Success.Printfln("Account created for %s", res.User.DisplayEmail)
		} else {
			pterm.Success.Printfln("Welcome back, %s", res.User.Name)
		}
		return nil
	},
}

var googleCmd = &cobra.Command{
	Use:   "google",
	Short: "Sign in with Google",
	Long: `Obtains a Google ID token from MINIMALISTNOTES_GOOGLE_ID_TOKEN, then from
--google-token-file, then through a browser sign-in, and exchanges it for a session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		browser := client.BrowserConfig{
			ClientID:     viper.GetString("google-client-id"),
			ClientSecret: viper.GetString("google-client-secret"),
			OpenURL: func(url string) error {
				pterm.Info.Println("Open this URL to sign in with Google:")
				pterm.Println(url)
				return nil
			},
		}
		browserAttempt := client.BrowserAttempt(browser)
		browserAttempt.Timeout = 3 * time.Minute

		res, err := c.SignInWithGoogle(cmd.Context(),
			client.EnvAttempt("MINIMALISTNOTES_GOOGLE_ID_TOKEN"),
			client.FileAttempt(viper.GetString("google-token-file")),
			browserAttempt,
		)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Signed in with Google as %s", res.User.DisplayEmail)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"restore"},
	Short:   "Restore the stored session and show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		snap, err := restored(cmd.Context(), c)
		if err != nil {
			return err
		}
		u := snap.User
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"ID", u.ID},
			{"Email", u.DisplayEmail},
			{"Name", u.Name},
			{"Methods", fmt.Sprint(u.AuthMethods)},
		}).Render()
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newController()
		if err != nil {
			return err
		}
		if err := c.SignOut(); err != nil {
			return err
		}
		pterm.Success.Println("Signed out")
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List the signed-in user's notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return restoreAndLoad(cmd, func(ctx context.Context, api *client.APIClient, user *model.User, bearer string) (func(), error) {
			notes, err := api.ListNotes(ctx, bearer, user.ID)
			if err != nil {
				return nil, err
			}
			data := pterm.TableData{{"ID", "Title", "Content", "Updated"}}
			for _, n := range notes {
				data = append(data, []string{n.ID, n.Title, n.Content, n.UpdatedAt.Format(time.RFC822)})
			}
			return renderTable(data), nil
		})
	},
}

var notesAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		return restoreAndLoad(cmd, func(ctx context.Context, api *client.APIClient, user *model.User, bearer string) (func(), error) {
			note, err := api.CreateNote(ctx, bearer, user.ID, title, args[0])
			if err != nil {
				return nil, err
			}
			return func() { pterm.Success.Printfln("Note %s created", note.ID) }, nil
		})
	},
}

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "List the signed-in user's todos",
	RunE: func(cmd *cobra.Command, args []string) error {
		return restoreAndLoad(cmd, func(ctx context.Context, api *client.APIClient, user *model.User, bearer string) (func(), error) {
			todos, err := api.ListTodos(ctx, bearer, user.ID)
			if err != nil {
				return nil, err
			}
			data := pterm.TableData{{"ID", "Done", "Text"}}
			for _, td := range todos {
				data = append(data, []string{td.ID, strconv.FormatBool(td.Completed), td.Text})
			}
			return renderTable(data), nil
		})
	},
}

var timersCmd = &cobra.Command{
	Use:   "timers",
	Short: "List the signed-in user's timers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return restoreAndLoad(cmd, func(ctx context.Context, api *client.APIClient, user *model.User, bearer string) (func(), error) {
			timers, err := api.ListTimers(ctx, bearer, user.ID)
			if err != nil {
				return nil, err
			}
			data := pterm.TableData{{"ID", "Title", "Elapsed"}}
			for _, tm := range timers {
				elapsed := time.Duration(tm.ElapsedTime) * time.Millisecond
				data = append(data, []string{tm.ID, tm.Title, elapsed.String()})
			}
			return renderTable(data), nil
		})
	},
}

func init() {
	signinCmd.Flags().String("password", "", "Password (prompted when empty)")
	notesAddCmd.Flags().String("title", "Note", "Note title")
	notesCmd.AddCommand(notesAddCmd)
}

// apiLoader is a client.Loader that also receives the API client.
type apiLoader func(ctx context.Context, api *client.APIClient, user *model.User, bearer string) (func(), error)

// restoreAndLoad restores the stored session and runs load as its loader, so
// the output only appears for the session that was restored.
func restoreAndLoad(cmd *cobra.Command, load apiLoader) error {
	var api *client.APIClient
	c, err := newController(client.WithLoaders(func(ctx context.Context, user *model.User, bearer string) (func(), error) {
		return load(ctx, api, user, bearer)
	}))
	if err != nil {
		return err
	}
	api = c.API()
	_, err = restored(cmd.Context(), c)
	return err
}

func renderTable(data pterm.TableData) func() {
	return func() {
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			pterm.Error.Println(err)
		}
	}
}
