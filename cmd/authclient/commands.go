package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/spf13/cobra"
)

// withApp builds the app for a command and releases it when the command returns
func withApp(overrides *config.Overrides, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), *overrides)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a, args)
	}
}

func newLoginCommand(overrides *config.Overrides) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password and store the token pair",
		RunE: withApp(overrides, func(cmd *cobra.Command, a *app, args []string) error {
			if password == "" {
				password = os.Getenv("AUTH_PASSWORD")
			}
			if password == "" {
				var err error
				if password, err = readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
					return err
				}
			}

			info, err := a.manager.Login(a.ctx, username, password)
			if err != nil {
				return err
			}
			if info == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", info.DisplayName())
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (env AUTH_PASSWORD, prompted when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCommand(overrides *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored credentials",
		RunE: withApp(overrides, func(cmd *cobra.Command, a *app, args []string) error {
			a.manager.Logout(a.ctx)
			return nil
		}),
	}
}

func newRefreshCommand(overrides *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new token pair",
		RunE: withApp(overrides, func(cmd *cobra.Command, a *app, args []string) error {
			if _, err := a.manager.Refresh(a.ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token refreshed")
			return nil
		}),
	}
}

func newWhoamiCommand(overrides *config.Overrides) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the stored user record",
		RunE: withApp(overrides, func(cmd *cobra.Command, a *app, args []string) error {
			var info credentials.UserInfo
			var err error
			if remote {
				info, err = a.manager.FetchCurrentUser(a.ctx)
			} else {
				info, err = a.manager.CurrentUser(a.ctx)
			}
			if err != nil {
				return a.sessionEnded(err)
			}
			if info == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			return writeIndented(cmd.OutOrStdout(), info)
		}),
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the record from the auth service and cache it")
	return cmd
}

func newFetchCommand(overrides *config.Overrides) *cobra.Command {
	var method, body string

	cmd := &cobra.Command{
		Use:   "fetch <path>",
		Short: "Send a request through the authenticated client and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(overrides, func(cmd *cobra.Command, a *app, args []string) error {
			var reqBody io.Reader
			if body != "" {
				reqBody = strings.NewReader(body)
			}
			req, err := http.NewRequestWithContext(a.ctx, strings.ToUpper(method), a.manager.URL(args[0]), reqBody)
			if err != nil {
				return err
			}
			if body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := a.manager.Client().Do(req)
			if err != nil {
				return a.sessionEnded(err)
			}
			defer resp.Body.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), resp.Status)
			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return a.sessionEnded(err)
			}
			if a.canceller.Target() != "" {
				return a.sessionEnded(nil)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&body, "data", "d", "", "JSON request body")
	return cmd
}

func newOpenCommand(overrides *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a page: run the page guard, then load the page",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(overrides, func(cmd *cobra.Command, a *app, args []string) error {
			allowed, err := a.guard.Check(a.ctx, args[0])
			if err != nil {
				return err
			}
			if !allowed {
				return a.sessionEnded(nil)
			}

			req, err := http.NewRequestWithContext(a.ctx, http.MethodGet, a.manager.URL(args[0]), nil)
			if err != nil {
				return err
			}
			resp, err := a.manager.Client().Do(req)
			if err != nil {
				return a.sessionEnded(err)
			}
			defer resp.Body.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], resp.Status)
			if a.canceller.Target() != "" {
				return a.sessionEnded(nil)
			}
			return nil
		}),
	}
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
