package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCommand() *cobra.Command {
	var username, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the collection backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			var err error
			if username == "" {
				if username, err = prompt(reader, cmd.OutOrStdout(), "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd.InOrStdin(), reader, cmd.OutOrStdout(), "Password: "); err != nil {
					return err
				}
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				session, err := a.guard.Authenticate(ctx, username, password, remember)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", true, "Keep the session for later commands")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				a.guard.Logout(ctx)
				return nil
			})
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				session := a.guard.Session()
				if session == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), session.Username)
				return nil
			})
		},
	}
}

// prompt prints label and reads one trimmed line
func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when in is a terminal,
// and falls back to reading a line from piped input
func promptPassword(in io.Reader, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !isatty.IsTerminal(file.Fd()) {
		return prompt(reader, out, label)
	}

	fmt.Fprint(out, label)
	secret, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// confirmer asks a yes/no question on the command's terminal
func confirmer(cmd *cobra.Command, assumeYes bool) func(string) bool {
	return func(question string) bool {
		if assumeYes {
			return true
		}
		answer, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), question+" [y/N] ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}
}
