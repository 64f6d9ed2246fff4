// Copyright (c) 2025 The Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"parley/internal/api"
	"parley/internal/localstore"
)

// =============================================================================
// PROMPTS
// =============================================================================

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// =============================================================================
// LOGIN
// =============================================================================

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [user-id]",
		Short: "Sign in and store the auth token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			store, err := app.Store()
			if err != nil {
				return err
			}

			var userID string
			if len(args) == 1 {
				userID = args[0]
			} else {
				userID, err = promptLine("User ID: ")
				if err != nil {
					return err
				}
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			result, err := client.Login(cmd.Context(), userID, password)
			if err != nil {
				return err
			}

			info, err := client.GetUserInfo(cmd.Context(), userID)
			record := localstore.UserRecord{UserID: userID}
			if err == nil {
				record.FirstName = info.FirstName
				record.LastName = info.LastName
				record.Email = info.Email
			}

			if err := store.SetUser(record); err != nil {
				return err
			}
			if result.Token != "" {
				if err := store.SaveToken(result.Token); err != nil {
					return err
				}
			}

			fmt.Printf("Signed in as %s\n", record.DisplayName())
			return nil
		},
	}
}

// =============================================================================
// REGISTER
// =============================================================================

func newRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			first, err := promptLine("First name: ")
			if err != nil {
				return err
			}
			last, err := promptLine("Last name: ")
			if err != nil {
				return err
			}
			userID, err := promptLine("User ID: ")
			if err != nil {
				return err
			}
			email, err := promptLine("Email: ")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			_, err = client.Register(cmd.Context(), api.RegisterRequest{
				FirstName: first,
				LastName:  last,
				UserID:    userID,
				Email:     email,
				Password:  password,
			})
			if err != nil {
				return err
			}

			fmt.Println("Account created. Run 'parley login' to sign in.")
			return nil
		},
	}
}

// =============================================================================
// LOGOUT / WHOAMI
// =============================================================================

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			if err := store.DeleteToken(); err != nil {
				return err
			}
			if err := store.ClearUser(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.requireUser()
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}

			info, err := client.GetUserInfo(context.Background(), user.UserID)
			if err != nil {
				// Offline: fall back to the cached record.
				fmt.Printf("%s (%s)\n", user.DisplayName(), user.UserID)
				return nil
			}
			fmt.Printf("%s %s (%s) <%s>\n", info.FirstName, info.LastName, user.UserID, info.Email)
			return nil
		},
	}
}
