package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/coursehub/coursehub-gateway/internal/api"
)

var readPasswordFunc = term.ReadPassword // mockable

func newLoginCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in, the password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("the --email flag is required")
			}
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password:")
			pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			result, err := a.client.Auth.Login(cmd.Context(), api.LoginInput{Email: email, Password: string(pwd)})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result.User)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "the email to sign in with")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.client.Auth.Logout(cmd.Context())
			if err != nil {
				// the local session is gone either way
				fmt.Fprintln(cmd.ErrOrStderr(), "the backend did not confirm the logout:", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), user)
		},
	}
}

// tokenClaims is printed for the current credential, the signature is not verified
type tokenClaims struct {
	Format string         `json:"format" yaml:"format"`
	Claims map[string]any `json:"claims,omitempty" yaml:"claims,omitempty"`
}

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the claims of the current credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			credential := a.gateway.Credential()
			if credential.Empty() {
				return errors.New("not signed in")
			}
			return a.print(cmd.OutOrStdout(), inspectToken(credential.Value))
		},
	}
}

func inspectToken(value string) tokenClaims {
	if strings.Count(value, ".") != 2 {
		return tokenClaims{Format: "opaque"}
	}
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(value, claims)
	if err != nil {
		return tokenClaims{Format: "opaque"}
	}
	return tokenClaims{Format: "jwt", Claims: claims}
}
