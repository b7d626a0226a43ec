package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

func newCredentialCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage stored graph passwords",
	}

	cmd.AddCommand(newCredentialSetCmd(app), newCredentialRemoveCmd(app))

	return cmd
}

func newCredentialSetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set [KEY]",
		Short: "Store a password (default key: the selected profile's password ref)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := credentialKey(cmd, app, args)
			if err != nil {
				return err
			}

			if value == "" {
				value, err = readSecretLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			if err := app.secretStore.Put(cmd.Context(), key, value); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored credential %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Password value (read from stdin when empty)")

	return cmd
}

func newCredentialRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [KEY]",
		Short: "Remove a stored password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := credentialKey(cmd, app, args)
			if err != nil {
				return err
			}

			if err := app.secretStore.Delete(cmd.Context(), key); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed credential %s\n", key)
			return nil
		},
	}
}

func credentialKey(cmd *cobra.Command, app *app, args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}

	profile, err := app.resolveProfile(cmd.Context())
	if err != nil {
		return "", err
	}
	if profile.PasswordRef != "" {
		return profile.PasswordRef, nil
	}

	return domain.CredentialRef(profile.Name, profile.Pool.Username), nil
}

func readSecretLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read credential: %w", err)
	}

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("credential value is empty: pass --value or pipe it on stdin")
	}
	return line, nil
}
