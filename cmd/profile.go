package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage connection profiles",
	}

	cmd.AddCommand(
		newProfileAddCmd(app),
		newProfileListCmd(app),
		newProfileShowCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileAddCmd(app *app) *cobra.Command {
	var (
		addresses      []string
		minSize        int
		maxSize        int
		connectTimeout time.Duration
		idleTime       time.Duration
		username       string
		password       string
		passwordRef    string
		space          string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add or replace a connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if passwordRef == "" {
				passwordRef = domain.CredentialRef(name, username)
			}

			profile := domain.Profile{
				Name: name,
				Pool: domain.PoolConfig{
					Addresses:      addresses,
					MinSize:        minSize,
					MaxSize:        maxSize,
					ConnectTimeout: connectTimeout,
					IdleTimeout:    idleTime,
					Username:       username,
				},
				PasswordRef: passwordRef,
				Space:       space,
			}
			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return err
			}

			if password != "" {
				if err := app.secretStore.Put(cmd.Context(), passwordRef, password); err != nil {
					return fmt.Errorf("store password for profile %s: %w", name, err)
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s (%s)\n", name, strings.Join(addresses, ", "))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&addresses, "address", nil, "Graph server address host:port (repeatable)")
	cmd.Flags().IntVar(&minSize, "min-size", domain.DefaultMinPoolSize, "Connections opened up front")
	cmd.Flags().IntVar(&maxSize, "max-size", domain.DefaultMaxPoolSize, "Upper bound on open connections")
	cmd.Flags().DurationVar(&connectTimeout, "connect-timeout", 0, "Handshake timeout per connection (0 = none)")
	cmd.Flags().DurationVar(&idleTime, "idle-time", 0, "Idle time recorded with the profile")
	cmd.Flags().StringVar(&username, "username", "root", "Graph user")
	cmd.Flags().StringVar(&password, "password", "", "Password to store in the secret store")
	cmd.Flags().StringVar(&passwordRef, "password-ref", "", "Secret-store key for the password (default nebula/<profile>/<user>)")
	cmd.Flags().StringVar(&space, "space", "", "Default graph space")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connection profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured.")
				return nil
			}

			for _, profile := range profiles {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					profile.Name,
					strings.Join(profile.Pool.Addresses, ","),
					profile.Pool.Username,
					profile.Space,
				)
			}
			return nil
		},
	}
}

type profileView struct {
	Name           string   `json:"name"`
	Addresses      []string `json:"addresses"`
	MinSize        int      `json:"min_size"`
	MaxSize        int      `json:"max_size"`
	ConnectTimeout string   `json:"connect_timeout"`
	IdleTime       string   `json:"idle_time"`
	Username       string   `json:"username"`
	PasswordRef    string   `json:"password_ref,omitempty"`
	Space          string   `json:"space,omitempty"`
}

func newProfileView(profile domain.Profile) profileView {
	return profileView{
		Name:           profile.Name,
		Addresses:      profile.Pool.Addresses,
		MinSize:        profile.Pool.MinSize,
		MaxSize:        profile.Pool.MaxSize,
		ConnectTimeout: profile.Pool.ConnectTimeout.String(),
		IdleTime:       profile.Pool.IdleTimeout.String(),
		Username:       profile.Pool.Username,
		PasswordRef:    profile.PasswordRef,
		Space:          profile.Space,
	}
}

func newProfileShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show a connection profile (default: the selected one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				profile domain.Profile
				err     error
			)
			if len(args) == 1 {
				profile, err = app.profiles.GetByName(cmd.Context(), args[0])
			} else {
				profile, err = app.resolveProfile(cmd.Context())
			}
			if err != nil {
				return err
			}

			view := newProfileView(profile)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "name: %s\n", view.Name)
			_, _ = fmt.Fprintf(out, "addresses: %s\n", strings.Join(view.Addresses, ", "))
			_, _ = fmt.Fprintf(out, "pool size: %d..%d\n", view.MinSize, view.MaxSize)
			_, _ = fmt.Fprintf(out, "connect timeout: %s\n", view.ConnectTimeout)
			_, _ = fmt.Fprintf(out, "idle time: %s\n", view.IdleTime)
			_, _ = fmt.Fprintf(out, "username: %s\n", view.Username)
			if view.PasswordRef != "" {
				_, _ = fmt.Fprintf(out, "password ref: %s\n", view.PasswordRef)
			}
			if view.Space != "" {
				_, _ = fmt.Fprintf(out, "space: %s\n", view.Space)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	var keepCredential bool

	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a connection profile and its stored password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profiles.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.profiles.Delete(cmd.Context(), profile.Name); err != nil {
				return err
			}

			if !keepCredential && profile.PasswordRef != "" {
				if err := app.secretStore.Delete(cmd.Context(), profile.PasswordRef); err != nil {
					return fmt.Errorf("remove password for profile %s: %w", profile.Name, err)
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s\n", profile.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepCredential, "keep-credential", false, "Keep the stored password")

	return cmd
}
