package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/nebula-graph-cli/internal/logging"
)

const (
	keyProfile         = "profile"
	keyURL             = "url"
	keyLogLevel        = "log-level"
	keyTransportScheme = "transport-scheme"
	keySecretBackend   = "secret-backend"

	envPrefix          = "NGC"
	defaultProfileName = "default"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ngc",
		Short:         "Nebula graph client (ngc): pooled sessions against graph servers",
		Long:          "ngc keeps connection profiles for graph servers, runs statements through a pooled session manager, and manages schemas and data from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyProfile, defaultProfileName, "Connection profile name (env NGC_PROFILE)")
	flags.String(keyURL, "", "Connection URL user:password@host:port[,host:port]/space, overrides --profile (env NGC_URL)")
	flags.String(keyLogLevel, logging.DefaultLevel, "Log level: debug, info, warn, error or none")

	settings := newSettings(rootCmd)

	app, err := wireApp(settings)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.configure(cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newProfileCmd(app),
		newCredentialCmd(app),
		newQueryCmd(app),
		newSpacesCmd(app),
		newSchemaCmd(app),
		newInsertCmd(app),
		newPoolCmd(app),
	)

	return rootCmd
}

// newSettings layers flags over NGC_* environment variables.
func newSettings(rootCmd *cobra.Command) *viper.Viper {
	settings := viper.New()
	settings.SetEnvPrefix(envPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	settings.SetDefault(keyTransportScheme, "ws")
	settings.SetDefault(keySecretBackend, "chain")

	for _, key := range []string{keyProfile, keyURL, keyLogLevel} {
		_ = settings.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}

	return settings
}
