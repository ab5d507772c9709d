package cmd

import (
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version and effective configuration",
		Long: `Displays the gapfill build version, the Go version used to build it,
the config file in use and the provider fallback order.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version, goVersion := buildVersion()
			printVersion(cmd, version, goVersion, viper.ConfigFileUsed(), viper.GetStringSlice(providerOrderKey))
		},
	}
}

func buildVersion() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown", "unknown"
	}

	version := info.Main.Version
	if version == "" {
		version = "unknown"
	}

	return version, info.GoVersion
}

func printVersion(cmd *cobra.Command, version, goVersion, configFile string, order []string) {
	if configFile == "" {
		configFile = "defaults"
	}

	providers := "none"
	if len(order) > 0 {
		providers = strings.Join(order, ", ")
	}

	cmd.Printf("gapfill version\t%s\n", version)
	cmd.Printf("go version\t%s\n", goVersion)
	cmd.Printf("config file\t%s\n", configFile)
	cmd.Printf("providers\t%s\n", providers)
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
