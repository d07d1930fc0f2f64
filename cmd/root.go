package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sleepywoodpecker/rp-goes-audio/cmd/record"
	"sleepywoodpecker/rp-goes-audio/cmd/sensors"
	"sleepywoodpecker/rp-goes-audio/cmd/serve"
	"sleepywoodpecker/rp-goes-audio/cmd/stream"
	"sleepywoodpecker/rp-goes-audio/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "rp-goes-audio",
		Short: "Audio capture and streaming rig",
		Long: "Captures microphone audio into fixed-size blocks and streams them " +
			"over a serial or UDP link, with a climate sensor sidecar.",
		SilenceUsage: true,
	}

	setupFlags(rootCmd, &cfgFile)

	subcommands := []*cobra.Command{
		stream.Command(settings),
		serve.Command(settings),
		record.Command(settings),
		sensors.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return conf.Load(settings, cfgFile)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, cfgFile *string) error {
	rootCmd.PersistentFlags().StringVar(cfgFile, "config", "", "path to a config.yaml, defaults to the search path")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().String("log", conf.DefaultLogPath, "log file path, empty for stdout only")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	if err := viper.BindPFlag("logpath", rootCmd.PersistentFlags().Lookup("log")); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
