// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/hooklog/internal/destination"
	"github.com/mia-platform/hooklog/internal/destination/discord"
	"github.com/mia-platform/hooklog/internal/destination/writer"
)

const (
	configFlagName  = "config"
	configFlagShort = "c"
	configFlagUsage = "Path to the YAML configuration file, defaults to the value of the " + configEnvName + " environment variable"
	configEnvName   = "HOOKLOG_CONFIG"

	pathFlagName  = "path"
	pathFlagUsage = "Path of the log file to follow, required by the file source"

	localOutputFlagName  = "local-output"
	localOutputFlagUsage = "If set, writes the webhook messages to stdout instead of sending them to the remote"
	defaultLocalOutput   = false
)

// flags collects the CLI options of the run command.
type flags struct {
	configPath  string
	filePath    string
	localOutput bool
}

// addFlags registers the CLI flags on cmd.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, configFlagName, configFlagShort, "", configFlagUsage)
	cmd.Flags().StringVar(&f.filePath, pathFlagName, "", pathFlagUsage)
	cmd.Flags().BoolVar(&f.localOutput, localOutputFlagName, defaultLocalOutput, localOutputFlagUsage)
}

// toOptions builds an options instance from the parsed flags and CLI arguments.
func (f *flags) toOptions(cmd *cobra.Command, args []string) *options {
	sourceName := ""
	if len(args) > 0 {
		sourceName = args[0]
	}

	configPath := f.configPath
	if configPath == "" {
		configPath = os.Getenv(configEnvName)
	}

	senderGetter := discord.NewDestination
	if f.localOutput {
		out := cmd.OutOrStdout()
		senderGetter = func(context.Context, string) (destination.Sender, error) {
			return writer.NewDestination(out), nil
		}
	}

	return &options{
		sourceName:   strings.ToLower(sourceName),
		configPath:   configPath,
		filePath:     f.filePath,
		output:       cmd.OutOrStdout(),
		senderGetter: senderGetter,
		sourceGetter: sourceFromName,
	}
}
