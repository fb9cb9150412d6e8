// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	runCmdUsageTemplate = "run [%s]"
	runCmdShort         = "start collecting logs from a source"
	runCmdLong          = `Start collecting logs from a source.
	Every record read from the source is written to the standard output, warnings
	and errors are also batched and delivered to the configured webhook.

	The webhook and the logger are configured with a YAML file and with environment
	variables, please refer to the documentation for more details.

	The available sources are:
	- file: follow a log file
	- server: receive log records over HTTP`

	runCmdExample = `# Follow a log file and deliver warnings and errors to the webhook
	hooklog run file --path /var/log/app.log --config hooklog.yaml

	# Receive log records over HTTP and print the webhook messages instead of sending them
	hooklog run server --local-output`
)

// RunCmd returns the Cobra command that starts collecting logs from a source.
func RunCmd() *cobra.Command {
	flags := &flags{}
	allSources := slices.Sorted(maps.Keys(availableSources))
	cmd := &cobra.Command{
		Use:     fmt.Sprintf(runCmdUsageTemplate, strings.Join(allSources, "|")),
		Short:   heredoc.Doc(runCmdShort),
		Long:    heredoc.Doc(runCmdLong),
		Example: heredoc.Doc(runCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		ValidArgsFunction: validArgsFunc(availableSources),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.toOptions(cmd, args)
			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
