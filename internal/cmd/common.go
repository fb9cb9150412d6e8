// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mia-platform/hooklog/internal/server"
	"github.com/mia-platform/hooklog/internal/source/file"
)

var (
	errNoArguments   = errors.New("no source name provided")
	errInvalidSource = errors.New("invalid source name provided")
	errMissingPath   = errors.New("the file source requires the --" + pathFlagName + " flag")

	// availableSources holds the list of available log sources and their description
	// for command completion and help messages.
	availableSources = map[string]string{
		"file":   "Follow a log file",
		"server": "Receive log records over HTTP",
	}
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errNoArguments):
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return nil
	case errors.Is(err, errInvalidSource), errors.Is(err, errMissingPath):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

func validArgsFunc(sources map[string]string) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var comps []string
		if len(args) == 0 {
			for name, description := range sources {
				if strings.HasPrefix(name, toComplete) {
					comps = append(comps, cobra.CompletionWithDesc(name, description))
				}
			}
		}

		return comps, cobra.ShellCompDirectiveNoFileComp
	}
}

// sourceFromName returns the log source registered under name.
func sourceFromName(ctx context.Context, name, path string, stats server.StatsFunc) (any, error) {
	switch name {
	case "file":
		return file.NewSource(path)
	case "server":
		srv, err := server.NewServer(ctx, stats)
		if err != nil {
			return nil, err
		}
		return server.NewIngestSource(srv), nil
	default:
		return nil, fmt.Errorf("%w: %s", errInvalidSource, name)
	}
}
