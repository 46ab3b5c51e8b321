package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/feed"
)

func newFeedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdFeed,
		Short: "Generate the anniversary feed from a vCard source",
		Long:  "Read birthdays and anniversaries from a local .vcf file or a CardDAV/WebDAV URL and print them as an iCalendar feed, or as a list of upcoming dates with --list.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			ics, entries, _, err := gen.RunSync(cmd.Context(), a.syncConfig())
			if err != nil {
				return err
			}

			if list, _ := cmd.Flags().GetBool(config.FlagList); list {
				return a.writeUpcoming(cmd.OutOrStdout(), gen, entries)
			}

			output, _ := cmd.Flags().GetString(config.FlagOutput)
			if output == "" {
				_, err = cmd.OutOrStdout().Write(ics)
				return err
			}
			if err := os.WriteFile(output, ics, config.FilePermUserRW); err != nil {
				return fmt.Errorf("%s: %w", config.ErrOutputWrite, err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String(config.FlagSourceMode, config.SourceModeLocal, config.FlagDescSourceMode)
	f.String(config.FlagLocalPath, "", config.FlagDescLocalPath)
	f.String(config.FlagWebURL, "", config.FlagDescWebURL)
	f.String(config.FlagWebUser, "", config.FlagDescWebUser)
	f.String(config.FlagReminder, "", config.FlagDescReminder)
	f.StringP(config.FlagOutput, "o", "", config.FlagDescOutput)
	f.Bool(config.FlagList, false, config.FlagDescList)

	a.bind(cmd, config.KeySourceMode, config.FlagSourceMode)
	a.bind(cmd, config.KeyLocalPath, config.FlagLocalPath)
	a.bind(cmd, config.KeyWebURL, config.FlagWebURL)
	a.bind(cmd, config.KeyWebUser, config.FlagWebUser)
	a.bind(cmd, config.KeyReminder, config.FlagReminder)
	return cmd
}

// writeUpcoming prints one line per entry, soonest first.
func (a *app) writeUpcoming(w io.Writer, gen *feed.Generator, entries []feed.Entry) error {
	feed.SortUpcoming(entries)
	for _, e := range entries {
		year := strconv.Itoa(e.EraYear) + " " + a.formatter.EraName(a.settings.Locale, gen.Variant, e.Era)
		if _, err := fmt.Fprintf(w, config.MsgUpcomingLine,
			e.NextOccurrence.Format(config.DateFormatFullDash), year, e.Name, e.Kind); err != nil {
			return fmt.Errorf("%s: %w", config.ErrOutputWrite, err)
		}
	}
	return nil
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdLogin,
		Short: "Save the vCard URL password in the OS keyring",
		Long:  "Read a password from stdin and store it in the OS keyring for the given user, or for the configured web user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString(config.FlagWebUser)
			if user == "" {
				user = a.settings.Feed.WebUser
			}
			if user == "" {
				return errors.New(config.ErrWebUserEmpty)
			}

			fmt.Fprint(cmd.ErrOrStderr(), config.PromptPassword)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
			}

			if err := feed.StorePassword(user, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.MsgPasswordStore, user)
			return nil
		},
	}
	cmd.Flags().String(config.FlagWebUser, "", config.FlagDescWebUser)
	return cmd
}
