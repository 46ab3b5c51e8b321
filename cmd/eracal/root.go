package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-eracal/internal/config"
	"github.com/tartampluch/go-eracal/internal/query"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.BinaryName,
		Short:         "Era-aware calendar fields, conversions and anniversary feeds",
		Long:          "Eracal expands days into calendar fields for Buddhist, Gregorian, ROC and custom era calendars, and publishes vCard birthdays as an iCalendar feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if v, _ := cmd.Flags().GetBool(config.FlagVersion); v {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
	}

	root.Flags().Bool(config.FlagVersion, false, config.FlagDescVersion)

	pf := root.PersistentFlags()
	pf.String(config.FlagConfig, "", config.FlagDescConfig)
	pf.Bool(config.FlagDebug, false, config.FlagDescDebug)
	pf.String(config.FlagCalendar, config.DefaultCalendar, config.FlagDescCalendar)
	pf.Bool(config.FlagLenient, config.DefaultLenient, config.FlagDescLenient)
	pf.String(config.FlagLocale, config.DefaultLocale, config.FlagDescLocale)
	pf.String(config.FlagVariants, "", config.FlagDescVariants)

	a.bind(root, config.KeyDebug, config.FlagDebug)
	a.bind(root, config.KeyCalendar, config.FlagCalendar)
	a.bind(root, config.KeyLenient, config.FlagLenient)
	a.bind(root, config.KeyLocale, config.FlagLocale)
	a.bind(root, config.KeyVariantsFile, config.FlagVariants)

	root.AddCommand(
		newFieldsCmd(a),
		newConvertCmd(a),
		newCalendarsCmd(a),
		newFeedCmd(a),
		newLoginCmd(a),
		newServeCmd(a),
	)
	return root
}

func newFieldsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdFields,
		Short: "Expand a day into its calendar fields",
		Long:  "Print every field of a day as JSON. The day is given by --jdn, by --year/--month/--day, or defaults to today.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}
			res, err := a.query.Fields(req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	addDayFlags(cmd)
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdConvert,
		Short: "Convert a day from one calendar to another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}
			target, err := cmd.Flags().GetString(config.FlagTarget)
			if err != nil {
				return err
			}
			res, err := a.query.Convert(req, target)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	addDayFlags(cmd)
	cmd.Flags().String(config.FlagTarget, "", config.FlagDescTarget)
	_ = cmd.MarkFlagRequired(config.FlagTarget)
	return cmd
}

func newCalendarsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdCalendars,
		Short: "List the registered calendars and their eras",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), a.query.Calendars(a.settings.Locale))
		},
	}
}

func addDayFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int(config.FlagJDN, 0, config.FlagDescJDN)
	f.Int(config.FlagYear, 0, config.FlagDescYear)
	f.Int(config.FlagMonth, 0, config.FlagDescMonth)
	f.Int(config.FlagDay, 1, config.FlagDescDay)
	f.Int(config.FlagEra, 0, config.FlagDescEra)
}

// request builds a query from the day flags. Only flags given on the command
// line pin the day number, year or era.
func (a *app) request(cmd *cobra.Command) (query.Request, error) {
	f := cmd.Flags()
	req := query.Request{
		Calendar: a.settings.Calendar,
		Lenient:  a.settings.Lenient,
		Locale:   a.settings.Locale,
	}

	var err error
	if req.Month, err = f.GetInt(config.FlagMonth); err != nil {
		return query.Request{}, err
	}
	if req.Day, err = f.GetInt(config.FlagDay); err != nil {
		return query.Request{}, err
	}

	optional := map[string]**int{
		config.FlagJDN:  &req.JDN,
		config.FlagYear: &req.Year,
		config.FlagEra:  &req.Era,
	}
	for name, dst := range optional {
		if !f.Changed(name) {
			continue
		}
		n, err := f.GetInt(name)
		if err != nil {
			return query.Request{}, err
		}
		*dst = &n
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
