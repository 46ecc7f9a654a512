package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/config"
	"go.klb.dev/clipflow/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change search and display settings",
		Long: `Settings live in <config-dir>/settings.toml. A running daemon reloads the
file when it changes, so "clipflow settings set" takes effect immediately.`,
	}
	cmd.AddCommand(
		newSettingsSubCmd("list", "List every setting with its current value", cobra.NoArgs, settingsList),
		newSettingsSubCmd("get <key>", "Print one setting", cobra.ExactArgs(1), settingsGet),
		newSettingsSubCmd("set <key> <value>", "Change a setting", cobra.ExactArgs(2), settingsSet),
		newSettingsSubCmd("reset [key...]", "Restore defaults (all settings when no key is given)", cobra.ArbitraryArgs, settingsReset),
	)
	return cmd
}

type settingsAction func(cmd *cobra.Command, s *settings.Settings, repo *settings.Repository, args []string) error

func newSettingsSubCmd(use, short string, args cobra.PositionalArgs, action settingsAction) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, a []string) error {
			setupCLILogging(v)
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			s, repo := loadSettings(cfg)
			return action(cmd, s, repo, a)
		},
	}
	cmd.Flags().String(config.KeyConfigDir, config.Defaults().ConfigDir, "directory holding settings.toml")
	cmd.Flags().String("log-level", "warn", "log level: debug|info|warn|error")
	addConfigFlag(cmd)
	return cmd
}

func settingsList(cmd *cobra.Command, s *settings.Settings, repo *settings.Repository, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KEY\tVALUE\tDEFAULT\tTYPE\tDESCRIPTION\n")
	values := s.Values()
	group := ""
	for i, d := range s.Registry().Descriptors() {
		if i == 0 || d.Group() != group {
			group = d.Group()
			fmt.Fprintf(w, "[%s]\t\t\t\t\n", group)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", d.Key, d.Format(values[d.Key]), d.Format(d.Default), describeKind(d), d.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !repo.Exists() {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(%s not found, showing defaults)\n", repo.Path())
	}
	return nil
}

func describeKind(d settings.Descriptor) string {
	switch {
	case d.Kind == settings.KindEnum:
		return strings.Join(d.Options, "|")
	case d.HasBounds:
		return fmt.Sprintf("%s %g..%g", d.Kind, d.Min, d.Max)
	default:
		return d.Kind.String()
	}
}

func settingsGet(cmd *cobra.Command, s *settings.Settings, _ *settings.Repository, args []string) error {
	d, ok := s.Registry().Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", settings.ErrUnknownKey, args[0])
	}
	v, _ := s.Get(d.Key)
	fmt.Fprintln(cmd.OutOrStdout(), d.Format(v))
	return nil
}

func settingsSet(cmd *cobra.Command, s *settings.Settings, repo *settings.Repository, args []string) error {
	if err := s.SetString(args[0], args[1]); err != nil {
		return err
	}
	if err := repo.Save(s); err != nil {
		return err
	}
	d, _ := s.Registry().Lookup(args[0])
	v, _ := s.Get(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", d.Key, d.Format(v))
	return nil
}

func settingsReset(cmd *cobra.Command, s *settings.Settings, repo *settings.Repository, args []string) error {
	keys := args
	if len(keys) == 0 {
		for _, d := range s.Registry().Descriptors() {
			keys = append(keys, d.Key)
		}
	}
	var errs []error
	for _, k := range keys {
		if err := s.Reset(k); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if err := repo.Save(s); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %d setting(s).\n", len(keys))
	return nil
}
