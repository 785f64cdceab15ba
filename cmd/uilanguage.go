package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUILanguageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui-language",
		Short: "Show or change the interface language",
		Long: `Manages the language used for notifications and messages. The choice
is saved in the preferences database and used by every command and by serve.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the interface language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closePrefs, err := buildI18n(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()
			fmt.Fprintln(cmd.OutOrStdout(), store.Language())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <language>",
		Short:   "Change the interface language",
		Example: `  imagetranslator ui-language set zh`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closePrefs, err := buildI18n(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()
			if err := store.SetLanguage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Language())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the supported interface languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closePrefs, err := buildI18n(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()
			current := store.Language()
			for _, l := range store.Languages() {
				marker := " "
				if l == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, l)
			}
			return nil
		},
	})

	return cmd
}
