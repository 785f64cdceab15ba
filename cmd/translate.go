package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagetranslator/internal/apperr"
	"github.com/lehigh-university-libraries/imagetranslator/internal/languages"
)

// targetName resolves a catalog code or name to the display name sent to
// the model. Unknown values pass through unchanged.
func targetName(s string) string {
	s = strings.TrimSpace(s)
	if lang, ok := languages.Resolve(s); ok {
		return lang.Name
	}
	return s
}

func newTranslateCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "translate [text|-]",
		Short: "Translate text into another language",
		Long: `Translates text given as arguments, or read from stdin, into the
target language. The target may be a language code (fr, pt-BR) or a name
(French).`,
		Example: `  imagetranslator translate --to French "Good morning"
  imagetranslator extract sign.jpg | imagetranslator translate --to ja`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closePrefs, err := buildI18n(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return localize(store, apperr.Invalid("error.noText"))
			}
			if strings.TrimSpace(target) == "" {
				return localize(store, apperr.Invalid("error.noLanguage"))
			}

			svc, err := buildServices(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			out, err := svc.translation.Translate(ctx, text, targetName(target))
			if err != nil {
				return localize(store, err)
			}
			notify(cmd.ErrOrStderr(), store, "success.translated")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language code or name")

	return cmd
}

func newImproveCmd(a *app) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "improve [text|-]",
		Short: "Polish a translation",
		Long: `Rewrites a translation so it reads fluently and idiomatically while
keeping its meaning and tone.`,
		Example: `  imagetranslator improve --lang French "Bonjour tout"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closePrefs, err := buildI18n(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return localize(store, apperr.Invalid("error.noTranslation"))
			}
			if strings.TrimSpace(lang) == "" {
				return localize(store, apperr.Invalid("error.noLanguage"))
			}

			svc, err := buildServices(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			out, err := svc.translation.Improve(ctx, text, targetName(lang))
			if err != nil {
				return localize(store, err)
			}
			notify(cmd.ErrOrStderr(), store, "success.improved")
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language of the translation, code or name")

	return cmd
}
