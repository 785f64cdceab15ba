package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagetranslator/internal/detect"
	"github.com/lehigh-university-libraries/imagetranslator/internal/images"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the text of an image",
		Long: `Sends an image to the vision model and prints the text it contains,
keeping the original layout. The image may be a file path, an http(s) URL
or a data URI.`,
		Example: `  imagetranslator extract menu.jpg
  imagetranslator extract https://example.com/sign.png --detect`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closePrefs, err := buildI18n(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			img, err := images.NewFetcher().Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", store.T("error.invalidFile"), err)
			}

			svc, err := buildServices(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			text, err := svc.ocr.Extract(ctx, img.DataURI())
			if err != nil {
				return localize(store, err)
			}

			if a.cfg.Detect.Enabled {
				if lang, ok := detect.New().Detect(text); ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "Detected language: %s (%s)\n", lang.Name, lang.NativeName)
				}
			}
			notify(cmd.ErrOrStderr(), store, "success.extracted")
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().Bool("detect", false, "Detect the language of the extracted text")

	return cmd
}
