package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/imagetranslator/internal/detect"
	"github.com/lehigh-university-libraries/imagetranslator/internal/images"
)

// runResult is the outcome of the pipeline for one image.
type runResult struct {
	Source           string `json:"source" yaml:"source"`
	ExtractedText    string `json:"extracted_text,omitempty" yaml:"extracted_text,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty" yaml:"detected_language,omitempty"`
	TargetLanguage   string `json:"target_language,omitempty" yaml:"target_language,omitempty"`
	TranslatedText   string `json:"translated_text,omitempty" yaml:"translated_text,omitempty"`
	Improved         bool   `json:"improved,omitempty" yaml:"improved,omitempty"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newRunCmd(a *app) *cobra.Command {
	var (
		target      string
		improve     bool
		concurrency int
		format      string
	)

	cmd := &cobra.Command{
		Use:   "run <image>...",
		Short: "Extract, translate and optionally improve several images",
		Long: `Runs the whole pipeline over each image: extract the text, translate
it into the target language and, with --improve, polish the translation.
Images are processed concurrently. A failure on one image is reported in
its result and does not stop the others.`,
		Example: `  imagetranslator run --to French page1.png page2.png
  imagetranslator run --to ja --improve --format yaml *.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.TrimSpace(target) == "" {
				return fmt.Errorf("--to is required")
			}
			if concurrency < 1 {
				concurrency = 1
			}

			store, closePrefs, err := buildI18n(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			svc, err := buildServices(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			var detector *detect.Detector
			if a.cfg.Detect.Enabled {
				detector = detect.New()
			}

			fetcher := images.NewFetcher()
			lang := targetName(target)
			results := make([]runResult, len(args))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i, src := range args {
				g.Go(func() error {
					slog.Info("Processing image", "source", src, "progress", fmt.Sprintf("%d/%d", i+1, len(args)))
					res := runResult{Source: src, TargetLanguage: lang}
					defer func() { results[i] = res }()

					img, err := fetcher.Load(gctx, src)
					if err != nil {
						res.Error = fmt.Sprintf("%s: %v", store.T("error.invalidFile"), err)
						return nil
					}

					text, err := svc.ocr.Extract(gctx, img.DataURI())
					if err != nil {
						res.Error = localize(store, err).Error()
						return nil
					}
					res.ExtractedText = text
					if detector != nil {
						if l, ok := detector.Detect(text); ok {
							res.DetectedLanguage = l.Name
						}
					}
					if strings.TrimSpace(text) == "" {
						res.Error = store.T("error.noText")
						return nil
					}

					translated, err := svc.translation.Translate(gctx, text, lang)
					if err != nil {
						res.Error = localize(store, err).Error()
						return nil
					}
					res.TranslatedText = translated

					if improve {
						improved, err := svc.translation.Improve(gctx, translated, lang)
						if err != nil {
							res.Error = localize(store, err).Error()
							return nil
						}
						res.TranslatedText = improved
						res.Improved = true
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			slog.Info("Run complete", "images", len(results), "failed", failed)

			if err := writeResults(cmd.OutOrStdout(), format, results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language code or name")
	cmd.Flags().BoolVar(&improve, "improve", false, "Improve each translation after translating")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "Number of images processed at once")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml")
	cmd.Flags().Bool("detect", false, "Detect the language of extracted text")

	return cmd
}

func writeResults(w io.Writer, format string, results []runResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(results)
	case "text", "":
		for _, r := range results {
			fmt.Fprintf(w, "== %s\n", r.Source)
			if r.Error != "" {
				fmt.Fprintf(w, "error: %s\n\n", r.Error)
				continue
			}
			if r.DetectedLanguage != "" {
				fmt.Fprintf(w, "-- extracted (%s)\n", r.DetectedLanguage)
			} else {
				fmt.Fprintln(w, "-- extracted")
			}
			fmt.Fprintln(w, r.ExtractedText)
			fmt.Fprintf(w, "-- %s\n", r.TargetLanguage)
			fmt.Fprintln(w, r.TranslatedText)
			fmt.Fprintln(w)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
