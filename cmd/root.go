package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagetranslator/internal/config"
	"github.com/lehigh-university-libraries/imagetranslator/internal/logging"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configFile string
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "imagetranslator",
		Short: "Extract text from images and translate it with generative AI",
		Long: `Image Translator extracts the text embedded in an image with a
vision-capable model, translates it into one of more than fifty languages
and can polish the translation in a second pass.

It runs as a web service (serve) or as a set of CLI commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.Log.Level); err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./imagetranslator.yaml)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("provider", "gemini", "Model provider: gemini, vertex, openai, ollama")
	flags.String("vision-model", "", "Model used to extract text (default depends on provider)")
	flags.String("text-model", "", "Model used to translate and improve (default depends on provider)")
	flags.String("prefs", "", "Preferences database path (default is the user config directory)")
	flags.Int("max-retries", 3, "Retries after a rate-limited model call")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newExtractCmd(a))
	cmd.AddCommand(newTranslateCmd(a))
	cmd.AddCommand(newImproveCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newUILanguageCmd(a))

	return cmd
}
