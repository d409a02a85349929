package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgpai22/vani/internal/config"
	"github.com/mgpai22/vani/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vani",
	Short: "Live speech translation from the microphone",
	Long: `Vani records the microphone in short clips, transcribes each clip with a
speech-to-text service and translates the transcript into several target
languages, writing one translation_<locale>.txt file per language.

It supports OpenAI, Gemini, Anthropic and OpenAI-compatible providers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, err := config.LoadDotEnv()
		if err != nil {
			return err
		}
		if loaded {
			logger.Debugw("Loaded environment from .env")
		}
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringP("api-key", "k", "", "API key for the configured providers (or set OAI_API_KEY/GEMINI_API_KEY/ANTHROPIC_API_KEY/COMPAT_API_KEY)")
}
