package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/provider"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/proxy"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy server",
	Long: `Serves POST /api/<tool> for every tool in the catalog. Provider secrets are
read from configuration (REPLICATE_API_TOKEN, ARK_API_KEY, GEMINI_API_KEY)
and never leave the server.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen-addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("debug", false, "Run gin in debug mode")
	viper.BindPFlag("listen-addr", serveCmd.Flags().Lookup("listen-addr"))
	viper.BindPFlag("debug", serveCmd.Flags().Lookup("debug"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	cat, err := catalog.Default()
	if err != nil {
		return errors.Wrap(err, "catalog load failed")
	}

	settings := cfg.ProviderSettings()
	warnMissingCredentials(cat, settings)

	var history proxy.Recorder
	if cfg.HistoryEnabled() {
		repo, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()
		history = repo
	}

	validator := security.NewValidator(cfg.MaxImageSize, cfg.AllowedImageTypes)
	server := proxy.NewServer(cat, validator, provider.NewFactory(settings), history)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg.ListenAddr)
}

// warnMissingCredentials logs tools that will fail until a secret is set.
func warnMissingCredentials(cat *catalog.Catalog, s provider.Settings) {
	configured := map[string]bool{
		catalog.BackendReplicate: s.ReplicateToken != "",
		catalog.BackendArk:       s.ArkAPIKey != "",
		catalog.BackendGemini:    s.GeminiAPIKey != "",
	}
	for _, t := range cat.All() {
		if !configured[t.Backend] {
			slog.Warn("provider_credentials_missing", "tool", t.Name, "backend", t.Backend)
		}
	}
}
