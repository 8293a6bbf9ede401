package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DeniskaUa/ai-web-kruchko/internal/config"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/client"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	appfsm "github.com/DeniskaUa/ai-web-kruchko/pkg/fsm"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/security"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/superfly/fsm"
)

var (
	runImage      string
	runImageURL   string
	runMask       string
	runPrompt     string
	runNoDownload bool
)

var runCmd = &cobra.Command{
	Use:   "run <tool>",
	Short: "Send one input to a tool through the proxy and save the result",
	Long: `Runs a single tool invocation against the proxy at --server-url:
  --image <file>      JPEG or PNG to process
  --image-url <url>   remote image instead of a file
  --mask <file>       mask for object-removal
  --prompt <text>     prompt for face-to-sticker and text-to-image
Result images are saved to --download-dir, or to S3 when --s3-bucket is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runImage, "image", "", "Image file")
	runCmd.Flags().StringVar(&runImageURL, "image-url", "", "Remote image URL")
	runCmd.Flags().StringVar(&runMask, "mask", "", "Mask file")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "Prompt text")
	runCmd.Flags().BoolVar(&runNoDownload, "no-download", false, "Print result URLs without saving them")
	runCmd.MarkFlagsMutuallyExclusive("image", "image-url")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.Default()
	if err != nil {
		return errors.Wrap(err, "catalog load failed")
	}
	if _, err := cat.Lookup(args[0]); err != nil {
		return err
	}

	if err := ensureDirectories(cfg.FSMDBPath); err != nil {
		return err
	}

	saver, err := newSaver(ctx, cfg)
	if err != nil {
		return err
	}

	manager, err := fsm.New(fsm.Config{DBPath: cfg.FSMDBPath})
	if err != nil {
		return errors.Wrap(err, "FSM manager failed")
	}
	defer manager.Shutdown(10 * time.Second)

	validator := security.NewValidator(cfg.MaxImageSize, cfg.AllowedImageTypes)
	transport := client.NewHTTPTransport(cfg.ServerURL, nil)
	machine := appfsm.NewMachine(cat, transport, validator, saver)

	start, _, err := machine.Register(ctx, manager)
	if err != nil {
		return errors.Wrap(err, "FSM register failed")
	}

	req := &appfsm.RunRequest{
		RunID:     uuid.NewString(),
		Tool:      args[0],
		ImagePath: runImage,
		ImageURL:  runImageURL,
		MaskPath:  runMask,
		Prompt:    runPrompt,
		Download:  !runNoDownload,
	}
	resp := &appfsm.RunResponse{}

	version, err := start(ctx, req.RunID, fsm.NewRequest(req, resp))
	if err != nil {
		return errors.Wrap(err, "FSM start failed")
	}
	slog.Debug("fsm started", "run_id", req.RunID, "version", version)

	waitErr := manager.Wait(ctx, version)

	out, ok := machine.Outcome(req.RunID)
	if !ok {
		out = *resp
	}
	if waitErr != nil || out.ErrorMessage != "" {
		if out.ErrorMessage != "" {
			return errors.New(out.ErrorMessage)
		}
		return errors.Wrap(waitErr, "run failed")
	}

	printOutcome(out)
	return nil
}

func newSaver(ctx context.Context, cfg *config.Config) (client.Saver, error) {
	if !cfg.ArchiveEnabled() {
		if err := ensureDirectories(cfg.DownloadDir); err != nil {
			return nil, err
		}
		return client.FileSaver{Dir: cfg.DownloadDir}, nil
	}

	s3Client, err := storage.NewClient(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	if err != nil {
		return nil, errors.Wrap(err, "S3 client failed")
	}
	return s3Client, nil
}

func printOutcome(out appfsm.RunResponse) {
	if out.Text != "" {
		fmt.Println(out.Text)
	}
	for _, u := range out.URLs {
		fmt.Printf("result: %s\n", u)
	}
	for _, s := range out.Saved {
		fmt.Printf("saved:  %s\n", s)
	}
	if out.Notice != "" {
		fmt.Printf("note:   %s\n", out.Notice)
	}
}
