package commands

import (
	"context"
	"fmt"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/storage"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "List results archived in S3",
	RunE:  runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.ArchiveEnabled() {
		return errors.New("archive is disabled: set s3-bucket (or KRUCHKO_S3_BUCKET)")
	}

	s3Client, err := storage.NewClient(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	if err != nil {
		return errors.Wrap(err, "S3 client failed")
	}

	keys, err := s3Client.ListObjects(ctx)
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	if len(keys) == 0 {
		fmt.Println("No archived results found")
		return nil
	}
	for _, k := range keys {
		fmt.Printf("s3://%s/%s\n", cfg.S3Bucket, k)
	}
	return nil
}
