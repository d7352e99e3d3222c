package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/timmy/facetrail/internal/awsclient"
	"github.com/timmy/facetrail/internal/domain"
	"github.com/timmy/facetrail/internal/repository"
	"github.com/timmy/facetrail/internal/service"
	"github.com/timmy/facetrail/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status <org-id> <video-id>",
	Short: "Show the processing state of a video",
	Long: `Show the video record, the stored face appearances and whether the
thumbnail object has been written yet. With --wait the record is polled until
it reaches PROCESSED or ERROR.

Example:
  vidctl status acme lobby
  vidctl status acme lobby --wait --timeout 10m`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("appearances", false, "List every appearance")
	statusCmd.Flags().Bool("wait", false, "Poll until the video reaches a terminal status")
	statusCmd.Flags().Duration("interval", 10*time.Second, "Polling interval with --wait")
	statusCmd.Flags().Duration("timeout", 5*time.Minute, "Give up waiting after this long")
}

func runStatus(cmd *cobra.Command, args []string) error {
	orgID, videoID := args[0], args[1]
	listAll, _ := cmd.Flags().GetBool("appearances")
	wait, _ := cmd.Flags().GetBool("wait")
	interval, _ := cmd.Flags().GetDuration("interval")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		return err
	}
	stores, err := repository.OpenStores(cfg, awsCfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	var job *domain.VideoJob
	if wait {
		job, err = waitForTerminal(ctx, stores.Videos, orgID, videoID, interval, timeout)
	} else {
		job, err = stores.Videos.GetVideo(ctx, orgID, videoID)
	}
	if errors.Is(err, domain.ErrVideoNotFound) {
		return fmt.Errorf("no record for %s/%s", orgID, videoID)
	}
	if err != nil {
		return err
	}
	appearances, err := stores.Appearances.ListByVideo(ctx, orgID, videoID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printVideo(out, job)
	fmt.Fprintf(out, "Appearances: %d\n", len(appearances))
	if listAll {
		for _, a := range appearances {
			fmt.Fprintf(out, "  %s  conf=%.1f age=%s gender=%s emotion=%s mask=%t\n",
				a.Timestamp, a.Confidence, a.Attributes.AgeBucket, a.Attributes.Gender,
				a.Attributes.Emotion, a.Attributes.Mask)
		}
	}

	if job.ThumbnailURL == "" {
		return nil
	}
	objects, err := storage.NewStorage(ctx, cfg.Storage, awsCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	exists, err := objects.Exists(ctx, service.ThumbnailKey(orgID, videoID))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Thumbnail written: %t\n", exists)
	return nil
}

// waitForTerminal polls the video record until its status is terminal. A
// missing record is treated as not yet written.
func waitForTerminal(ctx context.Context, videos repository.VideoStore, orgID, videoID string, interval, timeout time.Duration) (*domain.VideoJob, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	timedOut := func() error {
		return fmt.Errorf("video %s/%s not finished after %s", orgID, videoID, timeout)
	}
	for {
		job, err := videos.GetVideo(ctx, orgID, videoID)
		switch {
		case err == nil && job.Status.IsTerminal():
			return job, nil
		case ctx.Err() != nil:
			return nil, timedOut()
		case err != nil && !errors.Is(err, domain.ErrVideoNotFound):
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, timedOut()
		case <-ticker.C:
		}
	}
}

func printVideo(out io.Writer, job *domain.VideoJob) {
	fmt.Fprintf(out, "Video: %s/%s\n", job.OrgID, job.VideoID)
	fmt.Fprintf(out, "Status: %s\n", job.Status)
	if job.VideoKey != "" {
		fmt.Fprintf(out, "Key: %s\n", job.VideoKey)
	}
	if job.DetectionJobID != "" {
		fmt.Fprintf(out, "Detection job: %s\n", job.DetectionJobID)
	}
	if job.ProcessingStartedAt != nil {
		fmt.Fprintf(out, "Started: %s\n", job.ProcessingStartedAt.UTC().Format(time.RFC3339))
	}
	if job.ProcessingCompletedAt != nil {
		fmt.Fprintf(out, "Completed: %s\n", job.ProcessingCompletedAt.UTC().Format(time.RFC3339))
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", job.ErrorMessage)
	}
	if job.ThumbnailURL != "" {
		fmt.Fprintf(out, "Thumbnail: %s\n", job.ThumbnailURL)
	}
	if job.ThumbnailJobID != "" {
		fmt.Fprintf(out, "Thumbnail job: %s (%s)\n", job.ThumbnailJobID, job.ThumbnailStatus)
	}
	if m := job.ThumbnailMetadata; m != nil {
		fmt.Fprintf(out, "Thumbnail frame: %ds, faces=%d, %s\n", m.FrameTimestamp, m.FaceCount, m.Status)
	}
}
