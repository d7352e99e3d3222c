package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/timmy/facetrail/internal/client"
	"github.com/timmy/facetrail/internal/event"
	"github.com/timmy/facetrail/internal/service"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Send synthetic events to a running processor",
	Long: `Build an upload or completion event batch and post it to the processor's
HTTP ingress (client.base_url). The batch result is printed as reported.`,
}

var replayUploadCmd = &cobra.Command{
	Use:   "upload <object-key>",
	Short: "Replay an object-created event for a stored video",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplayUpload,
}

var replayCompletionCmd = &cobra.Command{
	Use:   "completion <job-id> <job-tag>",
	Short: "Replay a detection completion notice",
	Long: `Replay a detection completion notice for job-id. The job tag has the
form {org-id}_{video-id}.

Example:
  vidctl replay completion 9f3c1a acme_lobby --status SUCCEEDED`,
	Args: cobra.ExactArgs(2),
	RunE: runReplayCompletion,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.AddCommand(replayUploadCmd)
	replayCmd.AddCommand(replayCompletionCmd)

	replayUploadCmd.Flags().String("bucket", "", "Bucket name (defaults to storage.bucket)")
	replayUploadCmd.Flags().Int64("size", 0, "Object size reported in the event")
	replayCompletionCmd.Flags().String("status", "SUCCEEDED", "Job status: SUCCEEDED or FAILED")
}

func runReplayUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket == "" {
		bucket = cfg.Storage.Bucket
	}
	size, _ := cmd.Flags().GetInt64("size")

	payload, err := event.NewUploadBatch(bucket, args[0], size)
	if err != nil {
		return err
	}
	return sendBatch(cmd, cfg.Client.BaseURL, cfg.Client.Timeout, payload)
}

func runReplayCompletion(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	status, _ := cmd.Flags().GetString("status")

	payload, err := event.NewCompletionBatch(cfg.Detection.SNSTopicARN, args[0], status, args[1])
	if err != nil {
		return err
	}
	return sendBatch(cmd, cfg.Client.BaseURL, cfg.Client.Timeout, payload)
}

func sendBatch(cmd *cobra.Command, baseURL string, timeout time.Duration, payload []byte) error {
	c := client.NewEventClient(&client.Config{BaseURL: baseURL, Timeout: timeout})
	result, err := c.Send(cmd.Context(), payload)
	if err != nil {
		return err
	}
	printBatchResult(cmd, result)
	if result.StatusCode >= 400 {
		return fmt.Errorf("batch failed with status %d", result.StatusCode)
	}
	return nil
}

func printBatchResult(cmd *cobra.Command, result *service.BatchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status: %d\n", result.StatusCode)
	fmt.Fprintf(out, "Processed records: %d\n", result.ProcessedRecords)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  error: %s\n", e)
	}
}
