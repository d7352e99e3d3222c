package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/timmy/facetrail/internal/awsclient"
	"github.com/timmy/facetrail/internal/storage"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <org-id> <video-file>",
	Short: "Upload a video into the pipeline bucket",
	Long: `Upload a local video file to {org-id}/{folder}/{video-id}{ext} in the
configured bucket. The object-created notification starts face detection.

Example:
  vidctl upload acme ./lobby.mp4
  vidctl upload acme ./lobby.mp4 --video-id lobby-2024-05-01`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().String("video-id", "", "Video id (defaults to the file name without extension)")
	uploadCmd.Flags().String("folder", "videos", "Folder segment of the object key")
}

func runUpload(cmd *cobra.Command, args []string) error {
	orgID, path := args[0], args[1]
	videoID, _ := cmd.Flags().GetString("video-id")
	folder, _ := cmd.Flags().GetString("folder")

	ext := filepath.Ext(path)
	if videoID == "" {
		videoID = filepath.Base(path[:len(path)-len(ext)])
	}
	key := VideoKey(orgID, folder, videoID, ext)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		return err
	}
	store, err := storage.NewStorage(ctx, cfg.Storage, awsCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open video: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat video: %w", err)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "video/mp4"
	}

	if err := store.Upload(ctx, key, f, info.Size(), contentType); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes)\n", store.URI(key), info.Size())
	return nil
}

// VideoKey builds the object key the processor parses back into org and video ids.
func VideoKey(orgID, folder, videoID, ext string) string {
	return orgID + "/" + folder + "/" + videoID + ext
}
