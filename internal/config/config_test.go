package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverDynamoDB {
		t.Errorf("expected dynamodb driver by default, got %q", cfg.Store.Driver)
	}
	if cfg.Transcode.FrameWidth != 320 || cfg.Transcode.FrameHeight != 240 {
		t.Errorf("expected 320x240 frames, got %dx%d", cfg.Transcode.FrameWidth, cfg.Transcode.FrameHeight)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("expected 1h conn lifetime, got %s", cfg.Database.ConnMaxLifetime)
	}
}

func TestLoad_DeploymentEnvironment(t *testing.T) {
	t.Setenv("DATA_TABLE", "videos-prod")
	t.Setenv("VIDEO_BUCKET", "video-bucket")
	t.Setenv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:video-processing")
	t.Setenv("REKOGNITION_ROLE_ARN", "arn:aws:iam::123456789012:role/rekognition")
	t.Setenv("MEDIACONVERT_ROLE_ARN", "arn:aws:iam::123456789012:role/mediaconvert")

	cfg, err := Load(writeConfig(t, "store:\n  table: from-file\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Table != "videos-prod" {
		t.Errorf("expected DATA_TABLE to win, got %q", cfg.Store.Table)
	}
	if cfg.Storage.Bucket != "video-bucket" {
		t.Errorf("expected bucket from VIDEO_BUCKET, got %q", cfg.Storage.Bucket)
	}
	if err := cfg.ValidateProcessor(); err != nil {
		t.Errorf("expected valid processor config, got %v", err)
	}
}

func TestValidateProcessor_ReportsEveryMissingSetting(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: StoreDriverDynamoDB}}

	err := cfg.ValidateProcessor()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"store.table", "storage.bucket", "sns_topic_arn", "detection.role_arn", "transcode.role_arn"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestValidateProcessor_UnknownDriver(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "cassandra"}}

	err := cfg.ValidateProcessor()
	if err == nil || !strings.Contains(err.Error(), "unknown store driver") {
		t.Errorf("expected unknown driver error, got %v", err)
	}
}

func TestDatabaseDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./data/test.db"}
	if got := sqlite.DSN(); got != "./data/test.db" {
		t.Errorf("expected sqlite path, got %q", got)
	}

	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "ft", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=ft sslmode=disable"
	if got := pg.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
