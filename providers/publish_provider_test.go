package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adforge/igpub/internal/media"
)

func TestKindForSource(t *testing.T) {
	tests := []struct {
		name   string
		flag   string
		source string
		want   media.Kind
	}{
		{"explicit video flag", "video", "https://cdn.example.com/clip", media.KindVideo},
		{"explicit image flag", "image", "https://cdn.example.com/clip.mp4", media.KindImage},
		{"mp4 extension", "", "https://cdn.example.com/clip.MP4", media.KindVideo},
		{"mov extension", "", "/tmp/ad.mov", media.KindVideo},
		{"jpg extension", "", "https://cdn.example.com/ad.jpg", media.KindImage},
		{"no extension defaults to image", "", "https://cdn.example.com/ad", media.KindImage},
		{"video data uri", "", "data:video/mp4;base64,AAAA", media.KindVideo},
		{"image data uri", "", "data:image/png;base64,AAAA", media.KindImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindForSource(tt.flag, tt.source); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildAssetFromFile(t *testing.T) {
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}, make([]byte, 64)...)
	path := filepath.Join(t.TempDir(), "creative.bin")
	if err := os.WriteFile(path, jpeg, 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	p := &PublishProvider{}
	asset, err := p.buildAsset(PublishInput{FilePath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Kind != media.KindImage {
		t.Errorf("expected image kind from probed bytes, got %q", asset.Kind)
	}
	if asset.MimeType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", asset.MimeType)
	}
	if len(asset.Bytes) != len(jpeg) {
		t.Errorf("expected %d bytes, got %d", len(jpeg), len(asset.Bytes))
	}
}

func TestBuildAssetFromDataURI(t *testing.T) {
	p := &PublishProvider{}
	asset, err := p.buildAsset(PublishInput{URLs: []string{"data:image/png;base64,iVBORw0KGgo="}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Kind != media.KindImage {
		t.Errorf("expected image kind, got %q", asset.Kind)
	}
	if len(asset.Bytes) == 0 {
		t.Error("expected decoded bytes")
	}
	if asset.RemoteURL != "" {
		t.Errorf("data URIs must decode locally, got remote URL %q", asset.RemoteURL)
	}
}

func TestPublishRejectsAmbiguousInput(t *testing.T) {
	p := &PublishProvider{}

	if _, err := p.Publish(context.Background(), PublishInput{}); err == nil {
		t.Error("expected an error for empty input")
	}
	if _, err := p.Publish(context.Background(), PublishInput{FilePath: "ad.jpg", URLs: []string{"https://cdn.example.com/ad.jpg"}}); err == nil {
		t.Error("expected an error for combined sources")
	}
}

func TestBuildAssetMissingFile(t *testing.T) {
	p := &PublishProvider{}
	if _, err := p.buildAsset(PublishInput{FilePath: filepath.Join(t.TempDir(), "nope.jpg")}); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestNewLoggerHonorsLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	if _, ok := newLogger().Formatter.(*logrus.JSONFormatter); !ok {
		t.Error("expected a JSON formatter when LOG_FORMAT=json")
	}

	t.Setenv("LOG_FORMAT", "")
	if _, ok := newLogger().Formatter.(*logrus.TextFormatter); !ok {
		t.Error("expected a text formatter by default")
	}
}
