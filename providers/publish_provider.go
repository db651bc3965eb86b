package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/adforge/igpub/internal/config"
	"github.com/adforge/igpub/internal/logging"
	"github.com/adforge/igpub/internal/media"
	"github.com/adforge/igpub/internal/platform/instagram"
	"github.com/adforge/igpub/internal/storage"
)

// PublishInput describes one publish request from the CLI. Exactly one
// source group must be set: a local file or one or more media URLs.
type PublishInput struct {
	FilePath string
	URLs     []string
	Caption  string
	Kind     string
}

type PublishProvider struct {
	ig    *instagram.Client
	creds instagram.Credentials
}

// NewPublishProvider wires credentials and environment tuning into a
// ready-to-use publishing client. Credentials come from the named stored
// account, the default stored account, or the environment, in that
// order.
func NewPublishProvider(account string, reporter instagram.ProgressReporter) (*PublishProvider, error) {
	creds, err := resolveCredentials(account)
	if err != nil {
		return nil, err
	}

	client := instagram.NewClient(instagram.Config{
		APIVersion: config.GetEnv("IG_API_VERSION", instagram.DefaultAPIVersion),
		HTTPClient: &http.Client{Timeout: config.GetEnvDuration("IG_HTTP_TIMEOUT", instagram.DefaultTimeout)},
		Logger:     newLogger(),
		MaxPolls:   config.GetEnvInt("IG_STATUS_MAX_POLLS", instagram.DefaultMaxPolls),
		PollDelay:  config.GetEnvDuration("IG_STATUS_POLL_DELAY", instagram.DefaultPollDelay),
		Reporter:   reporter,
	})

	return &PublishProvider{
		ig:    client,
		creds: creds,
	}, nil
}

// newLogger picks the log format from LOG_FORMAT, defaulting to text
// for interactive use.
func newLogger() logging.Logger {
	if config.GetEnv("LOG_FORMAT", "text") == "json" {
		return logging.NewJSONLogger()
	}
	return logging.NewLogger()
}

func resolveCredentials(account string) (instagram.Credentials, error) {
	store, err := storage.NewAccountStorage()
	if err == nil {
		stored, loadErr := store.LoadAccount(account)
		if loadErr != nil {
			return instagram.Credentials{}, loadErr
		}
		if stored != nil {
			return instagram.Credentials{
				AccessToken:       stored.AccessToken,
				BusinessAccountID: stored.BusinessAccountID,
			}, nil
		}
	} else if account != "" {
		return instagram.Credentials{}, fmt.Errorf("failed to open account storage: %w", err)
	}

	token := config.GetEnv("IG_ACCESS_TOKEN", "")
	businessID := config.GetEnv("IG_BUSINESS_ACCOUNT_ID", "")
	if token == "" || businessID == "" {
		return instagram.Credentials{}, fmt.Errorf("no account configured: add one with 'igpub account add' or set IG_ACCESS_TOKEN and IG_BUSINESS_ACCOUNT_ID")
	}

	return instagram.Credentials{AccessToken: token, BusinessAccountID: businessID}, nil
}

// Publish turns the input into media assets and runs the publish flow,
// choosing the carousel path when several URLs are given.
func (p *PublishProvider) Publish(ctx context.Context, input PublishInput) (*instagram.PublishResult, error) {
	if input.FilePath == "" && len(input.URLs) == 0 {
		return nil, fmt.Errorf("either a file or at least one media URL is required")
	}
	if input.FilePath != "" && len(input.URLs) > 0 {
		return nil, fmt.Errorf("a file and media URLs cannot be combined")
	}

	if len(input.URLs) > 1 {
		items := make([]media.Asset, 0, len(input.URLs))
		for _, source := range input.URLs {
			asset, err := media.Parse(kindForSource(input.Kind, source), source)
			if err != nil {
				return nil, err
			}
			items = append(items, asset)
		}
		return p.ig.PublishCarousel(ctx, instagram.CarouselRequest{
			Credentials: p.creds,
			Caption:     input.Caption,
			Items:       items,
		})
	}

	asset, err := p.buildAsset(input)
	if err != nil {
		return nil, err
	}

	return p.ig.Publish(ctx, instagram.PublishRequest{
		Credentials: p.creds,
		Caption:     input.Caption,
		Media:       asset,
	})
}

func (p *PublishProvider) buildAsset(input PublishInput) (media.Asset, error) {
	if input.FilePath != "" {
		data, err := os.ReadFile(input.FilePath)
		if err != nil {
			return media.Asset{}, fmt.Errorf("failed to read media file: %w", err)
		}

		asset := media.Asset{Bytes: data, Kind: kindForSource(input.Kind, input.FilePath)}
		if mime, _, err := media.DetectType(data); err == nil {
			asset.MimeType = mime
			if kind, ok := media.KindForMime(mime); ok && input.Kind == "" {
				asset.Kind = kind
			}
		}
		return asset, nil
	}

	source := input.URLs[0]
	return media.Parse(kindForSource(input.Kind, source), source)
}

// kindForSource resolves the media kind: an explicit flag wins, then a
// data URI's declared type, then the source's file extension.
func kindForSource(flag, source string) media.Kind {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "video":
		return media.KindVideo
	case "image":
		return media.KindImage
	}

	if mime := media.MimeFromDataURI(source); mime != "" {
		if kind, ok := media.KindForMime(mime); ok {
			return kind
		}
	}

	lower := strings.ToLower(source)
	for _, ext := range []string{".mp4", ".mov", ".m4v", ".webm"} {
		if strings.HasSuffix(lower, ext) {
			return media.KindVideo
		}
	}
	return media.KindImage
}
