package media

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind identifies the media category of an asset.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is a single piece of publishable media, sourced either from raw
// bytes (decoded from a data URI or read from disk) or from a remote URL
// the platform can fetch itself.
type Asset struct {
	Bytes     []byte
	RemoteURL string
	MimeType  string
	Kind      Kind
}

// Parse builds an Asset from a caller-supplied source string, accepting
// both data URIs and remote URLs.
func Parse(kind Kind, source string) (Asset, error) {
	trimmed := strings.TrimSpace(source)
	if strings.HasPrefix(strings.ToLower(trimmed), "data:") {
		return FromDataURI(kind, trimmed)
	}
	return FromURL(kind, trimmed)
}

// FromDataURI decodes a base64 data URI into an Asset, keeping the
// declared MIME type when one is present.
func FromDataURI(kind Kind, dataURI string) (Asset, error) {
	trimmed := strings.TrimSpace(dataURI)
	if !strings.HasPrefix(strings.ToLower(trimmed), "data:") {
		return Asset{}, fmt.Errorf("not a data URI")
	}

	idx := strings.Index(trimmed, ",")
	if idx < 0 {
		return Asset{}, fmt.Errorf("malformed data URI: missing payload separator")
	}

	payload := trimmed[idx+1:]
	if payload == "" {
		return Asset{}, fmt.Errorf("malformed data URI: empty payload")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to decode data URI payload: %w", err)
	}

	return Asset{
		Bytes:    data,
		MimeType: MimeFromDataURI(trimmed),
		Kind:     kind,
	}, nil
}

// FromURL builds an Asset referencing media the platform fetches itself.
func FromURL(kind Kind, rawURL string) (Asset, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Asset{}, fmt.Errorf("media URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Asset{}, fmt.Errorf("invalid media URL %q", trimmed)
	}

	return Asset{RemoteURL: trimmed, Kind: kind}, nil
}

// ToDataURI re-encodes raw bytes into a base64 data URI.
func ToDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// MimeFromDataURI extracts the declared MIME type from a data URI, if any.
func MimeFromDataURI(dataURI string) string {
	trimmed := strings.TrimSpace(dataURI)
	if !strings.HasPrefix(strings.ToLower(trimmed), "data:") {
		return ""
	}

	rest := trimmed[len("data:"):]
	if idx := strings.Index(rest, ";"); idx >= 0 {
		return normalizeMime(rest[:idx])
	}
	if idx := strings.Index(rest, ","); idx >= 0 {
		return normalizeMime(rest[:idx])
	}
	return ""
}

// DetectType probes raw bytes and reports their MIME type and canonical
// file extension. Unidentifiable content is an error so callers can apply
// their own fallback.
func DetectType(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("no bytes to probe")
	}

	mtype := mimetype.Detect(data)
	mime := normalizeMime(mtype.String())
	if mime == "" || mime == "application/octet-stream" {
		return "", "", fmt.Errorf("unrecognized media type")
	}

	return mime, mtype.Extension(), nil
}

// KindForMime maps a MIME type onto a media kind.
func KindForMime(mime string) (Kind, bool) {
	normalized := normalizeMime(mime)
	switch {
	case strings.HasPrefix(normalized, "image/"):
		return KindImage, true
	case strings.HasPrefix(normalized, "video/"):
		return KindVideo, true
	}
	return "", false
}

// ResolveType returns the best MIME type for the asset: the declared type
// when present, then the probed type, then a kind-derived default.
func (a Asset) ResolveType() (string, error) {
	if mime := normalizeMime(a.MimeType); mime != "" && mime != "application/octet-stream" {
		return mime, nil
	}

	if len(a.Bytes) > 0 {
		if mime, _, err := DetectType(a.Bytes); err == nil {
			return mime, nil
		}
	}

	switch a.Kind {
	case KindImage:
		return "image/jpeg", nil
	case KindVideo:
		return "video/mp4", nil
	}
	return "", fmt.Errorf("cannot resolve media type for kind %q", a.Kind)
}

// Extension returns the file extension matching the asset's resolved type.
func (a Asset) Extension() string {
	if len(a.Bytes) > 0 {
		if _, ext, err := DetectType(a.Bytes); err == nil {
			return ext
		}
	}

	if a.Kind == KindVideo {
		return ".mp4"
	}
	return ".jpg"
}

// Validate checks the asset invariant: a source must be present and the
// kind must be known.
func (a Asset) Validate() error {
	if len(a.Bytes) == 0 && a.RemoteURL == "" {
		return fmt.Errorf("media asset has no source")
	}
	if a.Kind != KindImage && a.Kind != KindVideo {
		return fmt.Errorf("unknown media kind %q", a.Kind)
	}
	return nil
}

func normalizeMime(raw string) string {
	mime := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
