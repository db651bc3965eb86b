package instagram

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/adforge/igpub/internal/media"
)

const (
	fallbackContainerMessage = "Failed to create media container"
	fallbackUploadMessage    = "Failed to upload media"
)

// SelectUploadStrategy picks the upload mechanism for an asset from its
// kind and source. The choice is made exactly once per publish.
func SelectUploadStrategy(asset media.Asset) UploadStrategy {
	if asset.RemoteURL != "" {
		return StrategyURLReference
	}
	if asset.Kind == media.KindImage {
		return StrategyDirectBinary
	}
	if int64(len(asset.Bytes)) >= resumableSessionThreshold {
		return StrategyResumableSession
	}
	return StrategyTwoPhaseContainer
}

// CreateContainer stages a media container for the asset and returns the
// container id the platform assigned to it.
func (c *Client) CreateContainer(ctx context.Context, creds Credentials, caption string, asset media.Asset) (string, error) {
	if err := asset.Validate(); err != nil {
		return "", &Error{Type: ErrorTypeInput, Message: err.Error()}
	}

	strategy := SelectUploadStrategy(asset)
	c.logger.WithField("strategy", string(strategy)).Debug("creating media container")

	switch strategy {
	case StrategyURLReference:
		return c.createFromURL(ctx, creds, caption, asset)
	case StrategyDirectBinary:
		return c.createFromImageBytes(ctx, creds, caption, asset)
	case StrategyResumableSession:
		return c.createFromUploadSession(ctx, creds, caption, asset)
	default:
		return c.createThenUpload(ctx, creds, caption, asset)
	}
}

// createFromURL hands the platform a public URL and lets it fetch the
// media itself. Works for both kinds and never needs a byte upload.
func (c *Client) createFromURL(ctx context.Context, creds Credentials, caption string, asset media.Asset) (string, error) {
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("caption", caption)
	if asset.Kind == media.KindVideo {
		form.Set("video_url", asset.RemoteURL)
		form.Set("media_type", "REELS")
	} else {
		form.Set("image_url", asset.RemoteURL)
	}

	resp, err := c.postForm(ctx, creds.BusinessAccountID+"/media", form)
	if err != nil {
		return "", err
	}
	return containerID(resp)
}

// createFromImageBytes posts the image payload directly as the request
// body, with caption and token in the query string.
func (c *Client) createFromImageBytes(ctx context.Context, creds Credentials, caption string, asset media.Asset) (string, error) {
	mimeType, err := asset.ResolveType()
	if err != nil {
		return "", &Error{Type: ErrorTypeInput, Message: err.Error()}
	}

	query := url.Values{}
	query.Set("access_token", creds.AccessToken)
	query.Set("caption", caption)

	size := int64(len(asset.Bytes))
	body := c.wrapProgress(bytes.NewReader(asset.Bytes), size)
	resp, err := c.postBinary(ctx, creds.BusinessAccountID+"/media", body, size, mimeType, nil, query)
	if err != nil {
		return "", err
	}
	return containerID(resp)
}

// createFromUploadSession runs the large-video path: open an upload
// session, stream the bytes into it, then create a container that
// references the session.
func (c *Client) createFromUploadSession(ctx context.Context, creds Credentials, caption string, asset media.Asset) (string, error) {
	mimeType, err := asset.ResolveType()
	if err != nil {
		return "", &Error{Type: ErrorTypeInput, Message: err.Error()}
	}

	size := int64(len(asset.Bytes))

	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("file_length", strconv.FormatInt(size, 10))
	form.Set("file_type", mimeType)

	resp, err := c.postForm(ctx, creds.BusinessAccountID+"/uploads", form)
	if err != nil {
		return "", err
	}
	sessionID := resp.stringField("id")
	if !resp.ok() || sessionID == "" {
		return "", stageError(ErrorTypeUpload, resp, fallbackUploadMessage)
	}

	headers := map[string]string{
		"Authorization":   "OAuth " + creds.AccessToken,
		"X-Entity-Name":   uploadName(asset),
		"X-Entity-Length": strconv.FormatInt(size, 10),
		"Offset":          "0",
	}
	body := c.wrapProgress(bytes.NewReader(asset.Bytes), size)
	resp, err = c.postBinary(ctx, sessionID, body, size, mimeType, headers, nil)
	if err != nil {
		return "", err
	}
	if !resp.ok() || !resp.boolField("success") {
		return "", stageError(ErrorTypeUpload, resp, fallbackUploadMessage)
	}

	form = url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("caption", caption)
	form.Set("media_type", "REELS")
	form.Set("upload_session_id", sessionID)

	resp, err = c.postForm(ctx, creds.BusinessAccountID+"/media", form)
	if err != nil {
		return "", err
	}
	return containerID(resp)
}

// createThenUpload runs the small-video path: create a resumable
// container first, then post the bytes to the container itself as a
// multipart upload.
func (c *Client) createThenUpload(ctx context.Context, creds Credentials, caption string, asset media.Asset) (string, error) {
	size := int64(len(asset.Bytes))

	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("caption", caption)
	form.Set("media_type", "REELS")
	form.Set("upload_type", "resumable")
	form.Set("file_length", strconv.FormatInt(size, 10))

	resp, err := c.postForm(ctx, creds.BusinessAccountID+"/media", form)
	if err != nil {
		return "", err
	}
	id, err := containerID(resp)
	if err != nil {
		return "", err
	}

	fields := url.Values{}
	fields.Set("access_token", creds.AccessToken)
	resp, err = c.postMultipart(ctx, id, fields, "source", uploadName(asset), asset.Bytes)
	if err != nil {
		return "", err
	}
	if !resp.ok() || !resp.boolField("success") {
		return "", stageError(ErrorTypeUpload, resp, fallbackUploadMessage)
	}

	return id, nil
}

// createChildContainer stages one carousel item. Children carry no
// caption and must reference remote media.
func (c *Client) createChildContainer(ctx context.Context, creds Credentials, asset media.Asset) (string, error) {
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("is_carousel_item", "true")
	if asset.Kind == media.KindVideo {
		form.Set("video_url", asset.RemoteURL)
		form.Set("media_type", "VIDEO")
	} else {
		form.Set("image_url", asset.RemoteURL)
	}

	resp, err := c.postForm(ctx, creds.BusinessAccountID+"/media", form)
	if err != nil {
		return "", err
	}
	return containerID(resp)
}

func (c *Client) createCarouselContainer(ctx context.Context, creds Credentials, caption string, children []string) (string, error) {
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("caption", caption)
	form.Set("media_type", "CAROUSEL")
	form.Set("children", strings.Join(children, ","))

	resp, err := c.postForm(ctx, creds.BusinessAccountID+"/media", form)
	if err != nil {
		return "", err
	}
	return containerID(resp)
}

// containerID validates a container-create response. Success means an
// HTTP success status and a populated id, anything else is an upload
// failure even when the status line says 200.
func containerID(resp *graphResponse) (string, error) {
	if resp.ok() {
		if id := resp.stringField("id"); id != "" {
			return id, nil
		}
	}
	return "", stageError(ErrorTypeUpload, resp, fallbackContainerMessage)
}

// stageError surfaces the platform's own error message when the body
// carries one and falls back to the stage's generic message otherwise.
func stageError(errorType ErrorType, resp *graphResponse, fallback string) *Error {
	message := resp.errorMessage()
	if message == "" {
		message = fallback
	}
	return &Error{Type: errorType, StatusCode: resp.StatusCode, Message: message}
}

func uploadName(asset media.Asset) string {
	return uuid.New().String() + asset.Extension()
}
