package instagram

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adforge/igpub/internal/media"
)

const fallbackPublishMessage = "Failed to publish media container"

const maxConcurrentChildUploads = 4

// Publish uploads the request's media, waits for processing when the
// platform requires it, and turns the staged container into a live post.
// Every failure surfaces as a single boundary error wrapping the stage
// error that caused it.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	result, err := c.publish(ctx, req)
	if err != nil {
		c.logger.WithError(err).Error("publish failed")
		return nil, fmt.Errorf("Instagram publishing failed: %w", err)
	}
	return result, nil
}

func (c *Client) publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if err := req.validate(); err != nil {
		return nil, &Error{Type: ErrorTypeInput, Message: err.Error()}
	}

	c.report(ProgressReport{Stage: StagePrepare, Message: "Staging media"})

	containerID, err := c.CreateContainer(ctx, req.Credentials, req.Caption, req.Media)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("container_id", containerID).Debug("media container created")

	// Images are ready as soon as the container exists, only video
	// containers go through processing.
	if req.Media.Kind == media.KindVideo {
		if _, err := c.WaitForContainer(ctx, req.Credentials, containerID); err != nil {
			return nil, err
		}
	}

	c.report(ProgressReport{Stage: StagePublish, Message: "Publishing"})

	postID, err := c.PublishContainer(ctx, req.Credentials, containerID)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("post_id", postID).Info("media published")

	return &PublishResult{PostID: postID}, nil
}

// PublishContainer issues the final publish call for a ready container
// and returns the platform-assigned post id.
func (c *Client) PublishContainer(ctx context.Context, creds Credentials, containerID string) (string, error) {
	form := url.Values{}
	form.Set("access_token", creds.AccessToken)
	form.Set("creation_id", containerID)

	resp, err := c.postForm(ctx, creds.BusinessAccountID+"/media_publish", form)
	if err != nil {
		return "", err
	}
	if resp.ok() {
		if id := resp.stringField("id"); id != "" {
			return id, nil
		}
	}
	return "", stageError(ErrorTypePublish, resp, fallbackPublishMessage)
}

// PublishCarousel stages every item as a carousel child, aggregates the
// children into a carousel container, waits for processing, and
// publishes the result as one post.
func (c *Client) PublishCarousel(ctx context.Context, req CarouselRequest) (*PublishResult, error) {
	result, err := c.publishCarousel(ctx, req)
	if err != nil {
		c.logger.WithError(err).Error("carousel publish failed")
		return nil, fmt.Errorf("Instagram publishing failed: %w", err)
	}
	return result, nil
}

func (c *Client) publishCarousel(ctx context.Context, req CarouselRequest) (*PublishResult, error) {
	if err := req.Credentials.validate(); err != nil {
		return nil, &Error{Type: ErrorTypeInput, Message: err.Error()}
	}
	if len(req.Items) < 2 || len(req.Items) > 10 {
		return nil, &Error{Type: ErrorTypeInput, Message: fmt.Sprintf("carousels need 2 to 10 items, got %d", len(req.Items))}
	}
	for _, item := range req.Items {
		if item.RemoteURL == "" {
			return nil, &Error{Type: ErrorTypeInput, Message: "carousel items must reference remote media"}
		}
	}

	c.report(ProgressReport{Stage: StagePrepare, Message: fmt.Sprintf("Staging %d carousel items", len(req.Items))})

	children := make([]string, len(req.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChildUploads)
	for i, item := range req.Items {
		index := i
		child := item
		g.Go(func() error {
			id, err := c.createChildContainer(gctx, req.Credentials, child)
			if err != nil {
				return err
			}
			children[index] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	containerID, err := c.createCarouselContainer(ctx, req.Credentials, req.Caption, children)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("container_id", containerID).Debug("carousel container created")

	if _, err := c.WaitForContainer(ctx, req.Credentials, containerID); err != nil {
		return nil, err
	}

	c.report(ProgressReport{Stage: StagePublish, Message: "Publishing"})

	postID, err := c.PublishContainer(ctx, req.Credentials, containerID)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("post_id", postID).Info("carousel published")

	return &PublishResult{PostID: postID}, nil
}

func (r PublishRequest) validate() error {
	if err := r.Credentials.validate(); err != nil {
		return err
	}
	return r.Media.Validate()
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return fmt.Errorf("access token is empty")
	}
	if strings.TrimSpace(c.BusinessAccountID) == "" {
		return fmt.Errorf("business account id is empty")
	}
	return nil
}
