package instagram

import (
	"context"
	"fmt"
	"net/url"

	"github.com/adforge/igpub/internal/logging"
)

// ContainerStatus fetches the current processing state of a container.
// A failed status check is terminal, it is never retried.
func (c *Client) ContainerStatus(ctx context.Context, creds Credentials, containerID string) (*ContainerStatus, error) {
	query := url.Values{}
	query.Set("fields", "status_code,status")
	query.Set("access_token", creds.AccessToken)

	resp, err := c.get(ctx, containerID, query)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		message := resp.errorMessage()
		if message == "" {
			message = fmt.Sprintf("Media status check failed with status %d", resp.StatusCode)
		}
		return nil, &Error{Type: ErrorTypeTransport, StatusCode: resp.StatusCode, Message: message}
	}

	return &ContainerStatus{
		ID:         containerID,
		StatusCode: ContainerStatusCode(resp.stringField("status_code")),
		Status:     resp.stringField("status"),
	}, nil
}

// WaitForContainer polls a container until it reaches a terminal state,
// up to the configured maximum of checks with a fixed delay between them.
func (c *Client) WaitForContainer(ctx context.Context, creds Credentials, containerID string) (*ContainerStatus, error) {
	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		status, err := c.ContainerStatus(ctx, creds, containerID)
		if err != nil {
			return nil, err
		}

		c.logger.WithFields(logging.Fields{
			"container_id": containerID,
			"status_code":  string(status.StatusCode),
			"attempt":      attempt,
		}).Debug("container status")

		c.report(ProgressReport{
			Stage:       StageProcess,
			Message:     string(status.StatusCode),
			Attempt:     attempt,
			MaxAttempts: c.maxPolls,
		})

		switch status.StatusCode {
		case StatusFinished:
			return status, nil
		case StatusError, StatusExpired:
			message := status.Status
			if message == "" {
				message = fmt.Sprintf("Media processing failed with status %s", status.StatusCode)
			}
			return nil, &Error{Type: ErrorTypeProcessing, Message: message}
		}

		if attempt == c.maxPolls {
			break
		}
		if err := c.sleep(ctx, c.pollDelay); err != nil {
			return nil, err
		}
	}

	return nil, &Error{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("Media processing timed out after %d status checks", c.maxPolls),
	}
}
