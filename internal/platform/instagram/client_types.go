package instagram

import (
	"context"
	"net/http"
	"time"

	"github.com/adforge/igpub/internal/logging"
)

const (
	GraphAPIBaseURL   = "https://graph.facebook.com"
	DefaultAPIVersion = "v21.0"

	DefaultTimeout   = 30 * time.Second
	DefaultMaxPolls  = 20
	DefaultPollDelay = 5 * time.Second
)

// Config carries the injectable collaborators of a Client. Zero values
// fall back to production defaults.
type Config struct {
	BaseURL    string
	APIVersion string
	HTTPClient *http.Client
	Logger     logging.Logger
	MaxPolls   int
	PollDelay  time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
	Reporter   ProgressReporter
}

// Client talks to the Instagram Graph API. It holds no credentials; every
// call receives them by value and forgets them when it returns.
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     logging.Logger
	maxPolls   int
	pollDelay  time.Duration
	sleep      func(context.Context, time.Duration) error
	reporter   ProgressReporter
}

// Credentials identify the business account a call acts on. Neither field
// is ever logged or persisted by the client.
type Credentials struct {
	AccessToken       string
	BusinessAccountID string
}

// ErrorType tags an Error with the publishing stage that produced it.
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeUpload     ErrorType = "upload"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypePublish    ErrorType = "publish"
	ErrorTypeTransport  ErrorType = "transport"
)

// Error is the failure type for every publishing stage. Message carries
// the platform's own wording whenever the API supplied one.
type Error struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// graphResponse is a parsed Graph API reply. Bodies are kept as loose
// maps and validated per call site.
type graphResponse struct {
	StatusCode int
	Body       []byte
	Data       map[string]any
}

func (r *graphResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *graphResponse) stringField(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (r *graphResponse) boolField(key string) bool {
	v, ok := r.Data[key].(bool)
	return ok && v
}

func (r *graphResponse) errorMessage() string {
	errData, ok := r.Data["error"].(map[string]any)
	if !ok {
		return ""
	}
	message, _ := errData["message"].(string)
	return message
}
