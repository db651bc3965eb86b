package instagram

import "github.com/adforge/igpub/internal/media"

// PublishRequest is the full input of one publish operation. Credentials
// are borrowed for the duration of the call and never retained.
type PublishRequest struct {
	Credentials Credentials
	Caption     string
	Media       media.Asset
}

// PublishResult is the terminal artifact of a successful publish.
type PublishResult struct {
	PostID string
}

// CarouselRequest publishes several remote assets as a single carousel
// post. Items keep their slot order in the published post.
type CarouselRequest struct {
	Credentials Credentials
	Caption     string
	Items       []media.Asset
}
