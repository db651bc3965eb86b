package instagram

// UploadStrategy names the mechanism used to move an asset onto the
// platform before publishing.
type UploadStrategy string

const (
	StrategyURLReference      UploadStrategy = "url_reference"
	StrategyDirectBinary      UploadStrategy = "direct_binary"
	StrategyResumableSession  UploadStrategy = "resumable_session"
	StrategyTwoPhaseContainer UploadStrategy = "two_phase_container"
)

// Video payloads at or above this size go through a dedicated upload
// session instead of a single container upload.
const resumableSessionThreshold = 32 << 20

// ContainerStatusCode is the processing state reported by a status poll.
type ContainerStatusCode string

const (
	StatusInProgress ContainerStatusCode = "IN_PROGRESS"
	StatusFinished   ContainerStatusCode = "FINISHED"
	StatusError      ContainerStatusCode = "ERROR"
	StatusExpired    ContainerStatusCode = "EXPIRED"
	StatusPublished  ContainerStatusCode = "PUBLISHED"
)

// ContainerStatus is one observation of a media container's lifecycle.
type ContainerStatus struct {
	ID         string
	StatusCode ContainerStatusCode
	Status     string
}
