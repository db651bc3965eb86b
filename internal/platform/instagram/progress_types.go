package instagram

// PublishStage labels the phase a progress report refers to.
type PublishStage string

const (
	StagePrepare PublishStage = "PREPARE"
	StageUpload  PublishStage = "UPLOAD"
	StageProcess PublishStage = "PROCESS"
	StagePublish PublishStage = "PUBLISH"
)

// ProgressReport is the data packet sent from the Client to the UI
type ProgressReport struct {
	Stage       PublishStage
	Message     string
	Attempt     int   // Current status check (PROCESS only)
	MaxAttempts int   // Status check limit (PROCESS only)
	BytesSent   int64 // Bytes sent in the CURRENT upload
	TotalBytes  int64 // Total bytes of the CURRENT upload
}

// ProgressReporter is the interface used to "send" updates
type ProgressReporter interface {
	Report(report ProgressReport)
}
