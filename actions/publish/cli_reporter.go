package publish

import (
	"fmt"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/adforge/igpub/internal/platform/instagram"
)

type CLIReporter struct {
	progress *mpb.Progress
	upload   *mpb.Bar
	mu       sync.Mutex

	// statusMu guards statusMsg, which mpb's render goroutine reads
	// while Report may be holding mu.
	statusMu  sync.Mutex
	statusMsg string
}

func NewCLIReporter() *CLIReporter {
	return &CLIReporter{
		progress:  mpb.New(mpb.WithWidth(60)),
		statusMsg: "Starting...",
	}
}

func (r *CLIReporter) Report(p instagram.ProgressReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch p.Stage {
	case instagram.StagePrepare:
		r.setStatus("📦 " + p.Message)

	case instagram.StageUpload:
		if r.upload == nil && p.TotalBytes > 0 {
			r.setStatus("⬆️  Uploading")
			r.upload = r.progress.AddBar(p.TotalBytes,
				mpb.PrependDecorators(
					decor.Any(func(st decor.Statistics) string {
						return fmt.Sprintf("%-16s", r.status())
					}, decor.WCSyncSpaceR),
					decor.Counters(decor.SizeB1024(0), "% .2f / % .2f", decor.WCSyncSpace),
				),
				mpb.AppendDecorators(
					decor.AverageSpeed(decor.SizeB1024(0), "% .2f", decor.WCSyncSpace),
					decor.Name(" | "),
					decor.OnComplete(
						decor.AverageETA(decor.ET_STYLE_GO), "✨ Sent!",
					),
				),
			)
		}
		if r.upload != nil {
			r.upload.SetCurrent(p.BytesSent)
		}

	case instagram.StageProcess:
		r.setStatus(fmt.Sprintf("⏳ Processing %d/%d", p.Attempt, p.MaxAttempts))
		if r.upload == nil && p.Attempt == 1 {
			fmt.Println("⏳ Waiting for Instagram to process the media...")
		}

	case instagram.StagePublish:
		r.setStatus("🚀 Publishing")
	}
}

func (r *CLIReporter) status() string {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.statusMsg
}

func (r *CLIReporter) setStatus(msg string) {
	r.statusMu.Lock()
	r.statusMsg = msg
	r.statusMu.Unlock()
}

func (r *CLIReporter) Wait() {
	r.mu.Lock()
	if r.upload != nil && !r.upload.Completed() {
		r.upload.Abort(true)
	}
	r.mu.Unlock()

	r.progress.Wait()
}
