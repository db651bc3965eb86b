package instagram

import "io"

type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	onRead func(read, total int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	pr.read += int64(n)

	if pr.onRead != nil {
		pr.onRead(pr.read, pr.total)
	}
	return n, err
}

// wrapProgress turns a payload reader into one that reports upload
// progress to the configured reporter. Without a reporter the reader is
// returned untouched.
func (c *Client) wrapProgress(r io.Reader, total int64) io.Reader {
	if c.reporter == nil {
		return r
	}
	return &progressReader{
		reader: r,
		total:  total,
		onRead: func(read, total int64) {
			c.reporter.Report(ProgressReport{
				Stage:      StageUpload,
				BytesSent:  read,
				TotalBytes: total,
			})
		},
	}
}

func (c *Client) report(report ProgressReport) {
	if c.reporter != nil {
		c.reporter.Report(report)
	}
}
