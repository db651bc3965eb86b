package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/adforge/igpub/internal/platform/instagram"
	"github.com/adforge/igpub/providers"
)

// PublishCommand is the CLI command for publishing media to the feed
var PublishCommand = &cli.Command{
	Name:      "publish",
	Usage:     "Publish an image or video to your business account's feed",
	ArgsUsage: "[file]",
	Aliases:   []string{"post", "p"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Local media file to upload",
		},
		&cli.StringSliceFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Public media URL, repeat for a carousel",
		},
		&cli.StringFlag{
			Name:    "caption",
			Aliases: []string{"c"},
			Usage:   "Post caption",
		},
		&cli.StringFlag{
			Name:    "kind",
			Aliases: []string{"k"},
			Usage:   "Force the media kind (image or video)",
		},
		&cli.StringFlag{
			Name:    "account",
			Aliases: []string{"a"},
			Usage:   "Stored account to publish as",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Disable the progress display",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug output",
		},
	},
	Action: publishAction,
}

func publishAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		os.Setenv("LOG_LEVEL", "debug")
	}

	input := providers.PublishInput{
		FilePath: cmd.String("file"),
		URLs:     cmd.StringSlice("url"),
		Caption:  cmd.String("caption"),
		Kind:     cmd.String("kind"),
	}
	if input.FilePath == "" && len(input.URLs) == 0 {
		input.FilePath = cmd.Args().First()
	}

	var reporter *CLIReporter
	if !cmd.Bool("quiet") && !cmd.Bool("debug") {
		reporter = NewCLIReporter()
	}

	provider, err := providers.NewPublishProvider(cmd.String("account"), asReporter(reporter))
	if err != nil {
		return err
	}

	result, err := provider.Publish(ctx, input)
	if reporter != nil {
		reporter.Wait()
	}
	if err != nil {
		fmt.Printf("\n❌ %v\n", err)
		return nil
	}

	fmt.Printf("\n✅ Published! Post ID: %s\n", result.PostID)
	return nil
}

// asReporter avoids handing the provider a typed nil.
func asReporter(r *CLIReporter) instagram.ProgressReporter {
	if r == nil {
		return nil
	}
	return r
}
