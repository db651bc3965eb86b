package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/adforge/igpub/actions/accounts"
	"github.com/adforge/igpub/actions/publish"
	"github.com/adforge/igpub/internal/config"
	"github.com/adforge/igpub/internal/logging"
)

func main() {
	config.LoadEnv(logging.NewLogger())

	cmd := &cli.Command{
		Name:    "igpub",
		Usage:   "Publish ad creatives to Instagram business accounts",
		Version: "0.1.0",
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("igpub - Use 'igpub help' for available commands")
			return nil
		},
		Commands: []*cli.Command{
			publish.PublishCommand,
			accounts.AccountCommand,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
