package accounts

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/adforge/igpub/internal/storage"
)

// AccountCommand manages the encrypted store of business account
// credentials used by the publish command.
var AccountCommand = &cli.Command{
	Name:  "account",
	Usage: "Manage stored business accounts",
	Commands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Save a business account and its access token",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "business-id",
					Aliases: []string{"b"},
					Usage:   "Instagram business account id",
				},
				&cli.StringFlag{
					Name:    "token",
					Aliases: []string{"t"},
					Usage:   "Access token (not recommended, use interactive prompt)",
				},
			},
			Action: addAction,
		},
		{
			Name:    "list",
			Usage:   "List stored accounts",
			Aliases: []string{"ls"},
			Action:  listAction,
		},
		{
			Name:      "remove",
			Usage:     "Delete a stored account",
			ArgsUsage: "<name>",
			Aliases:   []string{"rm"},
			Action:    removeAction,
		},
		{
			Name:      "use",
			Usage:     "Set the default account",
			ArgsUsage: "<name>",
			Action:    useAction,
		},
	},
}

func addAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	businessID := cmd.String("business-id")
	if businessID == "" {
		var err error
		businessID, err = promptInput("Business account ID: ")
		if err != nil {
			return err
		}
	}
	if businessID == "" {
		return fmt.Errorf("business account id is required")
	}

	token := cmd.String("token")
	if token == "" {
		var err error
		token, err = promptToken("Access token: ")
		if err != nil {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	account := &storage.StoredAccount{
		AccessToken:       token,
		BusinessAccountID: businessID,
	}
	if err := store.SaveAccount(name, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	fmt.Printf("✅ Account %q saved\n", name)
	fmt.Printf("   Storage: %s\n", store.GetBasePath())
	return nil
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	names, defaultName, err := store.ListAccounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("📭 No accounts stored")
		fmt.Println("\nAdd one with: igpub account add <name>")
		return nil
	}

	fmt.Println("Stored accounts:")
	for _, name := range names {
		account, err := store.LoadAccount(name)
		if err != nil {
			return err
		}

		marker := "  "
		if name == defaultName {
			marker = "* "
		}
		fmt.Printf("%s%s (business account %s, added %s)\n",
			marker, name, account.BusinessAccountID, account.AddedAt.Format("Jan 2, 2006"))
	}
	return nil
}

func removeAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	if err := store.DeleteAccount(name); err != nil {
		return err
	}

	fmt.Printf("🗑️  Account %q removed\n", name)
	return nil
}

func useAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	store, err := storage.NewAccountStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize account storage: %w", err)
	}

	if err := store.SetDefault(name); err != nil {
		return err
	}

	fmt.Printf("✅ Default account set to %q\n", name)
	return nil
}

// promptInput prompts for user input
func promptInput(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptToken prompts for the access token without echoing it
func promptToken(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		token, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(token)), nil
	}

	// Fallback to regular input if not a terminal
	return promptInput("")
}
