// Command vitalsctl provisions portal accounts directly in the SQLite store,
// typically healthcare provider accounts.
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/lborres/vitals/adapters/sqlite"
	"github.com/lborres/vitals/core"
	"github.com/lborres/vitals/pkg/crypto"
	"github.com/lborres/vitals/services"
)

const defaultDBPath = "vitals.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("vitalsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	role := fs.String("role", "healthcare_provider", "Role: patient or healthcare_provider")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *username == "" {
		missing = append(missing, "username")
	}
	if *email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: vitalsctl -username <name> -email <email> [-role <role>] [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	// the env var applies only when -db was left at its default
	if path := os.Getenv("VITALS_SQLITE_PATH"); path != "" && *dbPath == defaultDBPath {
		*dbPath = path
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	accounts, err := newAccountService(store)
	if err != nil {
		return err
	}

	result, err := accounts.Register(ctx, core.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: password,
		Role:     *role,
	})
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			return fmt.Errorf("user %s already exists", *username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s (%s) created successfully with ID %s\n",
		result.Account.Username, result.Account.Role, result.Account.ID)
	return nil
}

// newAccountService wires registration against store. Registration also
// signs in; that token is discarded, so a throwaway secret signs it.
func newAccountService(store core.AccountStorage) (*services.AccountService, error) {
	secret := make([]byte, crypto.MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate signing secret: %w", err)
	}

	tokens, err := crypto.NewTokenSigner(crypto.TokenConfig{Secret: []byte(hex.EncodeToString(secret))})
	if err != nil {
		return nil, err
	}
	return services.NewAccountService(store, crypto.NewBcrypt(), tokens, nil), nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
