// ABOUTME: Admin CLI for the media agent credential store
// ABOUTME: Manages accounts, service credentials, settings and sessions on a data directory

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/akstspace/media-mgmt-agent/internal/config"
	"github.com/akstspace/media-mgmt-agent/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args, dir, err := extractDataDirFlag(os.Args[1:])
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	dataDirFlag = dir

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "users":
		err = cmdUsers(args)
	case "creds":
		err = cmdCreds(args)
	case "settings":
		err = cmdSettings(args)
	case "sessions":
		err = cmdSessions(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	fmt.Println("Usage: media-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  users create <username>                 Create an account (prompts for password)")
	fmt.Println("  users list                              List accounts")
	fmt.Println("  users passwd <username>                 Change a password (prompts for old/new)")
	fmt.Println("  users delete <username>                 Delete an account and all its data")
	fmt.Println("  creds set <user> <service> [--url U] [--api-key K]")
	fmt.Println("                                          Save service credentials (encrypted)")
	fmt.Println("  creds get <user> <service> [--show]     Show credentials (api key masked)")
	fmt.Println("  creds list <user>                       List services with stored credentials")
	fmt.Println("  creds delete <user> <service>           Delete service credentials")
	fmt.Println("  settings set <user> <key> <value>       Save a setting")
	fmt.Println("  settings get <user> <key>               Show a setting")
	fmt.Println("  settings list <user>                    List settings")
	fmt.Println("  sessions prune                          Delete expired login sessions")
	fmt.Println()
	yellow.Println("Flags:")
	fmt.Println("  --data-dir <dir>       Data directory, wins over the environment")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  MEDIA_AGENT_DATA_DIR   Data directory (default: current directory)")
	fmt.Println("  MEDIA_AGENT_CONFIG     Optional YAML config file")
}

// dataDirFlag holds the value of --data-dir, which wins over both the
// environment and the config file.
var dataDirFlag string

// extractDataDirFlag removes --data-dir <dir> from the argument list so
// subcommands never see it.
func extractDataDirFlag(args []string) ([]string, string, error) {
	var rest []string
	var dir string
	for i := 0; i < len(args); i++ {
		if args[i] == "--data-dir" {
			i++
			if i >= len(args) {
				return nil, "", fmt.Errorf("--data-dir requires a value")
			}
			dir = args[i]
			continue
		}
		rest = append(rest, args[i])
	}
	return rest, dir, nil
}

// loadConfig resolves configuration: MEDIA_AGENT_CONFIG file if set,
// defaults otherwise. --data-dir wins over MEDIA_AGENT_DATA_DIR wins over
// the config file.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()

	if path := os.Getenv("MEDIA_AGENT_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dir := os.Getenv("MEDIA_AGENT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}

	return cfg, nil
}

// openStore sets up logging and opens the store on the configured data dir.
func openStore() (*store.SQLiteStore, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	setupLogging(cfg.Logging)

	s, err := store.NewSQLiteStore(cfg.DataDir, store.Options{
		DatabaseName:  cfg.Database.File,
		EncryptionKey: cfg.Encryption.Key,
	})
	if err != nil {
		return nil, nil, err
	}

	return s, cfg, nil
}

func setupLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func cmdUsers(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: media-admin users <create|list|passwd|delete> ...")
	}

	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	switch args[0] {
	case "create":
		if len(args) != 2 {
			return fmt.Errorf("usage: media-admin users create <username>")
		}
		return usersCreate(ctx, s, args[1])
	case "list":
		return usersList(ctx, s)
	case "passwd":
		if len(args) != 2 {
			return fmt.Errorf("usage: media-admin users passwd <username>")
		}
		return usersPasswd(ctx, s, args[1])
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: media-admin users delete <username>")
		}
		return usersDelete(ctx, s, args[1])
	default:
		return fmt.Errorf("unknown users subcommand: %s", args[0])
	}
}

func usersCreate(ctx context.Context, s *store.SQLiteStore, username string) error {
	hasUsers, err := s.HasAnyUsers(ctx)
	if err != nil {
		return err
	}
	if !hasUsers {
		fmt.Println("No accounts yet - creating the first one.")
	}

	password, err := promptLine("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptLine("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := s.CreateUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return fmt.Errorf("username %q is already taken", username)
		}
		return err
	}

	color.Green("Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func usersList(ctx context.Context, s *store.SQLiteStore) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tCREATED")
	for _, u := range users {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, created)
	}
	return w.Flush()
}

func usersPasswd(ctx context.Context, s *store.SQLiteStore, username string) error {
	oldPassword, err := promptLine("Current password: ")
	if err != nil {
		return err
	}
	newPassword, err := promptLine("New password: ")
	if err != nil {
		return err
	}

	if err := s.ChangePassword(ctx, username, oldPassword, newPassword); err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return fmt.Errorf("current password is incorrect")
		}
		return err
	}

	color.Green("Password changed for %s\n", username)
	return nil
}

func usersDelete(ctx context.Context, s *store.SQLiteStore, username string) error {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no such user: %s", username)
		}
		return err
	}

	answer, err := promptLine(fmt.Sprintf("Delete %s and all stored credentials? [y/N] ", username))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Println("Aborted.")
		return nil
	}

	if err := s.DeleteUser(ctx, user.ID); err != nil {
		return err
	}

	color.Green("Deleted user %s\n", username)
	return nil
}

func cmdCreds(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: media-admin creds <set|get|list|delete> ...")
	}

	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	switch args[0] {
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("usage: media-admin creds set <user> <service> [--url U] [--api-key K]")
		}
		return credsSet(ctx, s, args[1], args[2], args[3:])
	case "get":
		if len(args) < 3 {
			return fmt.Errorf("usage: media-admin creds get <user> <service> [--show]")
		}
		show := len(args) > 3 && args[3] == "--show"
		return credsGet(ctx, s, args[1], args[2], show)
	case "list":
		if len(args) != 2 {
			return fmt.Errorf("usage: media-admin creds list <user>")
		}
		return credsList(ctx, s, args[1])
	case "delete":
		if len(args) != 3 {
			return fmt.Errorf("usage: media-admin creds delete <user> <service>")
		}
		return credsDelete(ctx, s, args[1], args[2])
	default:
		return fmt.Errorf("unknown creds subcommand: %s", args[0])
	}
}

func resolveUser(ctx context.Context, s *store.SQLiteStore, username string) (int64, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("no such user: %s", username)
		}
		return 0, err
	}
	return user.ID, nil
}

func credsSet(ctx context.Context, s *store.SQLiteStore, username, service string, flags []string) error {
	userID, err := resolveUser(ctx, s, username)
	if err != nil {
		return err
	}

	var url, apiKey *string
	for i := 0; i < len(flags); i++ {
		switch flags[i] {
		case "--url":
			i++
			if i >= len(flags) {
				return fmt.Errorf("--url requires a value")
			}
			url = &flags[i]
		case "--api-key":
			i++
			if i >= len(flags) {
				return fmt.Errorf("--api-key requires a value")
			}
			apiKey = &flags[i]
		default:
			return fmt.Errorf("unknown flag: %s", flags[i])
		}
	}

	if err := s.SaveCredentials(ctx, userID, service, url, apiKey); err != nil {
		return err
	}

	color.Green("Saved credentials for %s/%s\n", username, service)
	return nil
}

func credsGet(ctx context.Context, s *store.SQLiteStore, username, service string, show bool) error {
	userID, err := resolveUser(ctx, s, username)
	if err != nil {
		return err
	}

	creds, err := s.GetCredentials(ctx, userID, service)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no credentials stored for %s/%s", username, service)
		}
		return err
	}

	fmt.Printf("url:     %s\n", stringOrDash(creds.URL))
	if show {
		fmt.Printf("api_key: %s\n", stringOrDash(creds.APIKey))
	} else {
		fmt.Printf("api_key: %s\n", maskSecret(creds.APIKey))
	}
	return nil
}

func credsList(ctx context.Context, s *store.SQLiteStore, username string) error {
	userID, err := resolveUser(ctx, s, username)
	if err != nil {
		return err
	}

	all, err := s.GetAllCredentials(ctx, userID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tURL\tAPI KEY")
	for service, creds := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\n", service, stringOrDash(creds.URL), maskSecret(creds.APIKey))
	}
	return w.Flush()
}

func credsDelete(ctx context.Context, s *store.SQLiteStore, username, service string) error {
	userID, err := resolveUser(ctx, s, username)
	if err != nil {
		return err
	}

	if err := s.DeleteCredentials(ctx, userID, service); err != nil {
		return err
	}

	color.Green("Deleted credentials for %s/%s\n", username, service)
	return nil
}

func cmdSettings(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: media-admin settings <set|get|list> ...")
	}

	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	switch args[0] {
	case "set":
		if len(args) != 4 {
			return fmt.Errorf("usage: media-admin settings set <user> <key> <value>")
		}
		userID, err := resolveUser(ctx, s, args[1])
		if err != nil {
			return err
		}
		if err := s.SaveSetting(ctx, userID, args[2], args[3]); err != nil {
			return err
		}
		color.Green("Saved setting %s for %s\n", args[2], args[1])
		return nil
	case "get":
		if len(args) != 3 {
			return fmt.Errorf("usage: media-admin settings get <user> <key>")
		}
		userID, err := resolveUser(ctx, s, args[1])
		if err != nil {
			return err
		}
		value, err := s.GetSetting(ctx, userID, args[2])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no setting %q for %s", args[2], args[1])
			}
			return err
		}
		fmt.Println(value)
		return nil
	case "list":
		if len(args) != 2 {
			return fmt.Errorf("usage: media-admin settings list <user>")
		}
		userID, err := resolveUser(ctx, s, args[1])
		if err != nil {
			return err
		}
		settings, err := s.GetAllSettings(ctx, userID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for key, value := range settings {
			fmt.Fprintf(w, "%s\t%s\n", key, value)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown settings subcommand: %s", args[0])
	}
}

func cmdSessions(args []string) error {
	if len(args) != 1 || args[0] != "prune" {
		return fmt.Errorf("usage: media-admin sessions prune")
	}

	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteExpiredSessions(context.Background()); err != nil {
		return err
	}

	color.Green("Pruned expired sessions\n")
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func stringOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// maskSecret shows only a short prefix of a stored secret.
func maskSecret(s *string) string {
	if s == nil {
		return "-"
	}
	if len(*s) <= 4 {
		return "****"
	}
	return (*s)[:4] + "****"
}
