package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"golang.org/x/term"

	apiclient "github.com/AayushAdhikari30/SwiftTalk/pkg/api/client"
	"github.com/AayushAdhikari30/SwiftTalk/pkg/api/state"
)

type cliConfig struct {
	APIBaseURL string `json:"api_base_url"`
}

var buildVersion = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "signup":
		err = commandSignup(args)
	case "login":
		err = commandLogin(args)
	case "logout":
		err = commandLogout(args)
	case "whoami":
		err = commandWhoami(args)
	case "update-profile":
		err = commandUpdateProfile(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commandSignup(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Full name")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default http://localhost:4000)")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}
	secret, err := resolvePassword(*password)
	if err != nil {
		return err
	}

	store, err := buildStore(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	profile, err := store.Signup(ctx, apiclient.SignupInput{
		Email:    *email,
		FullName: *name,
		Password: secret,
	})
	if err != nil {
		return err
	}
	fmt.Printf("account created for %s\n", profile.Email)
	return nil
}

func commandLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	apiBase := fs.String("api", "", "API base URL (default http://localhost:4000)")
	fs.Parse(args)

	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}
	secret, err := resolvePassword(*password)
	if err != nil {
		return err
	}

	store, err := buildStore(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	profile, err := store.Login(ctx, *email, secret)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", profile.Email)
	return nil
}

func commandLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	apiBase := fs.String("api", "", "API base URL (default http://localhost:4000)")
	fs.Parse(args)

	store, err := buildStore(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	store.Logout(ctx)
	fmt.Println("logged out")
	return nil
}

func commandWhoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	apiBase := fs.String("api", "", "API base URL (default http://localhost:4000)")
	fs.Parse(args)

	store, err := buildStore(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := store.CheckSession(ctx); err != nil {
		return err
	}
	snap := store.Snapshot()
	if !snap.Authenticated() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s>\n", snap.CurrentUser.FullName, snap.CurrentUser.Email)
	return nil
}

func commandUpdateProfile(args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	name := fs.String("name", "", "New full name")
	avatar := fs.String("avatar", "", "New profile picture URL")
	apiBase := fs.String("api", "", "API base URL (default http://localhost:4000)")
	fs.Parse(args)

	patch := apiclient.ProfilePatch{}
	if strings.TrimSpace(*name) != "" {
		patch.FullName = name
	}
	if strings.TrimSpace(*avatar) != "" {
		patch.ProfilePic = avatar
	}
	if patch.FullName == nil && patch.ProfilePic == nil {
		return errors.New("nothing to update: supply --name or --avatar")
	}

	store, err := buildStore(*apiBase)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	profile, err := store.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	fmt.Printf("profile updated: %s\n", profile.FullName)
	return nil
}

func resolvePassword(flagValue string) (string, error) {
	secret := strings.TrimSpace(flagValue)
	if secret != "" {
		return secret, nil
	}
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Print("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func buildStore(apiBase string) (*state.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiBase) != "" {
		cfg.APIBaseURL = apiBase
	}
	cli, err := apiclient.New(cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	sessionPath, err := sessionPath()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return state.NewStore(cli, state.NewFileSlot(sessionPath), logger), nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cliConfig{APIBaseURL: "http://localhost:4000"}, nil
		}
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, err
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:4000"
	}
	return cfg, nil
}

func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "swifttalk", "config.json"), nil
}

func sessionPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "swifttalk", "session.json"), nil
}

func printVersion() {
	fmt.Printf("swifttalk CLI %s\n", buildVersion)
}

func printUsage() {
	fmt.Printf("swifttalk CLI %s\n\n", buildVersion)
	fmt.Print(`Usage:
	swifttalk signup --email user@example.com --name "Full Name" [--password secret] [--api http://localhost:4000]
	swifttalk login --email user@example.com [--password secret] [--api http://localhost:4000]
	swifttalk logout
	swifttalk whoami
	swifttalk update-profile [--name "New Name"] [--avatar URL]
	swifttalk version
`)
}
