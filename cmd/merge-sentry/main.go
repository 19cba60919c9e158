// Package main checks a repository's open pull requests for pairwise merge
// conflicts and renders the result as a symmetric conflict matrix.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/go-github/v68/github"

	ghauth "github.com/nathantilsley/merge-sentry/internal/conflict/adapters/gh_auth"
	gitws "github.com/nathantilsley/merge-sentry/internal/conflict/adapters/git_ws"
	prlist "github.com/nathantilsley/merge-sentry/internal/conflict/adapters/pr_list"
	"github.com/nathantilsley/merge-sentry/internal/conflict/adapters/report"
	"github.com/nathantilsley/merge-sentry/internal/conflict/app"
)

const conflictExitCode = 2

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	cfg, err := parseCliConfig()
	if err != nil {
		return 1, err
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	owner, repo, err := parseRepoURL(cfg.repoURL)
	if err != nil {
		return 1, fmt.Errorf("parsing repository URL: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := buildClient(cfg)
	if err != nil {
		return 1, err
	}

	logger.Info("listing open pull requests", "owner", owner, "repo", repo, "base", cfg.baseBranch)
	prs, err := prlist.New(client).ListOpen(ctx, owner, repo, cfg.baseBranch)
	if err != nil {
		return 1, err
	}
	if len(prs) < 2 {
		fmt.Printf("found %d open pull request(s); need at least 2 to compare\n", len(prs))
		return 0, nil
	}
	logger.Info("pull requests found", "count", len(prs))

	pool, cleanup, err := gitws.ClonePool(ctx, cloneURL(cfg.repoURL, cfg.token), cfg.workers, gitws.Options{
		BaseBranch: cfg.baseBranch,
		GitTimeout: cfg.gitTimeout,
		Logger:     logger,
	})
	if err != nil {
		return 1, fmt.Errorf("preparing workspaces: %w", err)
	}
	defer cleanup()

	workspaces := make([]app.Workspace, len(pool))
	for i, ws := range pool {
		workspaces[i] = ws
	}
	builder, err := app.NewBuilder(workspaces, logger)
	if err != nil {
		return 1, err
	}

	matrix, err := builder.Build(ctx, prs)
	if err != nil {
		return 1, err
	}

	fmt.Print(report.Render(matrix))

	logFile, err := os.Create(cfg.logPath)
	if err != nil {
		return 1, fmt.Errorf("creating execution log: %w", err)
	}
	meta := report.Meta{RepoURL: cfg.repoURL, BaseBranch: pool[0].BaseBranch(), BaseSHA: pool[0].BaseSHA()}
	if err := report.WriteLog(logFile, meta, matrix, prs); err != nil {
		_ = logFile.Close()
		return 1, fmt.Errorf("writing execution log: %w", err)
	}
	if err := logFile.Close(); err != nil {
		return 1, fmt.Errorf("closing execution log: %w", err)
	}
	fmt.Printf("execution log written to %s\n", cfg.logPath)

	if cfg.failOnConflict && matrix.ConflictCount() > 0 {
		return conflictExitCode, nil
	}
	return 0, nil
}

type cliConfig struct {
	repoURL        string
	token          string
	baseBranch     string
	logPath        string
	keyPath        string
	appID          int64
	installID      int64
	workers        int
	gitTimeout     time.Duration
	failOnConflict bool
	verbose        bool
}

func parseCliConfig() (cliConfig, error) {
	var (
		token = flag.String("token", "", "GitHub personal access token (or use GITHUB_TOKEN env var)")
		base  = flag.String("base-branch", "", "Base branch to check PRs against (default: repository default branch)")
		appID = flag.Int64(
			"app-id",
			0,
			"GitHub App ID for installation auth (read from GITHUB_APP_ID env var if not set)",
		)
		installID = flag.Int64(
			"installation-id",
			0,
			"GitHub App installation ID (read from GITHUB_INSTALLATION_ID env var if not set)",
		)
		keyPath = flag.String(
			"private-key",
			"",
			"Path to the GitHub App private key (read from GITHUB_APP_PRIVATE_KEY env var if not set)",
		)
		workers        = flag.Int("workers", 1, "Number of parallel workspace clones")
		gitTimeout     = flag.Duration("git-timeout", gitws.DefaultGitTimeout, "Timeout per git invocation")
		logPath        = flag.String("log", "conflict_log.txt", "Path for the textual execution log")
		failOnConflict = flag.Bool("fail-on-conflict", false, "Exit with code 2 when any pair conflicts")
		verbose        = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := cliConfig{
		token:          getEnvOrFlag(*token, "GITHUB_TOKEN"),
		baseBranch:     *base,
		keyPath:        getEnvOrFlag(*keyPath, "GITHUB_APP_PRIVATE_KEY"),
		appID:          *appID,
		installID:      *installID,
		workers:        *workers,
		gitTimeout:     *gitTimeout,
		logPath:        *logPath,
		failOnConflict: *failOnConflict,
		verbose:        *verbose,
	}

	if cfg.appID == 0 {
		if v, err := envInt64("GITHUB_APP_ID"); err != nil {
			return cfg, err
		} else if v != 0 {
			cfg.appID = v
		}
	}
	if cfg.installID == 0 {
		if v, err := envInt64("GITHUB_INSTALLATION_ID"); err != nil {
			return cfg, err
		} else if v != 0 {
			cfg.installID = v
		}
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return cfg, errors.New("missing repository URL argument")
	}
	cfg.repoURL = flag.Arg(0)

	if cfg.appID != 0 && cfg.keyPath == "" {
		return cfg, errors.New("github App auth requires -private-key (or GITHUB_APP_PRIVATE_KEY)")
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	return cfg, nil
}

func buildClient(cfg cliConfig) (*github.Client, error) {
	switch {
	case cfg.appID != 0:
		return ghauth.NewAppClient(cfg.appID, cfg.installID, cfg.keyPath)
	case cfg.token != "":
		return ghauth.NewTokenClient(cfg.token), nil
	default:
		// Anonymous works for public repositories, within rate limits.
		slog.Warn("no GitHub credentials configured, using anonymous access")
		return github.NewClient(nil), nil
	}
}

func getEnvOrFlag(flagValue, envKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envKey)
}

func envInt64(key string) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// parseRepoURL extracts owner and repo from a GitHub repository URL.
// Handles formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
//   - https://github.com/owner/repo/
func parseRepoURL(url string) (string, string, error) {
	re := regexp.MustCompile(`github\.com[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)
	matches := re.FindStringSubmatch(url)
	if len(matches) != 3 {
		return "", "", fmt.Errorf(
			"invalid repository URL format, expected: https://github.com/owner/repo, got: %s",
			url,
		)
	}
	return matches[1], matches[2], nil
}

// cloneURL injects token auth into an https clone URL so private
// repositories can be cloned without credential helpers.
func cloneURL(repoURL, token string) string {
	if token == "" || !strings.HasPrefix(repoURL, "https://") {
		return repoURL
	}
	return "https://x-access-token:" + token + "@" + strings.TrimPrefix(repoURL, "https://")
}
