// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/hamed0406/timetablesvc/internal/config"
)

type checker struct {
	out, errOut io.Writer
	failed      bool
}

func (c *checker) fail(msg string) {
	c.failed = true
	fmt.Fprintln(c.errOut, color.RedString("✖"), msg)
}
func (c *checker) warn(msg string) { fmt.Fprintln(c.errOut, color.YellowString("⚠"), msg) }
func (c *checker) ok(msg string)   { fmt.Fprintln(c.out, color.GreenString("✔"), msg) }

func main() {
	c := &checker{out: os.Stdout, errOut: os.Stderr}
	run(c, config.FromEnv())
	if c.failed {
		os.Exit(1)
	}
}

func run(c *checker, cfg config.Config) {
	if cfg.Addr == "" {
		c.warn("API_ADDR is empty; default in your app may be used.")
	} else {
		c.ok("API_ADDR=" + cfg.Addr)
	}

	if cfg.DatabaseURL == "" {
		c.warn("DATABASE_URL empty — short URLs live in memory and are lost on restart.")
	} else if u, err := url.Parse(cfg.DatabaseURL); err != nil || !strings.HasPrefix(u.Scheme, "postgres") {
		c.fail("DATABASE_URL is not a postgres:// URL.")
	} else {
		c.ok("DATABASE_URL present")
	}

	for name, v := range map[string]string{
		"SHORT_URL_BASE": cfg.ShortURLBase,
		"REDIRECT_BASE":  cfg.RedirectBase,
		"SITE_URL":       cfg.SiteURL,
	} {
		if u, err := url.Parse(v); err != nil || u.Scheme == "" || u.Host == "" {
			c.fail(name + " must be an absolute URL, got " + fmt.Sprintf("%q", v))
		}
	}

	if cfg.SMTPHost == "" {
		c.warn("SMTP_HOST empty — module-error reports will only be logged.")
	} else {
		c.ok(fmt.Sprintf("SMTP_HOST=%s:%d", cfg.SMTPHost, cfg.SMTPPort))
		if cfg.FromAddress == "" {
			c.fail("FROM_ADDRESS is required when SMTP_HOST is set.")
		}
		if cfg.SMTPUser != "" && cfg.SMTPPassword == "" {
			c.warn("SMTP_USER set without SMTP_PASSWORD.")
		}
	}
	if cfg.FacultyDirectoryURL == "" {
		c.fail("FACULTY_DIRECTORY_URL empty — every module-error report will fail.")
	}
	if cfg.KillSwitchURL == "" {
		c.warn("KILL_SWITCH_URL empty — enquiries cannot be paused remotely.")
	}

	switch {
	case cfg.MockGitHub:
		c.warn("MOCK_GITHUB set — venue issues are composed and logged, never filed.")
	case cfg.GitHubOrg == "" || cfg.GitHubRepo == "":
		c.warn("GITHUB_ORG/GITHUB_REPO empty — venue issues will only be logged.")
	case cfg.GitHubToken == "":
		c.fail("GITHUB_TOKEN empty — GitHub will reject issue creation.")
	default:
		c.ok("GitHub issues go to " + cfg.GitHubOrg + "/" + cfg.GitHubRepo)
	}
	if cfg.VenuesURL == "" {
		c.warn("VENUES_URL empty — venue issues will not include the current version.")
	}

	if cfg.WatchInterval > 0 && cfg.SlackWebhook == "" {
		c.warn("WATCH_INTERVAL_MS set but SLACK_WEBHOOK empty — the watcher stays off.")
	}

	if !c.failed {
		c.ok("preflight passed")
	}
}
