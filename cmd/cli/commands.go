package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hamed0406/timetablesvc/internal/config"
	"github.com/hamed0406/timetablesvc/internal/logging"
	"github.com/hamed0406/timetablesvc/internal/monitors"
	"github.com/hamed0406/timetablesvc/internal/probe"
	"github.com/hamed0406/timetablesvc/internal/transport"
)

const defaultTimeout = 15 * time.Second

var errUnhealthy = errors.New("one or more probes failed")

type rootOptions struct {
	api     string
	timeout time.Duration
}

func (o *rootOptions) client() *transport.HTTP {
	c := transport.NewHTTP(o.timeout)
	c.Client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of every monitored dependency",
		Long: `Fetches the status report from the API, or with --local runs the
probes from this machine. Exits non-zero when any probe fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var results []probe.Result
			if local {
				cfg := config.FromEnv()
				logger, err := logging.NewLogger(cfg.LogDir)
				if err != nil {
					return err
				}
				defer logger.Sync()

				agg := probe.NewAggregator(opts.client(), probe.WithTimeout(cfg.ProbeTimeout), probe.WithLogger(logger))
				defs := monitors.Catalogue(monitors.Endpoints{
					Search:       cfg.SearchURL,
					VenuesProxy:  cfg.VenuesProxyURL,
					Contributors: cfg.ContributorsURL,
					Analytics:    cfg.AnalyticsURL,
					NextBus:      cfg.NextBusURL,
					Export:       cfg.ExportURL,
				}.Merge(monitors.DefaultEndpoints()))
				results = agg.Run(cmd.Context(), defs).Results
			} else {
				res, err := opts.client().Do(cmd.Context(), transport.Request{URL: strings.TrimRight(opts.api, "/") + "/status"})
				var se *transport.StatusError
				if errors.As(err, &se) && se.Response.StatusCode == http.StatusInternalServerError {
					res, err = se.Response, nil // degraded report still has a body
				}
				if err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}
				if err := res.JSON(&results); err != nil {
					return err
				}
			}

			printResults(cmd.OutOrStdout(), results)
			if !(probe.Report{Results: results}).Healthy() {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Run the probes locally instead of asking the API")
	return cmd
}

func newShortenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shorten <long-url>",
		Short: "Create (or look up) the short URL for a timetable link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Do(cmd.Context(), transport.Request{
				Method: http.MethodPut,
				URL:    strings.TrimRight(opts.api, "/") + "/short",
				Body:   map[string]string{"longUrl": args[0]},
			})
			if err != nil {
				return apiError(err)
			}
			var body struct {
				ShortURL string `json:"shortUrl"`
			}
			if err := res.JSON(&body); err != nil {
				return err
			}
			label := "existing"
			if res.StatusCode == http.StatusCreated {
				label = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", body.ShortURL, color.New(color.Faint).Sprint("("+label+")"))
			return nil
		},
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "Print where a short code redirects to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := opts.client().Do(cmd.Context(), transport.Request{
				URL:    strings.TrimRight(opts.api, "/") + "/short",
				Params: url.Values{"shortUrl": {args[0]}},
			})
			var se *transport.StatusError
			if errors.As(err, &se) && se.Response.StatusCode == http.StatusFound {
				fmt.Fprintln(cmd.OutOrStdout(), se.Response.Header.Get("Location"))
				return nil
			}
			if err != nil {
				return apiError(err)
			}
			return errors.New("API answered without a redirect")
		},
	}
}

// apiError surfaces the {"error": ...} message when the API sent one.
func apiError(err error) error {
	var se *transport.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var body struct {
		Error string `json:"error"`
	}
	if se.Response.JSON(&body) == nil && body.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", body.Error, se.Response.StatusCode)
	}
	return err
}

func printResults(w io.Writer, results []probe.Result) {
	pad := 0
	for _, r := range results {
		if len(r.Title) > pad {
			pad = len(r.Title)
		}
	}
	okc := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	for _, r := range results {
		if r.Failed() {
			fmt.Fprintf(w, "%s %-*s - %s\n", bad.Sprint("✖"), pad, r.Title, bad.Sprint(r.Error))
			continue
		}
		fmt.Fprintf(w, "%s %-*s - %s\n", okc.Sprint("✔"), pad, r.Title, r.Status)
	}
}
