// Package monitors holds the catalogue of dependencies shown on the status page.
package monitors

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/hamed0406/timetablesvc/internal/probe"
	"github.com/hamed0406/timetablesvc/internal/transport"
)

// Endpoints are the upstream URLs probed by the catalogue.
type Endpoints struct {
	Search       string
	VenuesProxy  string
	Contributors string
	Analytics    string
	NextBus      string
	Export       string
}

// DefaultEndpoints are the production dependencies.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Search:       "https://nusmods-search.es.ap-southeast-1.aws.found.io:9243/modules_v2/_search",
		VenuesProxy:  "https://github.nusmods.com/venues",
		Contributors: "https://github.nusmods.com/repo/contributors",
		Analytics:    "https://analytics.nusmods.com/piwik.php",
		NextBus:      "https://nnextbus.nusmods.com/ShuttleService?busstopname=KR-MRT",
		Export:       "https://nusmods.com/export/debug/",
	}
}

// Merge returns e with empty fields taken from def.
func (e Endpoints) Merge(def Endpoints) Endpoints {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return Endpoints{
		Search:       pick(e.Search, def.Search),
		VenuesProxy:  pick(e.VenuesProxy, def.VenuesProxy),
		Contributors: pick(e.Contributors, def.Contributors),
		Analytics:    pick(e.Analytics, def.Analytics),
		NextBus:      pick(e.NextBus, def.NextBus),
		Export:       pick(e.Export, def.Export),
	}
}

// Catalogue builds the probe definitions in display order.
func Catalogue(e Endpoints) []probe.Definition {
	return []probe.Definition{
		{
			Title:       "Module Search",
			Description: "ElasticSearch server powering the module search page",
			Target: transport.Request{
				Method: http.MethodPost,
				URL:    e.Search,
				Body: map[string]any{
					"query": map[string]any{"match_all": map[string]any{}},
					"size":  1,
				},
			},
			Check: probe.CustomCheck(SearchHits),
		},
		{
			Title:       "GitHub Venues Proxy",
			Description: "Proxies venue data from GitHub's API since the API is IP rate limited",
			Target:      transport.Request{URL: e.VenuesProxy},
			Check:       probe.CustomCheck(VenueCount),
		},
		{
			Title:       "GitHub Contributors Proxy",
			Description: "Proxies contributor data from GitHub's API since the API is IP rate limited",
			Target:      transport.Request{URL: e.Contributors},
			Check:       probe.CustomCheck(ContributorCount),
		},
		{
			Title:       "Analytics",
			Description: "Self hosted Matomo analytics instance",
			Target:      transport.Request{URL: e.Analytics},
		},
		{
			Title:       "NextBus Proxy",
			Description: "Proxies NextBus data because the API does not have CORS headers",
			Target:      transport.Request{URL: e.NextBus},
		},
		{
			Title:       "Export",
			Description: "Timetable export service",
			Target:      transport.Request{URL: e.Export},
		},
	}
}

var (
	errNoModules      = errors.New("No data in ElasticSearch server")
	errNoVenues       = errors.New("No venues from venues proxy")
	errNoContributors = errors.New("No contributors from contributors proxy")
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value    int    `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
	} `json:"hits"`
}

// SearchHits requires a positive, well-formed hit total from the search index.
func SearchHits(res *transport.Response) (string, error) {
	var body searchResponse
	if err := res.JSON(&body); err != nil {
		return "", err
	}
	total := body.Hits.Total
	if total.Value <= 0 || !slices.Contains([]string{"eq", "gte", "gt"}, total.Relation) {
		return "", errNoModules
	}
	return fmt.Sprintf("At least %d modules", total.Value), nil
}

// VenueCount requires a non-empty venue map.
func VenueCount(res *transport.Response) (string, error) {
	var venues map[string]any
	if err := res.JSON(&venues); err != nil {
		return "", err
	}
	if len(venues) == 0 {
		return "", errNoVenues
	}
	return fmt.Sprintf("%d venues", len(venues)), nil
}

// ContributorCount requires a non-empty contributor list.
func ContributorCount(res *transport.Response) (string, error) {
	var contributors []any
	if err := res.JSON(&contributors); err != nil {
		return "", err
	}
	if len(contributors) == 0 {
		return "", errNoContributors
	}
	return fmt.Sprintf("%d contributors", len(contributors)), nil
}
