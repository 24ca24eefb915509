package fpl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/fplodds/internal/logger"
	"github.com/richard-senior/fplodds/pkg/transport"
)

// Datasource fetches the remote feeds with a write-through disk cache.
// Every payload lands in the cache directory before parsing, so repeated
// runs within a season cost one download each, and a corrupt parse can be
// diagnosed from the cached file.
type Datasource struct {
	cfg         *FplConfig
	lastFetched time.Time
}

// NewDatasource returns a datasource over the given config
func NewDatasource(cfg *FplConfig) *Datasource {
	return &Datasource{cfg: cfg}
}

// cachedFetch returns the cached copy of a URL's payload, downloading it
// first on a cache miss. The fetch delay applies only to real downloads.
func (ds *Datasource) cachedFetch(url, filename string, html bool) ([]byte, error) {
	cachePath := filepath.Join(ds.cfg.CachePath, filename)

	if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
		logger.Debug("Cache hit for", filename)
		return data, nil
	}

	if err := os.MkdirAll(ds.cfg.CachePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	ds.throttle()
	logger.Info("Fetching", url)

	var data []byte
	var err error
	if html {
		data, err = transport.GetHtml(url)
	} else {
		data, err = transport.GetJSON(url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to cache %s: %w", filename, err)
	}
	return data, nil
}

// throttle spaces consecutive remote fetches by the configured delay
func (ds *Datasource) throttle() {
	if !ds.lastFetched.IsZero() {
		elapsed := time.Since(ds.lastFetched)
		if elapsed < ds.cfg.FetchDelay {
			time.Sleep(ds.cfg.FetchDelay - elapsed)
		}
	}
	ds.lastFetched = time.Now()
}

// GetBootstrap fetches and parses the bootstrap-static snapshot
func (ds *Datasource) GetBootstrap() (*Bootstrap, error) {
	data, err := ds.cachedFetch(ds.cfg.BootstrapURL, "bootstrap.json", false)
	if err != nil {
		return nil, err
	}
	return ParseBootstrap(data)
}

// GetFixtures fetches and parses the fixtures list
func (ds *Datasource) GetFixtures() ([]*Fixture, error) {
	data, err := ds.cachedFetch(ds.cfg.FixturesURL, "fixtures.json", false)
	if err != nil {
		return nil, err
	}
	return ParseFixtures(data)
}

// GetLiveGameweek fetches and parses the live feed for one gameweek
func (ds *Datasource) GetLiveGameweek(gameweek int) (*LiveGameweek, error) {
	url := fmt.Sprintf(ds.cfg.LiveURL, gameweek)
	filename := fmt.Sprintf("event-%d-live.json", gameweek)
	data, err := ds.cachedFetch(url, filename, false)
	if err != nil {
		return nil, err
	}
	return ParseLiveGameweek(data, gameweek)
}

// nativeSeason converts "2024/2025" to the "2425" path segment the odds
// site uses for its per-season CSV directories
func nativeSeason(season string) (string, error) {
	parts := strings.Split(season, "/")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return "", fmt.Errorf("season must be yyyy/yyyy, got %s", season)
	}
	return parts[0][2:] + parts[1][2:], nil
}

// discoverOddsURL scrapes the odds index page for the current season's
// league CSV link. The index layout has been stable for years but the
// constructed URL remains as a fallback if the scrape finds nothing.
func (ds *Datasource) discoverOddsURL() (string, error) {
	native, err := nativeSeason(ds.cfg.Season)
	if err != nil {
		return "", err
	}
	want := native + "/" + ds.cfg.OddsLeagueCode + ".csv"
	fallback := ds.cfg.OddsBaseURL + "/" + want

	data, err := ds.cachedFetch(ds.cfg.OddsIndexURL, "odds-index.html", true)
	if err != nil {
		logger.Warn("Could not fetch odds index page, using constructed URL", err)
		return fallback, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		logger.Warn("Could not parse odds index page, using constructed URL", err)
		return fallback, nil
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.HasSuffix(href, want) {
			if strings.HasPrefix(href, "http") {
				found = href
			} else {
				found = "https://www.football-data.co.uk/" + strings.TrimPrefix(href, "/")
			}
			return false
		}
		return true
	})

	if found == "" {
		logger.Warn("Odds index page has no link for", want, "- using constructed URL")
		return fallback, nil
	}
	return found, nil
}

// GetOdds fetches and parses the season's historic odds CSV
func (ds *Datasource) GetOdds() (*OddsTable, error) {
	url, err := ds.discoverOddsURL()
	if err != nil {
		return nil, err
	}

	native, _ := nativeSeason(ds.cfg.Season)
	filename := fmt.Sprintf("odds-%s-%s.csv", native, ds.cfg.OddsLeagueCode)
	data, err := ds.cachedFetch(url, filename, true)
	if err != nil {
		return nil, err
	}
	return ParseOddsCSV(string(data))
}

// LoadAll fetches everything a pipeline run needs and assembles the data
// context: bootstrap, fixtures, odds and the live feeds for gameweeks 1
// through endGameweek. Any fetch failure aborts the load.
func (ds *Datasource) LoadAll(endGameweek int) (*DataContext, error) {
	if endGameweek < 1 {
		return nil, fmt.Errorf("endGameweek must be at least 1, got %d", endGameweek)
	}

	bootstrap, err := ds.GetBootstrap()
	if err != nil {
		return nil, err
	}
	fixtures, err := ds.GetFixtures()
	if err != nil {
		return nil, err
	}
	odds, err := ds.GetOdds()
	if err != nil {
		return nil, err
	}

	gameweeks := make([]*LiveGameweek, 0, endGameweek)
	for gw := 1; gw <= endGameweek; gw++ {
		lg, err := ds.GetLiveGameweek(gw)
		if err != nil {
			return nil, err
		}
		gameweeks = append(gameweeks, lg)
	}

	return NewDataContext(ds.cfg, bootstrap, fixtures, gameweeks, odds)
}

// CreateData runs the full data build: fetch everything through the end
// gameweek, build flat records for the range, persist the reference tables
// and records to the store and write the processed CSV.
func CreateData(cfg *FplConfig, store *Store, startGameweek, endGameweek int, filename string) error {
	ds := NewDatasource(cfg)
	ctx, err := ds.LoadAll(endGameweek)
	if err != nil {
		return err
	}

	builder := NewRecordBuilder(ctx)
	records, err := builder.BuildRange(startGameweek, endGameweek)
	if err != nil {
		return err
	}

	if store != nil {
		teams := make([]Persistable, 0, len(ctx.Bootstrap.Teams))
		for _, t := range ctx.Bootstrap.Teams {
			teams = append(teams, t)
		}
		if err := store.BulkSave(teams); err != nil {
			return fmt.Errorf("failed to persist teams: %w", err)
		}

		players := make([]Persistable, 0, len(ctx.Bootstrap.Elements))
		for _, p := range ctx.Bootstrap.Elements {
			players = append(players, p)
		}
		if err := store.BulkSave(players); err != nil {
			return fmt.Errorf("failed to persist players: %w", err)
		}

		persistable := make([]Persistable, 0, len(records))
		for _, r := range records {
			persistable = append(persistable, r)
		}
		if err := store.BulkSave(persistable); err != nil {
			return fmt.Errorf("failed to persist feature records: %w", err)
		}
	}

	path := filepath.Join(cfg.ProcessedPath, filename)
	return WriteRecordsCSV(records, path, false)
}
