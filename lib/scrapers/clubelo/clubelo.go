// Package clubelo fetches club Elo ratings from api.clubelo.com and
// reconciles them with fantasy team records, which spell several club
// names differently.
package clubelo

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/url"
	"strconv"
	"time"

	"fplassist-backend/lib/scrapers/fpl"
	"fplassist-backend/lib/telemetry"

	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/clubelo")

// names the Elo site uses that never fuzzy-match the fantasy spelling
var knownAliases = map[string]string{
	"Tottenham":  "Spurs",
	"Man United": "Man Utd",
}

// below this JaroWinkler similarity a club is considered not present in
// the fantasy dataset (most clubs in the Elo feed aren't)
const minSimilarity = 0.9

type Client struct {
	http *resty.Client
	base *url.URL
}

type ClientOptions struct {
	// defaults to http://api.clubelo.com
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "http://api.clubelo.com"
	}
	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "scrapers/clubelo/http")

	return &Client{http: client, base: base}, nil
}

// csv columns of the Elo feed
const (
	colClub = 1
	colElo  = 4
)

// Ratings returns the Elo rating for each fantasy team as of the given
// date, keyed by fantasy team id. Teams without a matching club in the
// Elo feed are absent from the result. An exact or alias name match
// always takes precedence over a fuzzy one.
func (c *Client) Ratings(ctx context.Context, date time.Time, teams []fpl.Team) (map[int]float64, error) {
	ctx, span := tracer.Start(ctx, "client:Ratings")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.base.JoinPath(date.Format("2006-01-02")).String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch elo csv")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "elo csv returned an error status")
		return nil, &fpl.StatusError{StatusCode: res.StatusCode(), Body: res.String()}
	}

	reader := csv.NewReader(bytes.NewReader(res.Body()))
	reader.FieldsPerRecord = -1

	ratings := map[int]float64{}
	exact := map[int]bool{}
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse elo csv")
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(record) <= colElo {
			continue
		}

		elo, err := strconv.ParseFloat(record[colElo], 64)
		if err != nil {
			continue
		}

		match, ok := matchTeam(record[colClub], teams)
		if !ok {
			continue
		}
		// foreign clubs like Arsenal Tula fuzzy-match English ones, so
		// a fuzzy row must never replace an exact or alias match
		if exact[match.team.ID] {
			continue
		}
		if match.exact {
			exact[match.team.ID] = true
		}
		ratings[match.team.ID] = elo
	}

	return ratings, nil
}

type teamMatch struct {
	team fpl.Team
	// true when the club name (or its alias) equals the fantasy name
	exact bool
}

func matchTeam(club string, teams []fpl.Team) (teamMatch, bool) {
	if alias, ok := knownAliases[club]; ok {
		club = alias
	}

	for _, team := range teams {
		if team.Name == club {
			return teamMatch{team: team, exact: true}, true
		}
	}

	var mostSimilarity float64
	var mostSimilar fpl.Team
	for _, team := range teams {
		similarity := matchr.JaroWinkler(club, team.Name, false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = team
		}
	}
	if mostSimilarity < minSimilarity {
		return teamMatch{}, false
	}
	return teamMatch{team: mostSimilar}, true
}
