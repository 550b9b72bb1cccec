package fpl

import (
	"context"
	"fmt"
	"time"

	"fplassist-backend/lib/planner"

	"go.opentelemetry.io/otel/codes"
)

type bootstrapDynamic struct {
	NextEvent int `json:"next-event"`
	Entry     struct {
		ID int64 `json:"id"`
	} `json:"entry"`
	NextEventFixtures []struct {
		DeadlineTime string `json:"deadline_time"`
	} `json:"next_event_fixtures"`
}

func (b bootstrapDynamic) nextDeadline() (time.Time, error) {
	if len(b.NextEventFixtures) == 0 {
		return time.Time{}, fmt.Errorf("bootstrap data carries no upcoming fixtures")
	}
	return time.Parse(time.RFC3339, b.NextEventFixtures[0].DeadlineTime)
}

func (c *Client) getBootstrapDynamic(ctx context.Context) (bootstrapDynamic, error) {
	var dynamic bootstrapDynamic
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&dynamic).
		Get(c.fantasy.JoinPath("/drf/bootstrap-dynamic").String())
	if err != nil {
		return bootstrapDynamic{}, err
	}
	if err := statusErr(res); err != nil {
		return bootstrapDynamic{}, err
	}
	return dynamic, nil
}

// GetDeadline returns the next deadline for submitting transfers and
// team choice. It does not require a logged in session.
func (c *Client) GetDeadline(ctx context.Context) (time.Time, error) {
	ctx, span := tracer.Start(ctx, "client:GetDeadline")
	defer span.End()

	dynamic, err := c.getBootstrapDynamic(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch bootstrap data")
		return time.Time{}, err
	}
	return dynamic.nextDeadline()
}

// Element is a single player record from the bootstrap payload.
type Element struct {
	ID          int64  `json:"id"`
	WebName     string `json:"web_name"`
	ElementType int    `json:"element_type"`
	NowCost     int    `json:"now_cost"`
	Team        int    `json:"team"`
}

// Candidate converts a bootstrap element into a target squad entry for
// the planner.
func (e Element) Candidate() planner.Candidate {
	return planner.Candidate{
		ID:          e.ID,
		ElementType: e.ElementType,
		NowCost:     e.NowCost,
	}
}

type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Bootstrap is the full static dataset of the fantasy api: every player
// record and club.
type Bootstrap struct {
	Elements []Element `json:"elements"`
	Teams    []Team    `json:"teams"`
}

// GetAllPlayerData grabs the full bootstrap dataset from the fantasy
// api.
func (c *Client) GetAllPlayerData(ctx context.Context) (Bootstrap, error) {
	ctx, span := tracer.Start(ctx, "client:GetAllPlayerData")
	defer span.End()

	var bootstrap Bootstrap
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&bootstrap).
		Get(c.fantasy.JoinPath("/drf/bootstrap-static").String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch bootstrap-static")
		return Bootstrap{}, err
	}
	if err := statusErr(res); err != nil {
		span.SetStatus(codes.Error, "bootstrap-static returned an error status")
		return Bootstrap{}, err
	}
	return bootstrap, nil
}

type PlayerFixture struct {
	EventName  string `json:"event_name"`
	Difficulty int    `json:"difficulty"`
	IsHome     bool   `json:"is_home"`
}

type PlayerHistory struct {
	Round       int `json:"round"`
	TotalPoints int `json:"total_points"`
	Minutes     int `json:"minutes"`
}

// PlayerDetail is a single player's full history and upcoming fixture
// list.
type PlayerDetail struct {
	Fixtures []PlayerFixture `json:"fixtures"`
	History  []PlayerHistory `json:"history"`
}

// GetPlayerFixtures grabs a single player's history and fixtures using
// their element id.
func (c *Client) GetPlayerFixtures(ctx context.Context, playerId int64) (PlayerDetail, error) {
	ctx, span := tracer.Start(ctx, "client:GetPlayerFixtures")
	defer span.End()

	var detail PlayerDetail
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&detail).
		Get(c.fantasy.JoinPath(fmt.Sprintf("/drf/element-summary/%d", playerId)).String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch element summary")
		return PlayerDetail{}, err
	}
	if err := statusErr(res); err != nil {
		span.SetStatus(codes.Error, "element summary returned an error status")
		return PlayerDetail{}, err
	}
	return detail, nil
}

type transfersSquad struct {
	Picks []planner.OwnedPlayer `json:"picks"`
}

// GetTransfersSquad returns the currently selected squad from the
// transfers endpoint, which carries selling prices. Requires a logged
// in session. Picks come back in position order, which the planner
// relies on when pairing transfers.
func (c *Client) GetTransfersSquad(ctx context.Context) ([]planner.OwnedPlayer, error) {
	ctx, span := tracer.Start(ctx, "client:GetTransfersSquad")
	defer span.End()

	var squad transfersSquad
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetResult(&squad).
		Get(c.fantasy.JoinPath("/drf/transfers").String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch transfers squad")
		return nil, err
	}
	if err := statusErr(res); err != nil {
		span.SetStatus(codes.Error, "transfers squad returned an error status")
		return nil, err
	}
	return squad.Picks, nil
}
