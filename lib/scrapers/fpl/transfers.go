package fpl

import (
	"context"
	"fmt"

	"fplassist-backend/lib/planner"

	"go.opentelemetry.io/otel/codes"
)

// the upstream expects these flags as string literals, not json bools
func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type transferPayload struct {
	Confirmed string             `json:"confirmed"`
	Entry     int64              `json:"entry"`
	Event     int                `json:"event"`
	Transfers []planner.Transfer `json:"transfers"`
	Wildcard  string             `json:"wildcard"`
}

// SubmitResult reports the outcome of a transfer submission. NoOp is
// set when the plan carried no transfers and nothing was sent upstream.
type SubmitResult struct {
	NoOp       bool
	StatusCode int
}

// MakeTransfers submits a computed plan as a single atomic request.
// An empty plan is a no-op reported as success without contacting the
// remote service. A non-success response is surfaced as a *StatusError
// and never retried.
func (c *Client) MakeTransfers(ctx context.Context, session Session, plan planner.Plan) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "client:MakeTransfers")
	defer span.End()

	if len(plan.Transfers) == 0 {
		span.SetStatus(codes.Ok, "no transfers to make")
		return SubmitResult{NoOp: true}, nil
	}

	if plan.Entry != session.EntryID {
		span.SetStatus(codes.Error, "plan does not belong to session")
		return SubmitResult{}, fmt.Errorf(
			"plan is for entry %d but the session owns entry %d",
			plan.Entry, session.EntryID,
		)
	}

	transfersPage := c.fantasy.JoinPath("/a/squad/transfers").String()

	// refresh the csrftoken cookie for the fantasy domain
	_, err := c.http.R().
		SetContext(ctx).
		Get(transfersPage)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch transfers page")
		return SubmitResult{}, err
	}

	csrf := c.csrfToken(c.fantasy)
	if csrf == "" {
		span.SetStatus(codes.Error, "failed to find csrf token")
		return SubmitResult{}, fmt.Errorf("no csrf token for %s", c.fantasy.Hostname())
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", csrf).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("Referer", transfersPage).
		SetBody(transferPayload{
			Confirmed: boolString(plan.Confirmed),
			Entry:     plan.Entry,
			Event:     plan.Event,
			Transfers: plan.Transfers,
			Wildcard:  boolString(plan.Wildcard),
		}).
		Post(c.fantasy.JoinPath("/drf/transfers").String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post transfers")
		return SubmitResult{}, err
	}
	if err := statusErr(res); err != nil {
		span.SetStatus(codes.Error, "transfer submission rejected")
		return SubmitResult{}, err
	}

	return SubmitResult{StatusCode: res.StatusCode()}, nil
}

type LineupPick struct {
	Element       int64 `json:"element"`
	Position      int   `json:"position"`
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

type Lineup struct {
	Picks []LineupPick `json:"picks"`
}

// SetStartingLineup posts the starting lineup selection for the
// session's entry.
func (c *Client) SetStartingLineup(ctx context.Context, session Session, lineup Lineup) error {
	ctx, span := tracer.Start(ctx, "client:SetStartingLineup")
	defer span.End()

	squadUrl := c.fantasy.JoinPath(fmt.Sprintf("/drf/my-team/%d/", session.EntryID)).String()

	// refresh the csrftoken cookie for the fantasy domain
	_, err := c.http.R().
		SetContext(ctx).
		Get(squadUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch squad page")
		return err
	}

	csrf := c.csrfToken(c.fantasy)
	if csrf == "" {
		span.SetStatus(codes.Error, "failed to find csrf token")
		return fmt.Errorf("no csrf token for %s", c.fantasy.Hostname())
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", csrf).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("Referer", c.fantasy.JoinPath("/a/team/my").String()).
		SetBody(lineup).
		Post(squadUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post starting lineup")
		return err
	}
	if err := statusErr(res); err != nil {
		span.SetStatus(codes.Error, "lineup submission rejected")
		return err
	}
	return nil
}
