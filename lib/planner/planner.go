// Package planner computes the set of individual transfers needed to
// turn the currently owned squad into a desired target squad.
package planner

import (
	"fmt"
	"slices"
)

// OwnedPlayer is one entry of the currently owned squad, as returned by
// the transfers endpoint.
type OwnedPlayer struct {
	Element      int64 `json:"element"`
	SellingPrice int   `json:"selling_price"`
}

// Candidate is one entry of the desired squad, carrying the fields of
// a bootstrap element needed to purchase it.
type Candidate struct {
	ID          int64 `json:"id"`
	ElementType int   `json:"element_type"`
	NowCost     int   `json:"now_cost"`
}

// Transfer swaps one owned player for one candidate of the same roster
// slot type. Immutable once constructed.
type Transfer struct {
	ElementIn     int64 `json:"element_in"`
	PurchasePrice int   `json:"purchase_price"`
	ElementOut    int64 `json:"element_out"`
	SellingPrice  int   `json:"selling_price"`
}

// Meta carries the submission metadata attached to every computed plan.
type Meta struct {
	Entry int64
	Event int
}

// Plan is an ordered set of transfers plus the metadata required to
// submit it. Constructed fresh per Compute call, discarded after
// submission.
type Plan struct {
	Entry     int64
	Event     int
	Transfers []Transfer
	Confirmed bool
	Wildcard  bool
}

// InvalidPlanError reports a squad diff whose incoming and outgoing
// player counts cannot be paired one-to-one.
type InvalidPlanError struct {
	In  int
	Out int
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf(
		"cannot pair transfers: %d incoming players vs %d outgoing players",
		e.In, e.Out,
	)
}

// Compute diffs the owned squad against the target squad and pairs the
// resulting incoming and outgoing players into transfers.
//
// Incoming players are stable-sorted by element type so they line up,
// in order, against outgoing players holding the same roster slot type.
// The owned squad is expected to already be ordered that way, which
// holds for squads fetched from the transfers endpoint since the
// upstream returns picks in position order.
//
// A mismatch between incoming and outgoing counts returns an
// *InvalidPlanError rather than truncating to the shorter list.
func Compute(old []OwnedPlayer, target []Candidate, meta Meta) (Plan, error) {
	oldIds := make(map[int64]bool, len(old))
	for _, p := range old {
		oldIds[p.Element] = true
	}
	targetIds := make(map[int64]bool, len(target))
	for _, p := range target {
		targetIds[p.ID] = true
	}

	var playersIn []Candidate
	for _, p := range target {
		if !oldIds[p.ID] {
			playersIn = append(playersIn, p)
		}
	}
	var playersOut []OwnedPlayer
	for _, p := range old {
		if !targetIds[p.Element] {
			playersOut = append(playersOut, p)
		}
	}

	if len(playersIn) != len(playersOut) {
		return Plan{}, &InvalidPlanError{In: len(playersIn), Out: len(playersOut)}
	}

	// each transfer must swap players of the same element type
	slices.SortStableFunc(playersIn, func(a, b Candidate) int {
		return a.ElementType - b.ElementType
	})

	transfers := make([]Transfer, len(playersIn))
	for i := range playersIn {
		transfers[i] = Transfer{
			ElementIn:     playersIn[i].ID,
			PurchasePrice: playersIn[i].NowCost,
			ElementOut:    playersOut[i].Element,
			SellingPrice:  playersOut[i].SellingPrice,
		}
	}

	return Plan{
		Entry:     meta.Entry,
		Event:     meta.Event,
		Transfers: transfers,
		Confirmed: true,
		Wildcard:  false,
	}, nil
}
