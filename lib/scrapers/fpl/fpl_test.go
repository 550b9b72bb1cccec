package fpl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fplassist-backend/lib/planner"
	"fplassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const dynamicPayload = `{
	"next-event": 12,
	"entry": {"id": 4321},
	"next_event_fixtures": [{"deadline_time": "2017-11-18T11:30:00Z"}]
}`

func setCsrfCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "token123", Path: "/"})
}

func newFakeUpstream(t *testing.T) (*httptest.Server, *http.ServeMux) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mux
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(ClientOptions{
		UsersBaseUrl:   baseUrl,
		FantasyBaseUrl: baseUrl,
	})
	require.NoError(t, err)
	return client
}

func TestLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)

	var sawCredentials atomic.Bool
	mux.HandleFunc("/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			setCsrfCookie(w)
			return
		}
		require.NoError(t, r.ParseForm())
		require.Equal(t, "token123", r.PostFormValue("csrfmiddlewaretoken"))
		require.Equal(t, "user@example.com", r.PostFormValue("login"))
		require.Equal(t, "hunter2", r.PostFormValue("password"))
		require.Equal(t, "plusers", r.PostFormValue("app"))
		sawCredentials.Store(true)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/drf/bootstrap-dynamic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dynamicPayload))
	})

	client := newTestClient(t, srv.URL)
	session, err := client.Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	require.True(t, sawCredentials.Load())

	require.EqualValues(t, 4321, session.EntryID)
	require.Equal(t, 12, session.NextEvent)
	require.Equal(t, time.Date(2017, 11, 18, 11, 30, 0, 0, time.UTC), session.Deadline.UTC())
}

func TestLoginRejected(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			setCsrfCookie(w)
			return
		}
		http.Error(w, "incorrect credentials", http.StatusForbidden)
	})

	client := newTestClient(t, srv.URL)
	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, LoginFailed)
}

func TestLoginFailureRedirect(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			setCsrfCookie(w)
			return
		}
		// bad credentials come back as a 302 to the login page, not an
		// error status
		http.Redirect(w, r, "/accounts/login/?state=fail", http.StatusFound)
	})

	client := newTestClient(t, srv.URL)
	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, LoginFailed)
}

func TestLoginCsrfFromHiddenInput(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// no cookie, only a hidden form input
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<form><input name="csrfmiddlewaretoken" value="hidden456"></form>`))
			return
		}
		require.NoError(t, r.ParseForm())
		require.Equal(t, "hidden456", r.PostFormValue("csrfmiddlewaretoken"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/drf/bootstrap-dynamic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dynamicPayload))
	})

	client := newTestClient(t, srv.URL)
	_, err := client.Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
}

func TestGetDeadline(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/drf/bootstrap-dynamic", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dynamicPayload))
	})

	client := newTestClient(t, srv.URL)
	deadline, err := client.GetDeadline(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Date(2017, 11, 18, 11, 30, 0, 0, time.UTC), deadline.UTC())
}

func TestGetDeadlineNoUpcomingFixtures(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/drf/bootstrap-dynamic", func(w http.ResponseWriter, r *http.Request) {
		// between seasons the fixture list goes empty
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"next-event": 0, "entry": {"id": 4321}, "next_event_fixtures": []}`))
	})

	client := newTestClient(t, srv.URL)
	_, err := client.GetDeadline(context.Background())
	require.ErrorContains(t, err, "no upcoming fixtures")
}

func TestGetTransfersSquad(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/drf/transfers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"picks": [
			{"element": 1, "selling_price": 50},
			{"element": 2, "selling_price": 60}
		]}`))
	})

	client := newTestClient(t, srv.URL)
	squad, err := client.GetTransfersSquad(context.Background())
	require.NoError(t, err)
	require.Equal(t, []planner.OwnedPlayer{
		{Element: 1, SellingPrice: 50},
		{Element: 2, SellingPrice: 60},
	}, squad)
}

func TestGetAllPlayerData(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/drf/bootstrap-static", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"elements": [{"id": 7, "web_name": "Kane", "element_type": 4, "now_cost": 125, "team": 17}],
			"teams": [{"id": 17, "name": "Spurs"}]
		}`))
	})

	client := newTestClient(t, srv.URL)
	bootstrap, err := client.GetAllPlayerData(context.Background())
	require.NoError(t, err)
	require.Len(t, bootstrap.Elements, 1)
	require.Equal(t, "Kane", bootstrap.Elements[0].WebName)
	require.Equal(t, planner.Candidate{ID: 7, ElementType: 4, NowCost: 125},
		bootstrap.Elements[0].Candidate())
	require.Equal(t, []Team{{ID: 17, Name: "Spurs"}}, bootstrap.Teams)
}

func TestGetPlayerFixtures(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/drf/element-summary/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"fixtures": [{"event_name": "Gameweek 13", "difficulty": 2, "is_home": true}],
			"history": [{"round": 12, "total_points": 9, "minutes": 90}]
		}`))
	})

	client := newTestClient(t, srv.URL)
	detail, err := client.GetPlayerFixtures(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, detail.Fixtures, 1)
	require.Equal(t, 9, detail.History[0].TotalPoints)
}

func TestMakeTransfersNoOp(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	var requests atomic.Int64
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	client := newTestClient(t, srv.URL)
	result, err := client.MakeTransfers(context.Background(), Session{EntryID: 1}, planner.Plan{})
	require.NoError(t, err)
	require.True(t, result.NoOp)
	require.EqualValues(t, 0, requests.Load(), "no-op submission must not touch the network")
}

func TestMakeTransfers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/a/squad/transfers", func(w http.ResponseWriter, r *http.Request) {
		setCsrfCookie(w)
	})
	var posted map[string]any
	mux.HandleFunc("/drf/transfers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "token123", r.Header.Get("X-CSRFToken"))
		require.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	client := newTestClient(t, srv.URL)
	plan := planner.Plan{
		Entry:     4321,
		Event:     12,
		Confirmed: true,
		Transfers: []planner.Transfer{
			{ElementIn: 3, PurchasePrice: 65, ElementOut: 2, SellingPrice: 60},
		},
	}
	result, err := client.MakeTransfers(context.Background(), Session{EntryID: 4321}, plan)
	require.NoError(t, err)
	require.False(t, result.NoOp)
	require.Equal(t, http.StatusOK, result.StatusCode)

	require.Equal(t, "true", posted["confirmed"])
	require.Equal(t, "false", posted["wildcard"])
	require.EqualValues(t, 4321, posted["entry"])
	require.EqualValues(t, 12, posted["event"])
	transfers := posted["transfers"].([]any)
	require.Len(t, transfers, 1)
	first := transfers[0].(map[string]any)
	require.EqualValues(t, 3, first["element_in"])
	require.EqualValues(t, 65, first["purchase_price"])
	require.EqualValues(t, 2, first["element_out"])
	require.EqualValues(t, 60, first["selling_price"])
}

func TestMakeTransfersWrongEntry(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	var requests atomic.Int64
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	client := newTestClient(t, srv.URL)
	plan := planner.Plan{
		Entry: 1111,
		Transfers: []planner.Transfer{
			{ElementIn: 3, PurchasePrice: 65, ElementOut: 2, SellingPrice: 60},
		},
	}
	_, err := client.MakeTransfers(context.Background(), Session{EntryID: 4321}, plan)
	require.Error(t, err)
	require.EqualValues(t, 0, requests.Load())
}

func TestMakeTransfersUpstreamError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	mux.HandleFunc("/a/squad/transfers", func(w http.ResponseWriter, r *http.Request) {
		setCsrfCookie(w)
	})
	mux.HandleFunc("/drf/transfers", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "deadline passed", http.StatusBadRequest)
	})

	client := newTestClient(t, srv.URL)
	plan := planner.Plan{
		Transfers: []planner.Transfer{
			{ElementIn: 3, PurchasePrice: 65, ElementOut: 2, SellingPrice: 60},
		},
	}
	_, err := client.MakeTransfers(context.Background(), Session{}, plan)
	var status *StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusBadRequest, status.StatusCode)
	require.Contains(t, status.Body, "deadline passed")
}

func TestSetStartingLineup(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	srv, mux := newFakeUpstream(t)
	var posted Lineup
	mux.HandleFunc("/drf/my-team/4321/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			setCsrfCookie(w)
			return
		}
		require.Equal(t, "token123", r.Header.Get("X-CSRFToken"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	client := newTestClient(t, srv.URL)
	lineup := Lineup{Picks: []LineupPick{
		{Element: 1, Position: 1, IsCaptain: false, IsViceCaptain: false},
		{Element: 3, Position: 2, IsCaptain: true, IsViceCaptain: false},
	}}
	err := client.SetStartingLineup(context.Background(), Session{EntryID: 4321}, lineup)
	require.NoError(t, err)
	require.Equal(t, lineup, posted)
}
