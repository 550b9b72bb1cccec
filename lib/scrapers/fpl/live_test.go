package fpl

import (
	"context"
	"testing"

	devenv "fplassist-backend/dev/env"
	"fplassist-backend/lib/telemetry"
)

// exercises the real login flow, requires credentials in
// dev/.state/fpl_config.json5
func TestLiveLogin(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.FplTestConfig]("fpl_config.json5")
	if err != nil {
		t.Skipf("no live credentials: %s", err)
	}

	cleanup := telemetry.SetupForTesting(t, "test:scrapers/fpl")
	defer cleanup()

	ctx, span := tracer.Start(context.Background(), "TestLiveLogin")
	defer span.End()

	client, err := NewClient(ClientOptions{})
	if err != nil {
		t.Fatal(err)
	}

	session, err := client.Login(ctx, config.Email, config.Password)
	if err != nil {
		t.Fatal(err)
	}
	if session.EntryID == 0 {
		t.Fatal("expected a non-zero entry id")
	}

	squad, err := client.GetTransfersSquad(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(squad) == 0 {
		t.Fatal("expected a non-empty squad")
	}
}
