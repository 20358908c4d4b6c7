//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// restartAPIContainer bounces the api service; only meaningful when the
// instance under test runs with a Postgres DSN, where reviews survive a
// restart. Gated behind E2E_RESTART_API=1.
func restartAPIContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", "compose", "restart", "api")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart api failed: %v\n%s", err, string(out))
	}
}
