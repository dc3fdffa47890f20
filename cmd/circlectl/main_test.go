package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/domain/entity"
	"github.com/savings-circle/backend/internal/integration/adapters"
	"github.com/savings-circle/backend/internal/integration/persistence"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "circle.toml")
	content := `
[server]
environment = "test"
log_level = "error"

[database]
url = "sqlite:` + filepath.Join(dir, "circle.db") + `"

[redis]
url = ""

[identity]
secret = "cli-secret"
issuer = "circle-cli"
access_token_expiry = "10m"

[platform]
default_fee_cents = 500
operator_ids = ["ops"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndSweep(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")

	out, err = run(t, "--config", cfg, "sweep-subscriptions")
	require.NoError(t, err)
	assert.Equal(t, "scanned=0 expired=0 failed=0\n", out)
}

func TestToken(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "token", "--user", "alice", "--email", "alice@example.com")
	require.NoError(t, err)

	tokens := adapters.NewTokenService("cli-secret", "circle-cli", adapters.SystemClock{})
	claims, err := tokens.ValidateAccessToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal.UserID)
	assert.Equal(t, "alice@example.com", claims.Principal.Email)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt, time.Minute)

	_, err = run(t, "--config", cfg, "token")
	assert.Error(t, err, "user flag is required")
}

func TestFee(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "fee", "get")
	require.NoError(t, err)
	assert.Equal(t, "5.00\n", out)

	out, err = run(t, "--config", cfg, "fee", "set", "12.50", "--operator", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "12.50")

	out, err = run(t, "--config", cfg, "fee", "get")
	require.NoError(t, err)
	assert.Equal(t, "12.50\n", out)

	_, err = run(t, "--config", cfg, "fee", "set", "3.00", "--operator", "mallory")
	assert.Error(t, err)

	_, err = run(t, "--config", cfg, "fee", "set", "1.234", "--operator", "ops")
	assert.Error(t, err)
}

func TestEmails(t *testing.T) {
	cfg := writeConfig(t)
	groupID := uuid.New()

	a := &app{configPath: cfg}
	require.NoError(t, a.loadConfig())
	database, err := a.openDatabase()
	require.NoError(t, err)
	job := entity.NewEmailJob(
		entity.EmailSource{EventID: uuid.New(), GroupID: &groupID},
		entity.TemplateMemberJoined,
		entity.Recipient{UserID: "ama", Email: "ama@example.com"},
		"New member in Circle",
		nil,
		time.Now(),
	)
	_, err = persistence.NewEmailQueueRepository(database.DB()).Create(context.Background(), job)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	out, err := run(t, "--config", cfg, "emails", "--group", groupID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "ama@example.com")
	assert.Contains(t, out, "member_joined")
	assert.Contains(t, out, "pending")

	out, err = run(t, "--config", cfg, "emails", "--group", uuid.NewString())
	require.NoError(t, err)
	assert.NotContains(t, out, "ama@example.com")

	_, err = run(t, "--config", cfg, "emails", "--group", "not-a-uuid")
	assert.Error(t, err)
}
