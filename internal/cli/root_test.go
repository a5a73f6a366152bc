package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	invRepo "github.com/fekuna/omnipos-stockroom/internal/inventory/repository"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "create-user", "expiry-scan"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestMigrateAndCreateUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	db := []string{"--driver", "sqlite3", "--sqlite-path", path}

	out, err := run(t, append([]string{"migrate"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "schema applied (sqlite3)")

	out, err = run(t, append([]string{"create-user", "--username", "root", "--password", "s3cret-pass", "--role", "admin"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "created user root (admin)")

	_, err = run(t, append([]string{"create-user", "--username", "root", "--password", "s3cret-pass"}, db...)...)
	assert.Error(t, err)

	_, err = run(t, append([]string{"create-user", "--username", "nopass"}, db...)...)
	assert.Error(t, err)
}

func TestExpiryScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	db := []string{"--driver", "sqlite3", "--sqlite-path", path}

	_, err := run(t, append([]string{"migrate"}, db...)...)
	require.NoError(t, err)

	conn, err := database.NewSQLite(path)
	require.NoError(t, err)
	repo := invRepo.NewPGRepository(conn)
	now := time.Now().UTC()
	soon := now.AddDate(0, 0, 3)
	later := now.AddDate(0, 3, 0)
	for _, rec := range []*model.InventoryRecord{
		{ID: uuid.New().String(), Barcode: "MILK", ItemName: "Milk", WarehouseName: "Main", ExpireDate: &soon, ExpireDateAlert: 7, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Barcode: "RICE", ItemName: "Rice", WarehouseName: "Main", ExpireDate: &later, ExpireDateAlert: 7, CreatedAt: now, UpdatedAt: now},
	} {
		_, err := repo.Upsert(context.Background(), rec)
		require.NoError(t, err)
	}
	require.NoError(t, conn.Close())

	out, err := run(t, append([]string{"expiry-scan", "--dry-run"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "MILK")
	assert.NotContains(t, out, "RICE")
	assert.Contains(t, out, "1 record(s) in expiry window")

	out, err = run(t, append([]string{"expiry-scan"}, db...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "created 1 expiring alert(s)")
}
