package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSchemaDeclaresKeys(t *testing.T) {
	orders, err := fs.ReadFile(FS, "000001_create_orders.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(orders), "id TEXT PRIMARY KEY")
	assert.Contains(t, string(orders), "idx_orders_phone")

	customers, err := fs.ReadFile(FS, "000002_create_customers.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(customers), "phone TEXT PRIMARY KEY")
	assert.Contains(t, string(customers), "tags TEXT[]")
}
