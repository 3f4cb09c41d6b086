package migrations

import (
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	for _, dialect := range []database.Dialect{database.DialectSQLite3, database.DialectPostgres} {
		t.Run(string(dialect), func(t *testing.T) {
			fsys, err := FS(dialect)
			require.NoError(t, err)

			names, err := fs.Glob(fsys, "*.sql")
			require.NoError(t, err)
			assert.Equal(t, []string{"00001_create_master_data.sql", "00002_create_stock.sql"}, names)
		})
	}

	_, err := FS(database.DialectMySQL)
	assert.Error(t, err)
}
