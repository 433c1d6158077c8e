package specification

import (
	"testing"

	"github.com/seed-hypermedia/mintter-sub004/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestSpecificationsBuildSQL(t *testing.T) {
	db := dryRunDB(t)
	userID := uuid.New()

	tests := []struct {
		name  string
		specs []Specification
		want  []string
		not   []string
	}{
		{
			name:  "owner and search",
			specs: []Specification{UserOwnedBy{UserID: userID}, TextContains{Query: " codec "}},
			want:  []string{"user_id = $1", "title ILIKE $2 OR plain_text ILIKE $3"},
		},
		{
			name:  "blank search adds nothing",
			specs: []Specification{TextContains{Query: "  "}},
			not:   []string{"ILIKE"},
		},
		{
			name:  "order and page",
			specs: []Specification{OrderBy{Field: "updated_at", Desc: true}, Pagination{Limit: 5, Offset: 10}},
			want:  []string{"ORDER BY updated_at DESC", "LIMIT", "OFFSET"},
		},
		{
			name:  "lock",
			specs: []Specification{ByID{ID: userID}, ForUpdate{}},
			want:  []string{"id = $1", "FOR UPDATE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var documents []model.Document
			stmt := Apply(db.Model(&model.Document{}), tt.specs...).Find(&documents).Statement
			sql := stmt.SQL.String()
			for _, w := range tt.want {
				assert.Contains(t, sql, w)
			}
			for _, n := range tt.not {
				assert.NotContains(t, sql, n)
			}
		})
	}
}
