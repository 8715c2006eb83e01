package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"

	"github.com/lounaagency/agri-admin-dashboard/internal/users"
)

func TestModels_TableNames(t *testing.T) {
	want := []string{
		"role", "utilisateur", "utilisateurs_par_role", "culture", "projet",
		"projet_culture", "jalon_agricole", "jalon_projet", "investissement",
		"cout_jalon_projet", "historique_paiement",
	}

	var got []string
	for _, m := range Models() {
		tabler, ok := m.(schema.Tabler)
		if assert.True(t, ok, "%T has no TableName", m) {
			got = append(got, tabler.TableName())
		}
	}
	assert.Equal(t, want, got)
}

func TestModels_RolesBeforeUserLinks(t *testing.T) {
	idx := map[string]int{}
	for i, m := range Models() {
		idx[m.(schema.Tabler).TableName()] = i
	}
	assert.Less(t, idx[users.Role{}.TableName()], idx[users.UserRole{}.TableName()])
	assert.Less(t, idx["projet"], idx["jalon_projet"])
	assert.Less(t, idx["cout_jalon_projet"], idx["historique_paiement"])
}

func TestPostgisStatements(t *testing.T) {
	assert.Len(t, postgisStatements, 3)
	assert.Contains(t, postgisStatements[1], "ST_GeomFromGeoJSON(geom_geojson::text)")
}
