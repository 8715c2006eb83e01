package app

import (
	"context"
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lounaagency/agri-admin-dashboard/internal/config"
)

// lazyDB returns a gorm handle that never dials; wiring does not touch the database.
func lazyDB(t *testing.T) *gorm.DB {
	sqlDB, err := sql.Open("pgx", "postgres://vola@127.0.0.1:1/none?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestBuild_RegistersEveryRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := Build(context.Background(), lazyDB(t), config.Default(), zap.NewNop())
	require.NoError(t, err)

	router := gin.New()
	a.RegisterRoutes(router.Group("/api/v1"))

	paths := map[string]bool{}
	for _, r := range router.Routes() {
		paths[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/cultures",
		"GET /api/v1/projects",
		"GET /api/v1/users",
		"POST /api/v1/finance/payments",
		"GET /api/v1/dashboard/overview",
		"GET /api/v1/integrity",
		"POST /api/v1/integrity/repair",
		"GET /api/v1/reports/dashboard.pdf",
	} {
		assert.True(t, paths[want], want)
	}
}

func TestBuild_ArchiveDisabledByDefault(t *testing.T) {
	a, err := Build(context.Background(), lazyDB(t), config.Default(), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, a.Reports)
	assert.NotNil(t, a.Integrity)
}
