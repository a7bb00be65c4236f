package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
)

func TestRouteTable_PublicPaths(t *testing.T) {
	table, err := routeTable([]string{"/assets", "/favicon.ico"})
	require.NoError(t, err)

	assert.Equal(t, gate.AreaPublic, table.Classify("/assets/app.js"))
	assert.Equal(t, gate.AreaPublic, table.Classify("/favicon.ico"))
	assert.Equal(t, gate.AreaAdmin, table.Classify("/admin/users"))
	assert.Equal(t, gate.AreaAuthenticated, table.Classify("/assetsx"))

	rejected := []string{
		"/admin/assets", "/api/partners/logo", "/login/x", "/assets/",
		"/api", "/api/applications", "/api/uploads",
		"/auth",
	}
	for _, p := range rejected {
		_, err := routeTable([]string{p})
		assert.Error(t, err, p)
	}

	_, err = routeTable([]string{"/apis"})
	assert.NoError(t, err, "only whole segments count as /api")
}
