package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteCategory(t *testing.T) {
	t.Parallel()

	cases := map[string]Role{
		"dev":     RoleDev,
		"code":    RoleDev,
		"bug":     RoleDev,
		"feature": RoleDev,

		"research":  RoleResearch,
		"marketing": RoleResearch,
		"seo":       RoleResearch,
		"content":   RoleResearch,
		"growth":    RoleResearch,

		"ops":        RoleOps,
		"devops":     RoleOps,
		"security":   RoleOps,
		"infra":      RoleOps,
		"automation": RoleOps,
	}
	for category, want := range cases {
		assert.Equal(t, want, RouteCategory(category), "category %q", category)
	}
}

func TestRouteCategoryFallsBackToCoordinator(t *testing.T) {
	t.Parallel()

	for _, category := range []string{"", "unknown", "misc", "finance"} {
		assert.Equal(t, RoleCoordinator, RouteCategory(category), "category %q", category)
	}
}

func TestRouteCategoryNormalizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RoleDev, RouteCategory("BUG"))
	assert.Equal(t, RoleOps, RouteCategory("  security  "))
}

func TestCategories(t *testing.T) {
	t.Parallel()

	got := Categories()
	assert.Len(t, got, 14)
	assert.IsIncreasing(t, got)
	assert.Contains(t, got, "security")
	assert.Contains(t, got, "bug")
}
