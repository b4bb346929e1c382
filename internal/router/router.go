// Package router maps task categories to responsible agent roles. Routing is
// a total, deterministic, pure function: every category string resolves to
// exactly one role and unknown categories fall through to the coordinator.
package router

import (
	"sort"
	"strings"
)

// Role identifies which roster agent owns a category of work.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleDev         Role = "dev"
	RoleResearch    Role = "research"
	RoleOps         Role = "ops"
)

// categoryRoles is the routing rule table. Categories not listed here route
// to the coordinator.
var categoryRoles = map[string]Role{
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

// RouteCategory returns the role responsible for a task category.
// Case-insensitive; never fails.
func RouteCategory(category string) Role {
	if role, ok := categoryRoles[strings.ToLower(strings.TrimSpace(category))]; ok {
		return role
	}
	return RoleCoordinator
}

// Categories returns the explicitly routed category tags, sorted, for display.
func Categories() []string {
	out := make([]string, 0, len(categoryRoles))
	for c := range categoryRoles {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
