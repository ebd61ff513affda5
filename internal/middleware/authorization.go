package middleware

import (
	"fmt"
	"log"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Resources and actions checked by RequirePermission.
const (
	ResourceProfile      = "profile"
	ResourceCart         = "cart"
	ResourceOrder        = "order"
	ResourceReview       = "review"
	ResourceChat         = "chat"
	ResourceVoucher      = "voucher"
	ResourceSubscription = "subscription"
	ResourceCatalog      = "catalog"
	ResourceUser         = "user"
	ResourcePrompt       = "prompt"

	ActionRead   = "read"
	ActionWrite  = "write"
	ActionManage = "manage"
)

var defaultPolicies = [][]string{
	{"user", ResourceProfile, ActionRead},
	{"user", ResourceProfile, ActionWrite},
	{"user", ResourceCart, ActionWrite},
	{"user", ResourceOrder, ActionRead},
	{"user", ResourceOrder, ActionWrite},
	{"user", ResourceReview, ActionWrite},
	{"user", ResourceChat, ActionWrite},
	{"user", ResourceVoucher, ActionWrite},
	{"user", ResourceSubscription, ActionWrite},

	{"admin", ResourceCatalog, ActionManage},
	{"admin", ResourceOrder, ActionManage},
	{"admin", ResourceVoucher, ActionManage},
	{"admin", ResourceSubscription, ActionManage},
	{"admin", ResourceUser, ActionManage},
	{"admin", ResourcePrompt, ActionManage},
}

// NewEnforcer builds the role-based enforcer. Admins inherit every user
// permission.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RBAC model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy("admin", "user"); err != nil {
		return nil, fmt.Errorf("failed to load role hierarchy: %w", err)
	}
	return enforcer, nil
}

// RequirePermission aborts with 403 unless the caller's role may perform
// act on obj. It must run after AuthMiddleware.
func RequirePermission(enforcer *casbin.Enforcer, obj, act string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := CurrentActor(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		allowed, err := enforcer.Enforce(actor.Role, obj, act)
		if err != nil {
			log.Printf("Authorization check failed for %s %s/%s: %v", actor.Role, obj, act, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Authorization check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}

		c.Next()
	}
}
