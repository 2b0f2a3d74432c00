// Package policy implements the route access-control policy. It is a pure
// function of (path, session): every pair yields exactly one decision,
// either allow or a redirect to another URL.
package policy

import (
	"strings"

	"github.com/causafund/backend/internal/models"
)

// Session carries the identity facts the policy needs. A nil Session means
// the request is unauthenticated.
type Session struct {
	UserID    string
	Role      models.Role
	KYCStatus models.KYCStatus
}

// Decision is the outcome of evaluating a navigation
type Decision struct {
	Allow       bool
	RedirectURL string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(u string) Decision {
	return Decision{RedirectURL: u}
}

// Route groups mirrored from the site layout
var (
	authPrefixes      = []string{"/auth/login", "/auth/register"}
	protectedPrefixes = []string{"/creator", "/admin", "/profile", "/dashboard"}
	adminPrefix       = "/admin"
	creatorPrefix     = "/creator"
	// Paths that require a KYC-verified creator (campaign management)
	verifiedPrefixes = []string{"/creator/campaigns", "/creator/create"}
)

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Evaluate decides whether a navigation to path is allowed for the given
// session. It never errors: unknown paths are allowed, and every gated path
// resolves to a single redirect target.
func Evaluate(path string, session *Session) Decision {
	if session == nil {
		if hasPrefix(path, protectedPrefixes) {
			return redirect("/auth/login?redirectTo=" + path)
		}
		return allow()
	}

	// Logged-in users are bounced off the auth pages to their home
	if hasPrefix(path, authPrefixes) {
		switch session.Role {
		case models.RoleAdmin:
			return redirect("/admin/dashboard")
		case models.RoleCreator:
			return redirect("/creator/dashboard")
		default:
			return redirect("/profile")
		}
	}

	if strings.HasPrefix(path, adminPrefix) && session.Role != models.RoleAdmin {
		return redirect("/")
	}

	if hasPrefix(path, verifiedPrefixes) {
		if session.Role != models.RoleCreator || session.KYCStatus != models.KYCStatusVerified {
			return redirect("/profile?verify=true&becomeCreator=true")
		}
	}

	if strings.HasPrefix(path, creatorPrefix) &&
		session.Role != models.RoleCreator && session.Role != models.RoleAdmin {
		return redirect("/profile?becomeCreator=true")
	}

	return allow()
}
