// Package routing is the gateway's single declarative routing table. REST
// routes, WebSocket message types and fetch_data types all resolve to the
// same Target values, so one downstream endpoint is described once.
package routing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/hugmood/internal/gateway/config"
)

// Mode is the authentication requirement of a route.
type Mode int

const (
	// Public routes never resolve an identity.
	Public Mode = iota
	// Optional routes attach an identity when one can be resolved.
	Optional
	// Required routes reject anonymous callers.
	Required
)

// UserIDParam is the template variable that defaults to the caller's id.
const UserIDParam = "userId"

// Target is a downstream endpoint. Path may contain {name} placeholders.
type Target struct {
	Service string
	Path    string
}

// Route exposes a Target on the gateway's REST surface.
type Route struct {
	Method  string
	Pattern string
	Target  Target
	Auth    Mode
	// PassAuthorization forwards the client's Authorization header
	// unchanged (auth service endpoints acting on the caller's session).
	PassAuthorization bool
}

// ServeMuxPattern is the net/http pattern for the route.
func (r Route) ServeMuxPattern() string {
	return r.Method + " " + r.Pattern
}

type Table struct {
	Routes []Route
	// Messages maps WebSocket message types to POST targets.
	Messages map[string]Target
	// Fetches maps WebSocket fetch_data types to GET targets.
	Fetches map[string]Target
	// Data maps /api/data/{type} types to GET targets.
	Data map[string]Target
}

func (t *Table) Message(typ string) (Target, bool) {
	target, ok := t.Messages[typ]
	return target, ok
}

func (t *Table) Fetch(typ string) (Target, bool) {
	target, ok := t.Fetches[typ]
	return target, ok
}

func (t *Table) DataType(typ string) (Target, bool) {
	target, ok := t.Data[typ]
	return target, ok
}

// Params lists the placeholder names of tmpl in order.
func Params(tmpl string) []string {
	var names []string
	for {
		start := strings.IndexByte(tmpl, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(tmpl[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, tmpl[start+1:start+end])
		tmpl = tmpl[start+end+1:]
	}
}

// Expand substitutes every {name} in tmpl with the path-escaped params
// value. A placeholder with no value is an error.
func Expand(tmpl string, params map[string]string) (string, error) {
	var b strings.Builder
	rest := tmpl
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", tmpl)
		}
		name := rest[start+1 : start+end]
		v, ok := params[name]
		if !ok || v == "" {
			return "", fmt.Errorf("missing value for %q in %q", name, tmpl)
		}
		b.WriteString(rest[:start])
		b.WriteString(url.PathEscape(v))
		rest = rest[start+end+1:]
	}
}

// Downstream endpoints shared by several entry points.
var (
	authLogin    = Target{config.ServiceAuth, "/auth/login"}
	authRegister = Target{config.ServiceAuth, "/auth/register"}
	authToken    = Target{config.ServiceAuth, "/auth/token"}
	authLogout   = Target{config.ServiceAuth, "/auth/logout"}
	authPassword = Target{config.ServiceAuth, "/auth/password"}
	authMe       = Target{config.ServiceAuth, "/auth/me"}

	userProfile   = Target{config.ServiceUser, "/users/{userId}"}
	userBadges    = Target{config.ServiceUser, "/users/{userId}/badges"}
	badges        = Target{config.ServiceUser, "/data/badges"}
	badgesCatalog = Target{config.ServiceUser, "/data/user-badges"}

	createMood    = Target{config.ServiceMood, "/moods"}
	userMoods     = Target{config.ServiceMood, "/users/{userId}/moods"}
	moodFeed      = Target{config.ServiceMood, "/moods/feed"}
	moodAnalytics = Target{config.ServiceMood, "/users/{userId}/mood-analytics"}
	moodDataSet   = Target{config.ServiceMood, "/data/mood-analytics"}

	sendHug      = Target{config.ServiceHug, "/hugs"}
	requestHug   = Target{config.ServiceHug, "/hug-requests"}
	receivedHugs = Target{config.ServiceHug, "/users/{userId}/received-hugs"}
	sentHugs     = Target{config.ServiceHug, "/users/{userId}/sent-hugs"}
	userHugReqs  = Target{config.ServiceHug, "/users/{userId}/hug-requests"}
	groupHugs    = Target{config.ServiceHug, "/group-hugs"}
	joinGroupHug = Target{config.ServiceHug, "/group-hugs/{groupId}/join"}
	hugTypes     = Target{config.ServiceHug, "/data/hug-types"}

	follow    = Target{config.ServiceSocial, "/follows"}
	followers = Target{config.ServiceSocial, "/users/{userId}/followers"}
	following = Target{config.ServiceSocial, "/users/{userId}/following"}
	share     = Target{config.ServiceSocial, "/share"}

	userStreaks   = Target{config.ServiceStreak, "/users/{userId}/streaks"}
	leaderboard   = Target{config.ServiceStreak, "/streaks/leaderboard"}
	streakRewards = Target{config.ServiceStreak, "/data/streak-rewards"}

	// OnlineStatus is called by the WebSocket hub for presence updates.
	OnlineStatus = Target{config.ServiceUser, "/users/{userId}/online"}
)

// Default returns the gateway's routing table.
func Default() *Table {
	return &Table{
		Routes: []Route{
			{Method: "POST", Pattern: "/api/auth/login", Target: authLogin, Auth: Public},
			{Method: "POST", Pattern: "/api/auth/register", Target: authRegister, Auth: Public},
			{Method: "POST", Pattern: "/api/auth/token", Target: authToken, Auth: Public},
			{Method: "POST", Pattern: "/api/auth/logout", Target: authLogout, Auth: Optional, PassAuthorization: true},
			{Method: "POST", Pattern: "/api/auth/password", Target: authPassword, Auth: Required, PassAuthorization: true},
			{Method: "GET", Pattern: "/api/auth/me", Target: authMe, Auth: Required, PassAuthorization: true},

			{Method: "GET", Pattern: "/api/users/me", Target: userProfile, Auth: Required},
			{Method: "GET", Pattern: "/api/users/{userId}", Target: userProfile, Auth: Optional},
			{Method: "PUT", Pattern: "/api/users/{userId}", Target: userProfile, Auth: Required},

			{Method: "POST", Pattern: "/api/moods", Target: createMood, Auth: Required},
			{Method: "GET", Pattern: "/api/users/{userId}/moods", Target: userMoods, Auth: Optional},
			{Method: "GET", Pattern: "/api/moods/feed", Target: moodFeed, Auth: Optional},

			{Method: "POST", Pattern: "/api/hugs", Target: sendHug, Auth: Required},
			{Method: "POST", Pattern: "/api/hug-requests", Target: requestHug, Auth: Required},
			{Method: "GET", Pattern: "/api/users/{userId}/received-hugs", Target: receivedHugs, Auth: Optional},
			{Method: "GET", Pattern: "/api/users/{userId}/sent-hugs", Target: sentHugs, Auth: Optional},
			{Method: "POST", Pattern: "/api/group-hugs", Target: groupHugs, Auth: Required},
			{Method: "POST", Pattern: "/api/group-hugs/{groupId}/join", Target: joinGroupHug, Auth: Required},

			{Method: "POST", Pattern: "/api/follows", Target: follow, Auth: Required},
			{Method: "GET", Pattern: "/api/users/{userId}/followers", Target: followers, Auth: Optional},
			{Method: "GET", Pattern: "/api/users/{userId}/following", Target: following, Auth: Optional},
			{Method: "POST", Pattern: "/api/share", Target: share, Auth: Required},

			{Method: "GET", Pattern: "/api/users/{userId}/streaks", Target: userStreaks, Auth: Optional},
			{Method: "GET", Pattern: "/api/streaks/leaderboard", Target: leaderboard, Auth: Optional},
		},
		Messages: map[string]Target{
			"mood_update":  createMood,
			"send_hug":     sendHug,
			"request_hug":  requestHug,
			"group_hug":    groupHugs,
			"follow_user":  follow,
			"social_share": share,
		},
		Fetches: map[string]Target{
			"user_profile":   userProfile,
			"user_badges":    userBadges,
			"badges":         badges,
			"mood_history":   userMoods,
			"mood_analytics": moodAnalytics,
			"received_hugs":  receivedHugs,
			"sent_hugs":      sentHugs,
			"hug_requests":   userHugReqs,
			"group_hugs":     groupHugs,
			"followers":      followers,
			"following":      following,
			"streak_info":    userStreaks,
			"streak_rewards": streakRewards,
		},
		Data: map[string]Target{
			"user_badges":    badgesCatalog,
			"badges":         badges,
			"mood_analytics": moodDataSet,
			"hug_types":      hugTypes,
			"streak_rewards": streakRewards,
		},
	}
}
