package session

import (
	"strings"

	"github.com/educonnectt/web/core"
)

// Role is the closed set of user categories the app knows about. Anything
// else parses to RoleUnknown; the raw value is still passed through verbatim
// into navigation paths, so an unrecognized role remains representable
// rather than an uncontrolled string.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleQAO     Role = "qao"
	RoleAdmin   Role = "admin"
	RoleUnknown Role = ""
)

var KnownRoles = []Role{RoleStudent, RoleTeacher, RoleQAO, RoleAdmin}

func ParseRole(raw string) Role {
	switch Role(core.CleanString(raw, true /* lower */)) {
	case RoleStudent:
		return RoleStudent
	case RoleTeacher:
		return RoleTeacher
	case RoleQAO:
		return RoleQAO
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleUnknown
}

// DisplayLabel renders a role parameter for headings: the capitalized raw
// value, or a generic placeholder when absent.
func DisplayLabel(raw string) string {
	raw = core.CleanString(raw)
	if raw == "" {
		return "User"
	}
	return strings.ToUpper(raw[:1]) + raw[1:]
}

// Namespace is the partition of stored credentials by user category.
// Students and teachers share the general namespace; QAO and admin each have
// their own. Slots are independent: holding an admin credential implies
// nothing about the others.
type Namespace struct {
	name      string
	tokenKey  string
	extraKeys []string
	loginPath string
}

// UserIDKey stores the account ID alongside the general-user credential.
const UserIDKey = "userId"

var (
	// GeneralNamespace holds student/teacher sessions.
	GeneralNamespace = Namespace{
		name:      "general",
		tokenKey:  "token",
		extraKeys: []string{UserIDKey},
		loginPath: "/login",
	}
	AdminNamespace = Namespace{
		name:      "admin",
		tokenKey:  "adminToken",
		loginPath: "/admin-login",
	}
	QAONamespace = Namespace{
		name:      "qao",
		tokenKey:  "qaoToken",
		loginPath: "/qao/access",
	}
)

func NamespaceFor(role Role) Namespace {
	switch role {
	case RoleAdmin:
		return AdminNamespace
	case RoleQAO:
		return QAONamespace
	}
	return GeneralNamespace
}

func (ns Namespace) Name() string { return ns.name }

// TokenKey is the storage key holding the bearer credential.
func (ns Namespace) TokenKey() string { return ns.tokenKey }

// Keys returns every storage key belonging to the namespace.
// Clearing a namespace must remove all of them.
func (ns Namespace) Keys() []string {
	keys := make([]string, 0, 1+len(ns.extraKeys))
	keys = append(keys, ns.tokenKey)
	keys = append(keys, ns.extraKeys...)
	return keys
}

// LoginPath is the role's login entry point, the redirect target whenever
// the guard denies access.
func (ns Namespace) LoginPath() string { return ns.loginPath }
