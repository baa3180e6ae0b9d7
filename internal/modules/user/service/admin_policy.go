package service

import (
	"strings"

	"github.com/helloSanmi/e-vote/pkg/token"
)

// AdminPolicy decides who may use the admin endpoints: an explicit admin
// flag, or an email/username on the configured allow-lists.
type AdminPolicy struct {
	emails    map[string]struct{}
	usernames map[string]struct{}
}

func NewAdminPolicy(emails, usernames []string) *AdminPolicy {
	p := &AdminPolicy{
		emails:    make(map[string]struct{}, len(emails)),
		usernames: make(map[string]struct{}, len(usernames)),
	}
	for _, e := range emails {
		p.emails[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	for _, u := range usernames {
		p.usernames[strings.ToLower(strings.TrimSpace(u))] = struct{}{}
	}
	return p
}

func (p *AdminPolicy) Listed(email, username string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.emails[strings.ToLower(email)]; ok && email != "" {
		return true
	}
	_, ok := p.usernames[strings.ToLower(username)]
	return ok && username != ""
}

func (p *AdminPolicy) AllowsClaims(c *token.Claims) bool {
	if c == nil {
		return false
	}
	return c.IsAdmin || p.Listed(c.Email, c.Username)
}
