// Package apigroup resolves which configured ZGW backend a notification
// belongs to. The case URL's scheme and host are matched against each
// group's zaken base URL; path prefixes are deliberately not compared so
// groups can mount services under arbitrary paths.
package apigroup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-zaaknotify/core"
)

// Resolver matches case URLs to configured API groups.
type Resolver struct {
	groups core.APIGroupStore
}

func New(groups core.APIGroupStore) *Resolver {
	return &Resolver{groups: groups}
}

// Resolve finds the API group whose zaken base URL shares the case URL's
// scheme and host. No match means the notification concerns a backend
// this deployment does not serve; the caller treats that as a terminal
// ignore.
func (r *Resolver) Resolve(ctx context.Context, caseURL string) (core.APIGroup, error) {
	if r == nil || r.groups == nil {
		return core.APIGroup{}, goerrors.New("apigroup: group store is required", goerrors.CategoryInternal).
			WithTextCode(core.NotifyErrorInternal)
	}

	parsed, err := url.Parse(strings.TrimSpace(caseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return core.APIGroup{}, goerrors.New("apigroup: case url is malformed", goerrors.CategoryBadInput).
			WithTextCode(core.NotifyErrorBadInput)
	}

	groups, err := r.groups.List(ctx)
	if err != nil {
		return core.APIGroup{}, goerrors.Wrap(err, goerrors.CategoryInternal, "apigroup: group listing failed").
			WithTextCode(core.NotifyErrorInternal)
	}

	for _, group := range groups {
		if matchesOrigin(group.ZakenBaseURL, parsed) {
			return group, nil
		}
	}
	return core.APIGroup{}, fmt.Errorf("apigroup: no group serves %s://%s: %w", parsed.Scheme, parsed.Host, core.ErrNotFound)
}

func matchesOrigin(baseURL string, target *url.URL) bool {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(base.Scheme, target.Scheme) &&
		strings.EqualFold(base.Host, target.Host)
}
