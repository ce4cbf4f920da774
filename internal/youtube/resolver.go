package youtube

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// channelIDRegex matches a bare canonical channel id.
var channelIDRegex = regexp.MustCompile(`^UC[\w-]{22}$`)

// reservedPaths are first path segments that never name a channel on their
// own, such as video and playlist pages or an id-less /channel/.
var reservedPaths = map[string]bool{
	"channel":  true,
	"c":        true,
	"user":     true,
	"watch":    true,
	"shorts":   true,
	"playlist": true,
	"results":  true,
	"feed":     true,
	"live":     true,
	"embed":    true,
}

// defaultHosts are the hosts treated as the platform's own domain.
var defaultHosts = []string{"youtube.com"}

// Resolver turns user input into a canonical channel id.
type Resolver struct {
	api   Invoker
	hosts []string
}

// NewResolver creates a resolver issuing lookups through api. extraHosts are
// accepted in addition to youtube.com (and its www./m. forms).
func NewResolver(api Invoker, extraHosts ...string) *Resolver {
	hosts := append([]string(nil), defaultHosts...)
	for _, h := range extraHosts {
		if h = normalizeHost(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &Resolver{api: api, hosts: hosts}
}

// Resolve accepts a channel URL, an @handle, a bare channel id, or a
// free-text name. /channel/<id> URLs and bare ids resolve without any API
// call. ErrNotFound is returned when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return "", ErrNotFound
	}
	if channelIDRegex.MatchString(id) {
		return id, nil
	}

	if u, ok := r.platformURL(id); ok {
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		first := segs[0]
		switch {
		case first == "channel" && len(segs) > 1 && segs[1] != "":
			return segs[1], nil
		case strings.HasPrefix(first, "@"):
			return r.resolveHandle(ctx, first)
		case first == "c" && len(segs) > 1:
			return r.resolveHandle(ctx, segs[1])
		case first == "user" && len(segs) > 1:
			return r.searchByName(ctx, segs[1])
		case reservedPaths[first]:
			return "", ErrNotFound
		case first != "":
			// Legacy vanity URL: youtube.com/<name>.
			return r.searchByName(ctx, first)
		}
		return "", ErrNotFound
	}

	if strings.HasPrefix(id, "@") {
		return r.resolveHandle(ctx, id)
	}
	return r.searchByName(ctx, id)
}

func (r *Resolver) resolveHandle(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" {
		return "", ErrNotFound
	}
	var channelID string
	err := r.api.Do(ctx, func(ctx context.Context, b Backend) error {
		var err error
		channelID, err = b.ResolveHandle(ctx, handle)
		return err
	})
	if err != nil {
		return "", err
	}
	if channelID == "" {
		return "", ErrNotFound
	}
	return channelID, nil
}

func (r *Resolver) searchByName(ctx context.Context, name string) (string, error) {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	var channelID string
	err := r.api.Do(ctx, func(ctx context.Context, b Backend) error {
		var err error
		channelID, err = b.SearchByName(ctx, name)
		return err
	})
	if err != nil {
		return "", err
	}
	if channelID == "" {
		return "", ErrNotFound
	}
	return channelID, nil
}

// platformURL parses s as a URL on one of the resolver's hosts. Scheme-less
// input such as "youtube.com/@x" is accepted.
func (r *Resolver) platformURL(s string) (*url.URL, bool) {
	raw := s
	if !strings.Contains(raw, "://") {
		lower := strings.ToLower(raw)
		if !r.hasHostPrefix(lower) {
			return nil, false
		}
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, r.isPlatformHost(u.Hostname())
}

func (r *Resolver) hasHostPrefix(lower string) bool {
	for _, h := range r.hosts {
		for _, p := range []string{"", "www.", "m."} {
			if strings.HasPrefix(lower, p+h+"/") {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) isPlatformHost(host string) bool {
	host = normalizeHost(host)
	for _, h := range r.hosts {
		if host == h {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "www.")
	h = strings.TrimPrefix(h, "m.")
	return h
}
