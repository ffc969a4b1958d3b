// Package target models the single HTTP endpoint a run is aimed at.
package target

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Target is a fully-resolved endpoint. It is built once before a run and is
// never mutated afterwards.
type Target struct {
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Path   string `yaml:"path"`
	Query  string `yaml:"query,omitempty"`
}

// Spec is the loosely-typed description of a named target in a config file.
// Either URL or the individual parts may be set.
type Spec struct {
	URL      string `mapstructure:"url" yaml:"url,omitempty"`
	Protocol string `mapstructure:"protocol" yaml:"protocol,omitempty"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Path     string `mapstructure:"path" yaml:"path,omitempty"`
}

// ErrNoTarget is returned when neither a URL nor a known target name is given.
var ErrNoTarget = errors.New("no target specified")

// NotFoundError reports a missing target together with the names that exist.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	if e.Name == "" {
		b.WriteString(ErrNoTarget.Error())
	} else {
		fmt.Fprintf(&b, "target %q not found", e.Name)
	}
	if len(e.Available) == 0 {
		b.WriteString(" (no targets configured)")
		return b.String()
	}
	b.WriteString("; available targets: ")
	b.WriteString(strings.Join(e.Available, ", "))
	return b.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNoTarget
}

// Parse resolves a literal URL such as "localhost:8080/health" or
// "https://api.example.com/v1?x=1".
func Parse(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrNoTarget
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parse target url: %w", err)
	}
	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Target{}, fmt.Errorf("parse target port %q: %w", p, err)
		}
	}
	return build(u.Scheme, u.Hostname(), port, u.EscapedPath(), u.RawQuery)
}

// FromSpec resolves a named config-file entry.
func FromSpec(spec Spec) (Target, error) {
	if strings.TrimSpace(spec.URL) != "" {
		return Parse(spec.URL)
	}
	path, query, _ := strings.Cut(spec.Path, "?")
	return build(spec.Protocol, spec.Host, spec.Port, path, query)
}

// Resolve picks the literal URL when present, otherwise the named entry.
func Resolve(rawURL, name string, specs map[string]Spec) (Target, error) {
	if strings.TrimSpace(rawURL) != "" {
		return Parse(rawURL)
	}
	name = strings.TrimSpace(name)
	if spec, ok := lookup(specs, name); ok && name != "" {
		t, err := FromSpec(spec)
		if err != nil {
			return Target{}, fmt.Errorf("target %q: %w", name, err)
		}
		return t, nil
	}
	return Target{}, &NotFoundError{Name: name, Available: Names(specs)}
}

// Names returns the configured target names in sorted order.
func Names(specs map[string]Spec) []string {
	if len(specs) == 0 {
		return nil
	}
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(specs map[string]Spec, name string) (Spec, bool) {
	if spec, ok := specs[name]; ok {
		return spec, true
	}
	// viper lower-cases map keys read from config files.
	spec, ok := specs[strings.ToLower(name)]
	return spec, ok
}

func build(scheme, host string, port int, path, query string) (Target, error) {
	scheme = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(scheme), ":"))
	host = strings.TrimSpace(host)
	if host == "" {
		return Target{}, errors.New("target host is required")
	}
	if port < 0 || port > 65535 {
		return Target{}, fmt.Errorf("target port %d out of range", port)
	}
	if scheme == "" {
		scheme = "http"
		if port == 443 {
			scheme = "https"
		}
	}
	switch scheme {
	case "http":
		if port == 0 {
			port = 80
		}
	case "https":
		if port == 0 {
			port = 443
		}
	default:
		return Target{}, fmt.Errorf("unsupported scheme %q", scheme)
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Target{Scheme: scheme, Host: host, Port: port, Path: path, Query: query}, nil
}

// URL returns the request URL. Default ports are omitted.
func (t Target) URL() *url.URL {
	host := t.Host
	if !(t.Scheme == "http" && t.Port == 80) && !(t.Scheme == "https" && t.Port == 443) {
		host = net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	u := &url.URL{Scheme: t.Scheme, Host: host, RawQuery: t.Query}
	if unescaped, err := url.PathUnescape(t.Path); err == nil {
		u.Path = unescaped
		u.RawPath = t.Path
	} else {
		u.Path = t.Path
	}
	return u
}

func (t Target) String() string {
	return t.URL().String()
}

// Address is the host:port pair dialed for this target.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}
