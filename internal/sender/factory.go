package sender

import (
	"context"
	"strings"

	"emailsender/internal/cluster"
)

// Constructor builds a provider variant from resolved common config.
type Constructor func(cfg *Config) Sender

// Registry resolves provider-config names to concrete Sender variants. It is
// constructed explicitly and passed to the reconcilers; there is no ambient
// global registry.
type Registry struct {
	client       cluster.Client
	constructors map[string]Constructor
}

// NewRegistry creates a registry with the built-in variants registered.
func NewRegistry(c cluster.Client) *Registry {
	r := &Registry{
		client:       c,
		constructors: make(map[string]Constructor),
	}

	r.Register("MailGun", NewMailGun)
	r.Register("MailerSend", NewMailerSend)
	r.Register("Resend", NewResend)

	return r
}

// Register binds a canonical provider key to a variant constructor.
func (r *Registry) Register(key string, fn Constructor) {
	r.constructors[key] = fn
}

// Keys returns the registered canonical provider keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.constructors))
	for key := range r.constructors {
		keys = append(keys, key)
	}
	return keys
}

// Create resolves name to a registered variant, loads its credentials and
// spec from the cluster, and returns the ready-to-use Sender. It fails with
// UnknownProviderError when no variant is registered under the derived key;
// that check happens before any cluster round-trip.
func (r *Registry) Create(ctx context.Context, namespace, name string) (Sender, error) {
	ctor, ok := r.constructors[CanonicalKey(name)]
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}

	cfg, err := loadConfig(ctx, r.client, namespace, name)
	if err != nil {
		return nil, err
	}

	return ctor(cfg), nil
}

// CanonicalKey derives the registry key from a hyphenated provider-config
// name by capitalizing each hyphen-delimited token and concatenating:
// "mail-gun" becomes "MailGun".
func CanonicalKey(name string) string {
	var b strings.Builder
	for _, token := range strings.Split(name, "-") {
		if token == "" {
			continue
		}
		b.WriteString(strings.ToUpper(token[:1]))
		b.WriteString(strings.ToLower(token[1:]))
	}
	return b.String()
}
