package playlist

import (
	"context"

	"github.com/jscyril/mp3miner/api"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
)

// Ensure StaticResolver implements Resolver interface at compile time
var _ api.Resolver = StaticResolver(nil)

// StaticResolver resolves every page to a fixed list of media URLs
type StaticResolver []api.MediaURL

// Resolve returns the configured URLs regardless of pageURL
func (r StaticResolver) Resolve(_ context.Context, _ string) ([]api.MediaURL, error) {
	out := make([]api.MediaURL, len(r))
	copy(out, r)
	return out, nil
}

// Load resolves pageURL and builds a playlist. An empty result is reported
// as a ResolveError wrapping ErrNoMediaFound.
func Load(ctx context.Context, r api.Resolver, pageURL string) (*Playlist, error) {
	urls, err := r.Resolve(ctx, pageURL)
	if err != nil {
		return nil, &playerrors.ResolveError{PageURL: pageURL, Err: err}
	}

	p := New(urls)
	if p.Len() == 0 {
		return nil, &playerrors.ResolveError{PageURL: pageURL, Err: playerrors.ErrNoMediaFound}
	}
	return p, nil
}
