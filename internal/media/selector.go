// Package media turns scanned video sources into playable selections.
package media

import (
	"context"
	"strings"
)

// VariantResolver resolves an HLS master playlist URL to its best variant.
type VariantResolver interface {
	HighestVariant(ctx context.Context, manifestURL string) string
}

type Selector struct {
	resolver VariantResolver
}

func NewSelector(resolver VariantResolver) *Selector {
	return &Selector{resolver: resolver}
}

// SelectBestSources upgrades each HLS manifest URL to its highest-resolution
// variant and passes every other URL through unchanged. Input order is
// preserved; each entry stands for one <video> element, so no ranking
// happens across entries. A single result is the unambiguous choice; more
// than one is the caller's decision to make.
func (s *Selector) SelectBestSources(ctx context.Context, sources []string) []string {
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		if strings.HasSuffix(src, ".m3u8") {
			out = append(out, s.resolver.HighestVariant(ctx, src))
		} else {
			out = append(out, src)
		}
	}
	return out
}
