package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server scopes keys
// per instance so several deployments can share one Redis database:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "storeshots:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(projectHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(projectHash, opts)
}

// CompositionKey implements Keyer.
func (k *ScopedKeyer) CompositionKey(projectHash string, opts CompositionKeyOpts) string {
	return k.prefix + k.inner.CompositionKey(projectHash, opts)
}
