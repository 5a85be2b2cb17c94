package cache

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Engine string  `json:"engine"`
	Images bool    `json:"images"`
	Scale  float64 `json:"scale,omitempty"`

	// ImagesHash fingerprints the drawn icon image files.
	ImagesHash string `json:"images_hash,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies one rendered output of the DOT source hashed as dotHash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dotHash, opts)
}
