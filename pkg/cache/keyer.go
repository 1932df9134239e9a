package cache

// Keyer derives cache keys. Implementations must map equal inputs to equal
// keys and should map different inputs to different keys.
type Keyer interface {
	// ArtifactKey identifies an encoded export of a project state.
	ArtifactKey(projectHash string, opts ArtifactKeyOpts) string

	// CompositionKey identifies the visual tree of a project state.
	CompositionKey(projectHash string, opts CompositionKeyOpts) string
}

// ArtifactKeyOpts are the export settings that change the encoded bytes.
type ArtifactKeyOpts struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Format       string  `json:"format"`
	Quality      float64 `json:"quality,omitempty"`
	Variant      string  `json:"variant,omitempty"`
	Placeholders bool    `json:"placeholders,omitempty"`
	Calibration  string  `json:"calibration,omitempty"`
}

// CompositionKeyOpts are the render settings that change the tree.
type CompositionKeyOpts struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Variant     string `json:"variant,omitempty"`
	Calibration string `json:"calibration,omitempty"`
}

// DefaultKeyer hashes the project hash together with the options.
// Keys look like "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(projectHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", projectHash, opts)
}

// CompositionKey implements Keyer.
func (DefaultKeyer) CompositionKey(projectHash string, opts CompositionKeyOpts) string {
	return hashKey("composition", projectHash, opts)
}

var _ Keyer = DefaultKeyer{}
