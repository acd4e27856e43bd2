package domain

// Provenance records how a source asset was obtained.
type Provenance string

const (
	ProvenanceReused    Provenance = "reused"
	ProvenanceGenerated Provenance = "generated"
)

// AspectRatio names a target creative size. The set in use is fixed
// configuration, read-only for the duration of a run.
type AspectRatio struct {
	Name   string
	Width  int
	Height int
}

// SourceAsset is a product image ready for composition, either resolved from
// the assets directory or returned by a generation provider.
type SourceAsset struct {
	ProductID  string
	Path       string // populated for reused assets
	Data       []byte
	MIME       string
	Provenance Provenance
}

// Creative is the rendered output for one (product, aspect ratio) pair. Data
// holds the encoded bytes in Format; pixel dimensions always equal the ratio's
// target width and height.
type Creative struct {
	ProductID   string
	Ratio       AspectRatio
	OverlayText string
	Format      string // output extension, "jpg" or "png"
	Data        []byte
}
