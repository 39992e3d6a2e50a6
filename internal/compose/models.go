package compose

// FacetKind discriminates the rich-text annotations a post can carry.
type FacetKind string

const (
	FacetLink    FacetKind = "link"
	FacetHashtag FacetKind = "hashtag"
)

// Facet marks a byte range of the post text as a link or hashtag.
// ByteStart/ByteEnd are offsets into the UTF-8 encoding of the final text,
// not character offsets; the wire protocol indexes facets by byte.
type Facet struct {
	ByteStart int
	ByteEnd   int
	Kind      FacetKind
	// Payload is the link target for FacetLink and the bare tag
	// (without '#') for FacetHashtag.
	Payload string
}

// ImageRef points at an image that has not been uploaded yet. The publisher
// resolves it into a blob at post time.
type ImageRef struct {
	URL string
	Alt string
}

// ComposedPost is the finished status: text, facet annotations valid against
// that exact text, and an optional image reference.
type ComposedPost struct {
	Text   string
	Facets []Facet
	Embed  *ImageRef
}

// IncludeFlags are the per-field toggles for the post body.
type IncludeFlags struct {
	Temperature   bool
	WindDirection bool
	WindSpeed     bool
	Humidity      bool
	Pressure      bool
	RainToday     bool
	WindChill     bool
	Humidex       bool
	DewPoint      bool
	MaxTemp       bool
	MinTemp       bool
	MaxGust       bool
	Description   bool
}

// AllFields enables every toggle.
func AllFields() IncludeFlags {
	return IncludeFlags{
		Temperature: true, WindDirection: true, WindSpeed: true,
		Humidity: true, Pressure: true, RainToday: true,
		WindChill: true, Humidex: true, DewPoint: true,
		MaxTemp: true, MinTemp: true, MaxGust: true, Description: true,
	}
}

// Config are the composition settings. Values arrive pre-sanitized from the
// configuration layer; Compose only re-checks what it cannot safely emit
// unchecked (URL syntax, max length).
type Config struct {
	// Units is one of "metric", "imperial" or "both".
	Units string
	// Prefix is the first line of every post. Blank falls back to
	// DefaultPrefix.
	Prefix string
	// Hashtags is a comma-separated tag list, with or without '#'.
	Hashtags string
	// StationDisplayText is the link text for the station URL; blank shows
	// the URL itself.
	StationDisplayText string
	// WebcamImageURL, when set and valid, becomes the post's image embed.
	WebcamImageURL string
	// WebcamAltText is the image alt text.
	WebcamAltText string
	Include       IncludeFlags
	// MaxLength caps the post in display characters. Zero means
	// DefaultMaxLength; negative is a configuration error.
	MaxLength int
}
