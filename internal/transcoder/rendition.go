package transcoder

// Rendition is one ABR quality tier: a target height plus the
// bitrate/maxrate/bufsize triple ffmpeg encodes it at.
type Rendition struct {
	Name        string
	Height      int
	BitrateKbps int
	MaxrateKbps int
	BufsizeKbps int
}

// Renditions is the fixed ABR ladder every video is transcoded to.
// Heights and rates match the original encoder's per-height table; a
// height absent from the table falls back to fallbackRendition's
// rates rather than failing.
var Renditions = []Rendition{
	{Name: "120p", Height: 120, BitrateKbps: 100, MaxrateKbps: 150, BufsizeKbps: 300},
	{Name: "360p", Height: 360, BitrateKbps: 600, MaxrateKbps: 900, BufsizeKbps: 1800},
	{Name: "720p", Height: 720, BitrateKbps: 1800, MaxrateKbps: 2500, BufsizeKbps: 5000},
	{Name: "1080p", Height: 1080, BitrateKbps: 3500, MaxrateKbps: 5000, BufsizeKbps: 10000},
}

// fallbackRendition is used for a height not present in Renditions;
// nothing in this module currently constructs one, but RenditionFor
// keeps the original encoder's defensive default.
var fallbackRendition = Rendition{BitrateKbps: 1000, MaxrateKbps: 1200, BufsizeKbps: 2000}

// RenditionFor returns the encoding rates for height, falling back to
// fallbackRendition's rates if height isn't in the ladder.
func RenditionFor(height int) Rendition {
	for _, r := range Renditions {
		if r.Height == height {
			return r
		}
	}
	r := fallbackRendition
	r.Height = height
	return r
}
