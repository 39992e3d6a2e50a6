package bluesky

import (
	"encoding/json"

	"github.com/skywx/bluesky-weather-poster/internal/compose"
)

// Wire shapes for com.atproto.repo.createRecord with an app.bsky.feed.post
// record. Facet indices are byte offsets into the UTF-8 text.

type postRecord struct {
	Type      string      `json:"$type"`
	Text      string      `json:"text"`
	CreatedAt string      `json:"createdAt"`
	Facets    []wireFacet `json:"facets,omitempty"`
	Embed     *imageEmbed `json:"embed,omitempty"`
}

type wireFacet struct {
	Index    wireByteSlice `json:"index"`
	Features []wireFeature `json:"features"`
}

type wireByteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

type wireFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

type imageEmbed struct {
	Type   string          `json:"$type"`
	Images []embeddedImage `json:"images"`
}

type embeddedImage struct {
	Alt   string          `json:"alt"`
	Image json.RawMessage `json:"image"`
}

func toWireFacet(f compose.Facet) wireFacet {
	feature := wireFeature{}
	switch f.Kind {
	case compose.FacetLink:
		feature.Type = linkFacetType
		feature.URI = f.Payload
	case compose.FacetHashtag:
		feature.Type = tagFacetType
		feature.Tag = f.Payload
	}
	return wireFacet{
		Index:    wireByteSlice{ByteStart: f.ByteStart, ByteEnd: f.ByteEnd},
		Features: []wireFeature{feature},
	}
}
