package docmodel

import (
	"encoding/json"
	"strconv"
	"time"
)

// TypeCollection and TypeDocument are the metadata "type" field values the
// device itself writes; any other value degrades to an opaque node.
const (
	TypeCollection = "CollectionType"
	TypeDocument   = "DocumentType"
)

// Metadata is the persisted <id>.metadata record, one per node.
type Metadata struct {
	VisibleName      string `json:"visibleName"`
	Parent           string `json:"parent"`
	Type             string `json:"type"`
	Deleted          bool   `json:"deleted"`
	Pinned           bool   `json:"pinned"`
	Modified         bool   `json:"modified"`
	MetadataModified bool   `json:"metadatamodified"`
	Synced           bool   `json:"synced"`
	LastModified     string `json:"lastModified"`
	Version          int    `json:"version"`
}

// Content is the persisted <id>.content record. Only FileType matters to
// this model; collections persist an empty object.
type Content struct {
	FileType string `json:"fileType"`
}

func decodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, newErr(KindMalformedMetadata, "decodeMetadata", err)
	}
	return m, nil
}

func (m Metadata) encode() []byte {
	data, _ := json.Marshal(m)
	return data
}

func decodeContent(data []byte) (Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, newErr(KindMalformedMetadata, "decodeContent", err)
	}
	return c, nil
}

func (c Content) encode() []byte {
	data, _ := json.Marshal(c)
	return data
}

func nowMillis() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
