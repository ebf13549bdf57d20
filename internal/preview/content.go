// Package preview implements an asynchronous, cancellable, type-aware
// preview pipeline: one worker goroutine per selection, a (path, mtime)
// cache, and stale-result discard at drain time.
package preview

import (
	"image"
	"time"
)

// Kind discriminates the preview content sum type.
type Kind int

const (
	KindText Kind = iota
	KindHighlightedCode
	KindDirectory
	KindZipListing
	KindTarListing
	KindImage
	KindVideo
	KindPDF
	KindEbook
	KindPlugin
	KindError
)

// Texture is a GPU-resident image handle. Ownership is refcounted:
// cloning via Retain shares the handle; Release drops one reference and
// frees the backing pixels once the count reaches zero. A real GPU
// backend would back Pixels with a device texture id instead; this
// module keeps the decoded CPU-side image so the codec/renderer boundary
// stays a pure data handoff.
type Texture struct {
	Pixels image.Image
	refs   *int
}

// NewTexture wraps img in a fresh single-reference Texture.
func NewTexture(img image.Image) *Texture {
	n := 1
	return &Texture{Pixels: img, refs: &n}
}

// Retain returns a shared handle to the same backing pixels, incrementing
// the reference count.
func (t *Texture) Retain() *Texture {
	if t == nil {
		return nil
	}
	*t.refs++
	return &Texture{Pixels: t.Pixels, refs: t.refs}
}

// Release drops one reference; once it reaches zero the pixels are
// dropped (GC-collected — Go has no explicit GPU free path here, but the
// refcount still governs cache eviction semantics).
func (t *Texture) Release() {
	if t == nil {
		return
	}
	*t.refs--
	if *t.refs <= 0 {
		t.Pixels = nil
	}
}

// ArchiveEntry is one flat listing row for zip and tar previews.
type ArchiveEntry struct {
	Name           string
	Size           int64
	IsDir          bool
	UncompressedSz int64
}

// Content is the concrete preview payload delivered for one selection.
// Only the fields relevant to Kind are populated.
type Content struct {
	Kind Kind

	// Text / HighlightedCode
	Text     string
	Language string

	// Directory
	Entries []DirEntryLite

	// ZipListing / TarListing
	Archive []ArchiveEntry

	// Image
	Image    *Texture
	ImgWidth int
	ImgHeight int

	// Video
	VideoThumbnail *Texture
	VideoDuration  time.Duration

	// PDF
	PDFPage      int
	PDFPageCount int
	PDFTexture   *Texture

	// Ebook
	EbookCover     *Texture
	EbookPageCount int

	// Plugin
	Components []Component

	// Error (also used as the generic fallback for PreviewError)
	ErrorMessage string

	// Interactive flips for popup preview (images / plugin images)
	Interactive bool
}

// ComponentKind discriminates a plugin-produced Component.
type ComponentKind int

const (
	ComponentTitle ComponentKind = iota
	ComponentText
	ComponentImage
	ComponentTable
)

// Component is the semantic (non-wire) shape of a plugin preview
// component, converted from the plugin package's wire-tagged
// representation once a Preview response has been decoded.
type Component struct {
	Kind ComponentKind

	// Title / Text
	Text string

	// Image
	ImagePath        string // set when sourced from a path
	ImageBytes       []byte // set when sourced from inline bytes
	ImageFormat      string
	ImageUID         string
	ImageInteractive bool

	// Table
	Headers []string
	Rows    [][]string
}

// DirEntryLite is the trimmed DirEntry shape used inside a directory
// preview listing.
type DirEntryLite struct {
	Name  string
	IsDir bool
	Size  int64
}

// Release frees any GPU-backed textures this content owns. Safe to call
// on a zero Content.
func (c *Content) Release() {
	if c == nil {
		return
	}
	c.Image.Release()
	c.VideoThumbnail.Release()
	c.PDFTexture.Release()
	c.EbookCover.Release()
}
