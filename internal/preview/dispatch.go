package preview

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/image/draw"

	"github.com/dustin/go-humanize"
)

// textSizeCap bounds how much of an unknown/text file is read for preview.
const textSizeCap = 512 * 1024

// VideoMetadataReader, PdfRenderer, and EbookReader are adapter seams
// for decoders that are out of scope here: real implementations would
// shell out to ffmpeg / a pdfium binding / an epub parser. These
// interfaces exist so the dispatch table and its cancellation/caching
// behavior are fully exercised without pulling in those decoders.
type VideoMetadataReader interface {
	Thumbnail(ctx context.Context, path string) (image.Image, time.Duration, error)
}

type PdfRenderer interface {
	RenderPage(ctx context.Context, path string, page int, dpi int) (img image.Image, pageCount int, err error)
}

type EbookReader interface {
	CoverAndMetadata(ctx context.Context, path string) (cover image.Image, pageCount int, err error)
}

// Dispatch routes a preview request by file extension to the handler
// that can decode it. A plugin match (by filename regex) takes priority
// over every built-in handler.
func Dispatch(ctx context.Context, req Request, plugins PluginResolver) (Content, error) {
	if plugins != nil {
		if p, ok := plugins.ResolvePlugin(req.Path); ok {
			components, err := p.Preview(ctx, req.Path, req.Popup)
			if err != nil {
				return Content{}, err
			}
			return Content{Kind: KindPlugin, Components: components, Interactive: req.Popup}, nil
		}
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return Content{}, fmt.Errorf("stat %s: %w", req.Path, err)
	}

	if info.IsDir() {
		return dispatchDirectory(req.Path)
	}

	lowerPath := strings.ToLower(req.Path)
	if strings.HasSuffix(lowerPath, ".tar.gz") || strings.HasSuffix(lowerPath, ".tgz") {
		return dispatchTar(req.Path, true)
	}

	ext := filepath.Ext(lowerPath)
	switch ext {
	case ".zip":
		return dispatchZip(req.Path)
	case ".tar":
		return dispatchTar(req.Path, false)
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return dispatchImage(ctx, req)
	case ".go", ".rs", ".py", ".js", ".ts", ".c", ".h", ".cpp", ".java", ".sh", ".toml", ".yaml", ".yml", ".json", ".md", ".txt":
		return dispatchText(req.Path, ext)
	default:
		return dispatchUnknown(req.Path)
	}
}

func dispatchDirectory(path string) (Content, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Content{}, fmt.Errorf("read dir %s: %w", path, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]DirEntryLite, 0, len(entries))
	for _, e := range entries {
		sz := int64(0)
		if info, err := e.Info(); err == nil {
			sz = info.Size()
		}
		out = append(out, DirEntryLite{Name: e.Name(), IsDir: e.IsDir(), Size: sz})
	}
	return Content{Kind: KindDirectory, Entries: out}, nil
}

func dispatchZip(path string) (Content, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Content{}, fmt.Errorf("open zip %s: %w", path, err)
	}
	defer r.Close()

	entries := make([]ArchiveEntry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, ArchiveEntry{
			Name:           f.Name,
			Size:           int64(f.CompressedSize64),
			IsDir:          f.FileInfo().IsDir(),
			UncompressedSz: int64(f.UncompressedSize64),
		})
	}
	return Content{Kind: KindZipListing, Archive: entries}, nil
}

func dispatchTar(path string, gz bool) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, fmt.Errorf("open tar %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if gz {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return Content{}, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gzr.Close()
		r = gzr
	}

	tr := tar.NewReader(r)
	var entries []ArchiveEntry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Content{}, fmt.Errorf("read tar %s: %w", path, err)
		}
		entries = append(entries, ArchiveEntry{
			Name:  hdr.Name,
			Size:  hdr.Size,
			IsDir: hdr.Typeflag == tar.TypeDir,
		})
	}
	return Content{Kind: KindTarListing, Archive: entries}, nil
}

func dispatchImage(ctx context.Context, req Request) (Content, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return Content{}, fmt.Errorf("open image %s: %w", req.Path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Content{}, fmt.Errorf("decode image %s: %w", req.Path, err)
	}

	select {
	case <-ctx.Done():
		return Content{}, ctx.Err()
	default:
	}

	target := req.TargetWidth
	if target <= 0 {
		target = 512
	}
	if req.Popup {
		target *= 2
	}

	bounds := img.Bounds()
	if bounds.Dx() > target {
		scale := float64(target) / float64(bounds.Dx())
		newH := int(float64(bounds.Dy()) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, target, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	tex := NewTexture(img)
	return Content{
		Kind:        KindImage,
		Image:       tex,
		ImgWidth:    img.Bounds().Dx(),
		ImgHeight:   img.Bounds().Dy(),
		Interactive: req.Popup,
	}, nil
}

func dispatchText(path, ext string) (Content, error) {
	data, err := readCapped(path, textSizeCap)
	if err != nil {
		return Content{}, err
	}
	if !utf8.Valid(data) {
		return dispatchBinaryFallback(path)
	}

	lang := languageFromExt(ext)
	if lang != "" {
		return Content{Kind: KindHighlightedCode, Text: string(data), Language: lang}, nil
	}
	return Content{Kind: KindText, Text: string(data)}, nil
}

func dispatchUnknown(path string) (Content, error) {
	data, err := readCapped(path, textSizeCap)
	if err != nil {
		return Content{}, err
	}
	if utf8.Valid(data) {
		return Content{Kind: KindText, Text: string(data)}, nil
	}
	return dispatchBinaryFallback(path)
}

func dispatchBinaryFallback(path string) (Content, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Content{}, err
	}
	return Content{
		Kind: KindText,
		Text: fmt.Sprintf("File type: binary, %s", humanize.Bytes(uint64(info.Size()))),
	}, nil
}

func readCapped(path string, cap int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.CopyN(buf, f, cap); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func languageFromExt(ext string) string {
	switch ext {
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".c", ".h":
		return "c"
	case ".cpp":
		return "cpp"
	case ".java":
		return "java"
	case ".sh":
		return "bash"
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".md":
		return "markdown"
	default:
		return ""
	}
}

func statMtime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
