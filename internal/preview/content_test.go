package preview

import (
	"image"
	"testing"
)

func TestTexture_RetainReleaseRefcounting(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	tex := NewTexture(img)
	shared := tex.Retain()

	tex.Release()
	if shared.Pixels == nil {
		t.Fatal("pixels dropped while a shared reference is still live")
	}

	shared.Release()
	if shared.Pixels != nil {
		t.Error("pixels should be dropped once the last reference releases")
	}
}

func TestTexture_ReleaseOnNilIsNoop(t *testing.T) {
	var tex *Texture
	tex.Release() // must not panic
}

func TestContent_ReleaseOnZeroValueIsNoop(t *testing.T) {
	var c Content
	c.Release() // must not panic
}

func TestContent_ReleaseReleasesAllOwnedTextures(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	c := Content{
		Image:          NewTexture(img),
		VideoThumbnail: NewTexture(img),
	}
	c.Release()
	if c.Image.Pixels != nil || c.VideoThumbnail.Pixels != nil {
		t.Error("expected all owned textures to be released")
	}
}
