package model

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewSourceKey builds the bit-stable source upload key for an
// uploaded filename: videos/{base}_{ts}_{rand7}.{ext}. base is the
// filename stem stripped of its extension; ts is the upload epoch
// second; rand7 is a 7-character lowercase alphanumeric string. The
// returned base is what every derived artifact key is built from.
func NewSourceKey(filename string, uploadedAt int64) (key, base string) {
	base, ext := splitFilename(filename)
	rand7 := strings.ReplaceAll(uuid.New().String(), "-", "")[:7]
	key = fmt.Sprintf("videos/%s_%d_%s%s", base, uploadedAt, rand7, ext)
	return key, base
}

// BaseFromSourceKey recovers base from a key produced by NewSourceKey,
// for call sites that only have the persisted source key and not the
// base that produced it.
func BaseFromSourceKey(sourceKey string) string {
	stem, _ := splitFilename(path.Base(sourceKey))
	parts := strings.Split(stem, "_")
	if len(parts) <= 2 {
		return stem
	}
	return strings.Join(parts[:len(parts)-2], "_")
}

// ThumbnailKey returns the poster frame key for base.
func ThumbnailKey(base string) string {
	return fmt.Sprintf("thumbnails/%s.jpg", base)
}

// HLSPrefix returns the storage prefix every HLS artifact for base is
// uploaded under.
func HLSPrefix(base string) string {
	return fmt.Sprintf("hls/%s/", base)
}

// HLSMasterKey returns the master playlist key for base.
func HLSMasterKey(base string) string {
	return fmt.Sprintf("hls/%s/%s_master.m3u8", base, base)
}

// HLSVariantPlaylistKey returns the variant playlist key for base at
// the given rendition height.
func HLSVariantPlaylistKey(base string, height int) string {
	return fmt.Sprintf("hls/%s/%s_%dp.m3u8", base, base, height)
}

// HLSSegmentKey returns the key for segment index (0-based) of the
// rendition at height for base.
func HLSSegmentKey(base string, height, index int) string {
	return fmt.Sprintf("hls/%s/%s_%dp_%03d.ts", base, base, height, index)
}

// splitFilename splits a filename into its stem and extension
// (extension includes the leading dot, empty if none).
func splitFilename(filename string) (stem, ext string) {
	name := path.Base(filename)
	ext = path.Ext(name)
	stem = strings.TrimSuffix(name, ext)
	return stem, ext
}
