package transcoder

import (
	"bufio"
	"fmt"
	"strings"
)

// BuildMasterPlaylist assembles the #EXTM3U master manifest, calling
// resolve once per rendition to obtain the presigned URL its variant
// playlist was uploaded under.
//
// RESOLUTION is always reported as 1920x{height}: the ladder encodes
// every rendition at its native height with width auto-scaled to
// preserve aspect ratio, so the true encoded width varies per source.
// Advertising a fixed 1920-wide resolution keeps the manifest stable
// across sources at the cost of being literally wrong for anything
// not already 16:9 widescreen.
//
// BANDWIDTH is the declared-rate heuristic height*2000 bits/s, matching
// the original encoder rather than the ladder's own maxrate.
func BuildMasterPlaylist(outputs []RenditionOutput, resolve func(RenditionOutput) (string, error)) (string, error) {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, out := range outputs {
		bandwidth := out.Rendition.Height * 2000
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=1920x%d\n", bandwidth, out.Rendition.Height)
		url, err := resolve(out)
		if err != nil {
			return "", fmt.Errorf("resolve variant %s: %w", out.Rendition.Name, err)
		}
		fmt.Fprintf(&b, "%s\n", url)
	}
	return b.String(), nil
}

// RewriteVariantPlaylist rewrites every .ts segment line in playlist
// to the URL returned by resolve, called with the bare segment
// filename. Used to swap local segment names for presigned download
// URLs before a variant playlist is handed to a client directly
// rather than served through the storage gateway.
func RewriteVariantPlaylist(playlist string, resolve func(segment string) (string, error)) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(playlist))
	var out strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ".ts") {
			url, err := resolve(trimmed)
			if err != nil {
				return "", fmt.Errorf("resolve segment %q: %w", trimmed, err)
			}
			out.WriteString(url)
		} else {
			out.WriteString(line)
		}
		out.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return out.String(), nil
}
