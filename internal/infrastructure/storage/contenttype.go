package storage

import "strings"

// contentTypesByExt maps the extensions this system's own pipeline
// produces to their MIME type. Unknown extensions fall back to
// application/octet-stream.
var contentTypesByExt = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/mp2t",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ContentTypeFor returns the MIME type for key based on its extension.
func ContentTypeFor(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx == -1 {
		return "application/octet-stream"
	}
	ext := strings.ToLower(key[idx:])
	if ct, ok := contentTypesByExt[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
