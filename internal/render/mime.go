package render

import (
	"mime"
	"path/filepath"
	"strings"
)

const octetStream = "application/octet-stream"

// extensionTypes covers the media people attach to posts. The system MIME database
// varies between hosts, so common types are pinned here and the stdlib table is only
// a fallback.
var extensionTypes = map[string]string{
	".apng": "image/apng",
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".ico":  "image/x-icon",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",

	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mid":  "audio/midi",
	".midi": "audio/midi",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".weba": "audio/webm",

	".avi":  "video/x-msvideo",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".ogv":  "video/ogg",
	".webm": "video/webm",

	".css":  "text/css; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".md":   "text/markdown; charset=utf-8",
	".pdf":  "application/pdf",
	".txt":  "text/plain; charset=utf-8",
	".xml":  "text/xml; charset=utf-8",
	".zip":  "application/zip",
}

// TypeByFilename guesses a MIME type from the file extension, falling back to
// application/octet-stream.
func TypeByFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return octetStream
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return octetStream
}

// mediaClass returns the top-level type ("image", "audio", ...) and the bare media type
// without parameters.
func mediaClass(name string) (class, mediaType string) {
	full := TypeByFilename(name)
	mediaType = full
	if i := strings.IndexByte(full, ';'); i >= 0 {
		mediaType = strings.TrimSpace(full[:i])
	}
	class, _, _ = strings.Cut(mediaType, "/")
	return class, mediaType
}
