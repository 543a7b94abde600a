package httpwire

// mimeTypes maps bare file extensions (no leading dot) to MIME type strings
// for the download ("dl") body path.
var mimeTypes = map[string]string{
	"html":  "text/html",
	"htm":   "text/html",
	"css":   "text/css",
	"js":    "text/javascript",
	"json":  "application/json",
	"xml":   "application/xml",
	"txt":   "text/plain",
	"csv":   "text/csv",
	"md":    "text/markdown",
	"pdf":   "application/pdf",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"webp":  "image/webp",
	"ico":   "image/x-icon",
	"bmp":   "image/bmp",
	"mp3":   "audio/mpeg",
	"wav":   "audio/wav",
	"ogg":   "audio/ogg",
	"mp4":   "video/mp4",
	"webm":  "video/webm",
	"avi":   "video/x-msvideo",
	"zip":   "application/zip",
	"tar":   "application/x-tar",
	"gz":    "application/gzip",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"eot":   "application/vnd.ms-fontobject",
	"wasm":  "application/wasm",
}

// MIMEByExtension returns the MIME type for a bare extension such as "pdf".
// Unmapped or empty extensions return "" — never a default like
// application/octet-stream; the download path serves an empty Content-Type
// value in that case.
func MIMEByExtension(ext string) string {
	return mimeTypes[ext]
}
