package decode

import (
	"path/filepath"
	"strings"
)

// supportedFormats lists every container/codec extension the loader accepts,
// matched case-insensitively against the file extension.
var supportedFormats = []string{
	"aiff",
	"au",
	"avr",
	"caf",
	"flac",
	"htk",
	"svx",
	"mat4",
	"mat5",
	"mpc2k",
	"mp3",
	"ogg",
	"paf",
	"pvf",
	"raw",
	"rf64",
	"sd2",
	"sds",
	"ircam",
	"voc",
	"w64",
	"wav",
	"nist",
	"wavex",
	"wve",
	"xi",
}

var supportedFormatSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(supportedFormats))
	for _, f := range supportedFormats {
		set[f] = struct{}{}
	}
	return set
}()

// nativeFormats are decoded in-process via beep; everything else falls back
// to an ffmpeg subprocess.
var nativeFormats = map[string]struct{}{
	"wav":  {},
	"flac": {},
	"mp3":  {},
	"ogg":  {},
}

// SupportedFormats returns the accepted extensions in declaration order
func SupportedFormats() []string {
	formats := make([]string, len(supportedFormats))
	copy(formats, supportedFormats)
	return formats
}

// FormatOf extracts the lowercased extension (without the dot) from a path
func FormatOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsSupported reports whether the path carries a recognized audio extension
func IsSupported(path string) bool {
	_, ok := supportedFormatSet[FormatOf(path)]
	return ok
}
