package sessions

import (
	"os"
	"path/filepath"
	"strings"
)

// EncodeProjectPath converts a filesystem path to the directory-name form
// used under the session root, e.g. "/home/doug/projects/myapp" ->
// "-home-doug-projects-myapp". The encoding is lossy: a "-" in a path
// component becomes indistinguishable from a separator.
func EncodeProjectPath(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}

// DecodeProjectPath converts an encoded project directory name back to a
// filesystem path, e.g. "-home-doug-projects-myapp" ->
// "/home/doug/projects/myapp".
//
// Because the encoding is ambiguous, the result is validated against the
// filesystem: if the naive decode (every hyphen a separator) does not exist,
// the path is rebuilt segment by segment, keeping a hyphen wherever that
// matches a directory that actually exists on disk. For paths that exist
// nowhere, the naive decode is returned.
func DecodeProjectPath(encoded string) string {
	if encoded == "" {
		return ""
	}

	var prefix string
	rest := encoded
	if strings.HasPrefix(encoded, "-") {
		prefix = "/"
		rest = encoded[1:]
	}
	segments := strings.Split(rest, "-")

	// Fast path: all hyphens are separators.
	naive := prefix + strings.Join(segments, "/")
	if _, err := os.Stat(naive); err == nil {
		return naive
	}

	// Rebuild greedily, preferring a separator when that directory exists
	// and falling back to a literal hyphen when only that form exists.
	rebuilt := prefix + segments[0]
	for _, seg := range segments[1:] {
		withSep := rebuilt + "/" + seg
		withHyphen := rebuilt + "-" + seg
		if _, err := os.Stat(withSep); err == nil {
			rebuilt = withSep
		} else if _, err := os.Stat(withHyphen); err == nil {
			rebuilt = withHyphen
		} else {
			rebuilt = withSep
		}
	}
	return rebuilt
}

// ProjectDisplayName returns the last component of a decoded project path.
func ProjectDisplayName(decodedPath string) string {
	if decodedPath == "" {
		return ""
	}
	return filepath.Base(decodedPath)
}
