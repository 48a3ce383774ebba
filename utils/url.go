package utils

import "strings"

// JoinRemotePath builds a remote file path from a root path and additional
// segments, normalizing exactly one slash at each join point. Segments are not
// otherwise sanitized; callers validate presence before joining.
func JoinRemotePath(root string, segments ...string) string {
	if root == "" {
		root = "/"
	}
	path := strings.TrimRight(root, "/")
	for _, seg := range segments {
		path += "/" + strings.Trim(seg, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}
