package utils

import "testing"

func TestJoinRemotePath(t *testing.T) {
	tests := []struct {
		root     string
		segments []string
		want     string
	}{
		{"/x/", []string{"A", "b.mp4"}, "/x/A/b.mp4"},
		{"/x", []string{"A", "b.mp4"}, "/x/A/b.mp4"},
		{"/", []string{"A", "b.mp4"}, "/A/b.mp4"},
		{"", []string{"A", "b.mp4"}, "/A/b.mp4"},
		{"/media/", []string{"/show/", "/ep1.mkv"}, "/media/show/ep1.mkv"},
		{"/", nil, "/"},
	}

	for _, tt := range tests {
		got := JoinRemotePath(tt.root, tt.segments...)
		if got != tt.want {
			t.Errorf("JoinRemotePath(%q, %v) = %q, want %q", tt.root, tt.segments, got, tt.want)
		}
	}
}
