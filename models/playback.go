package models

// PlayRequest carries the caller-supplied fields of a playback resolution.
// Username is the validated session username, empty when the caller presented
// no session.
type PlayRequest struct {
	Token    string `json:"token"`
	Folder   string `json:"folder"`
	FileName string `json:"fileName"`
	Username string `json:"username,omitempty"`
}

// PlaybackResolution contains the derived streaming details for a file on the
// OpenList backend.
type PlaybackResolution struct {
	URL      string `json:"url"`      // direct, time-limited media URL
	FilePath string `json:"filePath"` // remote path the URL was resolved for
}
