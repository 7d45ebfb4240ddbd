package playlist

// DefaultEntries is the built-in playlist used when none is configured.
func DefaultEntries() []string {
	return []string{
		"yt:dQw4w9WgXcQ",
		"vimeo:76979871",
		"yt:tL6ZTcrDPAU",
		"vimeo:22439234",
		"yt:aqz-KE-bpKQ",
	}
}
