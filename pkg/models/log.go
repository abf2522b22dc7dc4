package models

// Stats represents the running tally of an extraction run
type Stats struct {
	TotalEpisodes int `json:"total_episodes"`
	Processed     int `json:"processed"`
	Successful    int `json:"successful"`
	Partial       int `json:"partial"`
	Failed        int `json:"failed"`
}

// ExtractLog represents a progress message from the extractor
type ExtractLog struct {
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Data   *EpisodeResult `json:"data,omitempty"`
	Stats  *Stats         `json:"stats,omitempty"`
}
