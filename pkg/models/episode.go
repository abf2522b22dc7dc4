package models

// Episode result statuses
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// EpisodeLink represents one episode entry found on a listing page
type EpisodeLink struct {
	EpisodeName string `json:"episode_name"`
	EpisodeURL  string `json:"episode_url"`
}

// EpisodeResult represents the outcome of processing a single episode
type EpisodeResult struct {
	Episode           string `json:"episode"`
	EpisodeURL        string `json:"episode_url,omitempty"`
	InstantDLURL      string `json:"instant_dl_url,omitempty"`
	FinalDownloadLink string `json:"final_download_link,omitempty"`
	Status            string `json:"status"`
	Error             string `json:"error,omitempty"`
	Timestamp         string `json:"timestamp,omitempty"`
}

// RunRecord represents one full pipeline run over a listing URL
type RunRecord struct {
	MainURL       string          `json:"main_url"`
	ProcessedAt   string          `json:"processed_at"`
	TotalEpisodes int             `json:"total_episodes"`
	Successful    int             `json:"successful"`
	Failed        int             `json:"failed"`
	Partial       int             `json:"partial"`
	Episodes      []EpisodeResult `json:"episodes"`
}

// Tally recomputes the run counters from its own episode statuses
func (r *RunRecord) Tally() {
	r.TotalEpisodes = len(r.Episodes)
	r.Successful = 0
	r.Failed = 0
	r.Partial = 0
	for _, ep := range r.Episodes {
		switch ep.Status {
		case StatusSuccess:
			r.Successful++
		case StatusPartial:
			r.Partial++
		case StatusFailed:
			r.Failed++
		}
	}
}
