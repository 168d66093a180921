package models

// WSMessage is the envelope for every push to the client.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// DownloadUpdate is the payload for download_progress,
// download_complete and download_failed messages.
type DownloadUpdate struct {
	VideoID  string  `json:"video_id"`
	Progress float64 `json:"progress"`
}

// RotationUpdate announces a new rotation counter value so the client
// can re-request the home feed.
type RotationUpdate struct {
	Counter int64 `json:"counter"`
}

// DownloadJob travels through the redis download queue.
type DownloadJob struct {
	ID        string `json:"id"`
	InstallID string `json:"install_id"`
	VideoID   string `json:"video_id"`
	VideoURL  string `json:"video_url"`
}
