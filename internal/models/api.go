package models

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type AdminAuthRequest struct {
	Passcode string `json:"passcode"`
}

type AdminAuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type SuggestMetadataRequest struct {
	Category string `json:"category"`
}

type SuggestTagsRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

type ProgressRequest struct {
	Progress float64 `json:"progress"`
}

type StartDownloadRequest struct {
	VideoID string `json:"video_id"`
}

type NavigateRequest struct {
	View     string `json:"view"`
	Category string `json:"category,omitempty"`
}

type OpenOverlayRequest struct {
	VideoID string `json:"video_id"`
}

// Diagnostics mirrors the admin console's system checks.
type Diagnostics struct {
	Gemini    string `json:"gemini"`
	MediaHost string `json:"media_host"`
}
