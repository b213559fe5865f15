package models

// GalleryImage is one picture shown on the dashboard.
type GalleryImage struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
