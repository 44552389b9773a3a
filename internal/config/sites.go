package config

// youtube must stay ahead of google; both precede the folder and app rules.
func defaultSites() []Site {
	return []Site{
		{Name: "youtube", Title: "YouTube", URL: "https://www.youtube.com"},
		{Name: "google", Title: "Google", URL: "https://www.google.com"},
	}
}
