// internal/server/sitemap.go
package server

import (
	"encoding/xml"
	"net/http"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

var sitemapStaticPages = []struct {
	path       string
	priority   string
	changeFreq string
}{
	{"/", "1.0", "weekly"},
	{"/standards", "0.8", "monthly"},
	{"/profiles", "0.9", "daily"},
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.profiles.Slugs(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("sitemap generation failed", nil)
		s.respondPublicError(w, http.StatusInternalServerError, "Failed to generate sitemap")
		return
	}

	urlSet := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
	}
	for _, page := range sitemapStaticPages {
		urlSet.URLs = append(urlSet.URLs, sitemapURL{
			Loc:        s.siteBaseURL + page.path,
			ChangeFreq: page.changeFreq,
			Priority:   page.priority,
		})
	}
	for _, slug := range slugs {
		urlSet.URLs = append(urlSet.URLs, sitemapURL{
			Loc:        s.siteBaseURL + "/profiles/" + slug,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	payload, err := xml.MarshalIndent(urlSet, "", "  ")
	if err != nil {
		s.respondPublicError(w, http.StatusInternalServerError, "Failed to generate sitemap")
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(payload)
}
