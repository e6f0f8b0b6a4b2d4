package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultSubjectLimit = 10
	maxSubjectLimit     = 100
)

// Work is one candidate record from a subject listing.
type Work struct {
	Title   string
	Authors []string
	CoverID int64
}

// Author returns the primary author, or "Unknown" when the work has
// none listed.
func (w Work) Author() string {
	if len(w.Authors) == 0 {
		return "Unknown"
	}
	return w.Authors[0]
}

// CoverURL returns the medium-size cover image URL, or "" when the
// work has no cover.
func (w Work) CoverURL() string {
	if w.CoverID == 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", w.CoverID)
}

// Subjects lists works filed under a subject (genre). The subject is
// slugified the way Open Library expects: lowercase with underscores.
func (c *Client) Subjects(ctx context.Context, subject string, limit int) ([]Work, error) {
	if limit <= 0 {
		limit = defaultSubjectLimit
	}
	if limit > maxSubjectLimit {
		limit = maxSubjectLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.doRequest(ctx, "/subjects/"+slugify(subject)+".json", query)
	if err != nil {
		return nil, wrapError("subjects", subject, err)
	}

	var resp struct {
		Works []struct {
			Title   string `json:"title"`
			CoverID int64  `json:"cover_id"`
			Authors []struct {
				Name string `json:"name"`
			} `json:"authors"`
		} `json:"works"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("subjects", subject, fmt.Errorf("parse response: %w", err))
	}

	works := make([]Work, 0, len(resp.Works))
	for _, w := range resp.Works {
		authors := make([]string, 0, len(w.Authors))
		for _, a := range w.Authors {
			if a.Name != "" {
				authors = append(authors, a.Name)
			}
		}
		works = append(works, Work{
			Title:   w.Title,
			Authors: authors,
			CoverID: w.CoverID,
		})
	}

	return works, nil
}

// slugify converts a display subject like "Science Fiction" into the
// Open Library path form "science_fiction".
func slugify(subject string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(subject)), " ", "_")
}
