// Package github enthält die Logik für die Repository-Suche über die GitHub REST API.
package github

// SearchResponse ist die Antwort von /search/repositories.
type SearchResponse struct {
	TotalCount int    `json:"total_count"`
	Items      []Repo `json:"items"`
}

// Repo ist ein einzelnes Repository aus der Suche.
type Repo struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	HTMLURL         string   `json:"html_url"`
	StargazersCount int      `json:"stargazers_count"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
}
