// Data transfer objects for the repository search provider.
// Maps the provider's search and readme responses onto plain structs.

package provider

type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// RepoSummary is one repository as returned by the search API.
// It is read-only input; nothing in this system mutates it.
type RepoSummary struct {
	Id              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	StargazersCount int64    `json:"stargazers_count"`
	Topics          []string `json:"topics"`
	Owner           Owner    `json:"owner"`
}

type searchResponse struct {
	TotalCount        int           `json:"total_count"`
	IncompleteResults bool          `json:"incomplete_results"`
	Items             []RepoSummary `json:"items"`
}

type readmeResponse struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
