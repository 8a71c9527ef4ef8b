package types

// Host identifies one configured remote review server.
type Host struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"-" yaml:"password,omitempty"`
}

// Account is the authenticated viewer on a review host.
type Account struct {
	AccountID int    `json:"_account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
}

// Review is one open change as reported by a review host.
type Review struct {
	ID             string `json:"id"`
	Number         int    `json:"_number"`
	Subject        string `json:"subject"`
	Project        string `json:"project"`
	Branch         string `json:"branch"`
	Status         string `json:"status"`
	Owner          Account `json:"owner"`
	ReviewerIDs    []int   `json:"reviewer_ids,omitempty"`
	AttentionIDs   []int   `json:"attention_ids,omitempty"`
	WorkInProgress bool    `json:"work_in_progress,omitempty"`
	Host           string  `json:"host,omitempty"`
}

// ReviewSet is everything fetched from a single host in one pass: the viewer
// account and the reviews visible to it.
type ReviewSet struct {
	Host    string   `json:"host"`
	Viewer  Account  `json:"viewer"`
	Reviews []Review `json:"reviews"`
}
