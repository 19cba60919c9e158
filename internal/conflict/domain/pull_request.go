package domain

// PullRequest holds the details of one open pull request, as reported by the
// hosting service. Immutable for the duration of a run.
type PullRequest struct {
	Number  int
	Title   string
	BaseRef string
	HeadRef string
	HeadSHA string
}
