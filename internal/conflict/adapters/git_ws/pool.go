package gitws

import "context"

// ClonePool creates n independent workspace clones of repoURL, each meant to
// be exclusively owned by one worker for its lifetime. Every clone anchors
// to the same base commit, so a push racing the run cannot split the pool
// across base versions. The returned cleanup removes all clones.
func ClonePool(ctx context.Context, repoURL string, n int, opts Options) ([]*Workspace, func(), error) {
	if n < 1 {
		n = 1
	}

	workspaces := make([]*Workspace, 0, n)
	cleanups := make([]func(), 0, n)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	for i := 0; i < n; i++ {
		w, c, err := Clone(ctx, repoURL, opts)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		workspaces = append(workspaces, w)
		cleanups = append(cleanups, c)
	}

	for _, w := range workspaces[1:] {
		w.baseSHA = workspaces[0].baseSHA
	}

	return workspaces, cleanup, nil
}
