// Package ghauth builds authenticated GitHub API clients.
package ghauth

import (
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v68/github"
)

// NewTokenClient returns a client authenticated with a personal access token.
func NewTokenClient(token string) *github.Client {
	return github.NewClient(nil).WithAuthToken(token)
}

// NewAppClient returns a client authenticated as a GitHub App installation,
// using the private key at keyPath.
func NewAppClient(appID, installationID int64, keyPath string) (*github.Client, error) {
	itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, keyPath)
	if err != nil {
		return nil, fmt.Errorf("loading app installation key: %w", err)
	}
	return github.NewClient(&http.Client{Transport: itr}), nil
}
