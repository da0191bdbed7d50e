package notes

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/relnote/internal/tracker"
)

// UserSource resolves a login to a tracker user profile.
type UserSource interface {
	User(ctx context.Context, login string) (*tracker.User, error)
}

// UserInfo is the resolved identity of one contributor.
type UserInfo struct {
	Name      string
	Institute string
	Email     string
	ORCID     string
}

// userFile is the sidecar document supplying what tracker profiles lack:
// display names for logins with no public name, affiliations, and ORCID ids.
type userFile struct {
	GithubNames map[string]string `yaml:"github_names"`
	Institute   map[string]string `yaml:"institute"`
	ORCID       map[string]string `yaml:"orcid"`
}

// UserCache resolves logins to contributor identities, merging tracker
// profiles with the sidecar file and memoizing per run.
type UserCache struct {
	source   UserSource
	sidecar  userFile
	resolved map[string]UserInfo
}

// NewUserCache loads the sidecar file at path. An empty path means no
// sidecar; logins then resolve from tracker profiles alone.
func NewUserCache(source UserSource, path string) (*UserCache, error) {
	uc := &UserCache{
		source:   source,
		resolved: make(map[string]UserInfo),
	}
	if path == "" {
		return uc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading user file: %w", err)
	}
	if err := yaml.Unmarshal(data, &uc.sidecar); err != nil {
		return nil, fmt.Errorf("parsing user file %s: %w", path, err)
	}
	return uc, nil
}

// Lookup resolves a login. The sidecar display name wins over the tracker
// profile name; a login with neither falls back to the login itself.
func (uc *UserCache) Lookup(ctx context.Context, login string) (UserInfo, error) {
	if info, ok := uc.resolved[login]; ok {
		return info, nil
	}

	user, err := uc.source.User(ctx, login)
	if err != nil {
		return UserInfo{}, fmt.Errorf("resolving user %s: %w", login, err)
	}

	info := UserInfo{
		Name:      user.Name,
		Email:     user.Email,
		Institute: uc.sidecar.Institute[login],
		ORCID:     uc.sidecar.ORCID[login],
	}
	if name, ok := uc.sidecar.GithubNames[login]; ok {
		info.Name = name
	}
	if info.Name == "" {
		fmt.Fprintf(os.Stderr, "No name found for user %s\n", login)
		info.Name = login
	}

	uc.resolved[login] = info
	return info, nil
}
