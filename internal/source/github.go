package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"

	"github.com/marram/ragcore/internal/chunk"
)

// GitHubClient wraps the GitHub API client with rate limiting support.
type GitHubClient struct {
	*github.Client
}

// NewGitHubClient creates a GitHub client with automatic rate-limit
// handling. If GITHUB_TOKEN is set, requests are authenticated for the
// higher rate limit.
func NewGitHubClient(ctx context.Context) (*GitHubClient, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, err
	}

	ghClient := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}

	return &GitHubClient{Client: ghClient}, nil
}

// GitHubFetcher loads markdown documents from a repository subtree.
type GitHubFetcher struct {
	client   *GitHubClient
	owner    string
	repo     string
	basePath string
}

// NewGitHubFetcher creates a fetcher rooted at basePath within
// owner/repo.
func NewGitHubFetcher(client *GitHubClient, owner, repo, basePath string) *GitHubFetcher {
	return &GitHubFetcher{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}
}

// List returns the relative paths of all markdown files under the
// fetcher's base path.
func (f *GitHubFetcher) List(ctx context.Context) ([]string, error) {
	return f.listRecursive(ctx, f.basePath, "")
}

func (f *GitHubFetcher) listRecursive(ctx context.Context, fullPath, relPath string) ([]string, error) {
	var found []string

	_, dirContents, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get contents of %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}

		itemRelPath := path.Join(relPath, *item.Name)

		switch *item.Type {
		case "file":
			if strings.HasSuffix(*item.Name, ".md") {
				found = append(found, itemRelPath)
			}
		case "dir":
			sub, err := f.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			found = append(found, sub...)
		}
	}

	return found, nil
}

// Fetch retrieves one markdown file as a raw Document with path, url,
// and blob SHA metadata.
func (f *GitHubFetcher) Fetch(ctx context.Context, relPath string) (chunk.Document, error) {
	fullPath := path.Join(f.basePath, relPath)

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return chunk.Document{}, fmt.Errorf("failed to get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return chunk.Document{}, fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return chunk.Document{}, fmt.Errorf("failed to decode content of %s: %w", fullPath, err)
	}

	rawURL := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/%s", f.owner, f.repo, fullPath)

	return chunk.Document{
		ID:   relPath,
		Text: string(content),
		Metadata: map[string]string{
			"path": relPath,
			"url":  rawURL,
			"sha":  fileContent.GetSHA(),
		},
	}, nil
}

// FetchAll lists the subtree and returns every markdown file split
// into per-section Documents.
func (f *GitHubFetcher) FetchAll(ctx context.Context) ([]chunk.Document, error) {
	paths, err := f.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}

	md := NewMarkdown()
	var docs []chunk.Document
	for _, p := range paths {
		doc, err := f.Fetch(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", p, err)
		}
		sections, err := md.Documents(p, []byte(doc.Text))
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", p, err)
		}
		for i := range sections {
			sections[i].Metadata["url"] = doc.Metadata["url"]
			sections[i].Metadata["sha"] = doc.Metadata["sha"]
		}
		docs = append(docs, sections...)
	}

	return docs, nil
}
