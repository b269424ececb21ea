// Package gist backs the ledger up to a private GitHub gist.
//
// The ledger is stored as a single file, cakepop-ledger.json, in a gist
// created on the first backup. Its id and the access token are kept in the
// KV under ConfigKey.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

const (
	// Filename is the name of the ledger file inside the gist.
	Filename = "cakepop-ledger.json"
	// Description is set on gists created by Create.
	Description = "Cake Pop Ledger Backup"
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"
)

// ErrFileMissing is returned by Fetch when the gist has no ledger file.
var ErrFileMissing = errors.New("file " + Filename + " not found in gist")

// APIError is a non 2xx answer from the GitHub API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error %d: %s", e.Status, e.Body)
}

// Client talks to the gist endpoints of the GitHub API.
type Client struct {
	HTTP    *http.Client // defaults to http.DefaultClient
	BaseURL string       // defaults to DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) url(path string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + path
}

// do sends a JSON request and decodes the JSON answer into a generic value.
func (c *Client) do(ctx context.Context, token, method, path string, body any) (any, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s %s answer: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("invalid %s %s answer: %w", method, path, err)
	}
	return jobj, nil
}

func files(content string) map[string]any {
	return map[string]any{Filename: map[string]string{"content": content}}
}

// Create creates a private gist holding content and returns its id.
func (c *Client) Create(ctx context.Context, token, content string) (string, error) {
	jobj, err := c.do(ctx, token, http.MethodPost, "/gists", map[string]any{
		"description": Description,
		"public":      false,
		"files":       files(content),
	})
	if err != nil {
		return "", err
	}
	id, _ := get(jobj, "$.id").(string)
	if id == "" {
		return "", errors.New("gist created without id")
	}
	return id, nil
}

// Update replaces the ledger file of gist id with content.
func (c *Client) Update(ctx context.Context, token, id, content string) error {
	_, err := c.do(ctx, token, http.MethodPatch, "/gists/"+id, map[string]any{
		"files": files(content),
	})
	return err
}

// Fetch returns the content of the ledger file of gist id.
func (c *Client) Fetch(ctx context.Context, token, id string) (string, error) {
	jobj, err := c.do(ctx, token, http.MethodGet, "/gists/"+id, nil)
	if err != nil {
		return "", err
	}
	content, ok := get(jobj, fmt.Sprintf("$.files[%q].content", Filename)).(string)
	if !ok {
		return "", ErrFileMissing
	}
	return content, nil
}

// get evaluates a JSON path, it returns nil when nothing matches.
func get(jobj any, path string) any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	// jsonpath may answer a list of one value
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	return jval
}
