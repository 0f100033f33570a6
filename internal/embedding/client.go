package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client used for embedding and generation.
type Client struct {
	client *openai.Client
}

// NewClient creates an OpenAI client. It requires OPENAI_API_KEY to be
// set in the environment and fails fast otherwise.
func NewClient() (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go reads OPENAI_API_KEY from the environment itself.
	client := openai.NewClient()

	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for other packages that
// share the connection (e.g. the answer generator).
func (c *Client) Client() *openai.Client {
	return c.client
}
