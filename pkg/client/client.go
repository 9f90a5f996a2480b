package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/satyalearn/satyarag/rag/types"
)

// Client is a client for the question-answering API.
type Client struct {
	BaseURL string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
	}
}

// Query asks a question and returns the full result.
func (c *Client) Query(question, subject, grade string, maxResults int) (*types.QueryResult, error) {
	url := fmt.Sprintf("%s/api/query", c.BaseURL)

	type request struct {
		Question   string `json:"question"`
		Subject    string `json:"subject"`
		Grade      string `json:"grade,omitempty"`
		MaxResults int    `json:"max_results,omitempty"`
	}

	payload, err := json.Marshal(request{
		Question:   question,
		Subject:    subject,
		Grade:      grade,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("query failed")
	}

	result := new(types.QueryResult)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCollections lists all available collections.
func (c *Client) ListCollections() ([]string, error) {
	url := fmt.Sprintf("%s/api/collections", c.BaseURL)

	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to list collections")
	}

	var collections []string
	if err := json.NewDecoder(resp.Body).Decode(&collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// CacheStats returns the server's cache statistics.
func (c *Client) CacheStats() (map[string]int, error) {
	url := fmt.Sprintf("%s/api/cache/stats", c.BaseURL)

	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to get cache stats")
	}

	stats := map[string]int{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// SeedDocument is one pre-chunked document to store.
type SeedDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SeedDocuments stores pre-chunked documents into a collection.
func (c *Client) SeedDocuments(collection string, docs []SeedDocument) error {
	url := fmt.Sprintf("%s/api/collections/%s/documents", c.BaseURL, collection)

	payload, err := json.Marshal(map[string][]SeedDocument{"documents": docs})
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return errors.New("failed to store documents")
	}
	return nil
}

// ClearCache drops all cached answers on the server.
func (c *Client) ClearCache() error {
	url := fmt.Sprintf("%s/api/cache/clear", c.BaseURL)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("failed to clear cache")
	}
	return nil
}
