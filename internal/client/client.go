// Package client calls the notes HTTP API on behalf of a signed-in user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"example.com/notes-ai/internal/notes"
)

// APIError carries the errorMessage of a failed call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, token: accessToken, http: &http.Client{Timeout: timeout}}
}

type envelope struct {
	ErrorMessage *string      `json:"errorMessage"`
	Note         notes.Note   `json:"note"`
	Notes        []notes.Note `json:"notes"`
	HTML         string       `json:"html"`
}

func (c *Client) CreateNote(ctx context.Context) (notes.Note, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/notes", struct{}{}, &env); err != nil {
		return notes.Note{}, err
	}
	return env.Note, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (notes.Note, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &env); err != nil {
		return notes.Note{}, err
	}
	return env.Note, nil
}

// UpdateNote makes Client usable as an editor.Saver.
func (c *Client) UpdateNote(ctx context.Context, id, text string) error {
	return c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), notes.UpdateNoteRequest{Text: &text}, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListNotes(ctx context.Context) ([]notes.Note, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &env); err != nil {
		return nil, err
	}
	return env.Notes, nil
}

// Ask sends the whole conversation and returns the answer HTML.
func (c *Client) Ask(ctx context.Context, questions, answers []string) (string, error) {
	var env envelope
	body := map[string][]string{"questions": questions, "answers": answers}
	if err := c.do(ctx, http.MethodPost, "/api/ai/ask", body, &env); err != nil {
		return "", err
	}
	return env.HTML, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, out *envelope) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	if env.ErrorMessage != nil {
		return &APIError{Status: resp.StatusCode, Message: *env.ErrorMessage}
	}
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: resp.Status}
	}
	if out != nil {
		*out = env
	}
	return nil
}
