package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skywx/bluesky-weather-poster/internal/compose"
)

const (
	DefaultBaseURL = "https://bsky.social"

	postCollection = "app.bsky.feed.post"
	postRecordType = "app.bsky.feed.post"
	linkFacetType  = "app.bsky.richtext.facet#link"
	tagFacetType   = "app.bsky.richtext.facet#tag"
	imageEmbedType = "app.bsky.embed.images"
)

// Credential identifies one account: handle plus app password.
type Credential struct {
	Handle      string
	AppPassword string
}

// Result is the per-account outcome of one publish attempt. Detail carries
// the created record URI on success and the failure reason otherwise.
type Result struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// Client talks to one AT-Protocol PDS. It is safe for concurrent use; the
// token cache is the only shared mutable state and is keyed per handle.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  *tokenCache
	images  *ImagePreparer
	now     func() time.Time
}

// NewClient builds a publisher client. images may be nil when image embeds
// are not used.
func NewClient(httpClient *http.Client, baseURL string, images *ImagePreparer) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  httpClient,
		tokens:  newTokenCache(),
		images:  images,
		now:     time.Now,
	}
}

// Publish authenticates, resolves the image embed if any, and creates the
// post record. Image failures degrade to a text-only post; authentication
// and record-creation failures terminate the attempt. The returned Result is
// fresh per call and never retried here.
func (c *Client) Publish(ctx context.Context, cred Credential, post compose.ComposedPost) Result {
	if cred.Handle == "" || cred.AppPassword == "" {
		return Result{Detail: ErrMissingCredentials.Error()}
	}

	sess, err := c.authenticate(ctx, cred)
	if err != nil {
		return Result{Detail: err.Error()}
	}

	record := postRecord{
		Type:      postRecordType,
		Text:      post.Text,
		CreatedAt: c.now().UTC().Format(time.RFC3339),
	}
	for _, f := range post.Facets {
		record.Facets = append(record.Facets, toWireFacet(f))
	}
	if post.Embed != nil {
		// Best effort: a webcam snapshot is enhancement, not core value.
		if embed := c.resolveEmbed(ctx, sess, *post.Embed); embed != nil {
			record.Embed = embed
		}
	}

	uri, err := c.createRecord(ctx, sess, record)
	if err != nil {
		return Result{Detail: err.Error()}
	}
	return Result{Success: true, Detail: uri}
}

func (c *Client) authenticate(ctx context.Context, cred Credential) (session, error) {
	if sess, ok := c.tokens.get(cred.Handle); ok {
		return sess, nil
	}

	body, status, err := c.postJSON(ctx, "/xrpc/com.atproto.server.createSession", "", map[string]string{
		"identifier": cred.Handle,
		"password":   cred.AppPassword,
	})
	if err != nil {
		return session{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if status >= 300 {
		return session{}, fmt.Errorf("%w: %s", ErrAuthentication, apiErrorDetail(body, status))
	}

	var resp struct {
		AccessJwt string `json:"accessJwt"`
		Did       string `json:"did"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.AccessJwt == "" {
		return session{}, fmt.Errorf("%w: no access token in response", ErrAuthentication)
	}

	sess := session{accessJwt: resp.AccessJwt, did: resp.Did}
	c.tokens.put(cred.Handle, sess)
	return sess, nil
}

// resolveEmbed turns an image URL into an uploaded blob embed, or nil when
// anything along the way fails.
func (c *Client) resolveEmbed(ctx context.Context, sess session, ref compose.ImageRef) *imageEmbed {
	if c.images == nil {
		return nil
	}
	data, mime, err := c.images.Prepare(ctx, ref.URL)
	if err != nil {
		return nil
	}

	blob, err := c.uploadBlob(ctx, sess, data, mime)
	if err != nil {
		return nil
	}
	return &imageEmbed{
		Type:   imageEmbedType,
		Images: []embeddedImage{{Alt: ref.Alt, Image: blob}},
	}
}

func (c *Client) uploadBlob(ctx context.Context, sess session, data []byte, mime string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/xrpc/com.atproto.repo.uploadBlob", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mime)
	req.Header.Set("Authorization", "Bearer "+sess.accessJwt)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: blob upload: %s", ErrRemoteAPI, apiErrorDetail(body, resp.StatusCode))
	}

	var parsed struct {
		Blob json.RawMessage `json:"blob"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Blob) == 0 {
		return nil, fmt.Errorf("%w: blob upload returned no blob reference", ErrRemoteAPI)
	}
	return parsed.Blob, nil
}

func (c *Client) createRecord(ctx context.Context, sess session, record postRecord) (string, error) {
	payload := map[string]any{
		"repo":       sess.did,
		"collection": postCollection,
		"record":     record,
	}
	body, status, err := c.postJSON(ctx, "/xrpc/com.atproto.repo.createRecord", sess.accessJwt, payload)
	if err != nil {
		return "", err
	}
	if status >= 300 {
		return "", fmt.Errorf("%w: create record: %s", ErrRemoteAPI, apiErrorDetail(body, status))
	}

	var resp struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.URI == "" {
		return "", fmt.Errorf("%w: create record: %s", ErrRemoteAPI, apiErrorDetail(body, status))
	}
	return resp.URI, nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// apiErrorDetail extracts the server-provided error message when present,
// falling back to the HTTP status.
func apiErrorDetail(body []byte, status int) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fmt.Sprintf("status %d", status)
}
