package plex

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cdzombak/plex-meta-migrator/internal/services"
)

const (
	productName    = "plex-meta-migrator"
	productVersion = "1.0.0"
	userAgent      = "plex-meta-migrator/1.0.0"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ServerClient talks to one Plex Media Server.
type ServerClient struct {
	baseURL  string
	token    string
	clientID string
	client   HTTPDoer

	mu   sync.Mutex
	info *ServerInfo
}

// ServerClientOption customises ServerClient construction.
type ServerClientOption func(*ServerClient)

// WithHTTPDoer overrides the HTTP backend (used in tests).
func WithHTTPDoer(client HTTPDoer) ServerClientOption {
	return func(c *ServerClient) {
		c.client = client
	}
}

// WithClientIdentifier sets the X-Plex-Client-Identifier sent on requests.
func WithClientIdentifier(id string) ServerClientOption {
	return func(c *ServerClient) {
		c.clientID = strings.TrimSpace(id)
	}
}

// NewServerClient builds a client for the server at baseURL authenticated by
// token.
func NewServerClient(baseURL, token string, opts ...ServerClientOption) *ServerClient {
	c := &ServerClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server endpoint the client talks to.
func (c *ServerClient) BaseURL() string { return c.baseURL }

// ServerInfo fetches (and caches) the server identity.
func (c *ServerClient) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info != nil {
		return c.info, nil
	}

	var info ServerInfo
	if err := c.getXML(ctx, "/", nil, &info); err != nil {
		return nil, err
	}
	c.info = &info
	return c.info, nil
}

// Sections lists the library sections on the server.
func (c *ServerClient) Sections(ctx context.Context) ([]Section, error) {
	var container mediaContainer
	if err := c.getXML(ctx, "/library/sections", nil, &container); err != nil {
		return nil, err
	}
	return container.Directories, nil
}

// SectionByTitle resolves a section by case-insensitive title.
func (c *ServerClient) SectionByTitle(ctx context.Context, title string) (*Section, error) {
	sections, err := c.Sections(ctx)
	if err != nil {
		return nil, err
	}
	for _, section := range sections {
		if strings.EqualFold(section.Title, title) {
			return &section, nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "plex", "resolve library", fmt.Sprintf("no section named %q on %s", title, c.baseURL), nil)
}

// SectionItems lists every item in a library section, including media part
// file paths.
func (c *ServerClient) SectionItems(ctx context.Context, sectionKey string) ([]Item, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(sectionKey))
	if err := c.getXML(ctx, path, nil, &container); err != nil {
		return nil, err
	}
	return container.items(), nil
}

// ItemDetails fetches the full metadata record for one item, including locked
// Field markers and tag collections that the section listing may omit.
func (c *ServerClient) ItemDetails(ctx context.Context, ratingKey string) (*Item, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/metadata/%s", url.PathEscape(ratingKey))
	if err := c.getXML(ctx, path, nil, &container); err != nil {
		return nil, err
	}
	items := container.items()
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "plex", "item details", fmt.Sprintf("rating key %s", ratingKey), nil)
	}
	return &items[0], nil
}

// EditItemFields issues a metadata edit against a library item. params holds
// the field.value / field.locked pairs to apply.
func (c *ServerClient) EditItemFields(ctx context.Context, sectionKey string, typeID int, ratingKey string, params url.Values) error {
	query := url.Values{}
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	query.Set("type", strconv.Itoa(typeID))
	query.Set("id", ratingKey)
	query.Set("includeExternalMedia", "1")

	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(sectionKey))
	return c.do(ctx, http.MethodPut, path, query, nil)
}

// UploadPoster sets the item poster from an image URL and locks it.
func (c *ServerClient) UploadPoster(ctx context.Context, ratingKey, imageURL string) error {
	return c.uploadImage(ctx, ratingKey, "posters", imageURL)
}

// UploadArt sets the item background art from an image URL and locks it.
func (c *ServerClient) UploadArt(ctx context.Context, ratingKey, imageURL string) error {
	return c.uploadImage(ctx, ratingKey, "arts", imageURL)
}

func (c *ServerClient) uploadImage(ctx context.Context, ratingKey, kind, imageURL string) error {
	query := url.Values{}
	query.Set("url", imageURL)
	path := fmt.Sprintf("/library/metadata/%s/%s", url.PathEscape(ratingKey), kind)
	return c.do(ctx, http.MethodPost, path, query, nil)
}

// ImageURL builds an absolute, token-bearing URL for a server-relative image
// path such as a thumb or art value.
func (c *ServerClient) ImageURL(imagePath string) string {
	imagePath = strings.TrimSpace(imagePath)
	if imagePath == "" {
		return ""
	}
	if !strings.HasPrefix(imagePath, "/") {
		imagePath = "/" + imagePath
	}
	separator := "?"
	if strings.Contains(imagePath, "?") {
		separator = "&"
	}
	return c.baseURL + imagePath + separator + "X-Plex-Token=" + url.QueryEscape(c.token)
}

// Playlists lists the playlists on the server.
func (c *ServerClient) Playlists(ctx context.Context) ([]Playlist, error) {
	var container mediaContainer
	if err := c.getXML(ctx, "/playlists", nil, &container); err != nil {
		return nil, err
	}
	return container.Playlists, nil
}

// PlaylistItems lists the items of a playlist in playlist order.
func (c *ServerClient) PlaylistItems(ctx context.Context, ratingKey string) ([]Item, error) {
	var container mediaContainer
	path := fmt.Sprintf("/playlists/%s/items", url.PathEscape(ratingKey))
	if err := c.getXML(ctx, path, nil, &container); err != nil {
		return nil, err
	}
	return container.items(), nil
}

// CreatePlaylist creates a regular playlist containing the given items, in
// order, and returns the created playlist.
func (c *ServerClient) CreatePlaylist(ctx context.Context, title, playlistType string, ratingKeys []string) (*Playlist, error) {
	if len(ratingKeys) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "plex", "create playlist", "no items to add", nil)
	}

	info, err := c.ServerInfo(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(playlistType) == "" {
		playlistType = "video"
	}

	uri := fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s",
		info.MachineIdentifier, strings.Join(ratingKeys, ","))

	query := url.Values{}
	query.Set("type", playlistType)
	query.Set("title", title)
	query.Set("smart", "0")
	query.Set("uri", uri)

	var container mediaContainer
	if err := c.do(ctx, http.MethodPost, "/playlists", query, &container); err != nil {
		return nil, err
	}
	if len(container.Playlists) == 0 {
		return nil, services.Wrap(services.ErrExternalService, "plex", "create playlist", "no playlist returned from creation request", nil)
	}
	return &container.Playlists[0], nil
}

func (c *ServerClient) getXML(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, out)
}

func (c *ServerClient) do(ctx context.Context, method, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Plex-Token", c.token)
	applyStandardHeaders(req, c.clientID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return services.Wrap(services.ErrUnauthorized, "plex", method+" "+path, "token rejected by "+c.baseURL, nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("plex %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func applyStandardHeaders(req *http.Request, clientID string) {
	if clientID != "" {
		req.Header.Set("X-Plex-Client-Identifier", clientID)
	}
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Device-Name", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
