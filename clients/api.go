package clients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tejiriaustin/filemonitor/models"
)

// Client talks to a running monitor's status server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Second * 5,
		},
	}
}

// BaseURLFromAddr turns a listen address such as ":8089" into a URL the
// client can dial.
func BaseURLFromAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}

func (c *Client) Health() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("error checking health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned non-OK status: %s", resp.Status)
	}
	return nil
}

// GetFileEvents fetches the newest limit events. A limit of 0 asks for every
// recorded event.
func (c *Client) GetFileEvents(limit int) ([]models.FileEvent, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/events?" + query.Encode()

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("error getting events from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned non-OK status: %s", resp.Status)
	}

	var events []models.FileEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}

	return events, nil
}
