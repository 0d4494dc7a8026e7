// Package client is a thin HTTP client for the chronicle REST API, used by
// the chronctl command.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/chroniclehq/chronicle/pkg/model"
)

// Client talks to one chronicle server on behalf of one user.
type Client struct {
	baseURL string
	user    string
	client  *http.Client
}

// New creates a Client pointing at the given base URL. user, when
// non-empty, is sent as the X-Remote-User identity header.
func New(baseURL, user string) *Client {
	return &Client{
		baseURL: baseURL,
		user:    user,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// PutEntities posts an entity batch and returns the per-entity errors.
func (c *Client) PutEntities(batch *model.EntityList) (*model.PutResponse, error) {
	var response model.PutResponse
	if err := c.do(http.MethodPost, "/api/v1/timeline", nil, batch, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetEntities queries entities of one type.
func (c *Client) GetEntities(entityType string, params url.Values) (*model.EntityList, error) {
	var list model.EntityList
	path := "/api/v1/timeline/" + url.PathEscape(entityType)
	if err := c.do(http.MethodGet, path, params, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetEntity fetches one entity.
func (c *Client) GetEntity(entityType, entityID, fields string) (*model.Entity, error) {
	params := url.Values{}
	if fields != "" {
		params.Set("fields", fields)
	}
	var entity model.Entity
	path := "/api/v1/timeline/" + url.PathEscape(entityType) + "/" + url.PathEscape(entityID)
	if err := c.do(http.MethodGet, path, params, nil, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetEvents fetches event timelines for a set of entity ids.
func (c *Client) GetEvents(entityType string, params url.Values) (*model.EventsList, error) {
	var list model.EventsList
	path := "/api/v1/timeline/" + url.PathEscape(entityType) + "/events"
	if err := c.do(http.MethodGet, path, params, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// PutDomain creates or updates a domain owned by the client's user.
func (c *Client) PutDomain(domain *model.Domain) (*model.Domain, error) {
	var stored model.Domain
	if err := c.do(http.MethodPut, "/api/v1/domain", nil, domain, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetDomain fetches one domain by id.
func (c *Client) GetDomain(id string) (*model.Domain, error) {
	var domain model.Domain
	if err := c.do(http.MethodGet, "/api/v1/domain/"+url.PathEscape(id), nil, nil, &domain); err != nil {
		return nil, err
	}
	return &domain, nil
}

// GetDomains lists the domains of one owner.
func (c *Client) GetDomains(owner string) (*model.DomainList, error) {
	params := url.Values{}
	if owner != "" {
		params.Set("owner", owner)
	}
	var list model.DomainList
	if err := c.do(http.MethodGet, "/api/v1/domain", params, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) do(method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set("X-Remote-User", c.user)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
