package sakeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListOptions narrows a list request.
type ListOptions struct {
	// Limit caps the number of returned items. Zero leaves it to the server.
	Limit int
}

func (o ListOptions) query() string {
	if o.Limit <= 0 {
		return ""
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(o.Limit))
	return "?" + v.Encode()
}

// Login exchanges credentials for a bearer token and keeps it.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/login", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return LoginResponse{}, err
	}
	if err := c.SetToken(ctx, resp.AccessToken); err != nil {
		return LoginResponse{}, fmt.Errorf("sakeapi: store token: %w", err)
	}
	return resp, nil
}

// CurrentUser returns the account the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/me/", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListSakes returns catalog entries.
func (c *Client) ListSakes(ctx context.Context, opts ListOptions) ([]Sake, error) {
	var sakes []Sake
	if err := c.doJSON(ctx, http.MethodGet, "/sakes/"+opts.query(), nil, &sakes); err != nil {
		return nil, err
	}
	return sakes, nil
}

// GetSake returns a single entry with its brewery.
func (c *Client) GetSake(ctx context.Context, id int64) (SakeDetail, error) {
	if id <= 0 {
		return SakeDetail{}, ErrInvalidID
	}
	var sake SakeDetail
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/sakes/%d", id), nil, &sake); err != nil {
		return SakeDetail{}, err
	}
	return sake, nil
}

// CreateSake adds an entry. Brewery is resolved by name on the server.
func (c *Client) CreateSake(ctx context.Context, in SakeCreate) (SakeDetail, error) {
	var sake SakeDetail
	if err := c.doJSON(ctx, http.MethodPost, "/sakes/", in, &sake); err != nil {
		return SakeDetail{}, err
	}
	return sake, nil
}

// UpdateSake applies a partial update.
func (c *Client) UpdateSake(ctx context.Context, id int64, in SakeUpdate) (SakeDetail, error) {
	if id <= 0 {
		return SakeDetail{}, ErrInvalidID
	}
	var sake SakeDetail
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/sakes/%d", id), in, &sake); err != nil {
		return SakeDetail{}, err
	}
	return sake, nil
}

// ListBreweries returns all breweries.
func (c *Client) ListBreweries(ctx context.Context) ([]Brewery, error) {
	var breweries []Brewery
	if err := c.doJSON(ctx, http.MethodGet, "/breweries/", nil, &breweries); err != nil {
		return nil, err
	}
	return breweries, nil
}

// Duplicates returns groups of sakes sharing a name.
func (c *Client) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	var groups []DuplicateGroup
	if err := c.doJSON(ctx, http.MethodGet, "/admin/sakes/duplicates", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// BulkDeleteSakes removes the given sakes in one call.
func (c *Client) BulkDeleteSakes(ctx context.Context, ids []int64) (BulkDeleteResponse, error) {
	if len(ids) == 0 {
		return BulkDeleteResponse{}, ErrInvalidID
	}
	var resp BulkDeleteResponse
	err := c.doJSON(ctx, http.MethodPost, "/admin/sakes/bulk-delete", BulkDeleteRequest{SakeIDs: ids}, &resp)
	if err != nil {
		return BulkDeleteResponse{}, err
	}
	return resp, nil
}
