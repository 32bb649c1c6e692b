// Package arcgis is a client for the hosted feature layer REST surface of an
// ArcGIS-style platform.
//
// A Client is immutable after construction and safe for concurrent use. The
// token is treated as an opaque credential; obtaining one is the caller's
// problem.
package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client issues calls against one portal on behalf of one user.
type Client struct {
	portalURL  string
	username   string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the portal at portalURL (for example
// "https://www.arcgis.com").
func NewClient(portalURL, username, token string) *Client {
	return &Client{
		portalURL:  strings.TrimRight(portalURL, "/"),
		username:   username,
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *Client) rest(path string) string {
	return c.portalURL + "/sharing/rest" + path
}

// post issues a form-encoded call and decodes the JSON response into out.
// The platform reports its own failures inside HTTP 200 bodies, so the
// error envelope is checked before out is decoded.
func (c *Client) post(ctx context.Context, callURL string, form url.Values, out any) error {
	form.Set("f", "json")
	if c.token != "" {
		form.Set("token", c.token)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", callURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, callURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var envelope struct {
		Error *CallError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", callURL, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}

// CreateGroup creates a private group and returns its id.
func (c *Client) CreateGroup(ctx context.Context, title string) (string, error) {
	form := url.Values{
		"title":  {title},
		"access": {"private"},
	}
	var resp struct {
		Group struct {
			ID string `json:"id"`
		} `json:"group"`
	}
	if err := c.post(ctx, c.rest("/community/createGroup"), form, &resp); err != nil {
		return "", fmt.Errorf("failed to create group %q: %w", title, err)
	}
	return resp.Group.ID, nil
}

// AddItem uploads a generic content item (for example a generated KML file)
// and returns its item id.
func (c *Client) AddItem(ctx context.Context, title, itemType string, data []byte) (string, error) {
	form := url.Values{
		"title": {title},
		"type":  {itemType},
		"text":  {string(data)},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, c.rest("/content/users/"+c.username+"/addItem"), form, &resp); err != nil {
		return "", fmt.Errorf("failed to add item %q: %w", title, err)
	}
	return resp.ID, nil
}

// CreateService creates an empty feature service from a service definition.
func (c *Client) CreateService(ctx context.Context, def ServiceDefinition) (*ServiceInfo, error) {
	payload, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	form := url.Values{
		"createParameters": {string(payload)},
		"outputType":       {"featureService"},
	}
	var info ServiceInfo
	if err := c.post(ctx, c.rest("/content/users/"+c.username+"/createService"), form, &info); err != nil {
		return nil, fmt.Errorf("failed to create service %q: %w", def.Name, err)
	}
	return &info, nil
}

// AddToDefinition appends layers to an existing feature service.
func (c *Client) AddToDefinition(ctx context.Context, svc *ServiceInfo, layers []LayerDefinition) error {
	payload, err := json.Marshal(struct {
		Layers []LayerDefinition `json:"layers"`
	}{layers})
	if err != nil {
		return err
	}
	form := url.Values{"addToDefinition": {string(payload)}}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.post(ctx, adminURL(svc.EncodedServiceURL)+"/addToDefinition", form, &resp); err != nil {
		return fmt.Errorf("failed to add layers to service %q: %w", svc.Name, err)
	}
	if !resp.Success {
		return fmt.Errorf("service %q did not accept the layer definitions", svc.Name)
	}
	return nil
}

// Layer edits go through the regular services endpoint; definition edits go
// through the admin endpoint.
func adminURL(serviceURL string) string {
	return strings.Replace(serviceURL, "/rest/services/", "/rest/admin/services/", 1)
}

// Analyze infers publish parameters from a sample of tabular text.
func (c *Client) Analyze(ctx context.Context, text string) (PublishParameters, error) {
	form := url.Values{
		"text":     {text},
		"filetype": {"csv"},
	}
	var resp struct {
		PublishParameters PublishParameters `json:"publishParameters"`
	}
	if err := c.post(ctx, c.rest("/content/features/analyze"), form, &resp); err != nil {
		return nil, err
	}
	return resp.PublishParameters, nil
}

// Generate projects tabular text into features, one per input row, grouped
// under a layer.
func (c *Client) Generate(ctx context.Context, text string, params PublishParameters) (*FeatureCollection, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	form := url.Values{
		"text":              {text},
		"filetype":          {"csv"},
		"publishParameters": {string(payload)},
	}
	var resp struct {
		FeatureCollection *FeatureCollection `json:"featureCollection"`
	}
	if err := c.post(ctx, c.rest("/content/features/generate"), form, &resp); err != nil {
		return nil, err
	}
	if resp.FeatureCollection == nil {
		return nil, fmt.Errorf("generate returned no feature collection")
	}
	return resp.FeatureCollection, nil
}

// AddFeatures appends features to one layer of a service.
func (c *Client) AddFeatures(ctx context.Context, svc *ServiceInfo, layerID int, features []Feature) error {
	payload, err := json.Marshal(features)
	if err != nil {
		return err
	}
	form := url.Values{"features": {string(payload)}}
	var resp struct {
		AddResults []EditResult `json:"addResults"`
	}
	callURL := fmt.Sprintf("%s/%d/addFeatures", svc.EncodedServiceURL, layerID)
	if err := c.post(ctx, callURL, form, &resp); err != nil {
		return fmt.Errorf("failed to append features to layer %d of %q: %w", layerID, svc.Name, err)
	}
	for i, result := range resp.AddResults {
		if result.Success {
			continue
		}
		if result.Error != nil {
			return fmt.Errorf("layer %d rejected feature %d: %w", layerID, i, result.Error)
		}
		return fmt.Errorf("layer %d rejected feature %d", layerID, i)
	}
	return nil
}

// Share shares an item with a group.
func (c *Client) Share(ctx context.Context, itemID, groupID string) error {
	form := url.Values{
		"groups":   {groupID},
		"everyone": {"false"},
	}
	var resp struct {
		NotSharedWith []string `json:"notSharedWith"`
	}
	callURL := c.rest("/content/users/" + c.username + "/items/" + itemID + "/share")
	if err := c.post(ctx, callURL, form, &resp); err != nil {
		return fmt.Errorf("failed to share item %s: %w", itemID, err)
	}
	if len(resp.NotSharedWith) > 0 {
		return fmt.Errorf("item %s could not be shared with %s", itemID, strings.Join(resp.NotSharedWith, ", "))
	}
	return nil
}
