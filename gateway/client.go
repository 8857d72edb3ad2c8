package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	opGetUserRoles    = "get_user_roles"
	opRegisterProduct = "register_product"
	opPublishRoles    = "publish_roles"
)

// Client speaks the gateway wire protocol. It performs network I/O only and
// never mutates local state.
type Client struct {
	config     Config
	mapper     *RoleMapper
	httpClient *http.Client
}

// New validates the configuration and returns a ready client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		mapper:     NewRoleMapper(cfg.RoleMapping),
		httpClient: client,
	}, nil
}

// Mapper returns the role mapper backing this client.
func (c *Client) Mapper() *RoleMapper {
	return c.mapper
}

// BasicAuth builds an HTTP Basic credential for the given user and password.
func BasicAuth(user, password string) string {
	raw := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return "Basic " + raw
}

// GetUserRoles queries the gateway for the user's roles, authenticating with
// the caller's own credentials. The result is the mapped local role names in
// document order; an empty list means the gateway vouches for nobody, which
// is a normal outcome, not an error.
func (c *Client) GetUserRoles(ctx context.Context, username, password string) ([]string, error) {
	params := url.Values{
		"userName":    {username},
		"productName": {c.config.ProductName},
	}

	endpoint := c.config.baseURL() + c.config.GetUserRolesPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", BasicAuth(username, password))
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Operation: opGetUserRoles, Status: resp.StatusCode}
	}

	ids, err := parseRoleIDs(body)
	if err != nil {
		return nil, &ProtocolError{Operation: opGetUserRoles, Err: err}
	}

	return c.mapper.Resolve(ids), nil
}

// RegisterProduct registers this product with the gateway using the
// service account. One-time bootstrap operation.
func (c *Client) RegisterProduct(ctx context.Context) error {
	params := url.Values{
		"productId":   {c.config.ProductID()},
		"productName": {c.config.ProductName},
	}

	endpoint := c.config.baseURL() + c.config.RegisterProductPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", BasicAuth(c.config.APIUser, c.config.APIPassword))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &GatewayError{Operation: opRegisterProduct, Status: resp.StatusCode}
	}

	return nil
}

// PublishRoles uploads every configured role mapping to the gateway using
// the service account. The gateway treats the payload as a full replace, so
// the operation is idempotent at the protocol level.
func (c *Client) PublishRoles(ctx context.Context) error {
	payload, err := c.rolesPayload()
	if err != nil {
		return err
	}

	params := url.Values{
		"userName":    {c.config.APIUser},
		"productName": {c.config.ProductName},
	}

	endpoint := c.config.baseURL() + c.config.PublishRolesPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", BasicAuth(c.config.APIUser, c.config.APIPassword))
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &GatewayError{Operation: opPublishRoles, Status: resp.StatusCode}
	}

	return nil
}

// Bootstrap registers the product and publishes the role catalog. Not
// transactional with local state; safe to re-run.
func (c *Client) Bootstrap(ctx context.Context) error {
	if err := c.RegisterProduct(ctx); err != nil {
		return err
	}
	return c.PublishRoles(ctx)
}

type publishRole struct {
	ID          string   `xml:"id,attr"`
	Name        string   `xml:"name,attr"`
	Description string   `xml:"description,attr"`
	ChildRoles  struct{} `xml:"childRoles"`
}

type publishProduct struct {
	XMLName       xml.Name      `xml:"product"`
	ClientVersion string        `xml:"apmClientVersion,attr"`
	Name          string        `xml:"name,attr"`
	Description   string        `xml:"description"`
	Roles         []publishRole `xml:"roles>role"`
}

func (c *Client) rolesPayload() ([]byte, error) {
	product := publishProduct{
		ClientVersion: "1.0",
		Name:          c.config.ProductName,
		Description:   c.config.ProductName,
	}

	for _, id := range c.mapper.IDs() {
		name, _ := c.mapper.Name(id)
		product.Roles = append(product.Roles, publishRole{
			ID:          id,
			Name:        name,
			Description: name,
		})
	}

	body, err := xml.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("encode roles payload: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}

// parseRoleIDs walks the document for a <roles> element and collects the id
// attribute of each child <role>, in document order. A missing <roles>
// element yields an empty list, not an error.
func parseRoleIDs(body []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	ids := []string{}
	inRoles := false
	depth := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "roles" && !inRoles {
				inRoles = true
				depth = 0
				continue
			}
			if inRoles {
				depth++
				if t.Name.Local == "role" {
					for _, attr := range t.Attr {
						if attr.Name.Local == "id" {
							ids = append(ids, attr.Value)
							break
						}
					}
				}
			}
		case xml.EndElement:
			if inRoles {
				if depth == 0 && t.Name.Local == "roles" {
					inRoles = false
					continue
				}
				depth--
			}
		}
	}

	return ids, nil
}
