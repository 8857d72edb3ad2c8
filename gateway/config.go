package gateway

import (
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Config holds the gateway connection settings. It is loaded once at process
// start and treated as read-only afterwards.
type Config struct {
	Host     string
	Port     int
	RootPath string

	GetUserRolesPath    string
	RegisterProductPath string
	PublishRolesPath    string

	// Service-account credentials used for product registration and role
	// publishing. Login-time role queries use the caller's own credentials.
	APIUser     string
	APIPassword string

	ProductName string

	// RoleMapping translates gateway role ids to local role names. Ids the
	// gateway reports that are absent here are silently dropped.
	RoleMapping map[string]string

	// Scheme defaults to http when empty.
	Scheme string

	HTTPClient *http.Client
}

// Validate checks that every required field is set.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.RootPath, validation.Required),
		validation.Field(&c.GetUserRolesPath, validation.Required),
		validation.Field(&c.RegisterProductPath, validation.Required),
		validation.Field(&c.PublishRolesPath, validation.Required),
		validation.Field(&c.APIUser, validation.Required),
		validation.Field(&c.APIPassword, validation.Required),
		validation.Field(&c.ProductName, validation.Required),
	); err != nil {
		return err
	}

	if len(c.RoleMapping) == 0 {
		return validation.Errors{
			"RoleMapping": fmt.Errorf("cannot be blank"),
		}
	}

	return nil
}

// ProductID is the product name with spaces removed, as the registration
// endpoint expects.
func (c Config) ProductID() string {
	return strings.ReplaceAll(c.ProductName, " ", "")
}

func (c Config) scheme() string {
	if c.Scheme == "" {
		return "http"
	}
	return c.Scheme
}

func (c Config) baseURL() string {
	return fmt.Sprintf("%s://%s:%d%s", c.scheme(), c.Host, c.Port, c.RootPath)
}
