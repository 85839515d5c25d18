package rpc

import (
	"context"
	"fmt"
	"net/url"
)

type versionInfo struct {
	ServerVersion string `json:"server_version"`
}

// Version asks the backend for its server version. It does not need a session.
func (c *Client) Version(ctx context.Context) (string, error) {
	var info versionInfo
	err := c.call(ctx, "/web/webclient/version_info", map[string]any{}, &info)
	if err != nil {
		return "", err
	}
	return info.ServerVersion, nil
}

func (c *Client) SelfCheck() (bool, string) {
	u, err := url.Parse(c.url)
	if err != nil || u.Host == "" {
		return false, fmt.Sprintf("backend url %q is not usable", c.url)
	}
	return true, ""
}

func (c *Client) HealthCheck(ctx context.Context) (bool, string) {
	_, err := c.Version(ctx)
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}
