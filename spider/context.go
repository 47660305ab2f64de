package spider

import (
	"go.uber.org/zap"
)

// Context is what an extraction sees of the fetch it runs under.
type Context struct {
	Request *Request
	Logger  *zap.Logger
}

func (c *Context) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// view is the request binding handed to expressions.
func (c *Context) view() map[string]any {
	if c == nil || c.Request == nil {
		return map[string]any{}
	}
	r := c.Request
	return map[string]any{
		"url":    r.URL,
		"method": r.Method,
		"type":   r.Type,
		"meta":   r.Meta,
		"page":   r.Page,
	}
}

func (c *Context) baseURL() string {
	if c == nil || c.Request == nil {
		return ""
	}
	return c.Request.URL
}
