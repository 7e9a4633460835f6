package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kolo/xmlrpc"
)

// ParamAuth is the credential parameter sent with every call.
const ParamAuth = "authinfo"

// XMLRPC is a Caller over XML-RPC. The function name is the method and the
// parameters travel as one struct argument together with authinfo.
type XMLRPC struct {
	rpc  *xmlrpc.Client
	auth string
}

// NewXMLRPC connects to url; auth is "user:password" and may be empty.
func NewXMLRPC(url, auth string, timeout time.Duration) (*XMLRPC, error) {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: timeout,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
	}
	c, err := xmlrpc.NewClient(url, tr)
	if err != nil {
		return nil, err
	}
	return &XMLRPC{rpc: c, auth: auth}, nil
}

// Close releases the underlying client.
func (c *XMLRPC) Close() error { return c.rpc.Close() }

// Call implements Caller. A cancelled context abandons the wait; the request
// itself may still reach the server.
func (c *XMLRPC) Call(ctx context.Context, fn string, params map[string]string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args := make(map[string]string, len(params)+1)
	for k, v := range params {
		args[k] = v
	}
	if c.auth != "" {
		args[ParamAuth] = c.auth
	}

	var reply any
	call := c.rpc.Go(fn, args, &reply, nil)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-call.Done:
	}
	if call.Error != nil {
		return nil, fmt.Errorf("%s: %w", fn, call.Error)
	}
	return decode(reply), nil
}

// decode flattens a reply struct. The "elem" member, when it is an array,
// becomes the listing.
func decode(reply any) *Response {
	resp := &Response{Values: map[string]string{}}
	m, ok := reply.(map[string]any)
	if !ok {
		if reply != nil {
			resp.Values[""] = scalar(reply)
		}
		return resp
	}
	for k, v := range m {
		if list, ok := v.([]any); ok && k == "elem" {
			for _, e := range list {
				em, ok := e.(map[string]any)
				if !ok {
					continue
				}
				flat := map[string]string{}
				flatten("", em, flat)
				resp.Elems = append(resp.Elems, flat)
			}
			continue
		}
		flatten(k, v, resp.Values)
	}
	return resp
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, sub := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, sub, out)
		}
	case []any:
		for i, sub := range t {
			flatten(prefix+"."+strconv.Itoa(i), sub, out)
		}
	default:
		out[prefix] = scalar(v)
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "on"
		}
		return "off"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.DateOnly)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
