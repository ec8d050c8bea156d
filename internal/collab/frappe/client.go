// internal/collab/frappe/client.go
//
// Collaborator backed by a live Frappe site. Every call is a POST to
// /api/method/frappe.client.*, authenticated with an API token pair; the
// payload of interest always rides under the "message" key.

package frappe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/abakada/admissions-portal/internal/collab"
	"github.com/abakada/admissions-portal/internal/logbook"
)

const defaultTimeout = 30 * time.Second

// Client talks to one Frappe site.
type Client struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
	log     *logbook.Logbook
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogbook attaches a session log.
func WithLogbook(log *logbook.Logbook) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the site at baseURL using token auth.
func New(baseURL, key, secret string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		secret:  secret,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var _ collab.Collaborator = (*Client)(nil)

// List calls frappe.client.get_list.
func (c *Client) List(ctx context.Context, doctype string, opts collab.ListOptions) ([]collab.Record, error) {
	args := map[string]any{"doctype": doctype}
	if len(opts.Fields) > 0 {
		args["fields"] = opts.Fields
	}
	if len(opts.Filters) > 0 {
		filters := make([][]any, 0, len(opts.Filters))
		for _, f := range opts.Filters {
			op := f.Op
			if op == "" {
				op = "="
			}
			filters = append(filters, []any{f.Field, op, f.Value})
		}
		args["filters"] = filters
	}
	if opts.Limit > 0 {
		args["limit_page_length"] = opts.Limit
	}
	if opts.OrderBy != "" {
		args["order_by"] = opts.OrderBy
	}

	var out []collab.Record
	if err := c.call(ctx, "frappe.client.get_list", args, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get calls frappe.client.get, which returns the full document with child
// tables.
func (c *Client) Get(ctx context.Context, doctype, name string) (collab.Record, error) {
	var out collab.Record
	err := c.call(ctx, "frappe.client.get", map[string]any{
		"doctype": doctype, "name": name,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create calls frappe.client.insert and returns the server-assigned name.
func (c *Client) Create(ctx context.Context, doc collab.Record) (string, error) {
	var out collab.Record
	if err := c.call(ctx, "frappe.client.insert", map[string]any{"doc": doc}, &out); err != nil {
		return "", err
	}
	name := out.Str("name")
	if name == "" {
		return "", collab.NewError(collab.KindServer, "frappe.client.insert", "server returned no document name", nil)
	}
	return name, nil
}

// SetField calls frappe.client.set_value. Multiple fields go out as one
// fieldname map so the update is atomic server-side.
func (c *Client) SetField(ctx context.Context, doctype, name string, fields map[string]any) error {
	args := map[string]any{"doctype": doctype, "name": name}
	if len(fields) == 1 {
		for k, v := range fields {
			args["fieldname"] = k
			args["value"] = v
		}
	} else {
		args["fieldname"] = fields
	}
	return c.call(ctx, "frappe.client.set_value", args, nil)
}

// Upload posts a file through upload_file, attached to the given document
// field, and returns the stored file URL.
func (c *Client) Upload(ctx context.Context, doctype, name, field, filename string, content []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"doctype":    doctype,
		"docname":    name,
		"fieldname":  field,
		"is_private": "1",
	} {
		_ = mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", err)
	}
	if _, err := fw.Write(content); err != nil {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", err)
	}
	if err := mw.Close(); err != nil {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/method/upload_file", &body)
	if err != nil {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.classify("upload_file", resp.StatusCode, data)
	}

	var envelope struct {
		Message struct {
			FileURL string `json:"file_url"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", collab.NewError(collab.KindServer, "upload_file", "unreadable response", err)
	}
	if c.log != nil {
		c.log.Info("uploaded %s to %s.%s", filename, name, field)
	}
	return envelope.Message.FileURL, nil
}

// Logout ends the API session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, "logout", nil, nil)
}

// call posts one RPC and decodes the "message" envelope into out.
func (c *Client) call(ctx context.Context, method string, args map[string]any, out any) error {
	var body io.Reader
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return collab.NewError(collab.KindTransport, method, "", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/method/"+method, body)
	if err != nil {
		return collab.NewError(collab.KindTransport, method, "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return collab.NewError(collab.KindTransport, method, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return collab.NewError(collab.KindTransport, method, "", err)
	}
	if resp.StatusCode != http.StatusOK {
		return c.classify(method, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return collab.NewError(collab.KindServer, method, "unreadable response", err)
	}
	if err := json.Unmarshal(envelope.Message, out); err != nil {
		return collab.NewError(collab.KindServer, method, "unexpected response shape", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.key != "" {
		req.Header.Set("Authorization", "token "+c.key+":"+c.secret)
	}
}

// classify turns a non-200 response into a collaborator error, digging the
// human-readable detail out of _server_messages when the site provides one.
func (c *Client) classify(method string, status int, body []byte) error {
	kind := collab.KindServer
	switch status {
	case http.StatusForbidden, http.StatusUnauthorized:
		kind = collab.KindPermission
	case http.StatusNotFound:
		kind = collab.KindNotFound
	}
	msg := serverMessage(body)
	if c.log != nil {
		c.log.Error("%s failed: HTTP %d %s", method, status, msg)
	}
	return collab.NewError(kind, method, msg, fmt.Errorf("HTTP %d", status))
}

// serverMessage extracts the first message from a Frappe error body. The
// site double-encodes _server_messages: a JSON string holding a JSON array
// of JSON strings, each holding {"message": ...}.
func serverMessage(body []byte) string {
	var payload struct {
		ServerMessages string `json:"_server_messages"`
		Exception      string `json:"exception"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.ServerMessages != "" {
		var entries []string
		if err := json.Unmarshal([]byte(payload.ServerMessages), &entries); err == nil && len(entries) > 0 {
			var inner struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(entries[0]), &inner); err == nil && inner.Message != "" {
				return stripTags(inner.Message)
			}
		}
	}
	if payload.Exception != "" {
		parts := strings.SplitN(payload.Exception, ": ", 2)
		return parts[len(parts)-1]
	}
	return ""
}

// stripTags drops the HTML markup Frappe wraps around its messages.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
