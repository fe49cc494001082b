package htmx

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Renderable is anything that writes HTML; templ components qualify.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// Swap is an hx-swap strategy.
type Swap string

const (
	SwapInnerHTML Swap = "innerHTML"
	SwapOuterHTML Swap = "outerHTML"
	SwapNone      Swap = "none"
)

// Response collects the htmx headers and out-of-band fragments of one
// partial response.
type Response struct {
	OOB      []Renderable
	Retarget string
	Reswap   Swap
	PushURL  string
	Triggers []string
	Refresh  bool
}

// RenderOption adjusts a Response.
type RenderOption func(*Response)

// NewResponse applies opts to an empty Response.
func NewResponse(opts ...RenderOption) *Response {
	resp := &Response{}
	for _, opt := range opts {
		opt(resp)
	}
	return resp
}

// WriteHeaders sets the collected headers. Call before WriteHeader.
func (resp *Response) WriteHeaders(w http.ResponseWriter) {
	if resp == nil {
		return
	}
	h := w.Header()
	if resp.Retarget != "" {
		h.Set(HeaderRetarget, resp.Retarget)
	}
	if resp.Reswap != "" {
		h.Set(HeaderReswap, string(resp.Reswap))
	}
	if resp.PushURL != "" {
		h.Set(HeaderPushURL, resp.PushURL)
	}
	if len(resp.Triggers) > 0 {
		h.Set(HeaderTrigger, strings.Join(resp.Triggers, ", "))
	}
	if resp.Refresh {
		h.Set(HeaderRefresh, "true")
	}
}

// RenderOOB writes the out-of-band fragments after the main content.
func (resp *Response) RenderOOB(ctx context.Context, w io.Writer) error {
	if resp == nil {
		return nil
	}
	for _, c := range resp.OOB {
		if err := c.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// WithOOB appends fragments carrying hx-swap-oob, for example the
// selection counter next to a toggled row.
func WithOOB(fragments ...Renderable) RenderOption {
	return func(resp *Response) {
		resp.OOB = append(resp.OOB, fragments...)
	}
}

// WithRetarget swaps into selector instead of the requested target.
func WithRetarget(selector string) RenderOption {
	return func(resp *Response) { resp.Retarget = selector }
}

// WithReswap overrides the swap strategy.
func WithReswap(s Swap) RenderOption {
	return func(resp *Response) { resp.Reswap = s }
}

// WithPushURL records url in the browser history.
func WithPushURL(url string) RenderOption {
	return func(resp *Response) { resp.PushURL = url }
}

// WithTrigger fires client events after the response is received.
func WithTrigger(events ...string) RenderOption {
	return func(resp *Response) { resp.Triggers = append(resp.Triggers, events...) }
}

// WithRefresh asks the client to reload the page.
func WithRefresh() RenderOption {
	return func(resp *Response) { resp.Refresh = true }
}
