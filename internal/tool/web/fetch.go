// Package web implements the webfetch tool.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Cyclone1070/codeagent/internal/config"
	"github.com/Cyclone1070/codeagent/internal/tool"
	"github.com/Cyclone1070/codeagent/internal/tool/helper/content"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatHTML     = "html"
)

const userAgent = "codeagent-webfetch/1.0"

// httpDoer is the part of *http.Client the tool uses.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type FetchRequest struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

func (r *FetchRequest) String() string {
	return "Fetching " + r.URL
}

// FetchTool retrieves a URL with a timeout and a payload cap.
type FetchTool struct {
	client httpDoer
	config *config.Config
}

// NewFetchTool creates a new FetchTool with injected dependencies.
func NewFetchTool(client httpDoer, cfg *config.Config) *FetchTool {
	if client == nil {
		panic("client is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	return &FetchTool{client: client, config: cfg}
}

func (t *FetchTool) Name() string {
	return "webfetch"
}

func (t *FetchTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "webfetch",
		Description: fmt.Sprintf("Fetch a web page over http or https. HTML is converted to markdown (default) or plain text; "+
			"format=html returns the raw page. Output beyond %d characters is truncated.", t.config.Tools.WebFetchMaxChars),
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"url":    {Type: tool.TypeString, Description: "Absolute http or https URL"},
				"format": {Type: tool.TypeString, Enum: []string{FormatMarkdown, FormatText, FormatHTML}},
			},
			Required: []string{"url"},
		},
	}
}

func (t *FetchTool) Input() any {
	return &FetchRequest{}
}

// Execute downloads the page. Truncation is deterministic and always reported in the content.
func (t *FetchTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*FetchRequest)
	if !ok {
		return tool.Result{}, fmt.Errorf("invalid input type: %T", input)
	}

	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return tool.Failure(tool.CodeInvalidArguments, "url must be an absolute http or https URL: %q", req.URL), nil
	}
	format := req.Format
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatText && format != FormatHTML {
		return tool.Failure(tool.CodeInvalidArguments, "format must be one of markdown, text, html"), nil
	}

	timeout := time.Duration(t.config.Tools.WebFetchTimeout) * time.Second
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return tool.Failure(tool.CodeInvalidArguments, "build request: %v", err), nil
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "text/html,text/plain,text/markdown;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return t.transportFailure(ctx, fetchCtx, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tool.Failure(tool.CodeHTTPError, "GET %s returned %s", u, resp.Status), nil
	}

	maxBytes := t.config.Tools.WebFetchMaxBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return t.transportFailure(ctx, fetchCtx, timeout, err)
	}
	bytesCut := int64(len(body)) > maxBytes
	if bytesCut {
		body = body[:maxBytes]
	}
	if content.IsBinary(body) {
		return tool.Failure(tool.CodeBinaryFile, "%s returned binary content (%s)", u, resp.Header.Get("Content-Type")), nil
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type"), body) && format != FormatHTML {
		rendered, err := renderHTML(bytes.NewReader(body), format == FormatMarkdown)
		if err != nil {
			return tool.Failure(tool.CodeExecutionFailed, "parse html: %v", err), nil
		}
		text = rendered
	}

	var b strings.Builder
	maxChars := t.config.Tools.WebFetchMaxChars
	if cut, truncated := content.TruncateRunes(text, maxChars); truncated {
		b.WriteString(cut)
		fmt.Fprintf(&b, "\n[truncated: showing %d of %d characters]", maxChars, utf8.RuneCountInString(text))
	} else {
		b.WriteString(text)
	}
	if bytesCut {
		fmt.Fprintf(&b, "\n[download stopped at %d bytes]", maxBytes)
	}

	display := fmt.Sprintf("Fetched %s (%d bytes)", u.Host, len(body))
	return tool.Success(b.String(), tool.StringDisplay(display)), nil
}

// transportFailure separates the caller cancelling from the fetch timing out.
func (t *FetchTool) transportFailure(parent, fetchCtx context.Context, timeout time.Duration, err error) (tool.Result, error) {
	if parent.Err() != nil {
		return tool.Result{}, parent.Err()
	}
	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return tool.Failure(tool.CodeTimeout, "request timed out after %s", timeout), nil
	}
	return tool.Failure(tool.CodeHTTPError, "request failed: %v", err), nil
}

func isHTML(contentType string, body []byte) bool {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediaType == "text/html" || mediaType == "application/xhtml+xml"
		}
	}
	return strings.HasPrefix(http.DetectContentType(body), "text/html")
}
