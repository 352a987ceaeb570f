// Package mcpserver exposes toast notifications as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/jongio/azd-toast/logutil"
	"github.com/jongio/azd-toast/toast"
)

const (
	serverName = "azd-toast"

	toolShow    = "show_toast"
	toolPreview = "preview_toast"

	paramTitle  = "title"
	paramBody   = "body"
	paramDetail = "detail"
	paramLaunch = "launch"
	paramImage  = "image"
	paramAudio  = "audio"
	paramSilent = "silent"
	paramExpire = "expireSeconds"
)

var log = logutil.NewLogger("mcp")

// Options configures a Server.
type Options struct {
	// AppID is the id toasts are shown under.
	AppID   string
	Version string

	// RatePerSecond and Burst limit show_toast calls. Zero disables limiting.
	RatePerSecond float64
	Burst         int
}

// Server wraps an mcp-go server with the toast tools registered.
type Server struct {
	service   toast.Service
	limiter   *rate.Limiter
	mcpServer *server.MCPServer

	mu           sync.Mutex
	notification *toast.Notification
}

// NewServer builds a server that shows toasts through service. All calls
// share one notification, so a new toast replaces the previous one.
func NewServer(service toast.Service, opts Options) *Server {
	version := opts.Version
	if version == "" {
		version = "0.0.0-dev"
	}

	s := &Server{
		service:      service,
		notification: toast.New(service, opts.AppID),
		mcpServer: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithLogging(),
		),
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve runs the stdio transport until stdin closes.
func (s *Server) Serve() error {
	errLogger := slog.NewLogLogger(logutil.Logger().Handler(), slog.LevelError)
	return server.ServeStdio(s.mcpServer, server.WithErrorLogger(errLogger))
}

func toastParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString(paramTitle, mcp.Required(), mcp.Description("First line of the toast")),
		mcp.WithString(paramBody, mcp.Description("Second line")),
		mcp.WithString(paramDetail, mcp.Description("Third line")),
		mcp.WithString(paramLaunch, mcp.Description("Argument passed back when the toast is clicked, usually a URL")),
		mcp.WithString(paramImage, mcp.Description("Image URL or absolute file path")),
		mcp.WithString(paramAudio, mcp.Description("Sound to play"), mcp.Enum(toast.AudioNames()...)),
		mcp.WithBoolean(paramSilent, mcp.Description("Play no sound")),
		mcp.WithNumber(paramExpire, mcp.Description("Seconds until the toast is removed from the notification center")),
	}
}

func (s *Server) registerTools() {
	show := mcp.NewTool(toolShow, append([]mcp.ToolOption{
		mcp.WithDescription("Show a desktop toast notification"),
		mcp.WithTitleAnnotation("Show toast"),
		mcp.WithDestructiveHintAnnotation(false),
	}, toastParams()...)...)
	s.mcpServer.AddTool(show, s.handleShow)

	preview := mcp.NewTool(toolPreview, append([]mcp.ToolOption{
		mcp.WithDescription("Render toast XML without showing it"),
		mcp.WithTitleAnnotation("Preview toast"),
		mcp.WithReadOnlyHintAnnotation(true),
	}, toastParams()...)...)
	s.mcpServer.AddTool(preview, s.handlePreview)
}

type showResult struct {
	AppID    string `json:"appId"`
	Template string `json:"template"`
	Visible  bool   `json:"visible"`
}

type previewResult struct {
	Template string `json:"template"`
	XML      string `json:"xml"`
}

func (s *Server) handleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return mcp.NewToolResultError(fmt.Sprintf("rate limit exceeded for tool %q, please wait before retrying", toolShow)), nil
	}

	t, err := toastFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	template, err := t.Template()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	s.notification.Toast = *t
	err = s.notification.Show(ctx)
	s.mu.Unlock()
	if err != nil {
		log.Warn("show_toast failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return marshalToolResult(showResult{
		AppID:    s.notification.AppID(),
		Template: template.String(),
		Visible:  s.notification.Visible(),
	})
}

func (s *Server) handlePreview(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := toastFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := t.Content(s.service)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc.Indent(2)
	xml, err := doc.WriteToString()
	if err != nil {
		return mcp.NewToolResultError("failed to serialize toast: " + err.Error()), nil
	}
	return marshalToolResult(previewResult{Template: toast.BindingTemplate(doc), XML: xml})
}

func toastFromRequest(req mcp.CallToolRequest) (*toast.Toast, error) {
	title, err := req.RequireString(paramTitle)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%s cannot be empty", paramTitle)
	}

	t := &toast.Toast{Lines: []string{title}}
	for _, p := range []string{paramBody, paramDetail} {
		if v := req.GetString(p, ""); v != "" {
			t.Lines = append(t.Lines, v)
		}
	}
	t.Launch = req.GetString(paramLaunch, "")

	if img := strings.TrimSpace(req.GetString(paramImage, "")); img != "" {
		src, err := imageSource(img)
		if err != nil {
			return nil, err
		}
		t.Image = &toast.Image{Src: src}
	}

	silent := req.GetBool(paramSilent, false)
	if name := req.GetString(paramAudio, ""); name != "" || silent {
		audio := &toast.Audio{Silent: silent}
		if name != "" {
			src, ok := toast.ParseAudio(name)
			if !ok {
				return nil, fmt.Errorf("unknown audio %q", name)
			}
			audio.Src = src
		}
		t.Audio = audio
	}

	if secs := req.GetFloat(paramExpire, 0); secs > 0 {
		exp := time.Now().Add(time.Duration(secs * float64(time.Second)))
		t.ExpirationTime = &exp
	}
	return t, nil
}

// imageSource accepts URLs as-is and converts absolute paths to file URIs.
func imageSource(img string) (string, error) {
	lower := strings.ToLower(img)
	for _, scheme := range []string{"http://", "https://", "file:///", "ms-appx:///", "ms-appdata:///"} {
		if strings.HasPrefix(lower, scheme) {
			return img, nil
		}
	}
	if strings.Contains(img, "..") {
		return "", fmt.Errorf("image path traversal not allowed")
	}
	if !filepath.IsAbs(img) {
		return "", fmt.Errorf("image must be a URL or an absolute path")
	}
	p := filepath.ToSlash(filepath.Clean(img))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p, nil
}

// marshalToolResult marshals any value to JSON and returns it as a tool result.
func marshalToolResult(data interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
