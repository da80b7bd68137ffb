package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// MCPHandler handles method dispatch for the JSON-RPC endpoint.
type MCPHandler interface {
	Handle(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error)
}

// CodedError is implemented by errors that carry a stable error code.
type CodedError interface {
	error
	CodeValue() string
	MessageValue() string
	RecoveryHintValue() string
}

// Options configures the router.
type Options struct {
	// Auth resolves the tenant for /rpc, /ws and /mcp. Nil assigns every request
	// to the "default" tenant.
	Auth gin.HandlerFunc
	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string
	// Outlines backs the /ws snapshot stream. Nil leaves /ws unmounted.
	Outlines OutlineSubscriber
	// MCP is mounted at /mcp behind Auth when set.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler  MCPHandler
	outlines OutlineSubscriber
	logger   *slog.Logger
}

// NewRouter creates the HTTP router with middleware.
func NewRouter(handler MCPHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Mcp-Session-Id", "Mcp-Protocol-Version"},
			ExposeHeaders:    []string{"Mcp-Session-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	srv := &Server{handler: handler, outlines: opts.Outlines, logger: opts.Logger}

	r.GET("/health", srv.handleHealth)

	auth := opts.Auth
	if auth == nil {
		auth = StaticTenant("default")
	}
	protected := r.Group("/")
	protected.Use(auth)
	protected.POST("/rpc", srv.handleRPC)
	if opts.MCP != nil {
		protected.Any("/mcp", gin.WrapH(opts.MCP))
	}
	if opts.Outlines != nil {
		protected.GET("/ws", srv.handleWebSocket)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleRPC(c *gin.Context) {
	req, err := ParseRequest(c.Request.Body)
	if err != nil {
		WriteError(c, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	tenantID := c.GetString(tenantContextKey)
	if tenantID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing tenant"})
		return
	}

	result, err := s.handler.Handle(c.Request.Context(), tenantID, req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(c, req, err)
		return
	}

	WriteResult(c, req.ID, result)
}

func (s *Server) writeHandlerError(c *gin.Context, req Request, err error) {
	if errors.Is(err, ErrUnauthorized) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var coded CodedError
	if !errors.As(err, &coded) {
		if s.logger != nil {
			s.logger.Error("rpc call failed", "method", req.Method, "error", err)
		}
		WriteError(c, req.ID, ErrInternal, err.Error(), nil)
		return
	}

	code := ErrApplication
	switch coded.CodeValue() {
	case "UNKNOWN_METHOD":
		code = ErrMethodNotFound
	case "INVALID_INPUT":
		code = ErrInvalidParams
	}
	data := map[string]string{"code": coded.CodeValue()}
	if hint := coded.RecoveryHintValue(); hint != "" {
		data["recovery_hint"] = hint
	}
	WriteError(c, req.ID, code, coded.MessageValue(), data)
}
