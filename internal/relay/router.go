package relay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router stands in for the orchestrator's message routing during local
// games: it accepts relayed chat lines and delivers them onward.
type Router struct {
	addr       string
	outputPath string
	engine     *gin.Engine
	forwarder  *Forwarder
	logger     Logger
}

func NewRouter(addr, outputPath string, forwarder *Forwarder, log Logger) *Router {
	r := &Router{
		addr:       addr,
		outputPath: outputPath,
		engine:     gin.New(),
		forwarder:  forwarder,
		logger:     log,
	}
	r.engine.Use(gin.Recovery(), cors(nil))
	r.engine.POST(outputPath, r.relay)
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) Run(ctx context.Context) error {
	return serve(ctx, r.addr, r.engine, r.logger)
}

// relay always acknowledges; delivery failures are logged and counted by
// the forwarder.
func (r *Router) relay(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is not JSON"})
		return
	}

	var head struct {
		Speaker string `json:"speaker"`
	}
	_ = json.Unmarshal(raw, &head)

	_ = r.forwarder.Route(c.Request.Context(), head.Speaker, json.RawMessage(raw))
	c.JSON(http.StatusOK, gin.H{"Status": "OK"})
}
