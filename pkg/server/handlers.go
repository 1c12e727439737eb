package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/schema"
	"github.com/zen-systems/genui/pkg/stage"
)

type generateRequest struct {
	Content      string                 `json:"content" binding:"required"`
	Design       string                 `json:"design"`
	ModelsConfig *pipeline.ModelsConfig `json:"modelsConfig"`
	Composed     bool                   `json:"composed"`
}

type generateResponse struct {
	Success        bool             `json:"success"`
	Data           *schema.Document `json:"data,omitempty"`
	Error          string           `json:"error,omitempty"`
	ExecutionTime  int64            `json:"executionTime"`
	DesignAnalysis string           `json:"designAnalysis,omitempty"`
}

type analyzeRequest struct {
	Content       string          `json:"content" binding:"required"`
	DesignContext string          `json:"designContext"`
	DesignModel   *adapter.Config `json:"designModel"`
}

type analyzeResponse struct {
	Design   string `json:"design"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

type providerResponse struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

type modelsResponse struct {
	Providers []providerResponse `json:"providers"`
	Defaults  map[string]string  `json:"defaults"`
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) models(c *gin.Context) {
	resp := modelsResponse{
		Defaults: map[string]string{
			"design": s.opts.Defaults.DesignModel.Model,
			"ui":     s.opts.Defaults.UIModel.Model,
		},
	}
	for _, p := range s.opts.Factory.Providers() {
		resp.Providers = append(resp.Providers, providerResponse{Name: p.Name, Models: p.Models})
	}
	c.JSON(http.StatusOK, resp)
}

// generate returns the pipeline Result. Pipeline failures are reported in
// the body with status 200; only malformed requests get an error status.
func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request: "+err.Error()))
		return
	}

	orch := s.newOrchestrator(logger(c, s.log))
	params := pipeline.Params{Content: req.Content, Design: req.Design, ModelsConfig: req.ModelsConfig}

	var res pipeline.Result
	if req.Composed {
		res = orch.GenerateComposed(c.Request.Context(), params)
	} else {
		res = orch.Generate(c.Request.Context(), params)
	}

	resp := generateResponse{
		Success:       res.Success,
		Data:          res.Data,
		Error:         res.Error,
		ExecutionTime: res.ExecutionTime.Milliseconds(),
	}
	if d := orch.IntermediateResults().DesignAnalysis; d != nil {
		resp.DesignAnalysis = d.Design
	}
	c.JSON(http.StatusOK, resp)
}

// generateStream sends design, chunk and done or error events. A client
// disconnect cancels the request context, which stops the model stream.
func (s *Server) generateStream(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request: "+err.Error()))
		return
	}

	orch := s.newOrchestrator(logger(c, s.log))
	stream, err := orch.GenerateStream(c.Request.Context(), pipeline.Params{
		Content:      req.Content,
		Design:       req.Design,
		ModelsConfig: req.ModelsConfig,
	})
	if err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if d := orch.IntermediateResults().DesignAnalysis; d != nil {
		c.SSEvent("design", gin.H{"design": d.Design})
	}

	var buf strings.Builder
	index := 0
	c.Stream(func(w io.Writer) bool {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			out, err := stage.Parse(buf.String())
			if err != nil {
				c.SSEvent("error", gin.H{"message": err.Error()})
				return false
			}
			c.SSEvent("done", gin.H{"success": true, "data": out.Document})
			return false
		}
		if err != nil {
			c.SSEvent("error", gin.H{"message": err.Error()})
			return false
		}

		buf.WriteString(chunk)
		c.SSEvent("chunk", gin.H{"chunk": chunk, "index": index})
		index++
		return true
	})
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request: "+err.Error()))
		return
	}

	var models *pipeline.ModelsConfig
	if req.DesignModel != nil {
		models = &pipeline.ModelsConfig{DesignModel: *req.DesignModel}
	}

	orch := s.newOrchestrator(logger(c, s.log))
	out, err := orch.Analyze(c.Request.Context(), stage.DesignInput{
		Content:       req.Content,
		DesignContext: req.DesignContext,
	}, models)
	if err != nil {
		c.JSON(statusFor(err), errorBody(err.Error()))
		return
	}

	resp := analyzeResponse{Design: out.Design}
	if out.Artifact != nil {
		resp.Provider = out.Artifact.Provider
		resp.Model = out.Artifact.Model
	}
	c.JSON(http.StatusOK, resp)
}

// statusFor maps errors raised before any output to an HTTP status.
func statusFor(err error) int {
	switch {
	case adapter.IsConfigurationError(err),
		errors.Is(err, stage.ErrEmptyContent),
		errors.Is(err, stage.ErrEmptyDesign):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
