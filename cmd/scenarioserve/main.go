// Command scenarioserve is the HTTP front-end described in SPEC_FULL.md §6:
// POST /invoke compiles a scenario and runs a single input through it in
// one request; POST /scenarios/{id} and POST /scenarios/{id}/invoke let a
// caller register a scenario once and invoke it repeatedly without
// recompiling.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	scenarioengine "github.com/BDNK1/scenarioengine"
	"github.com/BDNK1/scenarioengine/engine"
	"github.com/BDNK1/scenarioengine/engine/scenario"
	"github.com/BDNK1/scenarioengine/internal/config"
)

type server struct {
	mu           sync.RWMutex
	compiled     map[string]engine.Interpreter
	maxScenarios int
}

func newServer(maxScenarios int) *server {
	return &server{compiled: map[string]engine.Interpreter{}, maxScenarios: maxScenarios}
}

type invokeRequest struct {
	Scenario scenario.Scenario `json:"scenario"`
	Input    any               `json:"input"`
}

type registerResponse struct {
	ID string `json:"id"`
}

func (s *server) handleInvokeAdHoc(c *gin.Context) {
	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	interp, err := scenarioengine.CompileScenario(req.Scenario)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	runInput(c, interp, req.Input)
}

func (s *server) handleRegister(c *gin.Context) {
	var doc scenario.Scenario
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid scenario body: " + err.Error()})
		return
	}

	interp, err := scenarioengine.CompileScenario(doc)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	id := c.Param("id")
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.compiled) >= s.maxScenarios {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "scenario cache full"})
		return
	}
	s.compiled[id] = interp
	c.JSON(http.StatusCreated, registerResponse{ID: id})
}

func (s *server) handleInvokeRegistered(c *gin.Context) {
	id := c.Param("id")
	s.mu.RLock()
	interp, ok := s.compiled[id]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown scenario id"})
		return
	}

	var body struct {
		Input any `json:"input"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	runInput(c, interp, body.Input)
}

func runInput(c *gin.Context, interp engine.Interpreter, input any) {
	encoded, err := marshalInput(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid input: " + err.Error()})
		return
	}

	output, err := scenarioengine.Invoke(c.Request.Context(), interp, encoded)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func writeEngineError(c *gin.Context, err error) {
	var compErr *engine.CompilationError
	var runErr *engine.RuntimeError
	switch {
	case errors.As(err, &compErr):
		slog.Error("scenario compilation failed", "error", compErr.ToMap())
		c.JSON(http.StatusBadRequest, compErr.ToMap())
	case errors.As(err, &runErr):
		slog.Error("scenario invocation failed", "error", runErr.ToMap())
		c.JSON(http.StatusUnprocessableEntity, runErr.ToMap())
	default:
		slog.Error("unexpected engine error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

func marshalInput(input any) (string, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func main() {
	configPath := flag.String("config", "", "path to a YAML server config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	srv := newServer(cfg.ScenarioCacheCap)

	g := gin.New()
	g.Use(gin.Recovery(), requestLogger())
	g.MaxMultipartMemory = cfg.MaxBodyBytes

	g.POST("/invoke", srv.handleInvokeAdHoc)
	g.POST("/scenarios/:id", srv.handleRegister)
	g.POST("/scenarios/:id/invoke", srv.handleInvokeRegistered)

	slog.Info("scenarioserve listening", "addr", cfg.Addr)
	if err := g.Run(cfg.Addr); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

