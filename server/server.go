package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"llm_api/answer"
	"llm_api/logger"
	"llm_api/taskqueue"
)

// Submitter enqueues a question task and returns its id.
type Submitter interface {
	Submit(ctx context.Context, question string) (string, error)
}

// TaskReader looks up task lifecycle records.
type TaskReader interface {
	GetByID(ctx context.Context, taskID string) (*taskqueue.TaskRecord, error)
}

type GenerateRequest struct {
	Question string `json:"question" binding:"required"`
}

type GenerateResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type TaskSubmitResponse struct {
	TaskID string `json:"task_id"`
}

// TaskStatusResponse reports a polled task. Result is present only on
// SUCCESS, Error only on FAILURE.
type TaskStatusResponse struct {
	TaskID string  `json:"task_id"`
	Status string  `json:"status"`
	Result *string `json:"result,omitempty"`
	Error  *string `json:"error,omitempty"`
}

// Server exposes the question answering HTTP API.
type Server struct {
	answer answer.Service
	tasks  Submitter
	store  TaskReader
}

func New(answerSvc answer.Service, tasks Submitter, store TaskReader) *Server {
	return &Server{
		answer: answerSvc,
		tasks:  tasks,
		store:  store,
	}
}

// Router builds the gin engine with all API routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())

	router.GET("/", s.handleRoot)
	router.POST("/generate", s.handleGenerate)
	router.POST("/generate-async", s.handleGenerateAsync)
	router.GET("/tasks/:id", s.handleTaskStatus)

	return router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "llm_api is running"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse request: question is required"})
		return
	}

	text, err := s.answer.Answer(c.Request.Context(), req.Question)
	if err != nil {
		logger.Error("failed to answer question: %s", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate answer"})
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{Question: req.Question, Answer: text})
}

func (s *Server) handleGenerateAsync(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse request: question is required"})
		return
	}

	taskID, err := s.tasks.Submit(c.Request.Context(), req.Question)
	if err != nil {
		logger.Error("failed to submit task: %s", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit task"})
		return
	}

	c.JSON(http.StatusOK, TaskSubmitResponse{TaskID: taskID})
}

func (s *Server) handleTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	rec, err := s.store.GetByID(c.Request.Context(), taskID)
	if errors.Is(err, taskqueue.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		logger.Error("failed to look up task %s: %s", taskID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up task"})
		return
	}

	resp := TaskStatusResponse{TaskID: rec.ID, Status: string(rec.Status)}
	switch rec.Status {
	case taskqueue.StatusSuccess:
		resp.Result = rec.Result
	case taskqueue.StatusFailure:
		resp.Error = rec.Error
	}
	c.JSON(http.StatusOK, resp)
}
