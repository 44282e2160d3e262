package mcp

import (
	"context"
	"fmt"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/gloss/internal/domain"
	"github.com/felixgeelhaar/gloss/internal/tutor"
)

// Server exposes the gloss analyses as MCP tools so editor clients can call
// them without going through HTTP
type Server struct {
	mcpServer *server.Server
	tutor     tutor.TutorService
}

// Config contains configuration for the MCP server
type Config struct {
	Tutor tutor.TutorService
}

// NewServer creates a new MCP server for gloss
func NewServer(cfg Config) *Server {
	s := &Server{
		tutor: cfg.Tutor,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "gloss",
		Version: "0.1.0",
	}, server.WithInstructions(`
Gloss explains code for learners.
Submit source code with a skill level and get back structured teaching content.

Available tools:
- gloss_explain: Line-by-line explanation of a piece of code
- gloss_fix: Detected issues with patches and a corrected version
- gloss_practice: Practice questions generated from the code

Supported languages: python, javascript, java, cpp, csharp, go.
Skill levels: beginner, intermediate, advanced (default: intermediate).
`))

	s.registerTools()

	return s
}

// registerTools registers all gloss MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("gloss_explain").
		Description("Explain a piece of code line by line, tuned to a skill level.").
		Handler(s.handleExplain)

	s.mcpServer.Tool("gloss_fix").
		Description("Find issues in a piece of code and propose patches.").
		Handler(s.handleFix)

	s.mcpServer.Tool("gloss_practice").
		Description("Generate practice questions derived from a piece of code.").
		Handler(s.handlePractice)
}

// Input/Output types for tools

type SubmissionInput struct {
	Code      string `json:"code" jsonschema:"description=Source code to analyze"`
	Language  string `json:"language" jsonschema:"description=Programming language of the code,enum=python,enum=javascript,enum=java,enum=cpp,enum=csharp,enum=go"`
	Level     string `json:"user_level,omitempty" jsonschema:"description=Learner skill level,enum=beginner,enum=intermediate,enum=advanced"`
	MaxTokens int    `json:"max_tokens,omitempty" jsonschema:"description=Reply token budget (256-4096)"`
}

type ExplainOutput struct {
	Summary     string                   `json:"summary"`
	Lines       []domain.LineExplanation `json:"lines"`
	Explanation string                   `json:"explanation,omitempty"`
}

type FixOutput struct {
	Patches   []domain.IssuePatch `json:"patches"`
	FixedCode string              `json:"fixed_code,omitempty"`
}

type PracticeOutput struct {
	Questions []domain.PracticeQuestion `json:"questions"`
}

// submission builds the domain submission from tool input. Editor clients
// have no use for video links, so the lookup is switched off here.
func (in SubmissionInput) submission() *domain.Submission {
	level := in.Level
	if level == "" {
		level = string(domain.SkillIntermediate)
	}

	opts := domain.DefaultOptions()
	opts.IncludeVideos = false
	if in.MaxTokens > 0 {
		opts.MaxTokens = in.MaxTokens
	}

	sub := domain.NewSubmission(in.Code, in.Language, level, opts)
	return &sub
}

// Tool handlers

func (s *Server) handleExplain(ctx context.Context, input SubmissionInput) (ExplainOutput, error) {
	resp, err := s.tutor.Explain(ctx, input.submission())
	if err != nil {
		return ExplainOutput{}, fmt.Errorf("explain failed: %w", err)
	}

	return ExplainOutput{
		Summary:     resp.Summary,
		Lines:       resp.Lines,
		Explanation: resp.Explanation,
	}, nil
}

func (s *Server) handleFix(ctx context.Context, input SubmissionInput) (FixOutput, error) {
	resp, err := s.tutor.Fix(ctx, input.submission())
	if err != nil {
		return FixOutput{}, fmt.Errorf("fix failed: %w", err)
	}

	return FixOutput{
		Patches:   resp.Patches,
		FixedCode: resp.FixedCode,
	}, nil
}

func (s *Server) handlePractice(ctx context.Context, input SubmissionInput) (PracticeOutput, error) {
	resp, err := s.tutor.Practice(ctx, input.submission())
	if err != nil {
		return PracticeOutput{}, fmt.Errorf("practice failed: %w", err)
	}

	return PracticeOutput{
		Questions: resp.Questions,
	}, nil
}

// ServeStdio starts the MCP server on stdio (for editor integration)
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
