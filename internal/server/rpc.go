package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/fpang/gemini-video-analyzer/internal/assets"
	"github.com/fpang/gemini-video-analyzer/internal/chat"
)

const serviceName = "gemini-video-analyzer"

// Tool names exposed over MCP.
const (
	ToolAnalyzeRemoteVideo = "analyzeRemoteVideo"
	ToolAnalyzeLocalVideo  = "analyzeLocalVideo"
)

// Analyzer is the analysis surface the tools proxy to. *chat.VideoClient
// satisfies it.
type Analyzer interface {
	AnalyzeRemoteVideo(ctx context.Context, req chat.RemoteRequest) (string, error)
	AnalyzeLocalVideo(ctx context.Context, req chat.LocalRequest) (string, error)
}

type RemoteVideoInput struct {
	VideoURL string `json:"videoUrl" jsonschema:"Public video URL, for example a YouTube link or a direct MP4 URL"`
	Prompt   string `json:"prompt,omitempty" jsonschema:"Instruction for the model. Defaults to a structured summary prompt"`
	Model    string `json:"model,omitempty" jsonschema:"Gemini model name. Defaults to the server's configured model"`
}

type LocalVideoInput struct {
	FilePath string `json:"filePath" jsonschema:"Path to a video file on the server host, or an s3://bucket/key URI"`
	Prompt   string `json:"prompt,omitempty" jsonschema:"Instruction for the model. Defaults to a structured summary prompt"`
	Model    string `json:"model,omitempty" jsonschema:"Gemini model name. Defaults to the server's configured model"`
	MIMEType string `json:"mimeType,omitempty" jsonschema:"Video MIME type. Guessed from the file extension when omitted"`
}

type AnalysisOutput struct {
	Text string `json:"text" jsonschema:"Model response text"`
}

// NewMCPServer registers the analysis tools on a new MCP server. The local
// tool reads files from the host, so it is only registered when includeLocal
// is set.
func NewMCPServer(analyzer Analyzer, version string, includeLocal bool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serviceName,
		Version: version,
	}, nil)

	t := &tools{analyzer: analyzer}
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAnalyzeRemoteVideo,
		Description: "Analyze a video by URL with Gemini. YouTube links and direct video URLs are supported; some hosts such as Vimeo require Vertex AI.",
	}, t.analyzeRemote)

	if includeLocal {
		mcp.AddTool(server, &mcp.Tool{
			Name:        ToolAnalyzeLocalVideo,
			Description: "Upload a local video file to Gemini, wait for it to be processed, and analyze it. The upload is deleted afterwards.",
		}, t.analyzeLocal)
	}
	return server
}

// newRPCHandler serves MCP over streamable HTTP with one stateless session per
// request and plain JSON responses.
func newRPCHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: true,
	})
}

type tools struct {
	analyzer Analyzer
}

func (t *tools) analyzeRemote(ctx context.Context, req *mcp.CallToolRequest, in RemoteVideoInput) (*mcp.CallToolResult, AnalysisOutput, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("tool", ToolAnalyzeRemoteVideo).Str("videoUrl", in.VideoURL).Msg("Tool call")

	text, err := t.analyzer.AnalyzeRemoteVideo(ctx, chat.RemoteRequest{
		VideoURL: in.VideoURL,
		Prompt:   in.Prompt,
		Model:    in.Model,
	})
	if err != nil {
		logger.Error().Err(err).Str("tool", ToolAnalyzeRemoteVideo).Msg("Tool call failed")
		if chat.IsPermissionError(err) {
			return nil, AnalysisOutput{}, errors.New(assets.RenderPermissionGuidance(upstreamMessage(err)))
		}
		return nil, AnalysisOutput{}, err
	}
	return textResult(text), AnalysisOutput{Text: text}, nil
}

func (t *tools) analyzeLocal(ctx context.Context, req *mcp.CallToolRequest, in LocalVideoInput) (*mcp.CallToolResult, AnalysisOutput, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("tool", ToolAnalyzeLocalVideo).Str("filePath", in.FilePath).Msg("Tool call")

	text, err := t.analyzer.AnalyzeLocalVideo(ctx, chat.LocalRequest{
		FilePath: in.FilePath,
		Prompt:   in.Prompt,
		Model:    in.Model,
		MIMEType: in.MIMEType,
	})
	if err != nil {
		logger.Error().Err(err).Str("tool", ToolAnalyzeLocalVideo).Msg("Tool call failed")
		return nil, AnalysisOutput{}, err
	}
	return textResult(text), AnalysisOutput{Text: text}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// upstreamMessage returns the message of the error that caused a classified
// failure, falling back to the full error text.
func upstreamMessage(err error) string {
	var ae *chat.AnalysisError
	if errors.As(err, &ae) && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}
