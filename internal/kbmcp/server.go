// Package kbmcp exposes the knowledge base and the lead count as MCP tools.
package kbmcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lead-assistant/internal/knowledge"
)

const (
	ToolSearchKnowledge = "search_knowledge"
	ToolContactsCount   = "contacts_count"
)

type SearchParams struct {
	Query string `json:"query" mcp:"question or keywords to look up in the knowledge base"`
}

type CountParams struct{}

type Searcher interface {
	Search(query string) (knowledge.Hit, bool)
}

type Counter interface {
	Count() int
}

type Server struct {
	kb       Searcher
	contacts Counter
}

func New(kb Searcher, contacts Counter) *Server {
	return &Server{kb: kb, contacts: contacts}
}

// Register adds the tools to an MCP server.
func (s *Server) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchKnowledge,
		Description: "Looks up prices, services, FAQ and company information in the static knowledge base",
	}, s.SearchKnowledge)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolContactsCount,
		Description: "Returns how many leads have been captured so far",
	}, s.ContactsCount)
}

func (s *Server) SearchKnowledge(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[SearchParams]) (*mcp.CallToolResultFor[any], error) {
	query := params.Arguments.Query
	if query == "" {
		return textResult("❌ query is required", true), nil
	}
	hit, ok := s.kb.Search(query)
	if !ok {
		return textResult("Nothing found in the knowledge base", false), nil
	}
	res := textResult(hit.Text, false)
	res.Meta = map[string]any{"topic": string(hit.Topic)}
	return res, nil
}

func (s *Server) ContactsCount(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[CountParams]) (*mcp.CallToolResultFor[any], error) {
	n := s.contacts.Count()
	res := textResult(fmt.Sprintf("%d", n), false)
	res.Meta = map[string]any{"count": n}
	return res, nil
}

func textResult(text string, isErr bool) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: isErr,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
