package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/librarium-ai/librarium/internal/ctxutil"
	"github.com/librarium-ai/librarium/internal/docindex"
	"github.com/librarium-ai/librarium/internal/model"
	"github.com/librarium-ai/librarium/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcplib.NewTool("librarium_register_agent",
		mcplib.WithDescription("Register a new agent identity with Librarium. Returns the agent record and a one-time API key."),
		mcplib.WithString("name",
			mcplib.Required(),
			mcplib.Description("Unique agent name. Alphanumeric start, then alphanumerics, dots, underscores, or hyphens."),
		),
		mcplib.WithString("type",
			mcplib.Description("Identity type: agent, human, or service. Defaults to agent."),
		),
		mcplib.WithString("tags",
			mcplib.Description("Optional comma-separated tags."),
		),
	), s.handleRegisterAgent)

	s.mcpServer.AddTool(mcplib.NewTool("librarium_stats",
		mcplib.WithDescription("Operational counters: registered agents and recorded access events."),
		mcplib.WithReadOnlyHintAnnotation(true),
	), s.handleStats)

	s.mcpServer.AddTool(mcplib.NewTool("librarium_list_docs",
		mcplib.WithDescription("List documents the requester may access, optionally scoped to one corpus."),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithString("corpus",
			mcplib.Description("Corpus to list. Omit to list across all accessible corpora."),
		),
		mcplib.WithNumber("limit",
			mcplib.DefaultNumber(defaultPageSize),
			mcplib.Min(1),
			mcplib.Max(maxPageSize),
			mcplib.Description("Maximum number of documents to return."),
		),
		mcplib.WithNumber("offset",
			mcplib.DefaultNumber(0),
			mcplib.Min(0),
			mcplib.Description("Number of documents to skip."),
		),
	), s.handleListDocs)

	s.mcpServer.AddTool(mcplib.NewTool("librarium_get_doc",
		mcplib.WithDescription("Fetch one document by id in the requested format."),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithString("id",
			mcplib.Required(),
			mcplib.Description("Document id."),
		),
		mcplib.WithString("format",
			mcplib.Description("Rendering format: raw, plain, or outline. Defaults to raw."),
		),
	), s.handleGetDoc)

	s.mcpServer.AddTool(mcplib.NewTool("librarium_search_docs",
		mcplib.WithDescription("Lexical search over accessible documents, ranked by match count."),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithString("query",
			mcplib.Required(),
			mcplib.Description("Search query. Matching is case-insensitive."),
		),
		mcplib.WithString("corpus",
			mcplib.Description("Corpus to search. Omit to search across all accessible corpora."),
		),
		mcplib.WithNumber("limit",
			mcplib.DefaultNumber(defaultPageSize),
			mcplib.Min(1),
			mcplib.Max(maxPageSize),
			mcplib.Description("Maximum number of results to return."),
		),
		mcplib.WithNumber("offset",
			mcplib.DefaultNumber(0),
			mcplib.Min(0),
			mcplib.Description("Number of results to skip."),
		),
	), s.handleSearchDocs)

	s.mcpServer.AddTool(mcplib.NewTool("librarium_ask",
		mcplib.WithDescription("Answer a question from accessible documents: top sources with excerpts."),
		mcplib.WithReadOnlyHintAnnotation(true),
		mcplib.WithString("query",
			mcplib.Required(),
			mcplib.Description("Question to answer."),
		),
		mcplib.WithString("audience",
			mcplib.Description("Corpus to draw from. Omit to use all accessible corpora."),
		),
	), s.handleAsk)
}

func (s *Server) handleRegisterAgent(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := model.ValidateAgentName(name); err != nil {
		return errorResult(err.Error()), nil
	}

	agentType := request.GetString("type", string(model.AgentTypeAgent))
	if !model.ValidAgentType(model.AgentType(agentType)) {
		return errorResult(fmt.Sprintf("invalid type %q: must be agent, human, or service", agentType)), nil
	}

	var tags []string
	if raw := strings.TrimSpace(request.GetString("tags", "")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	agent, apiKey, err := registerAgent(ctx, s.store, name, model.AgentType(agentType), tags)
	if errors.Is(err, storage.ErrDuplicate) {
		return errorResult(fmt.Sprintf("agent name %q is already registered", name)), nil
	}
	if err != nil {
		s.logger.Error("register agent failed", "name", name, "error", err)
		return errorResult(fmt.Sprintf("registration failed: %v", err)), nil
	}

	out := map[string]any{
		"agent":   agent,
		"api_key": apiKey,
		"note":    "store the api_key now; it is not retrievable later",
	}
	return jsonResult(out)
}

func (s *Server) handleStats(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	out := map[string]any{"generated_at": time.Now().UTC()}

	agents := map[string]int64{}
	for _, t := range []model.AgentType{model.AgentTypeAgent, model.AgentTypeHuman, model.AgentTypeService} {
		n, err := s.store.CountAgents(ctx, string(t))
		if err != nil {
			return errorResult(fmt.Sprintf("stats unavailable: %v", err)), nil
		}
		agents[string(t)] = n
	}
	out["agents"] = agents

	total, err := s.store.CountAccessEvents(ctx, storage.AccessEventFilter{})
	if err != nil {
		return errorResult(fmt.Sprintf("stats unavailable: %v", err)), nil
	}
	ok := true
	allowed, err := s.store.CountAccessEvents(ctx, storage.AccessEventFilter{OK: &ok})
	if err != nil {
		return errorResult(fmt.Sprintf("stats unavailable: %v", err)), nil
	}
	out["access_events"] = map[string]int64{
		"total":   total,
		"allowed": allowed,
		"denied":  total - allowed,
	}

	idx := s.index.Index()
	out["documents"] = map[string]any{
		"total":   idx.Len(),
		"corpora": idx.Corpora(),
	}

	return jsonResult(out)
}

func (s *Server) handleListDocs(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ev, record := s.startEvent(ctx, "list_docs")
	defer record()

	corpus := strings.TrimSpace(request.GetString("corpus", ""))
	limit := clampLimit(request.GetInt("limit", defaultPageSize))
	offset := request.GetInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	idx := s.index.Index()
	allowed, denyReason := s.resolveScope(ctx, idx, corpus, ev)
	if allowed == nil && denyReason != "" {
		ev.Error = strptr(denyReason)
		return errorResult("access denied: " + denyReason), nil
	}

	page := idx.List(corpus, allowed, limit, offset)
	ev.OK = true
	ev.DocIDs = summaryIDs(page.Docs)
	return jsonResult(page)
}

func (s *Server) handleGetDoc(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ev, record := s.startEvent(ctx, "get_doc")
	defer record()

	id, err := request.RequireString("id")
	if err != nil {
		ev.Error = strptr(err.Error())
		return errorResult(err.Error()), nil
	}
	ev.DocIDs = []string{id}

	format := request.GetString("format", string(model.FormatRaw))
	if !model.ValidDocFormat(model.DocFormat(format)) {
		msg := fmt.Sprintf("invalid format %q: must be raw, plain, or outline", format)
		ev.Error = strptr(msg)
		return errorResult(msg), nil
	}
	ev.Format = strptr(format)

	idx := s.index.Index()
	doc, ok := idx.Lookup(id)
	if !ok {
		msg := fmt.Sprintf("document %q not found", id)
		ev.Error = strptr(msg)
		return errorResult(msg), nil
	}
	ev.Corpus = strptr(doc.Corpus)

	decision := s.engine.Enforce(ctx, ev.RequesterType, ev.RequesterID, doc.Corpus)
	if !decision.Allowed {
		ev.Error = strptr(decision.Reason)
		return errorResult("access denied: " + decision.Reason), nil
	}

	result, err := idx.Get(id, model.DocFormat(format))
	if err != nil {
		ev.Error = strptr(err.Error())
		return errorResult(err.Error()), nil
	}

	ev.OK = true
	return jsonResult(result)
}

func (s *Server) handleSearchDocs(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ev, record := s.startEvent(ctx, "search_docs")
	defer record()

	query, err := request.RequireString("query")
	if err != nil {
		ev.Error = strptr(err.Error())
		return errorResult(err.Error()), nil
	}
	ev.Query = strptr(query)

	corpus := strings.TrimSpace(request.GetString("corpus", ""))
	limit := clampLimit(request.GetInt("limit", defaultPageSize))
	offset := request.GetInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	idx := s.index.Index()
	allowed, denyReason := s.resolveScope(ctx, idx, corpus, ev)
	if allowed == nil && denyReason != "" {
		ev.Error = strptr(denyReason)
		return errorResult("access denied: " + denyReason), nil
	}

	page := idx.Search(query, corpus, allowed, limit, offset)
	ev.OK = true
	ev.DocIDs = summaryIDs(page.Docs)
	return jsonResult(page)
}

func (s *Server) handleAsk(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ev, record := s.startEvent(ctx, "ask")
	defer record()

	query, err := request.RequireString("query")
	if err != nil {
		ev.Error = strptr(err.Error())
		return errorResult(err.Error()), nil
	}
	ev.Query = strptr(query)

	audience := strings.TrimSpace(request.GetString("audience", ""))

	idx := s.index.Index()
	allowed, denyReason := s.resolveScope(ctx, idx, audience, ev)
	if allowed == nil && denyReason != "" {
		ev.Error = strptr(denyReason)
		return errorResult("access denied: " + denyReason), nil
	}

	pack := idx.Render(query, audience, allowed)
	ev.OK = true
	ev.DocIDs = append(ev.DocIDs, pack.Sources...)
	return jsonResult(pack)
}

// startEvent builds the audit event for a gated call and returns the closure
// that records it. Handlers mutate the event through the returned pointer;
// the deferred record fires exactly once per call.
func (s *Server) startEvent(ctx context.Context, source string) (*model.AccessEvent, func()) {
	rtype, rid := ctxutil.Requester(ctx)
	ev := &model.AccessEvent{
		RequesterType: rtype,
		RequesterID:   rid,
		SessionID:     sessionID(ctx),
		Source:        source,
	}
	return ev, func() {
		s.recorder.Record(ctx, *ev)
	}
}

// resolveScope evaluates policy for the request's corpus scope. With an
// explicit corpus it returns an allowed set of one or a denial reason. With
// no corpus it evaluates every known corpus and returns the accessible
// subset; when everything is denied the reason of the first corpus in sorted
// order is surfaced.
func (s *Server) resolveScope(ctx context.Context, idx *docindex.Index, corpus string, ev *model.AccessEvent) (map[string]bool, string) {
	if corpus != "" {
		ev.Corpus = &corpus
		decision := s.engine.Enforce(ctx, ev.RequesterType, ev.RequesterID, corpus)
		if !decision.Allowed {
			return nil, decision.Reason
		}
		return map[string]bool{corpus: true}, ""
	}

	allowed := map[string]bool{}
	firstDenial := ""
	for _, c := range idx.Corpora() {
		decision := s.engine.Enforce(ctx, ev.RequesterType, ev.RequesterID, c)
		if decision.Allowed {
			allowed[c] = true
		} else if firstDenial == "" {
			firstDenial = decision.Reason
		}
	}
	if len(allowed) == 0 && firstDenial != "" {
		return nil, firstDenial
	}
	return allowed, ""
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func summaryIDs(docs []docindex.DocSummary) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}

func strptr(s string) *string { return &s }

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encoding response: %v", err)), nil
	}
	return textResult(string(data)), nil
}
