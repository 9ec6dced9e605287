// Package webui serves analysis results over HTTP so a parsed binary can be
// explored from a browser or script.
package webui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/rustwasm/twiggy-sub000/pkg/errors"

	"github.com/rustwasm/twiggy-sub000/internal/analyze"
	"github.com/rustwasm/twiggy-sub000/internal/ir"
	"github.com/rustwasm/twiggy-sub000/internal/options"
	"github.com/rustwasm/twiggy-sub000/pkg/utils"
)

// Server serves JSON analyses over one parsed graph.
type Server struct {
	graph  *ir.Graph
	binary string
	logger utils.Logger

	// Analyses populate the graph's lazy caches in place, so they must
	// not run concurrently.
	mu sync.Mutex
}

// NewServer creates a server for the given graph.
func NewServer(graph *ir.Graph, binary string, logger utils.Logger) *Server {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Server{graph: graph, binary: binary, logger: logger}
}

// analysisNames lists the analyses the server can run. Diff needs a second
// graph and is not served.
var analysisNames = []string{"top", "dominators", "paths", "monos", "garbage"}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyses", s.handleList)
	mux.HandleFunc("/api/analysis/", s.handleAnalysis)
	return mux
}

// ListenAndServe serves on the given address until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("serving analyses of %s on %s", s.binary, addr)
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	return server.ListenAndServe()
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	names := make([]string, len(analysisNames))
	for i, name := range analysisNames {
		names[i] = strconv.Quote(name)
	}
	fmt.Fprintf(w, `{"binary":%s,"analyses":[%s]}`,
		strconv.Quote(s.binary), strings.Join(names, ","))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/analysis/")

	result, err := s.run(name, r)
	if err != nil {
		s.logger.Warn("analysis %s failed: %v", name, err)
		status := http.StatusInternalServerError
		if apperrors.GetErrorCode(err) == apperrors.CodeLookupError {
			status = http.StatusNotFound
		}
		http.Error(w, apperrors.GetErrorMessage(err), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := result.EmitJSON(s.graph, w); err != nil {
		s.logger.Error("emitting %s: %v", name, err)
	}
}

// run executes the named analysis with options taken from the query string.
func (s *Server) run(name string, r *http.Request) (analyze.Emit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := r.URL.Query()
	maxItems := func(def uint32) uint32 {
		if v, err := strconv.ParseUint(query.Get("max_items"), 10, 32); err == nil {
			return uint32(v)
		}
		return def
	}

	switch name {
	case "top":
		opts := options.NewTop()
		opts.MaxItems = maxItems(100)
		opts.Retained = query.Get("retained") == "true"
		return analyze.Top(s.graph, opts)
	case "dominators":
		opts := options.NewDominators()
		return analyze.Dominators(s.graph, opts)
	case "paths":
		opts := options.NewPaths()
		if items := query["item"]; len(items) > 0 {
			opts.Functions = items
		}
		return analyze.Paths(s.graph, opts)
	case "monos":
		return analyze.Monos(s.graph, options.NewMonos())
	case "garbage":
		opts := options.NewGarbage()
		opts.MaxItems = maxItems(opts.MaxItems)
		return analyze.Garbage(s.graph, opts)
	default:
		return nil, apperrors.Newf(apperrors.CodeLookupError, "no analysis named %q", name)
	}
}
