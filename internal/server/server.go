package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/fishgrade/internal/database"
	"github.com/TobiSchelling/fishgrade/internal/interpret"
	"github.com/TobiSchelling/fishgrade/internal/organoleptic"
	"github.com/TobiSchelling/fishgrade/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// maxResponseBytes caps pasted AI responses.
const maxResponseBytes = 1 << 20

// Server is the HTTP server for analyses and samples.
type Server struct {
	db    *database.DB
	pipe  *pipeline.Pipeline
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB, pipe *pipeline.Pipeline) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"confidence": func(c *int) interpret.ConfidenceDisplay {
			return interpret.FormatConfidence(c)
		},
		"grade": func(p organoleptic.Parameters, param organoleptic.Parameter) int {
			return p.Get(param)
		},
		"score": func(f float64) string {
			return strconv.FormatFloat(f, 'f', 1, 64)
		},
		"field": func(p organoleptic.Parameter) string {
			return strings.ToLower(string(p))
		},
		"css": func(v any) string {
			return strings.ToLower(fmt.Sprint(v))
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "analysis.html", "samples.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pipe: pipe, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/analysis/", s.handleAnalysis)
	s.mux.HandleFunc("/samples", s.handleSamples)
	s.mux.HandleFunc("/samples/add", s.handleAddSample)
	s.mux.HandleFunc("/samples/", s.handleSampleAction)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	analyses, err := s.db.ListAnalyses(20)
	if err != nil {
		log.Printf("Error listing analyses: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, err := s.db.GetStats()
	if err != nil {
		log.Printf("Error reading stats: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Analyses": analyses,
		"Stats":    stats,
		"Error":    r.URL.Query().Get("error"),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxResponseBytes)
	text := r.FormValue("response")
	source := strings.TrimSpace(r.FormValue("source"))
	if strings.TrimSpace(text) == "" {
		redirectWithError(w, r, "/", "Paste an AI response to analyze")
		return
	}
	if source == "" {
		source = "web"
	}

	report, err := s.pipe.Analyze(source, text)
	if err != nil {
		log.Printf("Error analyzing response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/analysis/%d", report.ID), http.StatusFound)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/analysis/")
	parts := strings.SplitN(path, "/", 2)

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodPost || parts[1] != "delete" {
			http.NotFound(w, r)
			return
		}
		if _, err := s.db.DeleteAnalysis(id); err != nil {
			log.Printf("Error deleting analysis %d: %v", id, err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	rec, err := s.db.GetAnalysis(id)
	if err != nil {
		log.Printf("Error loading analysis %d: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "analysis.html", map[string]any{
		"Record":     rec,
		"Confidence": interpret.FormatConfidence(rec.Analysis.Confidence),
	})
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	category := organoleptic.Category(r.URL.Query().Get("category"))
	samples, err := s.db.ListSamples(category)
	if err != nil {
		log.Printf("Error listing samples: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "samples.html", map[string]any{
		"Samples":    samples,
		"Category":   category,
		"Categories": []organoleptic.Category{organoleptic.Prima, organoleptic.Baik, organoleptic.Sedang, organoleptic.Busuk, organoleptic.Invalid},
		"Parameters": organoleptic.AllParameters,
		"Error":      r.URL.Query().Get("error"),
	})
}

func (s *Server) handleAddSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/samples", http.StatusFound)
		return
	}

	var p organoleptic.Parameters
	for _, param := range organoleptic.AllParameters {
		v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(strings.ToLower(string(param)))))
		if err != nil {
			redirectWithError(w, r, "/samples", fmt.Sprintf("%s must be a whole number", param))
			return
		}
		p = p.With(param, v)
	}

	if _, err := s.pipe.Grade(strings.TrimSpace(r.FormValue("label")), p); err != nil {
		redirectWithError(w, r, "/samples", err.Error())
		return
	}
	http.Redirect(w, r, "/samples", http.StatusFound)
}

func (s *Server) handleSampleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/samples", http.StatusFound)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/samples/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Redirect(w, r, "/samples", http.StatusFound)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Redirect(w, r, "/samples", http.StatusFound)
		return
	}

	switch parts[1] {
	case "set":
		param, err := organoleptic.ParseParameter(r.FormValue("parameter"))
		if err != nil {
			redirectWithError(w, r, "/samples", err.Error())
			return
		}
		value, err := strconv.Atoi(strings.TrimSpace(r.FormValue("value")))
		if err != nil {
			redirectWithError(w, r, "/samples", "grade must be a whole number")
			return
		}
		if _, err := s.pipe.EditSample(id, param, value); err != nil {
			if !errors.Is(err, organoleptic.ErrOutOfRange) && !errors.Is(err, database.ErrNotFound) {
				log.Printf("Error editing sample %d: %v", id, err)
			}
			redirectWithError(w, r, "/samples", err.Error())
			return
		}
	case "delete":
		if _, err := s.db.DeleteSample(id); err != nil {
			log.Printf("Error deleting sample %d: %v", id, err)
		}
	}

	http.Redirect(w, r, "/samples", http.StatusFound)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, target, msg string) {
	http.Redirect(w, r, target+"?error="+url.QueryEscape(msg), http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, pipe *pipeline.Pipeline, port int) error {
	srv, err := New(db, pipe)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
