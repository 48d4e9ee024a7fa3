package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nhdewitt/netscope/internal/protocol"
)

type reachabilityRequest struct {
	Targets []string `json:"targets"`
}

type portsRequest struct {
	Host            string `json:"host"`
	Ports           []int  `json:"ports"`
	IncludePublicIP bool   `json:"include_public_ip"`
}

type saveRequest struct {
	Name string `json:"name"`
}

type saveResponse struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, protocol.Request{Kind: protocol.KindInfo})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, protocol.Request{Kind: protocol.KindServices})
}

func (s *Server) handleReachability(w http.ResponseWriter, r *http.Request) {
	var body reachabilityRequest
	if err := decodeJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	targets := make([]string, len(body.Targets))
	for i, t := range body.Targets {
		targets[i] = strings.TrimSpace(t)
	}

	s.run(w, r, protocol.Request{Kind: protocol.KindReachability, Targets: targets})
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	var body portsRequest
	if err := decodeJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.run(w, r, protocol.Request{
		Kind:            protocol.KindPorts,
		Host:            strings.TrimSpace(body.Host),
		Ports:           body.Ports,
		IncludePublicIP: body.IncludePublicIP,
	})
}

// run executes req, records the report and writes it back.
func (s *Server) run(w http.ResponseWriter, r *http.Request, req protocol.Request) {
	report, err := s.Runner.Run(r.Context(), req)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	s.History.Add(report)
	s.log.Debug("report ready", zap.String("id", report.ID), zap.String("kind", string(report.Kind)))
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.History.Get(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.Text()))
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, ok := s.History.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}

	var body saveRequest
	if err := decodeJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := reportFileName(body.Name, id)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	path := filepath.Join(s.Config.ReportsDir, name)
	if err := s.Runner.SaveReport(report, path); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, saveResponse{ID: id, Path: path})
}
