package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/model"
	"github.com/gorilla/mux"
)

// maxBodySize caps request bodies
const maxBodySize = 64 << 10

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.GetTasks()
	if err != nil {
		s.internalError(w, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, "get task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var n model.NewTask
	if err := decodeBody(w, r, &n); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.store.CreateTask(n)
	if err != nil {
		s.storeError(w, "create task", err)
		return
	}
	s.logger.Info("task created", "task_id", task.ID, "status", string(task.Status), "priority", task.Priority)
	s.hub.Invalidate(task.ID)
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch model.TaskPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "empty patch")
		return
	}

	task, err := s.store.UpdateTask(id, patch)
	if err != nil {
		s.storeError(w, "update task", err)
		return
	}
	s.logger.Info("task updated", "task_id", id, "patch", patch.String())
	s.hub.Invalidate(id)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteTask(id); err != nil {
		s.storeError(w, "delete task", err)
		return
	}
	s.logger.Info("task deleted", "task_id", id)
	s.hub.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.store.GetAreas()
	if err != nil {
		s.internalError(w, "list areas", err)
		return
	}
	if areas == nil {
		areas = []model.Area{}
	}
	writeJSON(w, http.StatusOK, areas)
}

func (s *Server) createArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	area, err := s.store.CreateArea(req.Name, req.Color)
	if err != nil {
		s.internalError(w, "create area", err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) archiveArea(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.ArchiveArea(id); err != nil {
		s.areaError(w, "archive area", err)
		return
	}
	s.logger.Info("area archived", "area_id", id)
	s.hub.Invalidate("")
	w.WriteHeader(http.StatusNoContent)
}

// deleteArea removes an area; its tasks move to the inbox
func (s *Server) deleteArea(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteArea(id); err != nil {
		s.areaError(w, "delete area", err)
		return
	}
	s.logger.Info("area deleted", "area_id", id)
	s.hub.Invalidate("")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	s.hub.serve(conn)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// storeError maps store errors onto status codes
func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, model.ErrUnknownStatus),
		errors.Is(err, model.ErrInvalidPriority),
		errors.Is(err, model.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.internalError(w, op, err)
	}
}

func (s *Server) areaError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "area not found")
	case errors.Is(err, db.ErrInboxArea):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.internalError(w, op, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
