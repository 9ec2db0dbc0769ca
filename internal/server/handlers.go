package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/noticeboard/internal/action"
	"github.com/leapstack-labs/noticeboard/internal/authz"
	"github.com/leapstack-labs/noticeboard/internal/domain"
	"github.com/leapstack-labs/noticeboard/pkg/core"
	"github.com/leapstack-labs/noticeboard/pkg/store"
)

// envelope is the body of every action response.
type envelope struct {
	Data  any         `json:"data"`
	Meta  *store.Meta `json:"meta"`
	Error string      `json:"error,omitempty"`
	Kind  core.Kind   `json:"kind,omitempty"`
}

// ActionInfo describes a registered action.
type ActionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Protection  string `json:"protection"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listActions(w http.ResponseWriter, _ *http.Request) {
	actions := s.dispatcher.Registry().Actions()
	out := make([]ActionInfo, 0, len(actions))
	for _, a := range actions {
		out = append(out, ActionInfo{Name: a.Name, Description: a.Description, Protection: a.Protection.String()})
	}
	s.writeJSON(w, http.StatusOK, envelope{Data: out})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	id := chi.URLParam(r, "id")

	in, err := readInput(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rc := s.requestContext(r)
	reply, err := s.dispatcher.Dispatch(r.Context(), rc, name, id, in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if sess, ok := reply.Data.(domain.Session); ok {
		s.saveToken(w, r, sess.Token)
	}
	s.writeJSON(w, http.StatusOK, envelope{Data: reply.Data, Meta: reply.Meta, Error: reply.Error})
}

// requestContext resolves the caller from the bearer header, falling back to
// the session cookie.
func (s *Server) requestContext(r *http.Request) action.RequestContext {
	rc := action.RequestContext{
		Settings: s.settings,
		Logger:   s.logger.With(slog.String("request_id", requestID(r))),
	}

	token := authz.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if sess, err := s.sessionStore.Get(r, sessionName); err == nil {
			token, _ = sess.Values[sessionTokenKey].(string)
		}
	}
	if token == "" {
		return rc
	}

	caller, err := s.tokens.Parse(token)
	if err != nil {
		rc.TokenErr = err
		return rc
	}
	rc.Caller = caller
	return rc
}

func (s *Server) saveToken(w http.ResponseWriter, r *http.Request, token string) {
	sess, _ := s.sessionStore.Get(r, sessionName)
	sess.Values[sessionTokenKey] = token
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("failed to save session", "error", err)
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.sessionStore.Get(r, sessionName)
	delete(sess.Values, sessionTokenKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("failed to clear session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// readInput collects the action input: the JSON object body of a POST, or
// the query parameters of a GET.
func readInput(r *http.Request) (action.Input, error) {
	in := action.Input{}
	if r.Method == http.MethodGet {
		for key, values := range r.URL.Query() {
			if len(values) == 1 {
				in[key] = values[0]
				continue
			}
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			in[key] = list
		}
		return in, nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return action.Input{}, nil
		}
		return nil, core.BadRequest("request body must be a JSON object: %v", err)
	}
	if in == nil {
		in = action.Input{}
	}
	return in, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := core.KindOf(err)
	if kind == "" {
		s.logger.Error("request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, envelope{Error: "internal error"})
		return
	}
	s.writeJSON(w, core.HTTPStatus(kind), envelope{Error: core.MessageOf(err), Kind: kind})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
