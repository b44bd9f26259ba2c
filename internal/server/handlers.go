package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ppiankov/puppyjudge/internal/court"
	"github.com/ppiankov/puppyjudge/internal/model"
	"github.com/ppiankov/puppyjudge/internal/render"
	"github.com/ppiankov/puppyjudge/internal/square"
)

type sessionResponse struct {
	ID    string         `json:"id"`
	State court.Snapshot `json:"state"`
}

type verdictResponse struct {
	Verdict model.VerdictData `json:"verdict"`
	State   court.Snapshot    `json:"state"`
}

type personaRequest struct {
	Persona string `json:"persona" validate:"required,oneof=CUTE TOXIC cute toxic"`
}

type createSessionRequest struct {
	Persona string `json:"persona" validate:"omitempty,oneof=CUTE TOXIC cute toxic"`
}

type voteRequest struct {
	Side string `json:"side" validate:"required,oneof=user partner"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
	Persona string `json:"persona" validate:"omitempty,oneof=CUTE TOXIC cute toxic"`
}

type sessionCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"configured": s.app.Judge.Configured(),
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := s.decodeBody(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	sess := s.newSession(uuid.NewString())
	if req.Persona != "" {
		p, _ := model.ParsePersona(req.Persona)
		if err := sess.Court.SetPersona(p); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.Court.Snapshot()})
}

// withSession resolves {sessionID} before calling fn
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	sess, ok := s.lookupSession(chi.URLParam(r, "sessionID"))
	if !ok {
		writeDomainError(w, r, errSessionNotFound)
		return
	}
	fn(sess)
}

// stateAction runs a court event that returns only an error and replies with the new state
func (s *Server) stateAction(event func(*court.Court) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withSession(w, r, func(sess *session) {
			if err := event(sess.Court); err != nil {
				writeDomainError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Court.Snapshot()})
		})
	}
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.stateAction(func(*court.Court) error { return nil })(w, r)
}

func (s *Server) setPersona(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		var req personaRequest
		if err := s.decodeBody(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}
		p, _ := model.ParsePersona(req.Persona)
		if err := sess.Court.SetPersona(p); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Court.Snapshot()})
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		var req model.CaseData
		if err := s.decodeBody(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}
		v, err := sess.Court.Submit(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, verdictResponse{Verdict: *v, State: sess.Court.Snapshot()})
	})
}

func (s *Server) openAppeal(w http.ResponseWriter, r *http.Request) {
	s.stateAction((*court.Court).OpenAppeal)(w, r)
}

func (s *Server) cancelAppeal(w http.ResponseWriter, r *http.Request) {
	s.stateAction((*court.Court).CancelAppeal)(w, r)
}

func (s *Server) appeal(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		var req model.AppealData
		if err := s.decodeBody(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}
		v, err := sess.Court.Appeal(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, verdictResponse{Verdict: *v, State: sess.Court.Snapshot()})
	})
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	s.stateAction((*court.Court).Reset)(w, r)
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		pc, err := sess.Court.Publish(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, pc)
	})
}

func (s *Server) loadHistory(w http.ResponseWriter, r *http.Request) {
	s.stateAction(func(c *court.Court) error {
		_, err := c.LoadHistory(r.Context(), chi.URLParam(r, "historyID"))
		return err
	})(w, r)
}

func (s *Server) openSquare(w http.ResponseWriter, r *http.Request) {
	s.stateAction((*court.Court).OpenSquare)(w, r)
}

func (s *Server) selectCase(w http.ResponseWriter, r *http.Request) {
	s.stateAction(func(c *court.Court) error {
		_, err := c.SelectCase(r.Context(), chi.URLParam(r, "caseID"))
		return err
	})(w, r)
}

// voteSelected votes on the case the session has open
func (s *Server) voteSelected(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		var req voteRequest
		if err := s.decodeBody(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}
		if _, err := sess.Court.VoteSelected(r.Context(), model.Side(req.Side)); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Court.Snapshot()})
	})
}

// commentSelected comments on the open case in the session's persona style
func (s *Server) commentSelected(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		var req sessionCommentRequest
		if err := s.decodeBody(w, r, &req); err != nil {
			writeDomainError(w, r, err)
			return
		}
		if _, err := sess.Court.CommentSelected(r.Context(), req.Content); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.Court.Snapshot()})
	})
}

func (s *Server) backToSquare(w http.ResponseWriter, r *http.Request) {
	s.stateAction((*court.Court).BackToSquare)(w, r)
}

func (s *Server) leaveSquare(w http.ResponseWriter, r *http.Request) {
	s.stateAction((*court.Court).LeaveSquare)(w, r)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.History.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.app.History.Clear(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	item, err := s.app.History.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		doc := render.FromHistory(*item)
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(render.NewRenderer(true).Markdown(doc)))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.app.History.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSquare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := square.Filter{Sort: model.ParseSquareSort(q.Get("sort"))}
	if p := q.Get("persona"); p != "" {
		persona, ok := model.ParsePersona(p)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "unknown persona "+p)
			return
		}
		f.Persona = persona
	}

	cases, err := s.app.Square.Cases(r.Context(), f)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (s *Server) viewCase(w http.ResponseWriter, r *http.Request) {
	pc, err := s.app.Square.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	pc, err := s.app.Square.Vote(r.Context(), chi.URLParam(r, "id"), model.Side(req.Side))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}

func (s *Server) comment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	persona := model.PersonaCute
	if req.Persona != "" {
		persona, _ = model.ParsePersona(req.Persona)
	}
	pc, err := s.app.Square.Comment(r.Context(), chi.URLParam(r, "id"), req.Content, persona)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pc)
}
