package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/gateway"
	"github.com/zucenko/mazerace/model"
)

func NewFixtureServer(f *Fixtures) *FixtureServer {
	return &FixtureServer{
		Fixtures: f,
		Requests: make(chan FixtureRequest),
	}
}

// HandleGenerate serves /generate, or /generate_symmetric_maze when
// symmetric is set.
func (s *FixtureServer) HandleGenerate(symmetric bool) http.HandlerFunc {
	kind := REQ_GENERATE
	if symmetric {
		kind = REQ_GENERATE_SYMMETRIC
	}
	return s.handle(kind, func(r *http.Request) (FixtureRequest, error) {
		var body model.GenerateRequest
		if err := decode(r, &body); err != nil {
			return FixtureRequest{}, err
		}
		return FixtureRequest{Rows: body.Rows, Cols: body.Cols}, nil
	})
}

// HandleSolve serves /:algo.
func (s *FixtureServer) HandleSolve() http.HandlerFunc {
	return s.handle(REQ_SOLVE, func(r *http.Request) (FixtureRequest, error) {
		var body model.SolveRequest
		if err := decode(r, &body); err != nil {
			return FixtureRequest{}, err
		}
		return FixtureRequest{
			Algo:   way.Param(r.Context(), "algo"),
			Grid:   body.Grid,
			Points: map[model.Role]model.Cell{model.Start: body.Start, model.Goal: body.Goal},
		}, nil
	})
}

func (s *FixtureServer) HandleRace() http.HandlerFunc {
	return s.handle(REQ_RACE, func(r *http.Request) (FixtureRequest, error) {
		var body model.RaceRequest
		if err := decode(r, &body); err != nil {
			return FixtureRequest{}, err
		}
		return FixtureRequest{
			Grid: body.Grid,
			Points: map[model.Role]model.Cell{
				model.Start1: body.Starts[0],
				model.Start2: body.Starts[1],
				model.Goal:   body.Goal,
			},
		}, nil
	})
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s body: %w", r.URL.Path, err)
	}
	return nil
}

func (s *FixtureServer) handle(kind RequestKind, parse func(*http.Request) (FixtureRequest, error)) http.HandlerFunc {
	timeout := 200 * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		entry := log.WithFields(log.Fields{"kind": kind.Name(), "id": r.Header.Get(gateway.HeaderRequestID)})
		req, err := parse(r)
		if err != nil {
			entry.Warnf("bad request: %v", err)
			w.WriteHeader(FIXTURE_INVALIDE.ToHttp())
			return
		}
		req.Kind = kind
		req.Answer = make(chan FixtureAnswer, 1)

		select {
		case s.Requests <- req:
		case <-time.After(timeout):
			entry.Warn("Requests TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		var ans FixtureAnswer
		select {
		case ans = <-req.Answer:
		case <-time.After(timeout):
			entry.Warn("Answer TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		entry.Infof("answered %s", ans.ResponseCode.Name())
		if ans.ResponseCode != FIXTURE_READY {
			w.WriteHeader(ans.ResponseCode.ToHttp())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(HTTP_SUCCESS)
		if _, err := w.Write(ans.Body); err != nil {
			entry.Warnf("write failed: %v", err)
		}
	}
}

// Loop owns the fixtures and answers requests one at a time until ctx ends.
func (s *FixtureServer) Loop(ctx context.Context) {
	log.Printf("FixtureServer.Loop starting")
	for {
		select {
		case req := <-s.Requests:
			req.Answer <- s.answer(req)
		case <-ctx.Done():
			log.Printf("FixtureServer.Loop stopped")
			return
		}
	}
}

func (s *FixtureServer) answer(req FixtureRequest) FixtureAnswer {
	var doc interface{}
	switch req.Kind {
	case REQ_GENERATE:
		m := s.pick(0, 0)
		doc = model.GenerateResponse{Rows: len(m.Grid), Cols: len(m.Grid[0]), Grid: m.Grid}
	case REQ_GENERATE_SYMMETRIC:
		// the race page expects the bare matrix
		doc = s.pick(req.Rows, req.Cols).Grid
	case REQ_SOLVE:
		if _, ok := gateway.AlgorithmByKey(req.Algo); !ok {
			return FixtureAnswer{ResponseCode: FIXTURE_NOT_FOUND}
		}
		raw, reason := s.lookup(req, func(m Maze) (json.RawMessage, bool) {
			raw, ok := s.Fixtures.Solves[solveKey(m.Name, req.Algo)]
			return raw, ok
		})
		if raw != nil {
			return FixtureAnswer{ResponseCode: FIXTURE_READY, Body: raw}
		}
		doc = model.SolveResponse{Path: []model.Cell{}, Visited: []model.Visited{}, Error: reason}
	case REQ_RACE:
		raw, reason := s.lookup(req, func(m Maze) (json.RawMessage, bool) {
			raw, ok := s.Fixtures.Races[m.Name]
			return raw, ok
		})
		if raw != nil {
			return FixtureAnswer{ResponseCode: FIXTURE_READY, Body: raw}
		}
		log.Infof("no race fixture: %s", reason)
		doc = model.RaceResponse{States: []model.RaceStep{}}
	default:
		return FixtureAnswer{ResponseCode: FIXTURE_INVALIDE}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		log.Errorf("encode %s answer: %v", req.Kind.Name(), err)
		return FixtureAnswer{ResponseCode: FIXTURE_BROKEN}
	}
	return FixtureAnswer{ResponseCode: FIXTURE_READY, Body: body}
}

// pick rotates through the mazes, preferring one of the asked size.
func (s *FixtureServer) pick(rows, cols int) Maze {
	mazes := s.Fixtures.Mazes
	for i := range mazes {
		m := mazes[(s.next+i)%len(mazes)]
		if rows > 0 && cols > 0 && (len(m.Grid) != rows || len(m.Grid[0]) != cols) {
			continue
		}
		s.next = (s.next + i + 1) % len(mazes)
		return m
	}
	m := mazes[s.next]
	s.next = (s.next + 1) % len(mazes)
	return m
}

// lookup finds the maze the request was made on and the document recorded
// for it. A nil document comes with the reason there is none.
func (s *FixtureServer) lookup(req FixtureRequest, doc func(Maze) (json.RawMessage, bool)) (json.RawMessage, string) {
	for _, m := range s.Fixtures.Mazes {
		if !sameGrid(m.Grid, req.Grid) {
			continue
		}
		for role, want := range m.Points {
			if got, asked := req.Points[role]; asked && got != want {
				return nil, fmt.Sprintf("%s of maze %s is %v, not %v", role.Name(), m.Name, want, got)
			}
		}
		raw, ok := doc(m)
		if !ok {
			return nil, fmt.Sprintf("nothing recorded for maze %s", m.Name)
		}
		return raw, ""
	}
	return nil, "no fixture for this maze"
}

func sameGrid(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if len(a[r]) != len(b[r]) {
			return false
		}
		for c := range a[r] {
			if a[r][c] != b[r][c] {
				return false
			}
		}
	}
	return true
}

// Register mounts the backend contract on router.
func (s *FixtureServer) Register(router *way.Router) {
	router.HandleFunc("POST", gateway.PathGenerate, s.HandleGenerate(false))
	router.HandleFunc("POST", gateway.PathGenerateSymmetric, s.HandleGenerate(true))
	router.HandleFunc("POST", gateway.PathCompetitive, s.HandleRace())
	// registered last so the fixed paths above win
	router.HandleFunc("POST", "/:algo", s.HandleSolve())
}
