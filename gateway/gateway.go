package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/anim"
	"github.com/zucenko/mazerace/model"
)

// ErrTransport marks failures to get any usable HTTP answer: connection
// errors, timeouts and non-2xx statuses.
var ErrTransport = errors.New("backend request failed")

const HeaderRequestID = "X-Request-ID"

// Outcome classifies a response that did arrive.
type Outcome int

const (
	Found Outcome = iota + 1
	NoSolution
	Malformed
)

func (o Outcome) Name() string {
	switch o {
	case Found:
		return "FOUND"
	case NoSolution:
		return "NO_SOLUTION"
	case Malformed:
		return "MALFORMED"
	default:
		return fmt.Sprintf("N/A(%d)", o)
	}
}

type Maze struct {
	Outcome Outcome
	Grid    *model.Grid
	// Sealed counts border cells that arrived free and were walled.
	Sealed int
	Reason string
}

type Solution struct {
	Outcome        Outcome
	Path           []model.Cell
	Visited        []model.Visited
	Length         int
	CoinsCollected int
	Cost           float64
	Reason         string
}

type RaceResult struct {
	Outcome  Outcome
	Timeline anim.Timeline
	Reason   string
}

type Client struct {
	base string
	http *http.Client
	log  *log.Entry
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log.WithField("component", "gateway"),
	}
}

func (c *Client) post(ctx context.Context, path, id string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id != "" {
		req.Header.Set(HeaderRequestID, id)
	}
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithField("path", path).Warnf("request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	c.log.WithFields(log.Fields{
		"path":   path,
		"id":     id,
		"status": resp.StatusCode,
		"bytes":  len(data),
		"took":   time.Since(started),
	}).Debug("backend answered")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s answered %d", ErrTransport, path, resp.StatusCode)
	}
	return data, nil
}

// Generate asks for a new maze. Symmetric mazes come from the race endpoint
// and honour rows and cols; the single endpoint picks its own size.
func (c *Client) Generate(ctx context.Context, id string, symmetric bool, rows, cols int) (Maze, error) {
	path := PathGenerate
	req := model.GenerateRequest{}
	if symmetric {
		path = PathGenerateSymmetric
		req = model.GenerateRequest{Rows: rows, Cols: cols}
	}
	data, err := c.post(ctx, path, id, req)
	if err != nil {
		return Maze{}, err
	}
	var resp model.GenerateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Maze{Outcome: Malformed, Reason: err.Error()}, nil
	}
	if len(resp.Grid) == 0 {
		return Maze{Outcome: NoSolution, Reason: "empty grid"}, nil
	}
	g, sealed, err := model.GridFromMatrix(resp.Grid)
	if err != nil {
		return Maze{Outcome: Malformed, Reason: err.Error()}, nil
	}
	if sealed > 0 {
		c.log.Warnf("maze arrived with %d open border cells, walled them", sealed)
	}
	return Maze{Outcome: Found, Grid: g, Sealed: sealed}, nil
}

// Solve runs one algorithm on the request's grid.
func (c *Client) Solve(ctx context.Context, id string, algo Algorithm, req model.SolveRequest) (Solution, error) {
	data, err := c.post(ctx, algo.Endpoint, id, req)
	if err != nil {
		return Solution{}, err
	}
	var resp model.SolveResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Solution{Outcome: Malformed, Reason: err.Error()}, nil
	}
	if len(resp.Path) == 0 {
		return Solution{Outcome: NoSolution, Reason: resp.Error}, nil
	}
	bounds := newBounds(req.Grid)
	if err := bounds.check(resp.Path); err != nil {
		return Solution{Outcome: Malformed, Reason: "path: " + err.Error()}, nil
	}
	for _, v := range resp.Visited {
		if err := bounds.check([]model.Cell{v.Cell}); err != nil {
			return Solution{Outcome: Malformed, Reason: "visited: " + err.Error()}, nil
		}
	}
	return Solution{
		Outcome:        Found,
		Path:           resp.Path,
		Visited:        resp.Visited,
		Length:         resp.Length,
		CoinsCollected: resp.CoinsCollected,
		Cost:           resp.Cost,
	}, nil
}

// Race fetches the whole two-agent timeline.
func (c *Client) Race(ctx context.Context, id string, req model.RaceRequest) (RaceResult, error) {
	data, err := c.post(ctx, PathCompetitive, id, req)
	if err != nil {
		return RaceResult{}, err
	}
	var resp model.RaceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return RaceResult{Outcome: Malformed, Reason: err.Error()}, nil
	}
	if len(resp.States) == 0 {
		return RaceResult{Outcome: NoSolution}, nil
	}
	bounds := newBounds(req.Grid)
	timeline := make(anim.Timeline, len(resp.States))
	for i, st := range resp.States {
		if st.Agent1 != nil && len(st.Agent1.Path) > 0 {
			timeline[i].Agent1 = st.Agent1.Path
		}
		if st.Agent2 != nil && len(st.Agent2.Path) > 0 {
			timeline[i].Agent2 = st.Agent2.Path
		}
		for _, p := range [][]model.Cell{timeline[i].Agent1, timeline[i].Agent2} {
			if err := bounds.check(p); err != nil {
				return RaceResult{Outcome: Malformed, Reason: fmt.Sprintf("state %d: %v", i, err)}, nil
			}
		}
	}
	if resp.Winner != "" {
		// the backend's own verdict counts steps, not replay ticks
		c.log.WithFields(log.Fields{
			"winner":       resp.Winner,
			"agent1_steps": resp.Agent1Steps,
			"agent2_steps": resp.Agent2Steps,
		}).Debug("backend race hint")
	}
	return RaceResult{Outcome: Found, Timeline: timeline}, nil
}

type bounds struct{ rows, cols int }

func newBounds(grid [][]int) bounds {
	b := bounds{rows: len(grid)}
	if len(grid) > 0 {
		b.cols = len(grid[0])
	}
	return b
}

func (b bounds) check(cells []model.Cell) error {
	for _, c := range cells {
		if c.Row < 0 || c.Col < 0 || c.Row >= b.rows || c.Col >= b.cols {
			return fmt.Errorf("cell %v outside %dx%d grid", c, b.rows, b.cols)
		}
	}
	return nil
}
