package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/model"
)

// Load reads every maze under dir/mazes and the canned answers under
// dir/solve and dir/race.
func Load(dir string) (*Fixtures, error) {
	mazes, err := loadMazes(filepath.Join(dir, "mazes"))
	if err != nil {
		return nil, err
	}
	if len(mazes) == 0 {
		return nil, fmt.Errorf("no mazes in %s", dir)
	}
	f := &Fixtures{
		Mazes:  mazes,
		Solves: make(map[string]json.RawMessage),
		Races:  make(map[string]json.RawMessage),
	}
	solves, err := loadDocs(filepath.Join(dir, "solve"), func(raw []byte) error {
		var doc model.SolveResponse
		return json.Unmarshal(raw, &doc)
	})
	if err != nil {
		return nil, err
	}
	for name, raw := range solves {
		// simple.astar -> maze "simple", algorithm "astar"
		dot := strings.LastIndex(name, ".")
		if dot <= 0 {
			log.Warnf("solve fixture %q has no algorithm suffix, skipped", name)
			continue
		}
		f.Solves[solveKey(name[:dot], name[dot+1:])] = raw
	}
	if f.Races, err = loadDocs(filepath.Join(dir, "race"), func(raw []byte) error {
		var doc model.RaceResponse
		return json.Unmarshal(raw, &doc)
	}); err != nil {
		return nil, err
	}
	log.Infof("fixtures loaded: %d mazes, %d solves, %d races", len(f.Mazes), len(f.Solves), len(f.Races))
	return f, nil
}

func solveKey(maze, algo string) string { return maze + "/" + algo }

func loadMazes(dir string) ([]Maze, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	mazes := make([]Maze, 0, len(files))
	for _, name := range files {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		grid, points, err := read(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		mazes = append(mazes, Maze{
			Name:   strings.TrimSuffix(filepath.Base(name), ".txt"),
			Grid:   grid,
			Points: points,
		})
	}
	return mazes, nil
}

// loadDocs returns the *.json files of dir keyed by base name. A missing
// dir simply has no documents.
func loadDocs(dir string, check func([]byte) error) (map[string]json.RawMessage, error) {
	docs := make(map[string]json.RawMessage)
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		raw, err := ioutil.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := check(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs[strings.TrimSuffix(filepath.Base(name), ".json")] = raw
	}
	return docs, nil
}

// read parses one ASCII maze: '#' is a wall, '.' or ' ' is free and the
// markers S, T and G are free cells holding start 1, start 2 and the goal.
func read(reader io.Reader) (grid [][]int, points map[model.Role]model.Cell, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	grid = make([][]int, 0)
	points = make(map[model.Role]model.Cell)
	markers := map[rune]model.Role{'S': model.Start1, 'T': model.Start2, 'G': model.Goal}

	for scanner.Scan() {
		s := strings.TrimRight(scanner.Text(), "\r")
		if s == "" {
			continue
		}
		row := len(grid)
		line := make([]int, 0, len(s))
		for col, char := range []rune(s) {
			switch char {
			case '#':
				line = append(line, int(model.Wall))
			case '.', ' ':
				line = append(line, int(model.Free))
			case 'S', 'T', 'G':
				role := markers[char]
				if _, dup := points[role]; dup {
					return nil, nil, fmt.Errorf("line %d: second %c marker", row+1, char)
				}
				points[role] = model.Cell{Row: row, Col: col}
				line = append(line, int(model.Free))
			default:
				return nil, nil, fmt.Errorf("line %d: unexpected %q", row+1, char)
			}
		}
		if row > 0 && len(line) != len(grid[0]) {
			return nil, nil, fmt.Errorf("line %d: %d cells, want %d", row+1, len(line), len(grid[0]))
		}
		grid = append(grid, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	g, sealed, err := model.GridFromMatrix(grid)
	if err != nil {
		return nil, nil, err
	}
	if sealed > 0 {
		log.Warnf("maze border had %d open cells, walled them", sealed)
	}
	for role, p := range points {
		if g.IsWall(p) {
			return nil, nil, fmt.Errorf("%s marker %v sits on the border", role.Name(), p)
		}
	}
	return g.Matrix(), points, nil
}
