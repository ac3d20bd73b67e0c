package gateway

// Algorithm is one backend search the user can pick.
type Algorithm struct {
	Key      string
	Label    string
	Endpoint string
	// Color is the 0xRRGGBB used for the revealed path.
	Color uint32
}

var Algorithms = []Algorithm{
	{Key: "astar", Label: "A*", Endpoint: "/astar", Color: 0x2196f3},
	{Key: "bfs", Label: "BFS", Endpoint: "/bfs", Color: 0xff9800},
	{Key: "lrta", Label: "LRTA*", Endpoint: "/lrta", Color: 0x9c27b0},
	{Key: "onlinedfs", Label: "Online DFS", Endpoint: "/onlinedfs", Color: 0x4caf50},
	{Key: "dijkstra", Label: "Dijkstra", Endpoint: "/dijkstra", Color: 0x00ced1},
	{Key: "binary", Label: "Binary Backtracking", Endpoint: "/binary", Color: 0x008080},
	{Key: "bidirectional", Label: "Bidirectional Search", Endpoint: "/bidirectional", Color: 0xe53935},
}

func AlgorithmByKey(key string) (Algorithm, bool) {
	for _, a := range Algorithms {
		if a.Key == key {
			return a, true
		}
	}
	return Algorithm{}, false
}

const (
	PathGenerate          = "/generate"
	PathGenerateSymmetric = "/generate_symmetric_maze"
	PathCompetitive       = "/competitive"
)
