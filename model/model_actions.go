package model

import "sort"

func NewEmptyBoard(rows, cols int) *Board {
	return NewBoard(NewGrid(rows, cols))
}

func NewBoard(g *Grid) *Board {
	return &Board{
		Grid:   g,
		coins:  make(map[Cell]struct{}),
		points: make(map[Role]Cell),
	}
}

// Replace installs a new grid and drops coins and points, which belong to
// the previous maze.
func (b *Board) Replace(g *Grid) {
	b.Grid = g
	b.coins = make(map[Cell]struct{})
	b.points = make(map[Role]Cell)
}

// Clear resets to an empty walled grid of the same size.
func (b *Board) Clear() {
	b.Replace(NewGrid(b.Grid.Rows, b.Grid.Cols))
}

// ToggleWall flips a cell. A cell that becomes Wall loses its coin and any
// role assigned to it.
func (b *Board) ToggleWall(c Cell) bool {
	if !b.Grid.Toggle(c) {
		return false
	}
	if b.Grid.IsWall(c) {
		delete(b.coins, c)
		for role, p := range b.points {
			if p == c {
				delete(b.points, role)
			}
		}
	}
	return true
}

// CoinAllowed reports whether c may hold a coin.
func (b *Board) CoinAllowed(c Cell) bool {
	if !b.Grid.InBounds(c) || b.Grid.IsWall(c) {
		return false
	}
	_, occupied := b.RoleAt(c)
	return !occupied
}

// ToggleCoin adds or removes a coin. Walls, starts and the goal are refused.
func (b *Board) ToggleCoin(c Cell) bool {
	if !b.CoinAllowed(c) {
		return false
	}
	if _, found := b.coins[c]; found {
		delete(b.coins, c)
	} else {
		b.coins[c] = struct{}{}
	}
	return true
}

func (b *Board) HasCoin(c Cell) bool {
	_, found := b.coins[c]
	return found
}

// Coins returns the coin set in row-major order.
func (b *Board) Coins() []Cell {
	coins := make([]Cell, 0, len(b.coins))
	for c := range b.coins {
		coins = append(coins, c)
	}
	sort.Slice(coins, func(i, j int) bool {
		if coins[i].Row != coins[j].Row {
			return coins[i].Row < coins[j].Row
		}
		return coins[i].Col < coins[j].Col
	})
	return coins
}

// SetPoint assigns a role. The cell must be Free and the goal must differ
// from every start. A coin on the cell is removed.
func (b *Board) SetPoint(role Role, c Cell) bool {
	if !b.Grid.InBounds(c) || b.Grid.IsWall(c) {
		return false
	}
	if role == Goal {
		for _, s := range []Role{Start1, Start2} {
			if p, ok := b.points[s]; ok && p == c {
				return false
			}
		}
	} else if p, ok := b.points[Goal]; ok && p == c {
		return false
	}
	b.points[role] = c
	delete(b.coins, c)
	return true
}

func (b *Board) Point(role Role) (Cell, bool) {
	c, ok := b.points[role]
	return c, ok
}

func (b *Board) ClearPoint(role Role) {
	delete(b.points, role)
}

// RoleAt reports the first role assigned to c, in Start1, Start2, Goal order.
func (b *Board) RoleAt(c Cell) (Role, bool) {
	for _, role := range []Role{Start1, Start2, Goal} {
		if p, ok := b.points[role]; ok && p == c {
			return role, true
		}
	}
	return 0, false
}

// Violations lists broken structural invariants. An empty result means the
// board is consistent.
func (b *Board) Violations() []string {
	var out []string
	g := b.Grid
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			cell := Cell{r, c}
			if g.IsBorder(cell) && !g.IsWall(cell) {
				out = append(out, "border cell "+cell.String()+" is free")
			}
		}
	}
	for c := range b.coins {
		if g.IsWall(c) {
			out = append(out, "coin on wall "+c.String())
		}
		if role, ok := b.RoleAt(c); ok {
			out = append(out, "coin on "+role.Name()+" "+c.String())
		}
	}
	goal, hasGoal := b.points[Goal]
	for role, p := range b.points {
		if g.IsWall(p) {
			out = append(out, role.Name()+" on wall "+p.String())
		}
		if hasGoal && role != Goal && p == goal {
			out = append(out, role.Name()+" equals goal "+p.String())
		}
	}
	return out
}
