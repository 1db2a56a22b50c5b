package paint

import "slices"

// Palette is ColorBrewer's qualitative Set2 scheme with six classes.
var Palette = []string{"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f"}

// ColorAssignment is one persisted category color.
type ColorAssignment struct {
	CategoryID string `json:"categoryId"`
	Color      string `json:"color"`
}

// NextColor returns the palette entry after color, wrapping around.
// Unknown or empty colors rotate to the first entry.
func NextColor(color string) string {
	i := slices.Index(Palette, color)
	return Palette[(i+1)%len(Palette)]
}

// Adjacency maps a category id to the ids of categories it visually touches
// in the rendered week grid.
type Adjacency map[string]map[string]struct{}

func (a Adjacency) add(from, to string) {
	if to == "" {
		return
	}
	a.ensure(from)[to] = struct{}{}
}

func (a Adjacency) ensure(id string) map[string]struct{} {
	set, ok := a[id]
	if !ok {
		set = make(map[string]struct{})
		a[id] = set
	}
	return set
}

// Neighbors reports the categories adjacent to id in sorted order.
func (a Adjacency) Neighbors(id string) []string {
	out := make([]string, 0, len(a[id]))
	for n := range a[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// BuildAdjacency walks the week-aligned range from startDate to endDate and
// records which categories touch. A top category touches its own half, the
// previous cell's bottom (half if present, else top) and, when it has no
// half, the next cell's top. A half category touches its own top and the
// next cell's top. Unparseable dates yield an empty map.
func BuildAdjacency(startDate, endDate string, days []Day) Adjacency {
	adj := make(Adjacency)
	dates, err := AlignedDates(startDate, endDate)
	if err != nil {
		return adj
	}

	byDate := make(map[string]*Day, len(days))
	for i := range days {
		byDate[days[i].Date] = &days[i]
	}
	seq := make([]*Day, len(dates))
	for i, d := range dates {
		if d != nil {
			seq[i] = byDate[FormatDate(*d)]
		}
	}

	for i, day := range seq {
		if day == nil {
			continue
		}
		var prev, next *Day
		if i > 0 {
			prev = seq[i-1]
		}
		if i+1 < len(seq) {
			next = seq[i+1]
		}

		if day.CategoryID != "" {
			adj.ensure(day.CategoryID)
			adj.add(day.CategoryID, day.HalfCategoryID)
			if prev != nil {
				if prev.HalfCategoryID != "" {
					adj.add(day.CategoryID, prev.HalfCategoryID)
				} else {
					adj.add(day.CategoryID, prev.CategoryID)
				}
			}
			if day.HalfCategoryID == "" && next != nil {
				adj.add(day.CategoryID, next.CategoryID)
			}
		}

		if day.HalfCategoryID != "" {
			adj.ensure(day.HalfCategoryID)
			adj.add(day.HalfCategoryID, day.CategoryID)
			if next != nil {
				adj.add(day.HalfCategoryID, next.CategoryID)
			}
		}
	}
	return adj
}

// AutoColor assigns each category a palette color so that adjacent
// categories differ where possible. It is a single greedy pass in category
// order with no backtracking: a painted category takes the first palette
// color not already used by one of its colored neighbors and falls back to
// Palette[index mod 6] when every color is taken. A category that appears on
// no day has no neighbors and takes Palette[index mod 6] directly. The result
// has one entry per category in input order.
func AutoColor(startDate, endDate string, days []Day, categories []Category) []ColorAssignment {
	adj := BuildAdjacency(startDate, endDate, days)
	return ColorGreedy(adj, categories)
}

// ColorGreedy runs the greedy coloring pass over a prebuilt adjacency map.
func ColorGreedy(adj Adjacency, categories []Category) []ColorAssignment {
	return FillColors(adj, categories, nil)
}

// FillColors runs the greedy pass but keeps every non-empty color in known.
// Only categories without one are picked, and they avoid the colors of all
// colored neighbors, including kept ones later in the order.
func FillColors(adj Adjacency, categories []Category, known map[string]string) []ColorAssignment {
	colorByID := make(map[string]string, len(categories))
	for id, c := range known {
		if c != "" {
			colorByID[id] = c
		}
	}
	out := make([]ColorAssignment, len(categories))

	for i, cat := range categories {
		if c := known[cat.ID]; c != "" {
			out[i] = ColorAssignment{CategoryID: cat.ID, Color: c}
			continue
		}

		color := Palette[i%len(Palette)]
		if neighbors, ok := adj[cat.ID]; ok {
			taken := make(map[string]bool, len(neighbors))
			for n := range neighbors {
				if c, ok := colorByID[n]; ok {
					taken[c] = true
				}
			}
			for _, c := range Palette {
				if !taken[c] {
					color = c
					break
				}
			}
		}

		colorByID[cat.ID] = color
		out[i] = ColorAssignment{CategoryID: cat.ID, Color: color}
	}
	return out
}
