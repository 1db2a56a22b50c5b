package paint

import (
	"math"
	"slices"
)

// SortCategories orders categories by the first date-sorted day that uses
// them as top category, then by the first day that uses them as half
// category. Categories that are never painted keep their relative order at
// the end. days must already be sorted by date.
func SortCategories(categories []Category, days []Day) []Category {
	firstTop := make(map[string]int)
	firstHalf := make(map[string]int)
	for i, d := range days {
		if _, ok := firstTop[d.CategoryID]; !ok && d.CategoryID != "" {
			firstTop[d.CategoryID] = i
		}
		if _, ok := firstHalf[d.HalfCategoryID]; !ok && d.HalfCategoryID != "" {
			firstHalf[d.HalfCategoryID] = i
		}
	}
	rank := func(m map[string]int, id string) int {
		if i, ok := m[id]; ok {
			return i
		}
		return math.MaxInt
	}

	out := slices.Clone(categories)
	slices.SortStableFunc(out, func(a, b Category) int {
		if c := sign(rank(firstTop, a.ID), rank(firstTop, b.ID)); c != 0 {
			return c
		}
		return sign(rank(firstHalf, a.ID), rank(firstHalf, b.ID))
	})
	return out
}

func sign(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CountByCategory counts the days that use each category as top category.
func CountByCategory(days []Day) map[string]int {
	counts := make(map[string]int)
	for _, d := range days {
		if d.CategoryID != "" {
			counts[d.CategoryID]++
		}
	}
	return counts
}

// Bottom is the category shown in the lower-right of a day cell: the half
// category when set, otherwise the top category.
func (d Day) Bottom() string {
	if d.HalfCategoryID != "" {
		return d.HalfCategoryID
	}
	return d.CategoryID
}
