package monitor

import (
	"sort"

	"console/internal/types"
)

// SortSessions orders sessions by most recent activity first. Activity is
// the last message time, falling back to the start time. Ties keep a
// deterministic order by id so repeated fetches render identically.
func SortSessions(sessions []*types.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessionLess(sessions[i], sessions[j])
	})
}

func sessionLess(left, right *types.Session) bool {
	if left == nil || right == nil {
		return left != nil
	}
	leftAt := left.ActivityAt()
	rightAt := right.ActivityAt()
	if !leftAt.Equal(rightAt.Time) {
		return leftAt.After(rightAt.Time)
	}
	return left.ID < right.ID
}
