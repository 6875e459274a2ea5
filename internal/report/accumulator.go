package report

// UserMinutes is one user's running minute totals inside a single rollup.
type UserMinutes struct {
	Billed int
	Logged int
}

// UserLedger accumulates minutes per user id. Get inserts a zero record on
// first access so every accumulation site reads the same way instead of
// repeating presence checks.
type UserLedger map[int]*UserMinutes

func (l UserLedger) Get(userID int) *UserMinutes {
	if m, ok := l[userID]; ok {
		return m
	}
	m := &UserMinutes{}
	l[userID] = m
	return m
}

// CellLedger accumulates billed minutes per (row id, week number) cell for
// the weekly matrices.
type CellLedger map[int]map[int]int

func (l CellLedger) Add(rowID, week, minutes int) {
	row, ok := l[rowID]
	if !ok {
		row = make(map[int]int)
		l[rowID] = row
	}
	row[week] += minutes
}
