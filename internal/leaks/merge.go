package leaks

import (
	"strings"

	"github.com/google/uuid"

	"leakscan/internal/domain"
)

// mergeByID reconciles a revised list with a prior one. Returned items are
// authoritative for their ids and take the prior item's position; prior items
// that were neither returned nor retracted are carried forward unchanged;
// new items follow in the order returned.
func mergeByID[T any](prior, returned []T, retracted []string, id func(*T) string) []T {
	returnedAt := make(map[string]int, len(returned))
	for i := range returned {
		returnedAt[id(&returned[i])] = i
	}
	drop := make(map[string]bool, len(retracted))
	for _, r := range retracted {
		drop[r] = true
	}

	out := make([]T, 0, len(prior)+len(returned))
	used := make(map[int]bool, len(returned))
	for i := range prior {
		pid := id(&prior[i])
		if j, ok := returnedAt[pid]; ok {
			out = append(out, returned[j])
			used[j] = true
			continue
		}
		if drop[pid] {
			continue
		}
		out = append(out, prior[i])
	}
	for j := range returned {
		if !used[j] {
			out = append(out, returned[j])
		}
	}
	return out
}

// adoptPriorIDs gives a returned item the id of an unclaimed prior item with
// the same natural key when the model did not echo a known prior id. Each
// prior item is claimed at most once.
func adoptPriorIDs[T any](prior, returned []T, id, key func(*T) string, setID func(*T, string)) {
	claimed := make(map[string]bool, len(prior))
	known := make(map[string]bool, len(prior))
	for i := range prior {
		known[id(&prior[i])] = true
	}
	for j := range returned {
		if rid := id(&returned[j]); known[rid] {
			claimed[rid] = true
		}
	}

	for j := range returned {
		r := &returned[j]
		if known[id(r)] {
			continue
		}
		k := key(r)
		if k == "" {
			continue
		}
		for i := range prior {
			pid := id(&prior[i])
			if !claimed[pid] && key(&prior[i]) == k {
				setID(r, pid)
				claimed[pid] = true
				break
			}
		}
	}
}

// withStableIDs returns a copy of a client-supplied prior analysis in which
// every leak and expense has a unique, non-empty id.
func withStableIDs(prior *domain.LeakAnalysis) *domain.LeakAnalysis {
	cp := *prior
	cp.Leaks = append([]domain.LeakItem(nil), prior.Leaks...)
	cp.Expenses = append([]domain.ExpenseItem(nil), prior.Expenses...)

	seen := make(map[string]bool, len(cp.Leaks))
	for i := range cp.Leaks {
		if cp.Leaks[i].ID == "" || seen[cp.Leaks[i].ID] {
			cp.Leaks[i].ID = uuid.New().String()
		}
		seen[cp.Leaks[i].ID] = true
	}
	seen = make(map[string]bool, len(cp.Expenses))
	for i := range cp.Expenses {
		if cp.Expenses[i].ID == "" || seen[cp.Expenses[i].ID] {
			cp.Expenses[i].ID = uuid.New().String()
		}
		seen[cp.Expenses[i].ID] = true
	}
	return &cp
}

func naturalKey(parts ...string) string {
	for i := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(parts[i]))
	}
	if parts[len(parts)-1] == "" {
		return ""
	}
	return strings.Join(parts, "|")
}

func leakID(l *domain.LeakItem) string { return l.ID }

func setLeakID(l *domain.LeakItem, id string) { l.ID = id }

func leakKey(l *domain.LeakItem) string { return naturalKey(string(l.Type), l.Description) }

func expenseID(e *domain.ExpenseItem) string { return e.ID }

func setExpenseID(e *domain.ExpenseItem, id string) { e.ID = id }

func expenseKey(e *domain.ExpenseItem) string { return naturalKey(e.Category, e.Description) }

func mergeLeaks(prior, returned []domain.LeakItem, retracted []string) []domain.LeakItem {
	adoptPriorIDs(prior, returned, leakID, leakKey, setLeakID)
	return mergeByID(prior, returned, retracted, leakID)
}

func mergeExpenses(prior, returned []domain.ExpenseItem, retracted []string) []domain.ExpenseItem {
	adoptPriorIDs(prior, returned, expenseID, expenseKey, setExpenseID)
	return mergeByID(prior, returned, retracted, expenseID)
}
