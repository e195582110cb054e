package mission

import "fmt"

// ExecutionOrder returns mission IDs in an order that respects
// dependencies. Among missions that are ready at the same time the one
// with the lower index goes first, so the order is stable.
func ExecutionOrder(b *Breakdown) ([]string, error) {
	index := make(map[string]int, len(b.Missions))
	for i, m := range b.Missions {
		index[m.MissionID] = i
	}

	indegree := make([]int, len(b.Missions))
	dependents := make([][]int, len(b.Missions))
	for i, m := range b.Missions {
		for _, dep := range m.Dependencies {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("mission %s depends on unknown mission %s", m.MissionID, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(b.Missions))
	order := make([]string, 0, len(b.Missions))
	for len(order) < len(b.Missions) {
		next := -1
		for i := range b.Missions {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("circular dependency detected among %d missions", len(b.Missions)-len(order))
		}

		done[next] = true
		order = append(order, b.Missions[next].MissionID)
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}

	return order, nil
}

// Waves groups missions into batches whose members have no dependencies
// on each other; each wave only depends on earlier waves.
func Waves(b *Breakdown) ([][]string, error) {
	order, err := ExecutionOrder(b)
	if err != nil {
		return nil, err
	}

	level := make(map[string]int, len(order))
	var waves [][]string
	for _, id := range order {
		m, _ := b.Mission(id)
		l := 0
		for _, dep := range m.Dependencies {
			if level[dep]+1 > l {
				l = level[dep] + 1
			}
		}
		level[id] = l
		if l == len(waves) {
			waves = append(waves, nil)
		}
		waves[l] = append(waves[l], id)
	}
	return waves, nil
}
