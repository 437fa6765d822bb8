package queue

// NormalizeIndex validates target against a queue of length n and converts
// negative indices (-1 is the tail) to their positive form.
func NormalizeIndex(target, n int) (int, error) {
	if target < -n || target >= n {
		return 0, &OutOfRangePriorityError{Index: target, Length: n}
	}
	if target < 0 {
		target += n
	}
	return target, nil
}

// PlanMove computes the order that results from moving id to target. target
// must already be normalized and id must be a member of order.
//
// Index 0 prepends and n-1 appends. Any other target inserts the item
// immediately after the element occupying target before the move, so an item
// moving toward the head lands one past target. When that element is the item
// itself nothing changes.
func PlanMove(order []string, id string, target int) ([]string, bool) {
	n := len(order)
	rest := make([]string, 0, n)
	for _, entry := range order {
		if entry != id {
			rest = append(rest, entry)
		}
	}

	var next []string
	switch {
	case target == 0:
		next = append([]string{id}, rest...)
	case target == n-1:
		next = append(rest, id)
	default:
		neighbor := order[target]
		if neighbor == id {
			return order, false
		}
		next = make([]string, 0, n)
		for _, entry := range rest {
			next = append(next, entry)
			if entry == neighbor {
				next = append(next, id)
			}
		}
	}
	return next, !sameOrder(order, next)
}

// IndexIn performs the linear scan used by every backend to locate an id.
func IndexIn(order []string, id string) (int, bool) {
	for i, entry := range order {
		if entry == id {
			return i, true
		}
	}
	return -1, false
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
