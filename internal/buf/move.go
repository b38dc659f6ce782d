package buf

// Move copies the n bytes at b[src:src+n] to b[dst:dst+n] where the two
// ranges may overlap. Both ranges must lie inside b.
//
// When dst > src the bytes are moved tail to head, when dst < src head to
// tail. Each individual copy covers at most |dst-src| bytes so source and
// destination of a single copy never overlap.
func Move(b []byte, dst, src, n int) {
	if n <= 0 || dst == src {
		return
	}
	gap := dst - src
	if gap < 0 {
		gap = -gap
	}
	if gap >= n {
		copy(b[dst:dst+n], b[src:src+n])
		return
	}

	if dst > src {
		// Forward shift: walk from the tail toward the head.
		for end := n; end > 0; end -= gap {
			start := end - gap
			if start < 0 {
				start = 0
			}
			copy(b[dst+start:dst+end], b[src+start:src+end])
		}
		return
	}

	// Backward shift: walk from the head toward the tail.
	for start := 0; start < n; start += gap {
		end := start + gap
		if end > n {
			end = n
		}
		copy(b[dst+start:dst+end], b[src+start:src+end])
	}
}
