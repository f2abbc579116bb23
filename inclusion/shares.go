package inclusion

// The per-share header reserves a one-byte info byte (carrying the
// app version) on every share, plus a 4-byte big-endian sequence length on
// the first share of a blob only.
const (
	infoByteSize      = 1
	sequenceLenSize   = 4
	firstShareReserve = infoByteSize + sequenceLenSize
	contShareReserve  = infoByteSize
)

// ToShares deterministically splits a blob's data into fixed-size EDS
// shares. The first share carries a 4-byte big-endian total length prefix;
// every share carries a 1-byte info byte encoding the app version's low
// byte, matching the "info byte per share" layout real DA shares use.
// ToShares never fails for well-formed blobs (app version is the only
// thing that would make conversion format-dependent, and here it only
// changes the info byte), but returns a *ShareConversionError for a
// pathologically oversized blob that cannot be represented in a single
// share's length prefix.
func (b *Blob) ToShares() ([][]byte, error) {
	if len(b.Data) > 1<<32-1 {
		return nil, &ShareConversionError{Reason: "blob data exceeds maximum representable length"}
	}

	info := byte(b.AppVersion)
	first := make([]byte, 0, ShareSize)
	first = append(first, info)
	n := uint32(len(b.Data))
	first = append(first, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))

	avail := ShareSize - firstShareReserve
	data := b.Data
	var chunk []byte
	if len(data) < avail {
		chunk = data
		data = nil
	} else {
		chunk = data[:avail]
		data = data[avail:]
	}
	first = append(first, chunk...)
	first = padTo(first, ShareSize)

	shares := [][]byte{first}
	for len(data) > 0 {
		avail = ShareSize - contShareReserve
		share := make([]byte, 0, ShareSize)
		share = append(share, info)
		if len(data) < avail {
			share = append(share, data...)
			data = nil
		} else {
			share = append(share, data[:avail]...)
			data = data[avail:]
		}
		shares = append(shares, padTo(share, ShareSize))
	}
	if len(b.Data) == 0 {
		// Still emit the single (padded) first share: a zero-length blob
		// occupies exactly one share.
	}
	return shares, nil
}

func padTo(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}
