package lib

import (
	"crypto/cipher"
	"sync"
)

// DefaultChunkSize is the number of verification cards sent to the nodes
// in one request.
const DefaultChunkSize = 100

// Chunk is the range [From, To) of the chunk with the given index.
type Chunk struct {
	Index int
	From  int
	To    int
}

// Chunks splits n items into chunks of at most size items. A size of zero
// or less uses DefaultChunkSize.
func Chunks(n, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []Chunk
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		chunks = append(chunks, Chunk{Index: len(chunks), From: from, To: to})
	}
	return chunks
}

type lockedStream struct {
	sync.Mutex
	stream cipher.Stream
}

// LockedStream returns a stream that can be shared by concurrent workers.
func LockedStream(s cipher.Stream) cipher.Stream {
	if _, ok := s.(*lockedStream); ok {
		return s
	}
	return &lockedStream{stream: s}
}

func (ls *lockedStream) XORKeyStream(dst, src []byte) {
	ls.Lock()
	defer ls.Unlock()
	ls.stream.XORKeyStream(dst, src)
}
