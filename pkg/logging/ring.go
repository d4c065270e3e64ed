package logging

// ring is a growable circular queue of records, oldest first.
// It is not synchronized; Store guards it with its mutex.
type ring struct {
	buf  []*Record
	head int
	n    int
}

func (q *ring) len() int {
	return q.n
}

func (q *ring) push(r *Record) {
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = r
	q.n++
}

func (q *ring) pop() *Record {
	if q.n == 0 {
		return nil
	}
	r := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return r
}

// at returns the i-th oldest record.
func (q *ring) at(i int) *Record {
	return q.buf[(q.head+i)%len(q.buf)]
}

func (q *ring) grow() {
	size := max(2*len(q.buf), 8)
	buf := make([]*Record, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.at(i)
	}
	q.buf = buf
	q.head = 0
}
