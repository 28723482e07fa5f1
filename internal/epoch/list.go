package epoch

const batchSize = 32

// labelDelete is one batch of retired items sharing the epoch of the most
// recent addition.
type labelDelete[T any] struct {
	nodes [batchSize]T
	count int
	epoch uint64
	next  *labelDelete[T]
}

type deletionList[T any] struct {
	head *labelDelete[T]
	// spare holds emptied batches for reuse.
	spare *labelDelete[T]
	size  int
}

func (l *deletionList[T]) add(item T, epoch uint64) {
	label := l.head
	if label == nil || label.count == batchSize {
		if l.spare != nil {
			label = l.spare
			l.spare = label.next
		} else {
			label = &labelDelete[T]{}
		}
		label.count = 0
		label.next = l.head
		l.head = label
	}
	label.nodes[label.count] = item
	label.count++
	label.epoch = epoch
	l.size++
}

func (l *deletionList[T]) remove(label, prev *labelDelete[T]) {
	if prev == nil {
		l.head = label.next
	} else {
		prev.next = label.next
	}
	l.size -= label.count

	var zero T
	for i := 0; i < label.count; i++ {
		label.nodes[i] = zero
	}
	label.count = 0
	label.next = l.spare
	l.spare = label
}
