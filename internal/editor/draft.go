package editor

import "sync"

// Draft holds the text being edited. There is one writer; any number of
// readers may poll Text or Subscribe to changes.
type Draft struct {
	mu     sync.Mutex
	text   string
	nextID int
	subs   map[int]chan string
}

func NewDraft(initial string) *Draft {
	return &Draft{text: initial, subs: make(map[int]chan string)}
}

func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Set replaces the text and notifies subscribers. Slow subscribers only
// ever see the latest value.
func (d *Draft) Set(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.text = text
	for _, ch := range d.subs {
		select {
		case <-ch:
		default:
		}
		ch <- text
	}
}

// Subscribe returns a channel that receives the text after every Set,
// plus a func that stops delivery and closes the channel.
func (d *Draft) Subscribe() (<-chan string, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	ch := make(chan string, 1)
	d.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
			close(ch)
		})
	}
}
