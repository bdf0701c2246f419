package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type prompt struct {
	text    string
	confirm bool
	reply   chan bool
}

type promptMsg prompt

// Notifier shows alerts and confirmations as modal dialogs. Alert and
// Confirm block the calling goroutine until the dialog is answered, so they
// must never be called from Update. After Close they return immediately and
// Confirm reports false.
type Notifier struct {
	requests chan prompt
	done     chan struct{}
	once     sync.Once
}

func NewNotifier() *Notifier {
	return &Notifier{
		requests: make(chan prompt),
		done:     make(chan struct{}),
	}
}

func (n *Notifier) Alert(msg string) {
	n.ask(msg, false)
}

func (n *Notifier) Confirm(msg string) bool {
	return n.ask(msg, true)
}

func (n *Notifier) ask(text string, confirm bool) bool {
	p := prompt{text: text, confirm: confirm, reply: make(chan bool, 1)}
	select {
	case n.requests <- p:
	case <-n.done:
		return false
	}
	select {
	case ok := <-p.reply:
		return ok
	case <-n.done:
		return false
	}
}

func (n *Notifier) Close() {
	n.once.Do(func() { close(n.done) })
}

// wait delivers the next dialog to the program.
func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-n.requests:
			return promptMsg(p)
		case <-n.done:
			return nil
		}
	}
}
