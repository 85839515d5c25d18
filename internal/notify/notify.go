package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/mitchellh/colorstring"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeDanger  Type = "danger"
)

type Notification struct {
	Text  string
	Type  Type
	Title string
}

// Notifier surfaces a notification to the operator. Delivery is fire-and-forget.
type Notifier interface {
	Notify(n Notification)
}

type Terminal struct {
	out   io.Writer
	color bool
	bell  bool
	lock  sync.Mutex
}

func NewTerminal(out io.Writer, color bool, bell bool) *Terminal {
	return &Terminal{out: out, color: color, bell: bell}
}

var colors = map[Type]string{
	TypeSuccess: "green",
	TypeDanger:  "red",
}

func (t *Terminal) Notify(n Notification) {
	t.lock.Lock()
	defer t.lock.Unlock()

	title := fmt.Sprintf("[%s]", n.Title)
	if t.color {
		// only the color codes go through colorstring, backend text may contain brackets
		title = colorstring.Color(fmt.Sprintf("[bold][%s]", colors[n.Type])) + title + colorstring.Color("[reset]")
	}
	line := fmt.Sprintf("%s %s", title, n.Text)
	if t.bell && n.Type == TypeDanger {
		line = "\a" + line
	}

	fmt.Fprintln(t.out, line)
}
