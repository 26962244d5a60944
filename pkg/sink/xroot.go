package sink

import (
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// XRoot sets WM_NAME of the root window, which dwm shows as its status.
type XRoot struct {
	mu   sync.Mutex
	conn *xgb.Conn
	root xproto.Window
}

// NewXRoot connects to display, or $DISPLAY when empty.
func NewXRoot(display string) (*XRoot, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to X display %q", display)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	logrus.WithFields(logrus.Fields{
		"display": display,
		"root":    screen.Root,
	}).Info("connected to X server")
	return &XRoot{conn: conn, root: screen.Root}, nil
}

// Write replaces WM_NAME with text.
func (x *XRoot) Write(text string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn == nil {
		return errors.New("X connection closed")
	}

	b := []byte(text)
	err := xproto.ChangePropertyChecked(x.conn, xproto.PropModeReplace, x.root,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(b)), b).Check()
	if err != nil {
		return errors.Wrap(err, "set WM_NAME")
	}
	return nil
}

// Close closes the X connection.
func (x *XRoot) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn != nil {
		x.conn.Close()
		x.conn = nil
	}
	return nil
}
