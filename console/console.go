// Package console prints the user facing side of a simulated connection:
// status lines, received chunks as text and hex, and the closing message.
package console

import (
	"io"
	"net"

	"github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/color"
	"github.com/pkg/errors"

	"tcpsim/dump"
	"tcpsim/handler"
)

type role struct {
	peer     string
	userExit string
	eof      string // empty when end of input is reported as an error
}

var (
	listenerRole = role{
		peer:     "Client",
		userExit: "Closing connection.",
		eof:      "End of input. Closing connection.",
	}
	connectorRole = role{
		peer:     "Server",
		userExit: "Exiting.",
	}
)

// Console implements handler.ListenHandler for an interactive terminal.
type Console struct {
	color    *color.Color
	role     role
	prompt   bool
	prompted bool
}

func newConsole(w io.Writer, r role) *Console {
	c := color.New()
	c.SetOutput(w)
	return &Console{
		color: c,
		role:  r,
	}
}

func NewListener(w io.Writer) *Console  { return newConsole(w, listenerRole) }
func NewConnector(w io.Writer) *Console { return newConsole(w, connectorRole) }

// SetPrompt enables the "> " prompt, meant for when stdin is a terminal.
func (c *Console) SetPrompt(enabled bool) {
	c.prompt = enabled
}

func (c *Console) println(s string) {
	if c.prompted {
		c.color.Println()
		c.prompted = false
	}
	c.color.Println(s)
}

func (c *Console) OnListen(addr net.Addr) {
	c.color.Printf("Waiting for connection on %s...\n", addr)
}

func (c *Console) OnOpen(conn net.Conn) {
	if c.role == listenerRole {
		c.println(c.color.Green("Connected by " + conn.RemoteAddr().String()))
		return
	}
	c.println(c.color.Green("Connected to "+conn.RemoteAddr().String()) +
		". Type messages and press Enter to send.")
}

func (c *Console) OnRead(conn net.Conn, b []byte) {
	c.println(c.color.Cyan("Received ("+bytes.Format(int64(len(b)))+"): ") + dump.Text(b))
	c.println("Hex: " + c.color.Yellow(dump.Hex(b)))
}

func (c *Console) OnWrite(conn net.Conn, b []byte) {}

func (c *Console) Prompt() {
	if !c.prompt || c.prompted {
		return
	}
	c.color.Print("> ")
	c.prompted = true
}

func (c *Console) OnClose(conn net.Conn, state handler.State, err error) {
	switch state {
	case handler.StateClosedByUser:
		c.println(c.role.userExit)
	case handler.StateClosedByPeer:
		c.println(c.color.Yellow(c.role.peer + " disconnected."))
	case handler.StateClosedByEOF:
		if c.role.eof == "" {
			// the connector has no graceful end of input
			c.println(c.color.Red("An error occurred: end of input"))
			return
		}
		c.println(c.role.eof)
	case handler.StateClosedByInterrupt:
		c.println("Interrupted. Exiting.")
	case handler.StateClosedByError:
		var dialErr *handler.DialError
		if errors.As(err, &dialErr) && dialErr.Refused() {
			c.println(c.color.Red("Could not connect to " + dialErr.Addr + ". Is the server running?"))
			return
		}
		msg := "unknown error"
		if err != nil {
			msg = err.Error()
		}
		c.println(c.color.Red("An error occurred: " + msg))
	}
}
