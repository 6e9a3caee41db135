package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/internal/listener"
)

var eventLabel = color.New(color.FgHiMagenta, color.Bold)
var idLabel = color.New(color.FgHiWhite, color.Faint)

// Predefined palette of distinct colors for event types
var colorPalette = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
}

// eventPrinter writes webhook deliveries to a terminal, giving each event
// type its own color. Deliveries arrive concurrently.
type eventPrinter struct {
	mu         sync.Mutex
	w          io.Writer
	start      time.Time
	typeColors map[string]*color.Color
	colorIndex int
	payloads   bool
}

func newEventPrinter(w io.Writer, payloads bool) *eventPrinter {
	return &eventPrinter{
		w:          w,
		start:      time.Now(),
		typeColors: map[string]*color.Color{},
		payloads:   payloads,
	}
}

// Print formats one delivery: a timestamp relative to the start of the
// listener, the event type, the resource it concerns and optionally the
// payload.
func (p *eventPrinter) Print(ev listener.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if jsonOutput {
		printJSON(p.w, map[string]any{
			"request_id": ev.RequestID,
			"type":       ev.Type,
			"received":   ev.Received.Format(time.RFC3339Nano),
			"payload":    jsonitor.RawMessage(payloadOrNull(ev.Payload)),
		})
		return
	}

	eventType := ev.Type
	if eventType == "" {
		eventType = "unknown"
	}
	c := p.typeColors[eventType]
	if c == nil {
		c = colorPalette[p.colorIndex%len(colorPalette)]
		p.typeColors[eventType] = c
		p.colorIndex++
	}

	relative := ev.Received.Sub(p.start)
	if relative < 0 {
		relative = 0
	}
	timestamp := fmt.Sprintf("[%02d:%02d.%03d]",
		int(relative.Minutes()),
		int(relative.Seconds())%60,
		relative.Milliseconds()%1000,
	)

	fmt.Fprint(p.w, "  "+timestamp+" ")
	c.Fprintf(p.w, "%s", eventType)
	if self := gjson.GetBytes(ev.Payload, "_links.self.href"); self.Exists() {
		fmt.Fprintf(p.w, " ▶ %s", self.String())
	}
	idLabel.Fprintf(p.w, " (%s)\n", ev.RequestID)

	if p.payloads && gjson.ValidBytes(ev.Payload) {
		fmt.Fprintln(p.w, "    "+indentMultiline(prettyJSON(ev.Payload), "    "))
	}
}

// Banner announces where the listener accepts deliveries.
func (p *eventPrinter) Banner(addr, path string) {
	if jsonOutput {
		return
	}
	eventLabel.Fprintf(p.w, "\nListening for webhooks on %s%s\n\n", addr, path)
}

func payloadOrNull(payload []byte) []byte {
	if !gjson.ValidBytes(payload) {
		return []byte("null")
	}
	return payload
}

// indentMultiline adds indentation to all lines except the first in a multiline string
func indentMultiline(text, indent string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return text
	}
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}
