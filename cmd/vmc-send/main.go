// Command vmc-send sends /VMC/Ext/Con button reports to a vmc-keymap server.
// It is meant for checking bindings without a motion capture rig.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/skypro1111/vmc-keymap/internal/osc"
	"github.com/skypro1111/vmc-keymap/internal/vmc"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:39600", "Server UDP address")
	button := flag.String("button", "ClickBbutton", "Button name")
	left := flag.Bool("left", false, "Report the left-hand controller")
	active := flag.Int("active", 1, "Active flag (1 = pressed)")
	bundle := flag.Bool("bundle", false, "Wrap the report in a bundle")
	flag.Parse()

	data, err := buildReport(*button, int32(*active), *left, *bundle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
		os.Exit(1)
	}

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sent %s %s (active=%d, left=%t, %d bytes)\n", vmc.Address, *button, *active, *left, len(data))
}

// buildReport encodes one controller report with zero axis values
func buildReport(button string, active int32, left, bundle bool) ([]byte, error) {
	var isLeft int32
	if left {
		isLeft = 1
	}

	msg, err := osc.AppendMessage(nil, vmc.Address,
		active, button, isLeft, int32(0), int32(0),
		float32(0), float32(0), float32(0),
	)
	if err != nil {
		return nil, err
	}

	if bundle {
		// Time tag 1 means "immediately".
		return osc.AppendBundle(nil, 1, msg), nil
	}
	return msg, nil
}
