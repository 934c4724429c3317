// ABOUTME: Realtime listener CLI command
// ABOUTME: Streams server-pushed call events to stdout until interrupted
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
	"github.com/fleetcall/dispatchctl/realtime"
)

// ListenCommand tails the realtime event channel. With --call it joins that
// call's room for per-turn conversation updates.
func ListenCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("listen", flag.ExitOnError)
	callID := fs.Int("call", 0, "Join a specific call's room")
	raw := fs.Bool("raw", false, "Print raw event payloads")
	_ = fs.Parse(args)

	if app.Session == nil {
		return fmt.Errorf("not logged in")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := realtime.NewListener(app.Config.SocketURL,
		realtime.WithToken(app.SocketToken()),
		realtime.WithLogger(app.Log))

	unsubscribe := listener.Subscribe("*", func(ev realtime.Event) {
		printEvent(app, ev, *raw)
	})
	defer unsubscribe()

	if err := listener.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", app.Config.SocketURL, err)
	}
	defer listener.Close()

	if *callID > 0 {
		if err := listener.JoinCallRoom(*callID); err != nil {
			return fmt.Errorf("failed to join call room: %w", err)
		}
		fmt.Printf("Listening for events on call #%d (Ctrl-C to stop)\n", *callID)
	} else {
		fmt.Println("Listening for dispatch events (Ctrl-C to stop)")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopped")
	return nil
}

func printEvent(app *App, ev realtime.Event, raw bool) {
	stamp := ev.ReceivedAt.Format("15:04:05")

	if raw {
		fmt.Printf("[%s] %s %s\n", stamp, ev.Name, string(ev.Data))
		return
	}

	switch ev.Name {
	case realtime.EventCallInitiated:
		var call models.Call
		if err := ev.Decode(&call); err == nil {
			fmt.Printf("[%s] call #%d initiated: %s / load %s\n",
				stamp, call.ID, call.DriverName, call.LoadNumber)
			_ = db.PutCall(app.DB, &call)
			return
		}
	case realtime.EventCallStatusUpdate, realtime.EventCallCompleted:
		var update models.CallStatusUpdate
		if err := ev.Decode(&update); err == nil {
			fmt.Printf("[%s] call #%d → %s\n", stamp, update.CallID, update.Status)
			_ = db.UpdateCallStatus(app.DB, &update)
			return
		}
	case realtime.EventConversationUpdate:
		var turn struct {
			CallID  int    `json:"call_id"`
			Speaker string `json:"speaker"`
			Message string `json:"message"`
		}
		if err := ev.Decode(&turn); err == nil {
			fmt.Printf("[%s] call #%d %s: %s\n", stamp, turn.CallID, turn.Speaker, turn.Message)
			return
		}
	case realtime.EventEmergencyDetected, realtime.EventEmergencyProtocol:
		var alert struct {
			CallID   int      `json:"call_id"`
			Keywords []string `json:"keywords,omitempty"`
		}
		if err := ev.Decode(&alert); err == nil {
			fmt.Printf("[%s] ⚠ EMERGENCY on call #%d (%s)\n", stamp, alert.CallID, ev.Name)
			return
		}
	}

	// Unknown or undecodable: show it rather than drop it
	fmt.Printf("[%s] %s %s\n", stamp, ev.Name, string(ev.Data))
}
