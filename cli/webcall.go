// ABOUTME: Web call CLI command
// ABOUTME: Runs a live audio call from the terminal mic and speakers
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fleetcall/dispatchctl/db"
	"github.com/fleetcall/dispatchctl/models"
	"github.com/fleetcall/dispatchctl/webcall"
)

// WebCallCommand initiates a web call and streams audio both ways until the
// call ends or the operator interrupts.
func WebCallCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("webcall", flag.ExitOnError)
	driver := fs.String("driver", "", "Driver name (required)")
	load := fs.String("load", "", "Load number (required)")
	agentID := fs.Int("agent", 0, "Agent config ID (required)")
	_ = fs.Parse(args)

	if *agentID == 0 {
		return fmt.Errorf("--agent is required")
	}

	client, err := app.RequireClient()
	if err != nil {
		return err
	}

	// Claim audio devices before dialing anything, so device problems never
	// leave a half-started call behind.
	audio, err := webcall.OpenAudio()
	if err != nil {
		return errors.New(webcall.MicGuidance(err))
	}
	defer audio.Close()

	ctx, cancel := commandContext()
	grant, err := client.InitiateWebCall(ctx, &models.CallInitiateRequest{
		DriverName:    *driver,
		LoadNumber:    *load,
		AgentConfigID: *agentID,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initiate web call: %w", err)
	}
	if err := db.PutCall(app.DB, &grant.Call); err != nil {
		app.Log.WithError(err).Warn("call cache update failed")
	}

	fmt.Printf("✓ Web call #%d created, connecting...\n", grant.Call.ID)

	callCtx, stopCall := context.WithCancel(context.Background())
	defer stopCall()

	session := webcall.NewSession(grant, audio,
		webcall.WithLogger(app.Log),
		webcall.WithStateFunc(func(state webcall.State, err error) {
			switch state {
			case webcall.StateConnected:
				fmt.Println("● Connected. Speak when ready.")
			case webcall.StateEnded:
				fmt.Println("○ Call ended")
			case webcall.StateError:
				fmt.Printf("✗ Call failed: %v\n", err)
			}
		}))

	if err := session.Start(callCtx); err != nil {
		return fmt.Errorf("failed to connect call audio: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-session.Done():
	case <-sigCh:
		fmt.Println("\nHanging up...")
		_ = session.Close()
		<-session.Done()
	}

	if session.State() == webcall.StateError {
		return fmt.Errorf("web call #%d did not complete", grant.Call.ID)
	}
	return nil
}
