package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop shows notifications on the machine running the process.
// Used by fastlogctl watch and by self-hosted single-user servers.
type Desktop struct {
	alert func(title, message string, icon any) error
}

// NewDesktop creates a Desktop notifier under appName.
func NewDesktop(appName string) *Desktop {
	beeep.AppName = appName
	return &Desktop{alert: beeep.Alert}
}

// Notify implements Notifier.
func (d *Desktop) Notify(_ context.Context, n Notification) error {
	if err := d.alert(n.Title, n.Body, ""); err != nil {
		return fmt.Errorf("desktop alert: %w", err)
	}
	return nil
}
