package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// showError surfaces a core failure with guidance on the next action.
func showError(window fyne.Window, err error) {
	var advice string
	switch {
	case errors.Is(err, serial.ErrPortBusy):
		advice = "Close the application holding the port, then press Reconnect."
	case errors.Is(err, serial.ErrConnection):
		advice = "Check the controller's cabling and power, then press Reconnect."
	case errors.Is(err, serial.ErrCommunication):
		advice = "The controller may have been unplugged. Press Reconnect to try again."
	case errors.Is(err, session.ErrTimeout):
		advice = "Reset the controller hardware, then measure again."
	case errors.Is(err, session.ErrProtocol):
		advice = "The controller sent unexpected data. Reset the hardware and measure again."
	case errors.Is(err, session.ErrNotConnected):
		advice = "Press Reconnect before measuring."
	default:
		advice = "See the log for details."
	}

	dialog.ShowError(fmt.Errorf("%v\n\n%s", err, advice), window)
}
