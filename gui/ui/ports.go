package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// PortsTab lists the system's serial ports and lets the operator
// connect to one by hand when discovery picks the wrong device.
type PortsTab struct {
	window   fyne.Window
	session  *session.Session
	onStatus func()

	ports       []serial.PortInfo
	portList    *widget.List
	selectedIdx int
}

// NewPortsTab creates a new ports tab
func NewPortsTab(window fyne.Window, sess *session.Session, onStatus func()) *PortsTab {
	return &PortsTab{
		window:      window,
		session:     sess,
		onStatus:    onStatus,
		selectedIdx: -1,
	}
}

// Build constructs the ports UI
func (p *PortsTab) Build() *fyne.Container {
	p.portList = widget.NewList(
		func() int {
			return len(p.ports)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id < len(p.ports) {
				info := p.ports[id]
				if info.IsUSB {
					label.SetText(fmt.Sprintf("%s (USB VID:%s PID:%s %s)",
						info.Name, info.VID, info.PID, info.Product))
				} else {
					label.SetText(info.Name)
				}
			}
		},
	)
	p.portList.OnSelected = func(id widget.ListItemID) {
		p.selectedIdx = id
	}

	refreshBtn := widget.NewButton("Refresh", p.refresh)

	connectBtn := widget.NewButton("Connect", func() {
		if p.selectedIdx < 0 || p.selectedIdx >= len(p.ports) {
			dialog.ShowInformation("No Selection", "Please select a port to connect to", p.window)
			return
		}
		name := p.ports[p.selectedIdx].Name
		go func() {
			err := p.session.Reconnect(name)
			fyne.Do(func() {
				if err != nil {
					showError(p.window, err)
				}
				p.onStatus()
			})
		}()
	})
	connectBtn.Importance = widget.HighImportance

	buttons := container.NewVBox(
		refreshBtn,
		connectBtn,
	)

	p.refresh()

	return container.NewBorder(
		container.NewVBox(
			widget.NewLabel(fmt.Sprintf("The controller identifies as USB vendor %04X", serial.VendorID)),
			widget.NewSeparator(),
		),
		nil,
		nil,
		buttons,
		container.NewScroll(p.portList),
	)
}

// refresh reloads the system port list.
func (p *PortsTab) refresh() {
	ports, err := serial.DetailedPorts()
	if err != nil {
		dialog.ShowError(err, p.window)
		return
	}
	p.ports = ports
	p.selectedIdx = -1
	if p.portList != nil {
		p.portList.Refresh()
	}
}
