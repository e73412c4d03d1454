package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// MainUI represents the main user interface
type MainUI struct {
	window      fyne.Window
	session     *session.Session
	measure     *MeasureTab
	ports       *PortsTab
	statusLabel *widget.Label
}

// NewMainUI creates a new main UI
func NewMainUI(window fyne.Window, sess *session.Session) *MainUI {
	ui := &MainUI{
		window:  window,
		session: sess,
	}

	ui.statusLabel = widget.NewLabel("Status: Disconnected")
	ui.measure = NewMeasureTab(window, sess, ui.updateStatus)
	ui.ports = NewPortsTab(window, sess, ui.updateStatus)

	return ui
}

// Build constructs the UI layout
func (m *MainUI) Build() *fyne.Container {
	tabs := container.NewAppTabs(
		container.NewTabItem("Measurement", m.measure.Build()),
		container.NewTabItem("Ports", m.ports.Build()),
	)

	m.window.SetCloseIntercept(m.confirmClose)

	return container.NewBorder(
		m.buildHeader(),
		m.buildFooter(),
		nil,
		nil,
		tabs,
	)
}

// ConnectOnStart discovers the controller and connects in the
// background so the window appears immediately.
func (m *MainUI) ConnectOnStart() {
	go func() {
		err := m.measure.connect()
		fyne.Do(func() {
			if err != nil {
				showError(m.window, err)
			}
			m.updateStatus()
		})
	}()
}

// buildHeader creates the header section
func (m *MainUI) buildHeader() *fyne.Container {
	title := widget.NewLabelWithStyle("Speed of Sound Measurement",
		fyne.TextAlignCenter,
		fyne.TextStyle{Bold: true})

	return container.NewVBox(
		title,
		widget.NewSeparator(),
	)
}

// buildFooter creates the footer section
func (m *MainUI) buildFooter() *fyne.Container {
	return container.NewVBox(
		widget.NewSeparator(),
		m.statusLabel,
	)
}

// updateStatus refreshes the footer from the session state.
func (m *MainUI) updateStatus() {
	text := "Status: Disconnected"
	if m.session.Connected() {
		text = "Status: Connected to " + m.session.PortName()
	}
	if m.session.Dirty() {
		text += "  |  unsaved changes"
	}
	m.statusLabel.SetText(text)
}

// confirmClose asks before discarding unsaved samples.
func (m *MainUI) confirmClose() {
	if !m.session.Dirty() {
		m.window.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Data",
		"The dataset has not been saved. Close anyway?",
		func(confirmed bool) {
			if confirmed {
				m.window.Close()
			}
		}, m.window)
}
