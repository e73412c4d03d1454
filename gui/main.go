package main

import (
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/gui/ui"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	sess := session.New(logger)

	myApp := app.New()
	myWindow := myApp.NewWindow("Speed of Sound")
	myWindow.Resize(fyne.NewSize(760, 540))

	mainUI := ui.NewMainUI(myWindow, sess)
	myWindow.SetContent(mainUI.Build())
	mainUI.ConnectOnStart()

	myWindow.ShowAndRun()
}
