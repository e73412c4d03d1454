package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
	"github.com/Daniel-Forbes-HWU/speed-of-sound/session"
)

// MeasureTab is the measurement and dataset UI
type MeasureTab struct {
	window   fyne.Window
	session  *session.Session
	onStatus func()

	repsEntry        *widget.Entry
	distanceEntry    *widget.Entry
	temperatureEntry *widget.Entry
	resultLabel      *widget.Label
	sampleList       *widget.List
	measureBtn       *widget.Button

	samples     []session.Sample
	selectedIdx int
}

// NewMeasureTab creates a new measurement tab
func NewMeasureTab(window fyne.Window, sess *session.Session, onStatus func()) *MeasureTab {
	return &MeasureTab{
		window:      window,
		session:     sess,
		onStatus:    onStatus,
		selectedIdx: -1,
	}
}

// Build constructs the measurement UI
func (t *MeasureTab) Build() *fyne.Container {
	t.repsEntry = widget.NewEntry()
	t.repsEntry.SetText("5")

	t.distanceEntry = widget.NewEntry()
	t.distanceEntry.SetPlaceHolder(session.DistancePrompt)

	t.temperatureEntry = widget.NewEntry()
	t.temperatureEntry.SetPlaceHolder(session.TemperaturePrompt)

	form := widget.NewForm(
		widget.NewFormItem("Repetitions (1-50)", t.repsEntry),
		widget.NewFormItem("Distance (cm)", t.distanceEntry),
		widget.NewFormItem("Temperature (°C)", t.temperatureEntry),
	)

	t.measureBtn = widget.NewButton("Measure", t.runMeasurement)
	t.measureBtn.Importance = widget.HighImportance

	t.resultLabel = widget.NewLabel("")
	t.resultLabel.Wrapping = fyne.TextWrapWord

	t.sampleList = widget.NewList(
		func() int {
			return len(t.samples)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id < len(t.samples) {
				s := t.samples[id]
				label.SetText(fmt.Sprintf("#%d   %s °C   %s cm   %d us",
					s.ID, s.Temperature, s.Distance, s.TimeMicros))
			}
		},
	)
	t.sampleList.OnSelected = func(id widget.ListItemID) {
		t.selectedIdx = id
	}

	deleteBtn := widget.NewButton("Delete Selected", t.deleteSelected)
	clearBtn := widget.NewButton("Clear All", t.clearAll)
	clearBtn.Importance = widget.DangerImportance
	saveBtn := widget.NewButton("Save CSV", t.saveCSV)
	reconnectBtn := widget.NewButton("Reconnect", t.reconnect)

	buttons := container.NewVBox(
		deleteBtn,
		clearBtn,
		widget.NewSeparator(),
		saveBtn,
		reconnectBtn,
	)

	return container.NewBorder(
		container.NewVBox(
			form,
			t.measureBtn,
			t.resultLabel,
			widget.NewSeparator(),
		),
		nil,
		nil,
		buttons,
		container.NewScroll(t.sampleList),
	)
}

// runMeasurement validates the form and runs one batch on a worker
// goroutine so the window stays responsive during the exchange.
func (t *MeasureTab) runMeasurement() {
	reps, err := strconv.Atoi(t.repsEntry.Text)
	if err != nil || reps < 1 || reps > session.MaxRepetitions {
		dialog.ShowError(fmt.Errorf("repetitions must be a whole number between 1 and %d",
			session.MaxRepetitions), t.window)
		return
	}

	// An untouched entry still shows its placeholder; the core maps
	// the prompt text to the Un-Labeled sentinel.
	distance := t.distanceEntry.Text
	if distance == "" {
		distance = session.DistancePrompt
	}
	temperature := t.temperatureEntry.Text
	if temperature == "" {
		temperature = session.TemperaturePrompt
	}

	t.measureBtn.Disable()
	go func() {
		times, err := t.session.Measure(reps, distance, temperature)

		// Widgets may only be touched from the UI thread.
		fyne.Do(func() {
			t.measureBtn.Enable()
			if err != nil {
				showError(t.window, err)
				t.onStatus()
				return
			}

			sum := session.Summarize(times)
			result := fmt.Sprintf("Collected %d samples: mean %.1f us (min %d, max %d, stddev %.1f)",
				sum.Count, sum.MeanUS, sum.MinUS, sum.MaxUS, sum.StdDev)
			if cm, err := strconv.ParseFloat(distance, 64); err == nil && cm > 0 {
				result += fmt.Sprintf("\nEstimated speed of sound: %.1f m/s",
					session.SpeedOfSound(cm, sum.MeanUS))
			}
			t.resultLabel.SetText(result)
			t.refresh()
		})
	}()
}

// deleteSelected removes the selected sample from the dataset.
func (t *MeasureTab) deleteSelected() {
	if t.selectedIdx < 0 || t.selectedIdx >= len(t.samples) {
		dialog.ShowInformation("No Selection", "Please select a sample to delete", t.window)
		return
	}
	t.session.DeleteSamples([]int64{t.samples[t.selectedIdx].ID})
	t.selectedIdx = -1
	t.sampleList.UnselectAll()
	t.refresh()
}

// clearAll empties the dataset after confirmation.
func (t *MeasureTab) clearAll() {
	dialog.ShowConfirm("Clear Data", "Delete all collected samples?", func(confirmed bool) {
		if confirmed {
			t.session.Clear()
			t.selectedIdx = -1
			t.sampleList.UnselectAll()
			t.resultLabel.SetText("")
			t.refresh()
		}
	}, t.window)
}

// saveCSV prompts for a destination and exports the dataset.
func (t *MeasureTab) saveCSV() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.window)
			return
		}
		if writer == nil {
			// Cancelled; nothing is written.
			dialog.ShowInformation("Export", "No destination chosen, data not saved", t.window)
			return
		}
		defer writer.Close()

		if err := t.session.Export(writer); err != nil {
			dialog.ShowError(fmt.Errorf("failed to save data: %w", err), t.window)
			return
		}
		dialog.ShowInformation("Export", "Data saved to "+writer.URI().Name(), t.window)
		t.onStatus()
	}, t.window)
}

// reconnect reopens the connection, discovering the controller again.
func (t *MeasureTab) reconnect() {
	go func() {
		err := t.connect()
		fyne.Do(func() {
			if err != nil {
				showError(t.window, err)
			}
			t.onStatus()
		})
	}()
}

// connect discovers the controller by USB vendor ID and opens it.
func (t *MeasureTab) connect() error {
	name, err := serial.Discover()
	if err != nil {
		return err
	}
	return t.session.Reconnect(name)
}

// refresh reloads the sample list from the session.
func (t *MeasureTab) refresh() {
	t.samples = t.session.Samples()
	t.sampleList.Refresh()
	t.onStatus()
}
