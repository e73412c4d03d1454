package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Daniel-Forbes-HWU/speed-of-sound/serial"
)

// Speed of sound at room temperature, used to synthesize plausible
// travel times.
const speedOfSoundCMPerSec = 34300.0

func main() {
	mode := flag.String("mode", "simulate", "Mode: simulate or probe")
	device := flag.String("device", "/dev/ttyUSB0", "Serial device")
	distance := flag.Float64("distance", 100, "Simulated speaker-microphone distance in cm")
	jitter := flag.Float64("jitter", 2, "Per-sample jitter percent")
	delay := flag.Duration("delay", 50*time.Millisecond, "Delay between simulated samples")
	reps := flag.Int("reps", 5, "Repetitions to request in probe mode")
	flag.Parse()

	switch *mode {
	case "simulate":
		simulate(*device, *distance, *jitter, *delay)
	case "probe":
		probe(*device, *reps)
	default:
		log.Fatal("Invalid mode. Use: simulate or probe")
	}
}

// simulate plays the controller's role: read a repetition count, answer
// with an acknowledgement and that many synthetic travel times. Wire it
// to the station through a pty or loopback cable.
func simulate(device string, distance, jitter float64, delay time.Duration) {
	link, err := serial.Open(device)
	if err != nil {
		log.Fatalf("Failed to open port: %v", err)
	}
	defer link.Close()

	fmt.Printf("Simulating controller on %s (distance %.1f cm)\n", device, distance)
	fmt.Println("Press Ctrl+C to stop")

	baseMicros := distance / speedOfSoundCMPerSec * 1e6

	for {
		line, err := link.ReadLine()
		if err != nil {
			log.Fatalf("Read error: %v", err)
		}
		if len(line) == 0 {
			continue
		}

		reps, err := strconv.Atoi(strings.TrimSpace(string(line)))
		if err != nil {
			// The firmware ignores anything that is not a number.
			continue
		}

		fmt.Printf("Request for %d samples\n", reps)
		if err := link.WriteLine("ok"); err != nil {
			log.Fatalf("Write error: %v", err)
		}

		for i := 0; i < reps; i++ {
			spread := baseMicros * jitter / 100
			value := int64(baseMicros + (rand.Float64()*2-1)*spread)
			if err := link.WriteLine(strconv.FormatInt(value, 10)); err != nil {
				log.Fatalf("Write error: %v", err)
			}
			time.Sleep(delay)
		}
	}
}

// probe plays the host's role against a real controller and prints the
// raw exchange.
func probe(device string, reps int) {
	link, err := serial.Open(device)
	if err != nil {
		log.Fatalf("Failed to open port: %v", err)
	}
	defer link.Close()

	fmt.Printf("Probing controller on %s with %d repetitions\n\n", device, reps)

	if err := link.FlushInput(); err != nil {
		log.Fatalf("Flush error: %v", err)
	}
	if err := link.WriteLine(strconv.Itoa(reps)); err != nil {
		log.Fatalf("Write error: %v", err)
	}

	for i := 0; i < reps+1; i++ {
		line, err := link.ReadLine()
		if err != nil {
			log.Fatalf("Read error: %v", err)
		}
		if len(line) == 0 {
			fmt.Printf("  [%d] (timeout)\n", i)
			continue
		}
		tag := "value"
		if i == 0 {
			tag = "ack"
		}
		fmt.Printf("  [%d] %s: %s\n", i, tag, strings.TrimSpace(string(line)))
	}

	fmt.Println("\nProbe complete")
}
