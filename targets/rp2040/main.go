//go:build rp2040 || rp2350

// Motion firmware for the RP2040. It answers the host line protocol
// over USB CDC and runs moves on the PIO pulse generator:
//
//	-> move <velocity> <target>
//	<- ok | error <message>
//	-> mode <microsteps>
//	<- ok | error <message>
//	-> status
//	<- moving <position> | idle <position>
package main

import (
	"machine"
	"strconv"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/francis-clairicia/stepper/core"
	"github.com/francis-clairicia/stepper/drivers/a4988"
	"github.com/francis-clairicia/stepper/drivers/gpio"
	"github.com/francis-clairicia/stepper/targets/pio"
	"github.com/francis-clairicia/stepper/timers"
)

const (
	stepPin = machine.GPIO2
	dirPin  = machine.GPIO3
)

// A4988 control lines, numbered for the gpio driver.
var boardPins = a4988.Pins{
	Step:   int(stepPin),
	Dir:    int(dirPin),
	Enable: int(machine.GPIO4),
	MS1:    int(machine.GPIO5),
	MS2:    int(machine.GPIO6),
	MS3:    int(machine.GPIO7),
}

var (
	train  *pio.PulseTrain
	driver *a4988.Driver
	move   *core.MoveTo
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{})

	var err error
	driver, err = a4988.New(gpio.Machine{}, boardPins)
	if err != nil {
		fatal("configure driver pins: " + err.Error())
	}

	// The pulse train takes over STEP and DIR after the plain GPIO
	// setup above.
	sm := rp2pio.PIO0.StateMachine(0)
	train, err = pio.NewPulseTrain(sm, stepPin, dirPin)
	if err != nil {
		fatal("load pulse train: " + err.Error())
	}

	line := make([]byte, 0, 64)
	for {
		// Keep the move progressing between characters.
		pollMove()

		b, err := machine.Serial.ReadByte()
		if err != nil {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		if b == '\r' {
			continue
		}
		if b != '\n' {
			if len(line) < cap(line) {
				line = append(line, b)
			}
			continue
		}
		handle(string(line))
		line = line[:0]
	}
}

func pollMove() {
	if move == nil {
		return
	}
	done, err := move.Poll()
	if err != nil || done {
		move = nil
	}
}

func handle(line string) {
	cmd, rest := split(line)
	switch cmd {
	case "move":
		handleMove(rest)
	case "mode":
		handleMode(rest)
	case "status":
		handleStatus()
	case "":
	default:
		reply("error unknown command " + cmd)
	}
}

func handleMove(args string) {
	velocityArg, targetArg := split(args)
	velocity, err := strconv.ParseInt(velocityArg, 10, 32)
	if err != nil || velocity <= 0 {
		reply("error bad velocity")
		return
	}
	target, err := strconv.ParseInt(targetArg, 10, 32)
	if err != nil {
		reply("error bad target")
		return
	}

	if move != nil {
		train.Stop()
	}
	move = core.NewMoveTo(train, core.Velocity(velocity), int32(target))

	// The first poll issues StartMove; report its outcome to the host.
	if _, err := move.Poll(); err != nil {
		move = nil
		reply("error " + err.Error())
		return
	}
	reply("ok")
}

func handleMode(args string) {
	microsteps, err := strconv.ParseUint(args, 10, 16)
	if err != nil {
		reply("error bad microstep count")
		return
	}
	if move != nil {
		reply("error busy")
		return
	}

	// Waits out the hold delay too, so the driver is fully settled by
	// the time the host sees the ok and issues a move.
	sw := core.NewModeSwitch(core.StepMode(microsteps), driver, timers.NewSystemTimer(0))
	if err := sw.WaitSettled(); err != nil {
		reply("error " + err.Error())
		return
	}
	reply("ok")
}

func handleStatus() {
	state := "idle"
	if move != nil {
		state = "moving"
	}
	reply(state + " " + strconv.FormatInt(int64(train.Position()), 10))
}

func split(s string) (head, tail string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func reply(line string) {
	machine.Serial.Write([]byte(line + "\n"))
}

func fatal(msg string) {
	for {
		reply("error " + msg)
		time.Sleep(time.Second)
	}
}
