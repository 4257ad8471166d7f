// stepperctl moves a stepper motor: it loads the machine configuration,
// switches the driver to the configured microstep mode and runs a move
// to the requested step position. The motor is driven either from the
// local GPIO header or, with -remote, by motion firmware over serial.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/francis-clairicia/stepper/core"
	"github.com/francis-clairicia/stepper/drivers/a4988"
	"github.com/francis-clairicia/stepper/drivers/gpio"
	"github.com/francis-clairicia/stepper/host"
	"github.com/francis-clairicia/stepper/host/serial"
	"github.com/francis-clairicia/stepper/motion"
	"github.com/francis-clairicia/stepper/timers"
)

var (
	configPath = flag.String("config", "stepper.yaml", "YAML machine configuration file")
	mock       = flag.Bool("mock", false, "use an in-memory GPIO driver instead of the hardware header")
	remote     = flag.Bool("remote", false, "drive the motor through motion firmware on the configured serial device")
	velocity   = flag.Int("velocity", 0, "override max velocity in steps per second")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <target-step>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	target, err := strconv.ParseInt(flag.Arg(0), 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad target step %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}

	cfg, err := host.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	run := runLocal
	if *remote {
		run = runRemote
	}
	if err := run(cfg, int32(target)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func maxVelocity(cfg *host.Config) core.Velocity {
	if *velocity > 0 {
		return core.Velocity(*velocity)
	}
	return core.Velocity(cfg.Motor.MaxVelocity)
}

// runLocal drives a step-stick board wired to this machine's GPIO
// header.
func runLocal(cfg *host.Config, target int32) error {
	var g gpio.Driver
	if *mock {
		g = gpio.NewMemory()
	} else {
		rpi, err := gpio.OpenRPi()
		if err != nil {
			return fmt.Errorf("open GPIO header: %w", err)
		}
		g = rpi
	}
	defer g.Close()

	driver, err := a4988.New(g, a4988.Pins{
		Step:   cfg.Motor.StepPin,
		Dir:    cfg.Motor.DirPin,
		Enable: cfg.Motor.EnablePin,
		MS1:    cfg.Motor.MS1Pin,
		MS2:    cfg.Motor.MS2Pin,
		MS3:    cfg.Motor.MS3Pin,
	})
	if err != nil {
		return err
	}

	timer := timers.NewSystemTimer(1_000_000)

	mode := core.StepMode(cfg.Motor.StepMode)
	fmt.Printf("switching driver to %d microsteps per step\n", mode)
	// WaitSettled, not Wait: the hold countdown must elapse before the
	// move below re-arms the shared timer and starts stepping.
	if err := core.NewModeSwitch(mode, driver, timer).WaitSettled(); err != nil {
		return fmt.Errorf("mode switch: %w", err)
	}

	ctrl := motion.New(driver, driver, timer)
	fmt.Printf("moving to step %d at %d steps/s\n", target, maxVelocity(cfg))
	if err := core.NewMoveTo(ctrl, maxVelocity(cfg), target).Wait(); err != nil {
		return fmt.Errorf("move: %w", err)
	}

	fmt.Printf("done, position %d\n", ctrl.Position())
	return nil
}

// runRemote hands the move to motion firmware over the configured
// serial link.
func runRemote(cfg *host.Config, target int32) error {
	mcu, err := host.ConnectWithConfig(&serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: 500,
	})
	if err != nil {
		return err
	}
	defer mcu.Close()

	mode := core.StepMode(cfg.Motor.StepMode)
	fmt.Printf("switching driver to %d microsteps per step\n", mode)
	if err := mcu.SetStepMode(mode); err != nil {
		return err
	}

	fmt.Printf("moving to step %d at %d steps/s\n", target, maxVelocity(cfg))
	if err := core.NewMoveTo(mcu, maxVelocity(cfg), target).Wait(); err != nil {
		return fmt.Errorf("move: %w", err)
	}

	fmt.Printf("done, position %d\n", mcu.Position())
	return nil
}
