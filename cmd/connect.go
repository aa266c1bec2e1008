package cmd

import (
	"github.com/decapod-atm/ssp-host/ssp/device"
	"github.com/decapod-atm/ssp-host/transport/mock"
)

// connect builds a Device wired to an in-process simulated validator. Real
// deployments supply their own transport.Transport (e.g. an *os.File opened
// against a serial device) to device.New directly; this CLI only ever
// demonstrates the façade against the mock loopback.
func connect() *device.Device {
	hostEnd, devEnd := mock.NewPair()
	runSimulator(devEnd)
	return device.New(hostEnd, deviceConfig(), newLogger())
}
