package message

import "fmt"

// Status is the response-status byte occupying the first position of every
// response payload (in place of an opcode).
type Status byte

const (
	StatusOK                      Status = 0xF0
	StatusDeviceReset             Status = 0xF1
	StatusCommandNotKnown         Status = 0xF2
	StatusWrongNumberParameters   Status = 0xF3
	StatusParameterOutOfRange     Status = 0xF4
	StatusCommandCannotBeProcessed Status = 0xF5
	StatusFail                    Status = 0xF8
	StatusKeyNotSet               Status = 0xFA
)

var statusNames = map[Status]string{
	StatusOK:                      "OK",
	StatusDeviceReset:              "DeviceReset",
	StatusCommandNotKnown:          "CommandNotKnown",
	StatusWrongNumberParameters:    "WrongNumberParameters",
	StatusParameterOutOfRange:      "ParameterOutOfRange",
	StatusCommandCannotBeProcessed: "CommandCannotBeProcessed",
	StatusFail:                     "Fail",
	StatusKeyNotSet:                "KeyNotSet",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(0x%02X)", byte(s))
}

// IsOK reports whether s represents a successful response.
func (s Status) IsOK() bool { return s == StatusOK }

// IsDeviceReset reports whether the device reported it has just reset,
// independent of whether the command itself succeeded.
func (s Status) IsDeviceReset() bool { return s == StatusDeviceReset }
