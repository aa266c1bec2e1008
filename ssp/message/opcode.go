// Package message implements the SSP message taxonomy (spec component C3):
// the closed set of command opcodes, the response-status/poll-event byte
// space, typed command builders, typed response parsers, and the
// discriminated response-variant dispatch.
package message

import "fmt"

// Opcode identifies a command's purpose; it is always the first byte of a
// command frame's payload.
type Opcode byte

const (
	OpReset                 Opcode = 0x01
	OpSetInhibits           Opcode = 0x02
	OpDisplayOn             Opcode = 0x03
	OpDisplayOff            Opcode = 0x04
	OpSetupRequest          Opcode = 0x05
	OpHostProtocolVersion   Opcode = 0x06
	OpPoll                  Opcode = 0x07
	OpReject                Opcode = 0x08
	OpDisable               Opcode = 0x09
	OpEnable                Opcode = 0x0A
	OpProgramFirmware       Opcode = 0x0B
	OpSerialNumber          Opcode = 0x0C
	OpUnitData              Opcode = 0x0D
	OpChannelValueData      Opcode = 0x0E
	OpSync                  Opcode = 0x11
	OpLastRejectCode        Opcode = 0x17
	OpHold                  Opcode = 0x18
	OpDatasetVersion        Opcode = 0x21
	OpSetBarcodeReaderCfg   Opcode = 0x23
	OpGetBarcodeReaderCfg   Opcode = 0x24
	OpSetBarcodeInhibit     Opcode = 0x25
	OpGetBarcodeInhibit     Opcode = 0x26
	OpGetBarcodeData        Opcode = 0x27
	OpEmpty                 Opcode = 0x3F
	OpPayoutByDenomination  Opcode = 0x46
	OpSetGenerator          Opcode = 0x4A
	OpSetModulus            Opcode = 0x4B
	OpRequestKeyExchange    Opcode = 0x4C
	OpSmartEmpty            Opcode = 0x52
	OpConfigureBezel        Opcode = 0x54
	OpPollWithAck           Opcode = 0x56
	OpEventAck              Opcode = 0x57
	OpDisablePayout         Opcode = 0x5B
	OpEnablePayout          Opcode = 0x5C
	OpSetEncryptionKey      Opcode = 0x60
	OpEncryptionReset       Opcode = 0x61
	OpDownloadDataPacket    Opcode = 0x74
	OpEncrypted             Opcode = 0x7E
)

var opcodeNames = map[Opcode]string{
	OpReset:                "Reset",
	OpSetInhibits:          "SetInhibits",
	OpDisplayOn:            "DisplayOn",
	OpDisplayOff:           "DisplayOff",
	OpSetupRequest:         "SetupRequest",
	OpHostProtocolVersion:  "HostProtocolVersion",
	OpPoll:                 "Poll",
	OpReject:               "Reject",
	OpDisable:              "Disable",
	OpEnable:               "Enable",
	OpProgramFirmware:      "ProgramFirmware",
	OpSerialNumber:         "SerialNumber",
	OpUnitData:             "UnitData",
	OpChannelValueData:     "ChannelValueData",
	OpSync:                 "Sync",
	OpLastRejectCode:       "LastRejectCode",
	OpHold:                 "Hold",
	OpDatasetVersion:       "DatasetVersion",
	OpSetBarcodeReaderCfg:  "SetBarcodeReaderConfiguration",
	OpGetBarcodeReaderCfg:  "GetBarcodeReaderConfiguration",
	OpSetBarcodeInhibit:    "SetBarcodeInhibit",
	OpGetBarcodeInhibit:    "GetBarcodeInhibit",
	OpGetBarcodeData:       "GetBarcodeData",
	OpEmpty:                "Empty",
	OpPayoutByDenomination: "PayoutByDenomination",
	OpSetGenerator:         "SetGenerator",
	OpSetModulus:           "SetModulus",
	OpRequestKeyExchange:   "RequestKeyExchange",
	OpSmartEmpty:           "SmartEmpty",
	OpConfigureBezel:       "ConfigureBezel",
	OpPollWithAck:          "PollWithAck",
	OpEventAck:             "EventAck",
	OpDisablePayout:        "DisablePayout",
	OpEnablePayout:         "EnablePayout",
	OpSetEncryptionKey:     "SetEncryptionKey",
	OpEncryptionReset:      "EncryptionReset",
	OpDownloadDataPacket:   "DownloadDataPacket",
	OpEncrypted:            "Encrypted",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(o))
}

// fixedLen reports the fixed response-payload length (status byte
// included) for opcodes with a Fixed layout. Poll, PollWithAck and
// ChannelValueData also appear here with their one-byte command length;
// their responses are variable (IsVariable reports true), and ParseResponse
// does not check them against this map. Opcodes whose response length is
// not fixed here (e.g. UnitData) are absent and not length-checked.
var fixedLen = map[Opcode]int{
	OpReset:               1,
	OpDisplayOn:           1,
	OpDisplayOff:          1,
	OpHostProtocolVersion: 1,
	OpPoll:                1, // response is variable; command is fixed 1
	OpReject:              1,
	OpDisable:             1,
	OpEnable:              1,
	OpProgramFirmware:     1,
	OpSerialNumber:        5, // status + 4-byte serial number
	OpChannelValueData:    1, // response is variable
	OpSync:                1,
	OpLastRejectCode:      2, // status + 1-byte reject code
	OpHold:                1,
	OpSmartEmpty:          1,
	OpConfigureBezel:      1,
	OpPollWithAck:         1, // response is variable
	OpEventAck:            1,
	OpDisablePayout:       1,
	OpEnablePayout:        1,
	OpSetGenerator:        1,
	OpSetModulus:          1,
	OpRequestKeyExchange:  9, // status + 8-byte device intermediate key
	OpSetEncryptionKey:    1,
	OpEncryptionReset:     1,
	OpEmpty:               1,
}

// IsVariable reports whether op's response layout is declared dynamically
// via a LEN field rather than fixed by the opcode alone.
func (o Opcode) IsVariable() bool {
	switch o {
	case OpSetInhibits, OpSetupRequest, OpDatasetVersion, OpPayoutByDenomination,
		OpPoll, OpPollWithAck, OpChannelValueData, OpEncrypted,
		OpGetBarcodeData, OpGetBarcodeInhibit, OpGetBarcodeReaderCfg,
		OpSetBarcodeInhibit, OpSetBarcodeReaderCfg, OpDownloadDataPacket:
		return true
	default:
		return false
	}
}
